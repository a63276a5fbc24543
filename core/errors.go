package core

import "errors"

var (
	// ErrNotFound is returned (or wrapped) by collaborators when the requested
	// memory, task or reference object does not exist.
	ErrNotFound = errors.New("memory not found")

	// ErrCyclicTask is returned when walking task parent links revisits a node.
	ErrCyclicTask = errors.New("cyclic task parent chain")
)
