package core

import "github.com/google/uuid"

// MemID is an opaque handle into the external memory graph.
type MemID string

// String returns the raw identifier.
func (id MemID) String() string { return string(id) }

// NewMemID returns a new random memory identifier.
func NewMemID() MemID { return MemID(uuid.NewString()) }
