package core

import "context"

// TripleReader looks up triples by subject and predicate. Results are
// returned in storage order; an empty slice means no match.
type TripleReader interface {
	Triples(ctx context.Context, subject MemID, predicate string) ([]Triple, error)
}

// TaskStack inspects the agent's stack of in-progress tasks. The boolean
// result reports presence; absence is not an error.
type TaskStack interface {
	// Peek returns the task on top of the stack.
	Peek(ctx context.Context) (*TaskNode, bool, error)
	// FindLowestInstance returns the innermost (most recently pushed) pending
	// task whose action name matches actionType case-insensitively.
	FindLowestInstance(ctx context.Context, actionType string) (*TaskNode, bool, error)
}

// AgentLocator reports where the agent currently is.
type AgentLocator interface {
	AgentPosition(ctx context.Context) (Position, error)
}

// MemoryView is the read-only memory access facade consumed by the query
// resolver. Implementations must be safe to call repeatedly within one
// resolution and are expected to present a stable snapshot for its duration.
type MemoryView interface {
	TripleReader
	TaskStack
	AgentLocator
}
