package memory

import (
	"context"

	"github.com/hupe1980/memquery/core"
)

// Writer is the mutation surface shared by the stores. The resolver never
// uses it; it exists for loaders, fixtures and the owning agent.
type Writer interface {
	AddEntity(ctx context.Context, e core.Entity) error
	AddTriple(ctx context.Context, subject core.MemID, predicate, value string) error
	PushTask(ctx context.Context, t *core.TaskNode) error
	SetAgentPosition(ctx context.Context, p core.Position) error
}

// Index is the read surface a ReferenceResolver searches.
type Index interface {
	core.TripleReader
	// Entities returns all entities, newest first.
	Entities(ctx context.Context) ([]core.Entity, error)
}
