package testutil

import (
	"context"
	"testing"

	"github.com/hupe1980/memquery/core"
	"github.com/hupe1980/memquery/memory"
)

// WorldBuilder helps construct an in-memory working memory with fluent
// chaining for tests. Example:
//
//	store := NewWorldBuilder().
//		Object("hut1", core.Position{1, 2, 3}).Triple("hut1", "has_name", "hut").
//		Task("t1", "Build", &core.BuildTask{}, "").
//		Build(t)
type WorldBuilder struct {
	steps []func(ctx context.Context, s *memory.InMemoryStore) error
	tasks map[core.MemID]*core.TaskNode
}

// NewWorldBuilder creates an empty builder.
func NewWorldBuilder() *WorldBuilder {
	return &WorldBuilder{tasks: map[core.MemID]*core.TaskNode{}}
}

// Agent sets the agent position (chainable).
func (b *WorldBuilder) Agent(p core.Position) *WorldBuilder {
	b.steps = append(b.steps, func(ctx context.Context, s *memory.InMemoryStore) error {
		return s.SetAgentPosition(ctx, p)
	})
	return b
}

// Node adds a plain node (chainable).
func (b *WorldBuilder) Node(id core.MemID) *WorldBuilder {
	b.steps = append(b.steps, func(ctx context.Context, s *memory.InMemoryStore) error {
		return s.AddEntity(ctx, &core.Node{ID: id})
	})
	return b
}

// Object adds a reference object at p (chainable).
func (b *WorldBuilder) Object(id core.MemID, p core.Position) *WorldBuilder {
	b.steps = append(b.steps, func(ctx context.Context, s *memory.InMemoryStore) error {
		return s.AddEntity(ctx, &core.ReferenceObjectNode{ID: id, Position: p})
	})
	return b
}

// Triple appends a fact (chainable).
func (b *WorldBuilder) Triple(subject core.MemID, predicate, value string) *WorldBuilder {
	b.steps = append(b.steps, func(ctx context.Context, s *memory.InMemoryStore) error {
		return s.AddTriple(ctx, subject, predicate, value)
	})
	return b
}

// Task pushes a task whose parent is the previously added task with id
// parent, or a root task when parent is empty (chainable).
func (b *WorldBuilder) Task(id core.MemID, action string, task core.Task, parent core.MemID) *WorldBuilder {
	node := &core.TaskNode{ID: id, ActionName: action, Task: task, Parent: b.tasks[parent]}
	b.tasks[id] = node

	b.steps = append(b.steps, func(ctx context.Context, s *memory.InMemoryStore) error {
		return s.PushTask(ctx, node)
	})
	return b
}

// TaskNode returns a task previously added with Task, or nil.
func (b *WorldBuilder) TaskNode(id core.MemID) *core.TaskNode {
	return b.tasks[id]
}

// Build applies all steps to a new store, failing the test on error.
func (b *WorldBuilder) Build(t testing.TB) *memory.InMemoryStore {
	t.Helper()

	ctx := context.Background()
	s := memory.NewInMemoryStore()

	for _, step := range b.steps {
		if err := step(ctx, s); err != nil {
			t.Fatalf("build world: %v", err)
		}
	}

	return s
}
