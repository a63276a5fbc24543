package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/memquery/core"
)

// InMemoryStore is a process-local working memory. It offers:
//  1. An entity registry (nodes, reference objects, tasks) in insertion order
//  2. Append-only triples with (subject, predicate) lookup in storage order
//  3. A task stack with parent links
//  4. The agent's current position
//
// Concurrency: protected by RWMutex. Entities are stored by pointer; callers
// must not mutate an entity after adding it.
type InMemoryStore struct {
	mu       sync.RWMutex
	entities map[core.MemID]core.Entity
	order    []core.MemID
	triples  map[core.MemID][]core.Triple // subject -> triples in storage order
	stack    []*core.TaskNode             // bottom ... top
	agentPos core.Position
}

// Compile-time assertions.
var (
	_ core.MemoryView = (*InMemoryStore)(nil)
	_ Writer          = (*InMemoryStore)(nil)
	_ Index           = (*InMemoryStore)(nil)
)

// NewInMemoryStore creates a new, empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entities: make(map[core.MemID]core.Entity),
		triples:  make(map[core.MemID][]core.Triple),
	}
}

// AddEntity registers an entity. Re-adding an id replaces the entity but
// keeps its original position in insertion order.
func (m *InMemoryStore) AddEntity(_ context.Context, e core.Entity) error {
	if e == nil || e.MemID() == "" {
		return fmt.Errorf("add entity: entity must have a memid")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entities[e.MemID()]; !exists {
		m.order = append(m.order, e.MemID())
	}
	m.entities[e.MemID()] = e

	return nil
}

// Entities returns all registered entities, newest first.
func (m *InMemoryStore) Entities(_ context.Context) ([]core.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Entity, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, m.entities[m.order[i]])
	}

	return out, nil
}

// AddTriple appends a (subject, predicate, value) fact.
func (m *InMemoryStore) AddTriple(_ context.Context, subject core.MemID, predicate, value string) error {
	if subject == "" || predicate == "" {
		return fmt.Errorf("add triple: subject and predicate must be non-empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.triples[subject] = append(m.triples[subject], core.Triple{Subject: subject, Predicate: predicate, Value: value})

	return nil
}

// Triples implements core.TripleReader. An empty predicate matches all.
func (m *InMemoryStore) Triples(_ context.Context, subject core.MemID, predicate string) ([]core.Triple, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.Triple
	for _, t := range m.triples[subject] {
		if predicate == "" || t.Predicate == predicate {
			out = append(out, t)
		}
	}

	return out, nil
}

// PushTask pushes a task on top of the stack and registers it as an entity.
func (m *InMemoryStore) PushTask(ctx context.Context, t *core.TaskNode) error {
	if t == nil || t.ID == "" {
		return fmt.Errorf("push task: task must have a memid")
	}

	if err := m.AddEntity(ctx, t); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.stack = append(m.stack, t)

	return nil
}

// PopTask removes and returns the top task.
func (m *InMemoryStore) PopTask(_ context.Context) (*core.TaskNode, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.stack) == 0 {
		return nil, false, nil
	}

	top := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]

	return top, true, nil
}

// Peek implements core.TaskStack.
func (m *InMemoryStore) Peek(_ context.Context) (*core.TaskNode, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.stack) == 0 {
		return nil, false, nil
	}

	return m.stack[len(m.stack)-1], true, nil
}

// FindLowestInstance implements core.TaskStack, scanning from the top.
func (m *InMemoryStore) FindLowestInstance(_ context.Context, actionType string) (*core.TaskNode, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.stack) - 1; i >= 0; i-- {
		if strings.EqualFold(m.stack[i].ActionName, actionType) {
			return m.stack[i], true, nil
		}
	}

	return nil, false, nil
}

// SetAgentPosition records where the agent is.
func (m *InMemoryStore) SetAgentPosition(_ context.Context, p core.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agentPos = p
	return nil
}

// AgentPosition implements core.AgentLocator.
func (m *InMemoryStore) AgentPosition(_ context.Context) (core.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.agentPos, nil
}

// Delete removes an entity, its triples and any stack entry for it.
func (m *InMemoryStore) Delete(_ context.Context, id core.MemID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entities[id]; !exists {
		return fmt.Errorf("delete %s: %w", id, core.ErrNotFound)
	}

	delete(m.entities, id)
	delete(m.triples, id)

	order := m.order[:0]
	for _, o := range m.order {
		if o != id {
			order = append(order, o)
		}
	}
	m.order = order

	stack := m.stack[:0]
	for _, t := range m.stack {
		if t.ID != id {
			stack = append(stack, t)
		}
	}
	m.stack = stack

	return nil
}
