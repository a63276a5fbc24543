package core

import "fmt"

// Entity is a handle into the memory graph. The set of implementations is
// closed: *Node, *TaskNode and *ReferenceObjectNode. Consumers dispatch on
// the concrete kind with a type switch.
//
// Every entity is taggable: its attributes live in triples keyed by MemID.
type Entity interface {
	MemID() MemID
	// Kind returns a short, stable name for the entity kind ("node", "task",
	// "reference_object"), used in logs and error messages.
	Kind() string

	entity()
}

// Node is a plain memory node that only carries triples.
type Node struct {
	ID MemID `json:"id"`
}

// MemID implements Entity.
func (n *Node) MemID() MemID { return n.ID }

// Kind implements Entity.
func (n *Node) Kind() string { return "node" }

func (n *Node) entity() {}

// ReferenceObjectNode is a physical object in the world with a position.
type ReferenceObjectNode struct {
	ID       MemID    `json:"id"`
	Position Position `json:"position"`
}

// MemID implements Entity.
func (r *ReferenceObjectNode) MemID() MemID { return r.ID }

// Kind implements Entity.
func (r *ReferenceObjectNode) Kind() string { return "reference_object" }

func (r *ReferenceObjectNode) entity() {}

// TaskNode is a task on (or formerly on) the agent's task stack.
type TaskNode struct {
	ID MemID `json:"id"`
	// ActionName is the canonical verb of the task ("Build", "Move", ...).
	// Comparisons are case-insensitive except where noted.
	ActionName string `json:"action_name"`
	Task       Task   `json:"-"`
	// Parent is the task that spawned this one, nil for a root task.
	Parent *TaskNode `json:"-"`
}

// MemID implements Entity.
func (t *TaskNode) MemID() MemID { return t.ID }

// Kind implements Entity.
func (t *TaskNode) Kind() string { return "task" }

func (t *TaskNode) entity() {}

// Root walks parent links up to the ancestor without a parent. A parent chain
// that revisits a node yields ErrCyclicTask.
func (t *TaskNode) Root() (*TaskNode, error) {
	seen := map[*TaskNode]struct{}{}

	cur := t
	for cur.Parent != nil {
		if _, ok := seen[cur]; ok {
			return nil, fmt.Errorf("task %s: %w", t.ID, ErrCyclicTask)
		}

		seen[cur] = struct{}{}
		cur = cur.Parent
	}

	return cur, nil
}

// Compile-time assertions.
var (
	_ Entity = (*Node)(nil)
	_ Entity = (*TaskNode)(nil)
	_ Entity = (*ReferenceObjectNode)(nil)
)
