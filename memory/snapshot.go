package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/memquery/core"
)

// Entity kinds accepted in snapshots.
const (
	KindNode            = "node"
	KindReferenceObject = "reference_object"
)

// ErrInvalidSnapshot is returned when a snapshot cannot be applied.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is a declarative description of a working memory:
//
//	agent:
//	  position: [0, 63, 0]
//	entities:
//	  - id: hut1
//	    kind: reference_object
//	    position: [1, 2, 3]
//	    triples:
//	      - {predicate: has_name, value: hut}
//	tasks:
//	  - id: t1
//	    action: Build
//	    build:
//	      schematic_tags:
//	        - {predicate: has_name, value: cube}
//	  - id: t2
//	    action: Move
//	    parent: t1
//	    move:
//	      target: [4, 5, 6]
//
// Tasks are listed bottom to top and pushed in that order. A parent must be
// listed before its children.
type Snapshot struct {
	Agent    AgentSpec    `yaml:"agent"`
	Entities []EntitySpec `yaml:"entities"`
	Tasks    []TaskSpec   `yaml:"tasks"`
}

// AgentSpec describes the agent.
type AgentSpec struct {
	Position core.Position `yaml:"position"`
}

// TripleSpec is a (predicate, value) pair on the enclosing entity.
type TripleSpec struct {
	Predicate string `yaml:"predicate"`
	Value     string `yaml:"value"`
}

// EntitySpec describes a node or reference object.
type EntitySpec struct {
	ID       core.MemID    `yaml:"id"`
	Kind     string        `yaml:"kind"`
	Position core.Position `yaml:"position"`
	Triples  []TripleSpec  `yaml:"triples"`
}

// TaskSpec describes a task on the stack.
type TaskSpec struct {
	ID      core.MemID   `yaml:"id"`
	Action  string       `yaml:"action"`
	Parent  core.MemID   `yaml:"parent"`
	Build   *BuildSpec   `yaml:"build"`
	Move    *MoveSpec    `yaml:"move"`
	Triples []TripleSpec `yaml:"triples"`
}

// BuildSpec is the payload of a build task.
type BuildSpec struct {
	SchematicTags []core.Tag `yaml:"schematic_tags"`
}

// MoveSpec is the payload of a move task.
type MoveSpec struct {
	Target core.Position `yaml:"target"`
}

// LoadSnapshot decodes a YAML snapshot. Unknown fields are rejected.
func LoadSnapshot(r io.Reader) (*Snapshot, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}

		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	return &s, nil
}

// LoadSnapshotFile reads a YAML snapshot from path.
func LoadSnapshotFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	return LoadSnapshot(f)
}

// Validate checks ids, kinds and parent links without touching a store.
func (s *Snapshot) Validate() error {
	seen := map[core.MemID]struct{}{}

	for i, e := range s.Entities {
		if e.ID == "" {
			return fmt.Errorf("%w: entities[%d]: missing id", ErrInvalidSnapshot, i)
		}

		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: entities[%d]: duplicate id %s", ErrInvalidSnapshot, i, e.ID)
		}

		seen[e.ID] = struct{}{}

		switch e.Kind {
		case "", KindNode, KindReferenceObject:
		default:
			return fmt.Errorf("%w: entities[%d]: unknown kind %q", ErrInvalidSnapshot, i, e.Kind)
		}
	}

	tasks := map[core.MemID]struct{}{}

	for i, t := range s.Tasks {
		if t.ID == "" || t.Action == "" {
			return fmt.Errorf("%w: tasks[%d]: id and action are required", ErrInvalidSnapshot, i)
		}

		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: tasks[%d]: duplicate id %s", ErrInvalidSnapshot, i, t.ID)
		}

		if t.Build != nil && t.Move != nil {
			return fmt.Errorf("%w: tasks[%d]: build and move are exclusive", ErrInvalidSnapshot, i)
		}

		if t.Parent != "" {
			if _, ok := tasks[t.Parent]; !ok {
				return fmt.Errorf("%w: tasks[%d]: parent %s must be listed earlier", ErrInvalidSnapshot, i, t.Parent)
			}
		}

		seen[t.ID] = struct{}{}
		tasks[t.ID] = struct{}{}
	}

	return nil
}

// Apply writes the snapshot into w.
func (s *Snapshot) Apply(ctx context.Context, w Writer) error {
	if err := s.Validate(); err != nil {
		return err
	}

	if err := w.SetAgentPosition(ctx, s.Agent.Position); err != nil {
		return fmt.Errorf("apply agent: %w", err)
	}

	for _, e := range s.Entities {
		var ent core.Entity = &core.Node{ID: e.ID}
		if e.Kind == KindReferenceObject {
			ent = &core.ReferenceObjectNode{ID: e.ID, Position: e.Position}
		}

		if err := w.AddEntity(ctx, ent); err != nil {
			return fmt.Errorf("apply entity %s: %w", e.ID, err)
		}

		if err := addTriples(ctx, w, e.ID, e.Triples); err != nil {
			return err
		}
	}

	nodes := make(map[core.MemID]*core.TaskNode, len(s.Tasks))

	for _, t := range s.Tasks {
		node := &core.TaskNode{ID: t.ID, ActionName: t.Action, Task: t.task(), Parent: nodes[t.Parent]}
		nodes[t.ID] = node

		if err := w.PushTask(ctx, node); err != nil {
			return fmt.Errorf("apply task %s: %w", t.ID, err)
		}

		if err := addTriples(ctx, w, t.ID, t.Triples); err != nil {
			return err
		}
	}

	return nil
}

func (t TaskSpec) task() core.Task {
	switch {
	case t.Build != nil:
		return &core.BuildTask{SchematicTags: t.Build.SchematicTags}
	case t.Move != nil:
		return &core.MoveTask{Target: t.Move.Target}
	case strings.EqualFold(t.Action, "build"):
		return &core.BuildTask{}
	default:
		return &core.GenericTask{}
	}
}

func addTriples(ctx context.Context, w Writer, id core.MemID, triples []TripleSpec) error {
	for _, tr := range triples {
		if err := w.AddTriple(ctx, id, tr.Predicate, tr.Value); err != nil {
			return fmt.Errorf("apply triple (%s, %s): %w", id, tr.Predicate, err)
		}
	}

	return nil
}
