package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hupe1980/memquery/core"
	"github.com/hupe1980/memquery/memory"
)

const kindTask = "task"

// txWriter adapts a transaction to memory.Writer for Store.Import.
type txWriter struct {
	tx *sql.Tx
}

var _ memory.Writer = txWriter{}

func (w txWriter) AddEntity(ctx context.Context, e core.Entity) error {
	return addEntity(ctx, w.tx, e)
}

func (w txWriter) AddTriple(ctx context.Context, subject core.MemID, predicate, value string) error {
	return addTriple(ctx, w.tx, subject, predicate, value)
}

func (w txWriter) PushTask(ctx context.Context, t *core.TaskNode) error {
	return pushTask(ctx, w.tx, t)
}

func (w txWriter) SetAgentPosition(ctx context.Context, p core.Position) error {
	return setAgentPosition(ctx, w.tx, p)
}

func addEntity(ctx context.Context, q querier, e core.Entity) error {
	if e == nil || e.MemID() == "" {
		return fmt.Errorf("add entity: entity must have a memid")
	}

	var (
		kind string
		pos  core.Position
	)

	switch v := e.(type) {
	case *core.Node:
		kind = memory.KindNode
	case *core.ReferenceObjectNode:
		kind, pos = memory.KindReferenceObject, v.Position
	case *core.TaskNode:
		kind = kindTask
		if err := upsertTask(ctx, q, v); err != nil {
			return err
		}
	default:
		return fmt.Errorf("add entity: unsupported entity %T", e)
	}

	_, err := q.ExecContext(ctx, `INSERT INTO entities (id, kind, x, y, z) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET kind = excluded.kind, x = excluded.x, y = excluded.y, z = excluded.z`,
		string(e.MemID()), kind, pos[0], pos[1], pos[2])
	if err != nil {
		return fmt.Errorf("add entity %s: %w", e.MemID(), err)
	}

	return nil
}

func upsertTask(ctx context.Context, q querier, t *core.TaskNode) error {
	kind := taskKindGeneric

	var target core.Position

	switch task := t.Task.(type) {
	case *core.BuildTask:
		kind = taskKindBuild
	case *core.MoveTask:
		kind, target = taskKindMove, task.Target
	}

	var parent any
	if t.Parent != nil {
		parent = string(t.Parent.ID)
	}

	_, err := q.ExecContext(ctx, `INSERT INTO tasks (id, action_name, task_kind, parent_id, target_x, target_y, target_z)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET action_name = excluded.action_name, task_kind = excluded.task_kind,
			parent_id = excluded.parent_id, target_x = excluded.target_x, target_y = excluded.target_y, target_z = excluded.target_z`,
		string(t.ID), t.ActionName, kind, parent, target[0], target[1], target[2])
	if err != nil {
		return fmt.Errorf("add task %s: %w", t.ID, err)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM schematic_tags WHERE task_id = ?`, string(t.ID)); err != nil {
		return fmt.Errorf("add task %s: %w", t.ID, err)
	}

	if build, ok := t.Task.(*core.BuildTask); ok {
		for i, tag := range build.SchematicTags {
			if _, err := q.ExecContext(ctx, `INSERT INTO schematic_tags (task_id, ord, predicate, value) VALUES (?, ?, ?, ?)`,
				string(t.ID), i, tag.Predicate, tag.Value); err != nil {
				return fmt.Errorf("add task %s: %w", t.ID, err)
			}
		}
	}

	return nil
}

func addTriple(ctx context.Context, q querier, subject core.MemID, predicate, value string) error {
	if subject == "" || predicate == "" {
		return fmt.Errorf("add triple: subject and predicate must be non-empty")
	}

	if _, err := q.ExecContext(ctx, `INSERT INTO triples (subject, predicate, value) VALUES (?, ?, ?)`,
		string(subject), predicate, value); err != nil {
		return fmt.Errorf("add triple (%s, %s): %w", subject, predicate, err)
	}

	return nil
}

func pushTask(ctx context.Context, q querier, t *core.TaskNode) error {
	if t == nil || t.ID == "" {
		return fmt.Errorf("push task: task must have a memid")
	}

	if err := addEntity(ctx, q, t); err != nil {
		return err
	}

	if _, err := q.ExecContext(ctx, `UPDATE tasks SET stack_pos = (SELECT COALESCE(MAX(stack_pos), 0) + 1 FROM tasks) WHERE id = ?`,
		string(t.ID)); err != nil {
		return fmt.Errorf("push task %s: %w", t.ID, err)
	}

	return nil
}

func setAgentPosition(ctx context.Context, q querier, p core.Position) error {
	if _, err := q.ExecContext(ctx, `UPDATE agent SET x = ?, y = ?, z = ? WHERE id = 1`, p[0], p[1], p[2]); err != nil {
		return fmt.Errorf("set agent position: %w", err)
	}

	return nil
}

// resetSnapshotState drops the triples of every id the snapshot names and
// takes its tasks off the stack, so that Apply rebuilds them from scratch.
func resetSnapshotState(ctx context.Context, q querier, snap *memory.Snapshot) error {
	ids := make([]core.MemID, 0, len(snap.Entities)+len(snap.Tasks))
	for _, e := range snap.Entities {
		ids = append(ids, e.ID)
	}

	for _, t := range snap.Tasks {
		ids = append(ids, t.ID)
	}

	for _, id := range ids {
		if _, err := q.ExecContext(ctx, `DELETE FROM triples WHERE subject = ?`, string(id)); err != nil {
			return fmt.Errorf("reset %s: %w", id, err)
		}

		if _, err := q.ExecContext(ctx, `UPDATE tasks SET stack_pos = NULL WHERE id = ?`, string(id)); err != nil {
			return fmt.Errorf("reset %s: %w", id, err)
		}
	}

	return nil
}
