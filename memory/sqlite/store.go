package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/memquery/core"
	"github.com/hupe1980/memquery/logging"
	"github.com/hupe1980/memquery/memory"
)

// Task kinds persisted in tasks.task_kind.
const (
	taskKindBuild   = "build"
	taskKindMove    = "move"
	taskKindGeneric = "generic"
)

// Options configures a Store.
type Options struct {
	// Logger receives store events (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Store is a SQLite-backed working memory.
//
// Concurrency: the pool is limited to a single connection, so statements are
// serialized by database/sql. Entities returned by reads are fresh values;
// mutating them does not affect the store.
type Store struct {
	db     *sql.DB
	path   string
	logger logging.Logger
}

// Compile-time assertions.
var (
	_ core.MemoryView = (*Store)(nil)
	_ memory.Writer   = (*Store)(nil)
	_ memory.Index    = (*Store)(nil)
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New opens (or creates) the database at path and runs migrations.
func New(path string, optFns ...func(o *Options)) (*Store, error) {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if path == "" {
		path = ":memory:"
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}

	// ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, logger: opts.Logger}

	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migration: %w", err)
	}

	s.logger.Debug("memory.sqlite.open", "path", path)

	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}

	if version >= schemaVersion {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range migrations {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion)); err != nil {
		return err
	}

	return tx.Commit()
}

// AddEntity inserts or replaces an entity. Replacing keeps the original
// insertion order. Tasks are persisted with their payload but are not pushed.
func (s *Store) AddEntity(ctx context.Context, e core.Entity) error {
	return addEntity(ctx, s.db, e)
}

// AddTriple appends a (subject, predicate, value) fact.
func (s *Store) AddTriple(ctx context.Context, subject core.MemID, predicate, value string) error {
	return addTriple(ctx, s.db, subject, predicate, value)
}

// PushTask persists t and places it on top of the stack.
func (s *Store) PushTask(ctx context.Context, t *core.TaskNode) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("push task: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := pushTask(ctx, tx, t); err != nil {
		return err
	}

	return tx.Commit()
}

// SetAgentPosition records where the agent is.
func (s *Store) SetAgentPosition(ctx context.Context, p core.Position) error {
	return setAgentPosition(ctx, s.db, p)
}

// PopTask removes the top task from the stack. The task row is kept so that
// parent links of other tasks stay resolvable.
func (s *Store) PopTask(ctx context.Context) (*core.TaskNode, bool, error) {
	top, ok, err := s.Peek(ctx)
	if err != nil || !ok {
		return nil, ok, err
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE tasks SET stack_pos = NULL WHERE id = ?`, string(top.ID)); err != nil {
		return nil, false, fmt.Errorf("pop task: %w", err)
	}

	return top, true, nil
}

// Delete removes an entity and its triples. A task that other tasks still
// name as parent keeps its task row, off the stack, so their parent chains
// stay intact.
func (s *Store) Delete(ctx context.Context, id core.MemID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete %s: %w", id, core.ErrNotFound)
	}

	var referenced bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE parent_id = ?)`, string(id)).Scan(&referenced); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}

	stmts := []string{
		`DELETE FROM triples WHERE subject = ?`,
		`DELETE FROM tasks WHERE id = ?`,
		`DELETE FROM schematic_tags WHERE task_id = ?`,
	}
	if referenced {
		stmts = []string{
			`DELETE FROM triples WHERE subject = ?`,
			`UPDATE tasks SET stack_pos = NULL WHERE id = ?`,
		}
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt, string(id)); err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// Import applies a snapshot in a single transaction. Importing the same
// snapshot again yields the same state: triples of every entity and task it
// names are replaced and its tasks are pushed afresh.
func (s *Store) Import(ctx context.Context, snap *memory.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := resetSnapshotState(ctx, tx, snap); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	if err := snap.Apply(ctx, txWriter{tx: tx}); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	s.logger.Info("memory.sqlite.import", "entities", len(snap.Entities), "tasks", len(snap.Tasks))

	return nil
}

// Entities implements memory.Index, newest first.
func (s *Store) Entities(ctx context.Context) ([]core.Entity, error) {
	type row struct {
		id   core.MemID
		kind string
		pos  core.Position
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, kind, x, y, z FROM entities ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}

	var all []row

	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.kind, &r.pos[0], &r.pos[1], &r.pos[2]); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("list entities: %w", err)
		}

		all = append(all, r)
	}

	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}

	cache := map[core.MemID]*core.TaskNode{}
	out := make([]core.Entity, 0, len(all))

	for _, r := range all {
		e, err := s.materialize(ctx, r.id, r.kind, r.pos, cache)
		if err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	return out, nil
}

// Triples implements core.TripleReader. An empty predicate matches all.
func (s *Store) Triples(ctx context.Context, subject core.MemID, predicate string) ([]core.Triple, error) {
	q := `SELECT predicate, value FROM triples WHERE subject = ? AND (? = '' OR predicate = ?) ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, q, string(subject), predicate, predicate)
	if err != nil {
		return nil, fmt.Errorf("get triples: %w", err)
	}
	defer rows.Close()

	var out []core.Triple

	for rows.Next() {
		t := core.Triple{Subject: subject}
		if err := rows.Scan(&t.Predicate, &t.Value); err != nil {
			return nil, fmt.Errorf("get triples: %w", err)
		}

		out = append(out, t)
	}

	return out, rows.Err()
}

// Peek implements core.TaskStack.
func (s *Store) Peek(ctx context.Context) (*core.TaskNode, bool, error) {
	return s.stackQuery(ctx, `SELECT id FROM tasks WHERE stack_pos IS NOT NULL ORDER BY stack_pos DESC LIMIT 1`)
}

// FindLowestInstance implements core.TaskStack.
func (s *Store) FindLowestInstance(ctx context.Context, actionType string) (*core.TaskNode, bool, error) {
	return s.stackQuery(ctx, `SELECT id FROM tasks WHERE stack_pos IS NOT NULL AND action_name = ? COLLATE NOCASE ORDER BY stack_pos DESC LIMIT 1`, actionType)
}

// AgentPosition implements core.AgentLocator.
func (s *Store) AgentPosition(ctx context.Context) (core.Position, error) {
	var p core.Position
	if err := s.db.QueryRowContext(ctx, `SELECT x, y, z FROM agent WHERE id = 1`).Scan(&p[0], &p[1], &p[2]); err != nil {
		return core.Position{}, fmt.Errorf("agent position: %w", err)
	}

	return p, nil
}

func (s *Store) stackQuery(ctx context.Context, q string, args ...any) (*core.TaskNode, bool, error) {
	var id string

	err := s.db.QueryRowContext(ctx, q, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("task stack: %w", err)
	}

	t, err := s.loadTask(ctx, core.MemID(id), map[core.MemID]*core.TaskNode{})
	if err != nil {
		return nil, false, err
	}

	return t, true, nil
}

func (s *Store) materialize(ctx context.Context, id core.MemID, kind string, pos core.Position, cache map[core.MemID]*core.TaskNode) (core.Entity, error) {
	switch kind {
	case memory.KindReferenceObject:
		return &core.ReferenceObjectNode{ID: id, Position: pos}, nil
	case memory.KindNode:
		return &core.Node{ID: id}, nil
	case kindTask:
		return s.loadTask(ctx, id, cache)
	default:
		return nil, fmt.Errorf("entity %s: unknown kind %q", id, kind)
	}
}

// errMissingTask marks a task id without a row in the tasks table. It is an
// integrity fault, not a lookup miss, and never wraps core.ErrNotFound.
var errMissingTask = errors.New("task row missing")

// loadTask rebuilds a task and its parent chain. The cache is filled before
// parents are loaded, so a cyclic chain in the database yields cyclic
// pointers (reported later by TaskNode.Root) instead of endless recursion.
func (s *Store) loadTask(ctx context.Context, id core.MemID, cache map[core.MemID]*core.TaskNode) (*core.TaskNode, error) {
	if t, ok := cache[id]; ok {
		return t, nil
	}

	var (
		action, kind string
		parent       sql.NullString
		target       core.Position
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT action_name, task_kind, parent_id, target_x, target_y, target_z FROM tasks WHERE id = ?`, string(id),
	).Scan(&action, &kind, &parent, &target[0], &target[1], &target[2])
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, errMissingTask)
	}

	if err != nil {
		return nil, fmt.Errorf("task %s: %w", id, err)
	}

	t := &core.TaskNode{ID: id, ActionName: action}
	cache[id] = t

	switch kind {
	case taskKindBuild:
		tags, err := s.schematicTags(ctx, id)
		if err != nil {
			return nil, err
		}

		t.Task = &core.BuildTask{SchematicTags: tags}
	case taskKindMove:
		t.Task = &core.MoveTask{Target: target}
	default:
		t.Task = &core.GenericTask{}
	}

	if parent.Valid && parent.String != "" {
		p, err := s.loadTask(ctx, core.MemID(parent.String), cache)

		switch {
		case errors.Is(err, errMissingTask):
			// parent never persisted; the chain ends here
			s.logger.Debug("memory.sqlite.missing_parent", "task", string(id), "parent", parent.String)
		case err != nil:
			return nil, fmt.Errorf("parent of task %s: %w", id, err)
		default:
			t.Parent = p
		}
	}

	return t, nil
}

func (s *Store) schematicTags(ctx context.Context, id core.MemID) ([]core.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT predicate, value FROM schematic_tags WHERE task_id = ? ORDER BY ord`, string(id))
	if err != nil {
		return nil, fmt.Errorf("schematic tags of %s: %w", id, err)
	}
	defer rows.Close()

	var tags []core.Tag

	for rows.Next() {
		var tag core.Tag
		if err := rows.Scan(&tag.Predicate, &tag.Value); err != nil {
			return nil, fmt.Errorf("schematic tags of %s: %w", id, err)
		}

		tags = append(tags, tag)
	}

	return tags, rows.Err()
}
