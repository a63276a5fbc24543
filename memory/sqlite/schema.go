package sqlite

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS entities (
		seq  INTEGER PRIMARY KEY AUTOINCREMENT,
		id   TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		x    REAL NOT NULL DEFAULT 0,
		y    REAL NOT NULL DEFAULT 0,
		z    REAL NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS triples (
		seq       INTEGER PRIMARY KEY AUTOINCREMENT,
		subject   TEXT NOT NULL,
		predicate TEXT NOT NULL,
		value     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_triples_subject_predicate ON triples(subject, predicate)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		action_name TEXT NOT NULL,
		task_kind   TEXT NOT NULL,
		parent_id   TEXT,
		target_x    REAL NOT NULL DEFAULT 0,
		target_y    REAL NOT NULL DEFAULT 0,
		target_z    REAL NOT NULL DEFAULT 0,
		stack_pos   INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_stack_pos ON tasks(stack_pos)`,
	`CREATE TABLE IF NOT EXISTS schematic_tags (
		task_id   TEXT NOT NULL,
		ord       INTEGER NOT NULL,
		predicate TEXT NOT NULL,
		value     TEXT NOT NULL,
		PRIMARY KEY (task_id, ord)
	)`,
	`CREATE TABLE IF NOT EXISTS agent (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		x  REAL NOT NULL DEFAULT 0,
		y  REAL NOT NULL DEFAULT 0,
		z  REAL NOT NULL DEFAULT 0
	)`,
	`INSERT OR IGNORE INTO agent (id, x, y, z) VALUES (1, 0, 0, 0)`,
}
