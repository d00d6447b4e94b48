package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// taskColumns is shared by the tasks and archive tables.
const taskColumns = `
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	deadline         TEXT,
	priority         TEXT NOT NULL DEFAULT '',
	done             INTEGER NOT NULL DEFAULT 0,
	archived         INTEGER NOT NULL DEFAULT 0,
	group_id         INTEGER,
	time             TEXT NOT NULL DEFAULT '',
	repeat_frequency TEXT NOT NULL DEFAULT 'NONE',
	repeat_days      TEXT,
	repeat_interval  INTEGER NOT NULL DEFAULT 1,
	repeat_until     TEXT,
	start_date       TEXT,
	excluded_dates   TEXT,
	next_occurrence  TEXT,
	created_at       DATETIME NOT NULL,
	updated_at       DATETIME NOT NULL`

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS task_groups (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (` + taskColumns + `,
	FOREIGN KEY (group_id) REFERENCES task_groups(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS archive (` + taskColumns + `
);

CREATE TABLE IF NOT EXISTS task_instances_completed (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id        TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	completed_date TEXT NOT NULL,
	UNIQUE (task_id, completed_date)
);

CREATE INDEX IF NOT EXISTS idx_tasks_group_id ON tasks(group_id);
CREATE INDEX IF NOT EXISTS idx_tasks_deadline ON tasks(deadline);
CREATE INDEX IF NOT EXISTS idx_instances_task_id ON task_instances_completed(task_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_tasks_done_created ON tasks(done, created_at);
CREATE INDEX IF NOT EXISTS idx_tasks_next_occurrence ON tasks(next_occurrence);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
