package db

// SchemaSQL is the complete schema for fresh warden installs.
//
// This is the single source of truth for the database schema: all tests load
// it via GetSchemaSQL() instead of hardcoding CREATE TABLE statements, so any
// drift between repository code and schema fails tests immediately with
// "no such column".
const SchemaSQL = `
-- Last observed state per workflow, overwritten on every poll
CREATE TABLE IF NOT EXISTS workflows (
	workflow_id TEXT PRIMARY KEY,
	directory TEXT NOT NULL,
	state TEXT NOT NULL DEFAULT 'Unknown',
	percent_done REAL NOT NULL DEFAULT 0,
	held_tasks INTEGER NOT NULL DEFAULT 0,
	last_checked TEXT NOT NULL
);

-- Anomaly events (append-only): one row per poll that observed held tasks
CREATE TABLE IF NOT EXISTS anomaly_events (
	id TEXT PRIMARY KEY,
	workflow_id TEXT NOT NULL,
	directory TEXT NOT NULL,
	consecutive_polls INTEGER NOT NULL,
	anomalies TEXT NOT NULL,
	captured_at TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_anomaly_events_workflow_time
	ON anomaly_events(workflow_id, captured_at);

-- Workflow events (append-only): watcher state-transition audit trail
CREATE TABLE IF NOT EXISTS workflow_events (
	id TEXT PRIMARY KEY,
	workflow_id TEXT NOT NULL,
	from_state TEXT NOT NULL,
	to_state TEXT NOT NULL,
	detail TEXT,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_workflow_events_workflow
	ON workflow_events(workflow_id, created_at);
`

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
