package store

import (
	"database/sql"
	"fmt"
	"time"
)

// migrations is an ordered list of schema migrations, grounded on the
// teacher's internal/memory/schema.go pattern (schema_version table +
// ordered migration functions, applied once at connect time). Never modify
// an existing migration — only append new ones.
//
// Each Store owns exactly one namespace's sqlite file (spec §6.4), so the
// schema below has no namespace column: physical file isolation is what
// gives P5 (namespace isolation), not a logical partition within one file.
var migrations = []func(*sql.Tx) error{
	migrateV0,
}

const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at TEXT NOT NULL
);
`

// migrateV0 creates the work_item and execution_log tables named in spec
// §6.2, plus the two unwired "memory" tables named in spec §9 (created for
// schema parity with the source system, intentionally not queried by any of
// the eight tools — see DESIGN.md Open Questions).
func migrateV0(tx *sql.Tx) error {
	schema := `
CREATE TABLE IF NOT EXISTS work_items (
	id TEXT PRIMARY KEY,
	item_type TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT DEFAULT '',
	status TEXT NOT NULL DEFAULT 'not_started',
	priority TEXT NOT NULL DEFAULT 'medium',
	progress_percentage REAL NOT NULL DEFAULT 0,
	parent_id TEXT DEFAULT '',
	dependencies TEXT NOT NULL DEFAULT '[]',
	sequence_number TEXT NOT NULL DEFAULT '',
	order_index INTEGER NOT NULL DEFAULT 0,
	tags TEXT NOT NULL DEFAULT '[]',
	acceptance_criteria TEXT NOT NULL DEFAULT '[]',
	vector BLOB,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	completed_at TEXT DEFAULT '',
	metadata TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_work_items_parent ON work_items(parent_id);
CREATE INDEX IF NOT EXISTS idx_work_items_type ON work_items(item_type);
CREATE INDEX IF NOT EXISTS idx_work_items_status ON work_items(status);

CREATE VIRTUAL TABLE IF NOT EXISTS work_items_fts USING fts5(
	id UNINDEXED,
	title,
	description,
	acceptance_criteria,
	status UNINDEXED,
	priority UNINDEXED,
	item_type UNINDEXED
);

CREATE TABLE IF NOT EXISTS execution_log (
	id TEXT PRIMARY KEY,
	work_item_id TEXT DEFAULT '',
	action TEXT NOT NULL,
	status TEXT NOT NULL,
	agent_id TEXT DEFAULT '',
	details TEXT DEFAULT '',
	error_message TEXT DEFAULT '',
	duration_ms INTEGER DEFAULT 0,
	timestamp TEXT NOT NULL,
	metadata TEXT DEFAULT '',
	sequence_snapshot TEXT DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_execution_log_item ON execution_log(work_item_id);
CREATE INDEX IF NOT EXISTS idx_execution_log_status ON execution_log(status);

-- Unwired "memory" tables (spec §9 open question): schema parity only.
CREATE TABLE IF NOT EXISTS architecture_notes (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS troubleshoot_notes (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT DEFAULT '',
	created_at TEXT NOT NULL
);
`
	_, err := tx.Exec(schema)
	return err
}

// ensureSchema creates the schema_version table and runs any pending
// migrations, exactly as the teacher's ensureSchema/runMigration pair does.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(schemaVersionTable); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), -1) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	for i := currentVersion + 1; i < len(migrations); i++ {
		if err := s.runMigration(i); err != nil {
			return fmt.Errorf("run migration %d: %w", i, err)
		}
	}
	return nil
}

func (s *Store) runMigration(version int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := migrations[version](tx); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec("INSERT INTO schema_version (version, applied_at) VALUES (?, ?)", version, now); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}
