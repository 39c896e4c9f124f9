package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// CreateSchema creates all tables and indexes for the type facts database.
// Uses a transaction for atomicity - all schema creation succeeds or fails
// together.
//
// Schema includes:
//   - recovery_runs: one row per recovery invocation
//   - type_facts: one row per node that received a type or hints
//   - facts_metadata: schema bookkeeping
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	// Enable foreign keys (must be set for each connection)
	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	tables := []struct {
		name string
		ddl  string
	}{
		{"recovery_runs", createRecoveryRunsTable},
		{"type_facts", createTypeFactsTable},
		{"facts_metadata", createFactsMetadataTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range factIndexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	bootstrapSQL := `
		INSERT INTO facts_metadata (key, value, updated_at) VALUES
			('schema_version', '1.0', ?)
	`
	if _, err := tx.Exec(bootstrapSQL, now); err != nil {
		return fmt.Errorf("failed to bootstrap facts_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	return nil
}

// GetSchemaVersion retrieves the schema version from facts_metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='facts_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check facts_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil // New database
	}

	var version string
	query := "SELECT value FROM facts_metadata WHERE key = 'schema_version'"
	err = db.QueryRow(query).Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in facts_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// Table DDL constants

const createRecoveryRunsTable = `
CREATE TABLE recovery_runs (
    run_id TEXT PRIMARY KEY,                     -- UUID
    started_at TEXT NOT NULL,                    -- ISO 8601
    finished_at TEXT NOT NULL,                   -- ISO 8601
    unit_count INTEGER NOT NULL DEFAULT 0,       -- Compilation units processed
    fact_count INTEGER NOT NULL DEFAULT 0        -- Facts written for this run
)
`

const createTypeFactsTable = `
CREATE TABLE type_facts (
    fact_id TEXT PRIMARY KEY,                    -- UUID
    run_id TEXT NOT NULL,
    file_path TEXT NOT NULL,                     -- Compilation unit the node belongs to
    node_kind TEXT NOT NULL,                     -- local, identifier, call
    node_name TEXT NOT NULL,
    line INTEGER NOT NULL,
    col INTEGER NOT NULL,
    exact_type TEXT,                             -- Set when exactly one candidate survived
    type_hints TEXT,                             -- Comma-joined candidates when several survived
    FOREIGN KEY (run_id) REFERENCES recovery_runs(run_id) ON DELETE CASCADE
)
`

const createFactsMetadataTable = `
CREATE TABLE facts_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

var factIndexes = []string{
	"CREATE INDEX idx_type_facts_file ON type_facts(file_path)",
	"CREATE INDEX idx_type_facts_run ON type_facts(run_id)",
	"CREATE INDEX idx_type_facts_name ON type_facts(node_name)",
}
