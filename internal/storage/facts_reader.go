package storage

import (
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

// TypeFact is one recovered fact row.
type TypeFact struct {
	FactID    string
	RunID     string
	FilePath  string
	NodeKind  string
	NodeName  string
	Line      int
	Column    int
	ExactType string
	TypeHints []string
}

// FactsReader reads recovered type facts back out of SQLite.
type FactsReader struct {
	db     *sql.DB
	ownsDB bool
}

// NewFactsReader opens the facts database read-only for queries.
func NewFactsReader(dbPath string) (*FactsReader, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &FactsReader{db: db, ownsDB: true}, nil
}

// NewFactsReaderWithDB creates a FactsReader on a shared connection.
func NewFactsReaderWithDB(db *sql.DB) *FactsReader {
	return &FactsReader{db: db, ownsDB: false}
}

// Close closes the database connection if owned by this reader.
func (r *FactsReader) Close() error {
	if !r.ownsDB {
		return nil
	}
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// FactsForFile returns the facts recorded for one source file in a run,
// ordered by position.
func (r *FactsReader) FactsForFile(runID, filePath string) ([]TypeFact, error) {
	rows, err := sq.Select(
		"fact_id", "run_id", "file_path", "node_kind", "node_name",
		"line", "col", "exact_type", "type_hints",
	).
		From("type_facts").
		Where(sq.Eq{"run_id": runID, "file_path": filePath}).
		OrderBy("line", "col").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	var facts []TypeFact
	for rows.Next() {
		var fact TypeFact
		var exactType, typeHints sql.NullString
		err := rows.Scan(
			&fact.FactID, &fact.RunID, &fact.FilePath, &fact.NodeKind,
			&fact.NodeName, &fact.Line, &fact.Column, &exactType, &typeHints,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		fact.ExactType = exactType.String
		if typeHints.Valid && typeHints.String != "" {
			fact.TypeHints = strings.Split(typeHints.String, ",")
		}
		facts = append(facts, fact)
	}
	return facts, rows.Err()
}

// LatestRunID returns the most recently finished run, or empty string when
// the database holds no runs yet.
func (r *FactsReader) LatestRunID() (string, error) {
	var runID string
	err := sq.Select("run_id").
		From("recovery_runs").
		OrderBy("finished_at DESC", "rowid DESC").
		Limit(1).
		RunWith(r.db).
		QueryRow().
		Scan(&runID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query latest run: %w", err)
	}
	return runID, nil
}
