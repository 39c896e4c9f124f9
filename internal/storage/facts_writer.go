package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/codetrail/typeweave/internal/graph"
)

// FactsWriter writes recovered type facts to SQLite. Each call to WriteFacts
// records a new run, so successive recoveries over the same tree can be
// compared.
type FactsWriter struct {
	db     *sql.DB
	ownsDB bool // true if we opened the connection, false if shared
}

// NewFactsWriter creates a new FactsWriter for the specified database path.
// The schema is created if the database is new.
func NewFactsWriter(dbPath string) (*FactsWriter, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if version == "0" {
		if err := CreateSchema(db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &FactsWriter{db: db, ownsDB: true}, nil
}

// NewFactsWriterWithDB creates a FactsWriter using an existing database
// connection. The caller is responsible for the database lifecycle (schema,
// foreign keys, close).
func NewFactsWriterWithDB(db *sql.DB) *FactsWriter {
	return &FactsWriter{db: db, ownsDB: false}
}

// Close closes the database connection if owned by this writer.
func (w *FactsWriter) Close() error {
	if !w.ownsDB {
		return nil
	}
	if w.db != nil {
		return w.db.Close()
	}
	return nil
}

// WriteFacts records one recovery run and a fact for every node that carries
// an exact type or type hints. Runs in a single transaction and returns the
// run ID.
func (w *FactsWriter) WriteFacts(p *graph.Program, startedAt time.Time) (string, error) {
	if p == nil {
		return "", fmt.Errorf("program cannot be nil")
	}

	tx, err := w.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	runID := uuid.New().String()
	units := p.Units()

	// The run row goes in first: type_facts rows reference it by foreign key
	// and SQLite enforces the constraint on every insert.
	_, err = sq.Insert("recovery_runs").
		Columns("run_id", "started_at", "finished_at", "unit_count", "fact_count").
		Values(
			runID,
			startedAt.UTC().Format(time.RFC3339),
			startedAt.UTC().Format(time.RFC3339),
			len(units), 0,
		).
		RunWith(tx).
		Exec()
	if err != nil {
		return "", fmt.Errorf("failed to insert recovery run: %w", err)
	}

	factCount := 0
	for _, unit := range units {
		count, err := writeUnitFacts(tx, runID, unit)
		if err != nil {
			return "", err
		}
		factCount += count
	}

	_, err = sq.Update("recovery_runs").
		Set("finished_at", time.Now().UTC().Format(time.RFC3339)).
		Set("fact_count", factCount).
		Where(sq.Eq{"run_id": runID}).
		RunWith(tx).
		Exec()
	if err != nil {
		return "", fmt.Errorf("failed to finalize recovery run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return runID, nil
}

// writeUnitFacts writes the typed nodes of one compilation unit within a
// transaction.
func writeUnitFacts(tx *sql.Tx, runID string, unit *graph.CompilationUnit) (int, error) {
	count := 0
	var walkErr error

	unit.Walk(func(n *graph.Node) {
		if walkErr != nil {
			return
		}
		if n.TypeFullName == "" && len(n.TypeHints) == 0 {
			return
		}

		var exactType, typeHints interface{}
		if n.TypeFullName != "" {
			exactType = n.TypeFullName
		}
		if len(n.TypeHints) > 0 {
			typeHints = strings.Join(n.TypeHints, ",")
		}

		_, err := sq.Insert("type_facts").
			Columns(
				"fact_id", "run_id", "file_path", "node_kind", "node_name",
				"line", "col", "exact_type", "type_hints",
			).
			Values(
				uuid.New().String(), runID, unit.File(), string(n.Kind), n.Name,
				n.Line, n.Column, exactType, typeHints,
			).
			RunWith(tx).
			Exec()
		if err != nil {
			walkErr = fmt.Errorf("failed to insert fact for %s: %w", n.Name, err)
			return
		}
		count++
	})

	if walkErr != nil {
		return 0, walkErr
	}
	return count, nil
}
