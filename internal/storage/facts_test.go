package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codetrail/typeweave/internal/graph"
)

// Test Plan for the Facts Database:
// - CreateSchema builds all tables and bootstraps the schema version
// - NewFactsWriter creates the schema on a fresh database
// - WriteFacts succeeds with foreign keys enforced and facts read back
// - WriteFacts records one run plus a fact per typed node, skipping untyped ones
// - Exact types and hint sets round-trip through reader queries
// - FactsForFile returns rows ordered by position
// - LatestRunID returns the most recent run, empty on a fresh database
// - Successive runs accumulate without clobbering earlier facts

// typedProgram builds a program with one exact-typed, one hinted, and one
// untyped node.
func typedProgram(t *testing.T) *graph.Program {
	t.Helper()
	p := graph.NewProgram()
	p.AddUnit("app.rb", "ruby")

	exact, err := p.AddNode(graph.Node{Kind: graph.NodeIdentifier, Name: "v", File: "app.rb", Line: 2, Column: 1})
	require.NoError(t, err)
	hinted, err := p.AddNode(graph.Node{Kind: graph.NodeLocal, Name: "v", File: "app.rb", Line: 3, Column: 1})
	require.NoError(t, err)
	_, err = p.AddNode(graph.Node{Kind: graph.NodeLiteral, Name: "integer", File: "app.rb", Line: 4, Column: 1})
	require.NoError(t, err)

	m := graph.NewMutations()
	m.SetType(exact, "app.Thing")
	m.SetTypeHints(hinted, []string{"app.A", "app.B"})
	_, err = m.Apply(p)
	require.NoError(t, err)
	return p
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "facts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateSchema_Bootstrap(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	require.NoError(t, CreateSchema(db))

	version, err := GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, "1.0", version)
}

func TestGetSchemaVersion_FreshDatabase(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	version, err := GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, "0", version)
}

func TestFactsWriter_CreatesSchemaOnFreshDatabase(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "facts.db")

	writer, err := NewFactsWriter(path)
	require.NoError(t, err)
	defer writer.Close()

	runID, err := writer.WriteFacts(typedProgram(t), time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, runID)
}

func TestFactsWriter_WritesFactsWithForeignKeysEnforced(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "facts.db")

	// NewFactsWriter turns PRAGMA foreign_keys on, so fact rows must land
	// after the run row they reference.
	writer, err := NewFactsWriter(path)
	require.NoError(t, err)
	defer writer.Close()

	runID, err := writer.WriteFacts(typedProgram(t), time.Now())
	require.NoError(t, err)

	reader, err := NewFactsReader(path)
	require.NoError(t, err)
	defer reader.Close()

	latest, err := reader.LatestRunID()
	require.NoError(t, err)
	assert.Equal(t, runID, latest)

	facts, err := reader.FactsForFile(runID, "app.rb")
	require.NoError(t, err)
	assert.Len(t, facts, 2)
}

func TestFactsWriter_RoundTrip(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	require.NoError(t, CreateSchema(db))

	writer := NewFactsWriterWithDB(db)
	runID, err := writer.WriteFacts(typedProgram(t), time.Now())
	require.NoError(t, err)

	reader := NewFactsReaderWithDB(db)
	facts, err := reader.FactsForFile(runID, "app.rb")
	require.NoError(t, err)

	// The untyped literal contributes no row.
	require.Len(t, facts, 2)

	assert.Equal(t, "identifier", facts[0].NodeKind)
	assert.Equal(t, "app.Thing", facts[0].ExactType)
	assert.Empty(t, facts[0].TypeHints)

	assert.Equal(t, "local", facts[1].NodeKind)
	assert.Empty(t, facts[1].ExactType)
	assert.Equal(t, []string{"app.A", "app.B"}, facts[1].TypeHints)

	// Ordered by position.
	assert.Less(t, facts[0].Line, facts[1].Line)
}

func TestFactsReader_LatestRunID(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	require.NoError(t, CreateSchema(db))

	reader := NewFactsReaderWithDB(db)
	runID, err := reader.LatestRunID()
	require.NoError(t, err)
	assert.Empty(t, runID)

	writer := NewFactsWriterWithDB(db)
	first, err := writer.WriteFacts(typedProgram(t), time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_ = first

	second, err := writer.WriteFacts(typedProgram(t), time.Now())
	require.NoError(t, err)

	latest, err := reader.LatestRunID()
	require.NoError(t, err)
	assert.Equal(t, second, latest)
}

func TestFactsWriter_RunsAccumulate(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	require.NoError(t, CreateSchema(db))

	writer := NewFactsWriterWithDB(db)
	p := typedProgram(t)

	firstRun, err := writer.WriteFacts(p, time.Now())
	require.NoError(t, err)
	secondRun, err := writer.WriteFacts(p, time.Now())
	require.NoError(t, err)
	require.NotEqual(t, firstRun, secondRun)

	reader := NewFactsReaderWithDB(db)
	firstFacts, err := reader.FactsForFile(firstRun, "app.rb")
	require.NoError(t, err)
	secondFacts, err := reader.FactsForFile(secondRun, "app.rb")
	require.NoError(t, err)

	assert.Len(t, firstFacts, 2)
	assert.Len(t, secondFacts, 2)
}
