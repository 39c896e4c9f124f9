package cli

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codetrail/typeweave/internal/config"
	"github.com/codetrail/typeweave/internal/graph"
)

// Test Plan for the Recover Command:
// - exportResults writes the graph artifact and the facts database
// - exportResults is fully silent when --quiet is set
// - exportResults logs the run when not quiet

// captureLog redirects the standard logger into a buffer for one test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

// setQuiet sets the quiet flag for one test and restores it afterwards.
func setQuiet(t *testing.T, quiet bool) {
	t.Helper()
	prev := quietFlag
	quietFlag = quiet
	t.Cleanup(func() { quietFlag = prev })
}

func TestExportResults_WritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	setQuiet(t, true)
	captureLog(t)

	err := exportResults(dir, config.Default(), graph.NewProgram(), time.Now())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, ".typeweave", graph.GraphFileName))
	assert.FileExists(t, filepath.Join(dir, ".typeweave", "facts.db"))
}

func TestExportResults_QuietSuppressesOutput(t *testing.T) {
	dir := t.TempDir()
	setQuiet(t, true)
	buf := captureLog(t)

	require.NoError(t, exportResults(dir, config.Default(), graph.NewProgram(), time.Now()))
	assert.Empty(t, buf.String())
}

func TestExportResults_LogsRunWhenNotQuiet(t *testing.T) {
	dir := t.TempDir()
	setQuiet(t, false)
	buf := captureLog(t)

	require.NoError(t, exportResults(dir, config.Default(), graph.NewProgram(), time.Now()))
	assert.Contains(t, buf.String(), "Recorded facts under run")
}
