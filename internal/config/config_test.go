package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() loads from .typeweave/config.yml when present
// - Environment variables override config file values
// - Load() returns error for malformed YAML
// - Validate() accepts valid configuration
// - Validate() rejects unknown recovery languages
// - Validate() rejects negative parallelism
// - Validate() rejects empty export paths
// - Validate() returns multiple errors for multiple invalid fields

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.Paths.Code)
	assert.NotEmpty(t, cfg.Paths.Ignore)
	assert.Equal(t, []string{"python", "ruby"}, cfg.Recovery.Languages)
	assert.Equal(t, 0, cfg.Recovery.Parallelism)
	assert.Equal(t, ".typeweave", cfg.Export.GraphDir)
	assert.Equal(t, ".typeweave/facts.db", cfg.Export.FactsDB)

	assert.NoError(t, Validate(cfg))
}

func TestLoad_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	cfg, err := NewLoader(t.TempDir()).Load()

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, Default().Paths.Code, cfg.Paths.Code)
	assert.Equal(t, Default().Recovery.Languages, cfg.Recovery.Languages)
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, ".typeweave")
	require.NoError(t, os.MkdirAll(configDir, 0755))

	yaml := `recovery:
  languages: ["ruby"]
  parallelism: 3
export:
  facts_db: out/facts.db
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(yaml), 0644))

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"ruby"}, cfg.Recovery.Languages)
	assert.Equal(t, 3, cfg.Recovery.Parallelism)
	assert.Equal(t, "out/facts.db", cfg.Export.FactsDB)
	// Untouched sections keep defaults.
	assert.Equal(t, Default().Paths.Code, cfg.Paths.Code)
	assert.Equal(t, Default().Export.GraphDir, cfg.Export.GraphDir)
}

func TestLoad_EnvOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, ".typeweave")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"),
		[]byte("recovery:\n  parallelism: 3\n"), 0644))

	t.Setenv("TYPEWEAVE_RECOVERY_PARALLELISM", "8")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Recovery.Parallelism)
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, ".typeweave")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"),
		[]byte("recovery: [unclosed\n"), 0644))

	_, err := NewLoader(dir).Load()
	assert.Error(t, err)
}

func TestValidate_RejectsUnknownLanguage(t *testing.T) {
	cfg := Default()
	cfg.Recovery.Languages = []string{"python", "perl"}

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLanguage)
}

func TestValidate_RejectsNegativeParallelism(t *testing.T) {
	cfg := Default()
	cfg.Recovery.Parallelism = -1

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParallelism)
}

func TestValidate_RejectsEmptyExportPaths(t *testing.T) {
	cfg := Default()
	cfg.Export.GraphDir = " "

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyExportPath)

	cfg = Default()
	cfg.Export.FactsDB = ""
	assert.ErrorIs(t, Validate(cfg), ErrEmptyExportPath)
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.Recovery.Languages = []string{"perl"}
	cfg.Export.FactsDB = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "perl")
	assert.Contains(t, err.Error(), "facts_db")
}
