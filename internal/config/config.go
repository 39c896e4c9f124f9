package config

// Config represents the complete typeweave configuration.
// It can be loaded from .typeweave/config.yml with environment variable overrides.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Recovery RecoveryConfig `yaml:"recovery" mapstructure:"recovery"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
}

// PathsConfig defines which files to analyze and which to ignore.
type PathsConfig struct {
	Code   []string `yaml:"code" mapstructure:"code"`     // glob patterns for source files
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns to ignore
}

// RecoveryConfig tunes the recovery run.
type RecoveryConfig struct {
	Languages   []string `yaml:"languages" mapstructure:"languages"`     // languages to recover, e.g. ["python", "ruby"]
	Parallelism int      `yaml:"parallelism" mapstructure:"parallelism"` // concurrent unit tasks, 0 = NumCPU
}

// ExportConfig defines where recovery results are written.
type ExportConfig struct {
	GraphDir string `yaml:"graph_dir" mapstructure:"graph_dir"` // directory for the typed program graph JSON
	FactsDB  string `yaml:"facts_db" mapstructure:"facts_db"`   // SQLite database of type facts
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Code: []string{
				"**/*.py",
				"**/*.rb",
			},
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"__pycache__/**",
				"*.pyc",
			},
		},
		Recovery: RecoveryConfig{
			Languages:   []string{"python", "ruby"},
			Parallelism: 0,
		},
		Export: ExportConfig{
			GraphDir: ".typeweave",
			FactsDB:  ".typeweave/facts.db",
		},
	}
}
