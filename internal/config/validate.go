package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidLanguage indicates an unsupported recovery language
	ErrInvalidLanguage = errors.New("invalid recovery language")

	// ErrInvalidParallelism indicates an invalid parallelism setting
	ErrInvalidParallelism = errors.New("invalid parallelism")

	// ErrEmptyExportPath indicates a missing export path
	ErrEmptyExportPath = errors.New("empty export path")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateRecovery(&cfg.Recovery); err != nil {
		errs = append(errs, err)
	}

	if err := validateExport(&cfg.Export); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateRecovery(cfg *RecoveryConfig) error {
	var errs []error

	validLanguages := map[string]bool{
		"python": true,
		"ruby":   true,
	}

	for _, language := range cfg.Languages {
		if !validLanguages[strings.ToLower(language)] {
			errs = append(errs, fmt.Errorf("%w: %s (valid: python, ruby)", ErrInvalidLanguage, language))
		}
	}

	// Zero means use the machine's CPU count.
	if cfg.Parallelism < 0 {
		errs = append(errs, fmt.Errorf("%w: parallelism cannot be negative, got %d", ErrInvalidParallelism, cfg.Parallelism))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateExport(cfg *ExportConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.GraphDir) == "" {
		errs = append(errs, fmt.Errorf("%w: graph_dir is required", ErrEmptyExportPath))
	}

	if strings.TrimSpace(cfg.FactsDB) == "" {
		errs = append(errs, fmt.Errorf("%w: facts_db is required", ErrEmptyExportPath))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
