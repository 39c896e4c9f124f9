package frontend

import (
	"path/filepath"

	"github.com/codetrail/typeweave/internal/graph"
	"github.com/codetrail/typeweave/internal/recovery"
)

// Frontend lowers source files of one language into the program graph and
// provides the language-specific recovery hooks for the units it produced.
type Frontend interface {
	// Language returns the language identifier, e.g. "python".
	Language() string

	// Extensions returns the file extensions handled, with leading dot.
	Extensions() []string

	// LowerFile lowers one source file into the program graph.
	LowerFile(p *graph.Program, path string, source []byte) error

	// Hooks returns the recovery hooks for units of this language.
	Hooks(p *graph.Program) recovery.LanguageHooks
}

// All returns every supported frontend.
func All() []Frontend {
	return []Frontend{
		NewPythonFrontend(),
		NewRubyFrontend(),
	}
}

// ForFile returns the frontend handling the given file path, or nil.
func ForFile(path string) Frontend {
	ext := filepath.Ext(path)
	for _, f := range All() {
		for _, e := range f.Extensions() {
			if e == ext {
				return f
			}
		}
	}
	return nil
}
