package recovery

import (
	"fmt"

	"github.com/codetrail/typeweave/internal/graph"
)

// procedureResolver populates call-alias entries from import statements and
// internal method definitions. Instances run in parallel within one unit's
// resolution phase; they only union into the shared table, so completion
// order does not affect the final content.
type procedureResolver struct {
	hooks LanguageHooks
	table *SymbolTable
}

// resolve dispatches on node kind and writes the derived declarations under
// their calling names.
func (r *procedureResolver) resolve(n *graph.Node) error {
	switch n.Kind {
	case graph.NodeImport:
		decls, err := r.hooks.ResolveImport(n)
		if err != nil {
			return fmt.Errorf("failed to resolve import %q: %w", n.Code, err)
		}
		for _, decl := range decls {
			r.write(decl)
		}
		return nil

	case graph.NodeMethod:
		decl, err := r.hooks.ResolveInternalMethod(n)
		if err != nil {
			return fmt.Errorf("failed to resolve method %q: %w", n.Name, err)
		}
		r.write(decl)
		return nil

	default:
		return fmt.Errorf("resolver given node %d of kind %s, want import or method", n.ID, n.Kind)
	}
}

func (r *procedureResolver) write(decl ProcedureDeclaration) {
	names := decl.CandidateNames()
	if decl.CallingName == "" || len(names) == 0 {
		return
	}
	// Union, never overwrite: an alias may legitimately map to several
	// candidate full names.
	r.table.Append(CallAliasKey(decl.CallingName), names)
}
