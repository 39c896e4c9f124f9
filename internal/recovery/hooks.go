package recovery

import "github.com/codetrail/typeweave/internal/graph"

// LanguageHooks is the language-specific specialization of the recovery
// algorithm. The core stays language-agnostic; one implementation exists per
// supported source language.
//
// Hooks must degrade to "no information" on unrecognized sub-shapes rather
// than failing: an error return is reserved for conditions that should abort
// the whole unit.
type LanguageHooks interface {
	// ResolveImport derives zero or more procedure declarations from an
	// import statement node.
	ResolveImport(n *graph.Node) ([]ProcedureDeclaration, error)

	// ResolveInternalMethod derives exactly one procedure declaration from an
	// internally defined method node.
	ResolveInternalMethod(n *graph.Node) (ProcedureDeclaration, error)

	// PropagateAssignment inspects one assignment call, determines candidate
	// types for the target's scope key, and records them in the table.
	// Assignments are visited sequentially in document order, so the hook may
	// rely on entries written by earlier assignments of the same unit.
	PropagateAssignment(assign *graph.Node, table *SymbolTable) error
}

// Prepopulator seeds a unit's symbol table with externally known facts, such
// as builtin callables, before any derivation occurs. Optional.
type Prepopulator interface {
	Prepopulate(table *SymbolTable)
}

// Pruner narrows over-approximated call-alias candidates against definitions
// actually present in the graph. If no candidate of an entry resolves, the
// entry must be left untouched. Optional.
type Pruner interface {
	PruneAgainstGraph(table *SymbolTable)
}
