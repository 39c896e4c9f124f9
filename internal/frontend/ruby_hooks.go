package frontend

import (
	"strings"

	"github.com/codetrail/typeweave/internal/graph"
	"github.com/codetrail/typeweave/internal/recovery"
)

var rubyBuiltins = map[string]string{
	"puts":  "__builtin.puts",
	"print": "__builtin.print",
	"p":     "__builtin.p",
	"gets":  "__builtin.gets",
}

var rubyLiteralTypes = map[string]string{
	"string":               "String",
	"string_array":         "Array",
	"integer":              "Integer",
	"float":                "Float",
	"true":                 "TrueClass",
	"false":                "FalseClass",
	"nil":                  "NilClass",
	"simple_symbol":        "Symbol",
	"delimited_symbol":     "Symbol",
	"symbol_array":         "Array",
	"array":                "Array",
	"hash":                 "Hash",
	"regex":                "Regexp",
	"heredoc_beginning":    "String",
	"interpolation_string": "String",
}

// rubyHooks is the Ruby specialization of the recovery algorithm.
type rubyHooks struct {
	program *graph.Program
}

func (h *rubyHooks) Prepopulate(table *recovery.SymbolTable) {
	for name, fullName := range rubyBuiltins {
		table.Append(recovery.CallAliasKey(name), []string{fullName})
	}
}

// ResolveImport derives a declaration from a require node. Required paths
// cannot be inspected, so the path itself is the only candidate.
func (h *rubyHooks) ResolveImport(n *graph.Node) ([]recovery.ProcedureDeclaration, error) {
	if n.Name == "" || n.FullName == "" {
		return nil, nil
	}
	return []recovery.ProcedureDeclaration{{
		CallingName: n.Name,
		FullName:    n.FullName,
	}}, nil
}

// ResolveInternalMethod derives the declaration for a def or class node.
// Classes are registered under their constructor alias "<Class>.new" so
// constructor call sites resolve directly.
func (h *rubyHooks) ResolveInternalMethod(n *graph.Node) (recovery.ProcedureDeclaration, error) {
	if isCapitalized(n.Name) {
		return recovery.ProcedureDeclaration{
			CallingName:   n.Name + ".new",
			FullName:      n.FullName,
			IsConstructor: true,
		}, nil
	}
	return recovery.ProcedureDeclaration{
		CallingName:   n.Name,
		FullName:      n.FullName,
		IsConstructor: n.Name == "initialize",
	}, nil
}

// PruneAgainstGraph keeps candidates that name methods present in the
// graph; entries where nothing resolves stay untouched.
func (h *rubyHooks) PruneAgainstGraph(table *recovery.SymbolTable) {
	for _, key := range table.Keys() {
		if key.Kind != recovery.KeyCallAlias {
			continue
		}
		candidates := table.Get(key)
		var resolved []string
		for _, candidate := range candidates {
			if h.program.HasMethodWithFullName(candidate) {
				resolved = append(resolved, candidate)
			}
		}
		if len(resolved) > 0 && len(resolved) < len(candidates) {
			table.Put(key, resolved)
		}
	}
}

// PropagateAssignment types the target from the source shape: constructor
// calls, literals, and identifier copies.
func (h *rubyHooks) PropagateAssignment(assign *graph.Node, table *recovery.SymbolTable) error {
	args := h.arguments(assign)
	if len(args) < 2 {
		return nil
	}
	target, source := args[0], args[1]

	var targetKey recovery.ScopeKey
	switch target.Kind {
	case graph.NodeIdentifier:
		targetKey = recovery.LocalVarKey(target.Name)
	case graph.NodeFieldIdentifier:
		targetKey = recovery.FieldVarKey(target.Name)
	default:
		return nil
	}

	switch source.Kind {
	case graph.NodeLiteral:
		if typ, ok := rubyLiteralTypes[source.Name]; ok {
			table.Append(targetKey, []string{typ})
		}

	case graph.NodeIdentifier:
		if types := table.Get(recovery.LocalVarKey(source.Name)); len(types) > 0 {
			table.Append(targetKey, types)
		}

	case graph.NodeCall:
		if strings.HasSuffix(source.Name, ".new") {
			if types := table.Get(recovery.CallAliasKey(source.Name)); len(types) > 0 {
				table.Append(targetKey, types)
			}
		}
	}

	return nil
}

func (h *rubyHooks) arguments(call *graph.Node) []*graph.Node {
	args := make([]*graph.Node, 0, len(call.Children))
	for _, id := range call.Children {
		if n, ok := h.program.Node(id); ok {
			args = append(args, n)
		}
	}
	return args
}
