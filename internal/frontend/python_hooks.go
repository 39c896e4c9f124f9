package frontend

import (
	"strings"
	"unicode"

	"github.com/codetrail/typeweave/internal/graph"
	"github.com/codetrail/typeweave/internal/recovery"
)

// pythonBuiltins maps builtin callables to their full names, seeded into
// every unit's table before resolution.
var pythonBuiltins = map[string]string{
	"print": "__builtin.print",
	"len":   "__builtin.len",
	"range": "__builtin.range",
	"open":  "__builtin.open",
	"str":   "__builtin.str",
	"int":   "__builtin.int",
	"list":  "__builtin.list",
	"dict":  "__builtin.dict",
}

// pythonLiteralTypes maps tree-sitter literal kinds to builtin type names.
var pythonLiteralTypes = map[string]string{
	"string":                   "str",
	"concatenated_string":      "str",
	"integer":                  "int",
	"float":                    "float",
	"true":                     "bool",
	"false":                    "bool",
	"none":                     "NoneType",
	"list":                     "list",
	"list_comprehension":       "list",
	"dictionary":               "dict",
	"dictionary_comprehension": "dict",
	"set":                      "set",
	"tuple":                    "tuple",
}

// pythonHooks is the Python specialization of the recovery algorithm.
// Instances are stateless apart from the program handle and safe for
// concurrent use across units.
type pythonHooks struct {
	program *graph.Program
}

// Prepopulate seeds builtin callables.
func (h *pythonHooks) Prepopulate(table *recovery.SymbolTable) {
	for name, fullName := range pythonBuiltins {
		table.Append(recovery.CallAliasKey(name), []string{fullName})
	}
}

// ResolveImport derives a declaration from an import node. Imports of
// capitalized names are taken as possible class imports, so the constructor
// full name is added as an over-approximate alternate for pruning to sort
// out.
func (h *pythonHooks) ResolveImport(n *graph.Node) ([]recovery.ProcedureDeclaration, error) {
	if n.Name == "" || n.FullName == "" {
		return nil, nil // Malformed import: no information.
	}

	decl := recovery.ProcedureDeclaration{
		CallingName: n.Name,
		FullName:    n.FullName,
	}
	if segment := lastSegment(n.FullName); isCapitalized(segment) {
		decl.IsConstructor = true
		decl.PossibleCalleeNames = []string{n.FullName + ".__init__"}
	}
	return []recovery.ProcedureDeclaration{decl}, nil
}

// ResolveInternalMethod derives the declaration for an internally defined
// method or class.
func (h *pythonHooks) ResolveInternalMethod(n *graph.Node) (recovery.ProcedureDeclaration, error) {
	return recovery.ProcedureDeclaration{
		CallingName:   n.Name,
		FullName:      n.FullName,
		IsConstructor: n.Name == "__init__" || isCapitalized(n.Name),
	}, nil
}

// PruneAgainstGraph narrows call-alias candidates to those that name a
// method definition present in the graph. Entries with no resolving
// candidate are left untouched: external symbols keep the
// over-approximation.
func (h *pythonHooks) PruneAgainstGraph(table *recovery.SymbolTable) {
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

// PropagateAssignment types the assignment target from the shape of its
// source. Unknown shapes contribute no information.
func (h *pythonHooks) PropagateAssignment(assign *graph.Node, table *recovery.SymbolTable) error {
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
		if typ, ok := pythonLiteralTypes[source.Name]; ok {
			table.Append(targetKey, []string{typ})
		}

	case graph.NodeIdentifier:
		// Alias copy: x = y.
		if types := table.Get(recovery.LocalVarKey(source.Name)); len(types) > 0 {
			table.Append(targetKey, types)
		}

	case graph.NodeMethodRef:
		if types := table.Get(recovery.CallAliasKey(source.Code)); len(types) > 0 {
			table.Append(targetKey, types)
		}

	case graph.NodeCall:
		switch {
		case source.Name == graph.ImportCall:
			// Import binding: the alias takes the imported entity's names.
			if target.Kind == graph.NodeIdentifier {
				if types := table.Get(recovery.CallAliasKey(target.Name)); len(types) > 0 {
					table.Append(targetKey, stripInitSuffix(types))
				}
			}

		case source.Name == graph.FieldAccessCall:
			// x = y.field copies the member's candidates, if known.
			fieldArgs := h.arguments(source)
			if len(fieldArgs) >= 2 && fieldArgs[1].Kind == graph.NodeFieldIdentifier {
				if types := table.Get(recovery.FieldVarKey(fieldArgs[1].Name)); len(types) > 0 {
					table.Append(targetKey, types)
				}
			}

		case isCapitalized(source.Name):
			// Constructor call by PEP 8 class naming: the target takes the
			// class full names the alias resolved to.
			if types := table.Get(recovery.CallAliasKey(source.Name)); len(types) > 0 {
				table.Append(targetKey, stripInitSuffix(types))
			}
		}
	}

	return nil
}

func (h *pythonHooks) arguments(call *graph.Node) []*graph.Node {
	args := make([]*graph.Node, 0, len(call.Children))
	for _, id := range call.Children {
		if n, ok := h.program.Node(id); ok {
			args = append(args, n)
		}
	}
	return args
}

// stripInitSuffix collapses constructor full names onto their class names
// and deduplicates.
func stripInitSuffix(types []string) []string {
	seen := make(map[string]bool, len(types))
	out := make([]string, 0, len(types))
	for _, typ := range types {
		typ = strings.TrimSuffix(typ, ".__init__")
		if !seen[typ] {
			seen[typ] = true
			out = append(out, typ)
		}
	}
	return out
}

func lastSegment(fullName string) string {
	if idx := strings.LastIndex(fullName, "."); idx >= 0 {
		return fullName[idx+1:]
	}
	return fullName
}

func isCapitalized(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}
