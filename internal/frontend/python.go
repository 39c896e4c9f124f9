package frontend

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tspython "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/codetrail/typeweave/internal/graph"
	"github.com/codetrail/typeweave/internal/recovery"
)

// pythonFrontend lowers Python modules into the program graph.
type pythonFrontend struct {
	language *sitter.Language
}

// NewPythonFrontend creates the Python frontend.
func NewPythonFrontend() Frontend {
	return &pythonFrontend{language: sitter.NewLanguage(tspython.Language())}
}

func (f *pythonFrontend) Language() string     { return "python" }
func (f *pythonFrontend) Extensions() []string { return []string{".py"} }

func (f *pythonFrontend) Hooks(p *graph.Program) recovery.LanguageHooks {
	return &pythonHooks{program: p}
}

// LowerFile parses one Python source file and lowers its statements into
// graph nodes. Unrecognized statement shapes are skipped, not errors.
func (f *pythonFrontend) LowerFile(p *graph.Program, path string, source []byte) error {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(f.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return fmt.Errorf("failed to parse python file: %s", path)
	}
	defer tree.Close()

	module := strings.TrimSuffix(filepath.Base(path), ".py")
	p.AddUnit(path, f.Language())

	l := &pythonLowering{
		program: p,
		file:    path,
		module:  module,
		source:  source,
		locals:  make(map[string]bool),
	}

	fileID, err := p.AddNode(graph.Node{
		Kind: graph.NodeFile,
		Name: module,
		File: path,
		Line: 1,
	})
	if err != nil {
		return err
	}

	l.lowerBlock(tree.RootNode(), fileID, module)
	return l.err
}

// pythonLowering holds per-file lowering state.
type pythonLowering struct {
	program *graph.Program
	file    string
	module  string
	source  []byte
	locals  map[string]bool // variable names already declared in this unit
	class   string          // enclosing class qualifier, empty at module level
	err     error           // first graph construction error, aborts lowering
}

// add wraps Program.AddNode, filling in unit bookkeeping and recording the
// first construction error.
func (l *pythonLowering) add(n graph.Node, ts *sitter.Node, parent graph.NodeID) graph.NodeID {
	if l.err != nil {
		return 0
	}
	n.File = l.file
	if ts != nil {
		n.Line = nodeLine(ts)
		n.Column = nodeColumn(ts)
		if n.Code == "" {
			n.Code = extractNodeText(ts, l.source)
		}
	}
	id, err := l.program.AddNode(n)
	if err != nil {
		l.err = err
		return 0
	}
	if parent != 0 {
		if err := l.program.SetParent(id, parent); err != nil {
			l.err = err
		}
	}
	return id
}

// lowerBlock lowers the statements of a block, recursing into compound
// statements so branch bodies contribute assignments too.
func (l *pythonLowering) lowerBlock(block *sitter.Node, parent graph.NodeID, qualifier string) {
	for _, stmt := range namedChildren(block) {
		if l.err != nil {
			return
		}
		switch stmt.Kind() {
		case "import_statement", "import_from_statement":
			l.lowerImport(stmt, parent)
		case "class_definition":
			l.lowerClass(stmt, parent, qualifier)
		case "function_definition":
			l.lowerFunction(stmt, parent, qualifier)
		case "expression_statement":
			for _, expr := range namedChildren(stmt) {
				switch expr.Kind() {
				case "assignment", "augmented_assignment":
					l.lowerAssignment(expr, parent)
				case "call":
					l.lowerCall(expr, parent)
				case "attribute":
					l.lowerFieldAccess(expr, parent)
				}
			}
		case "decorated_definition":
			if def := stmt.ChildByFieldName("definition"); def != nil {
				switch def.Kind() {
				case "class_definition":
					l.lowerClass(def, parent, qualifier)
				case "function_definition":
					l.lowerFunction(def, parent, qualifier)
				}
			}
		default:
			// Compound statements (if/for/while/try/with): recurse so nested
			// assignments in every branch are visited in document order.
			l.lowerBlock(stmt, parent, qualifier)
		}
	}
}

// lowerImport lowers an import statement into one Import node per imported
// symbol, plus an assignment that binds the local alias so propagation can
// type the alias identifier.
func (l *pythonLowering) lowerImport(stmt *sitter.Node, parent graph.NodeID) {
	type binding struct {
		alias  string
		entity string
	}
	var bindings []binding

	switch stmt.Kind() {
	case "import_statement":
		for _, child := range namedChildren(stmt) {
			switch child.Kind() {
			case "dotted_name":
				entity := extractNodeText(child, l.source)
				// "import a.b" binds the package root "a".
				alias := entity
				if idx := strings.Index(entity, "."); idx >= 0 {
					alias = entity[:idx]
					entity = alias
				}
				bindings = append(bindings, binding{alias: alias, entity: entity})
			case "aliased_import":
				name := child.ChildByFieldName("name")
				alias := child.ChildByFieldName("alias")
				if name == nil || alias == nil {
					continue
				}
				bindings = append(bindings, binding{
					alias:  extractNodeText(alias, l.source),
					entity: extractNodeText(name, l.source),
				})
			}
		}

	case "import_from_statement":
		moduleNode := stmt.ChildByFieldName("module_name")
		if moduleNode == nil {
			return
		}
		module := extractNodeText(moduleNode, l.source)
		for _, child := range namedChildren(stmt) {
			if child.StartByte() == moduleNode.StartByte() {
				continue
			}
			switch child.Kind() {
			case "dotted_name":
				name := extractNodeText(child, l.source)
				bindings = append(bindings, binding{alias: name, entity: module + "." + name})
			case "aliased_import":
				name := child.ChildByFieldName("name")
				alias := child.ChildByFieldName("alias")
				if name == nil || alias == nil {
					continue
				}
				bindings = append(bindings, binding{
					alias:  extractNodeText(alias, l.source),
					entity: module + "." + extractNodeText(name, l.source),
				})
			}
		}
	}

	for _, b := range bindings {
		l.add(graph.Node{
			Kind:     graph.NodeImport,
			Name:     b.alias,
			FullName: b.entity,
		}, stmt, parent)

		// Bind the alias: "bar = <operator>.import(foo)". The propagation
		// hook copies the alias's resolved call-alias candidates onto the
		// identifier's scope key.
		assign := l.add(graph.Node{
			Kind: graph.NodeCall,
			Name: graph.AssignmentCall,
		}, stmt, parent)
		l.declareLocal(b.alias, stmt, parent)
		l.add(graph.Node{Kind: graph.NodeIdentifier, Name: b.alias}, stmt, assign)
		l.add(graph.Node{
			Kind: graph.NodeCall,
			Name: graph.ImportCall,
			Code: b.entity,
		}, stmt, assign)
	}
}

// lowerClass lowers a class definition to a Method node (its constructor
// alias) and recurses into the class body.
func (l *pythonLowering) lowerClass(stmt *sitter.Node, parent graph.NodeID, qualifier string) {
	nameNode := stmt.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, l.source)
	fullName := qualifier + "." + name

	classID := l.add(graph.Node{
		Kind:     graph.NodeMethod,
		Name:     name,
		FullName: fullName,
	}, stmt, parent)

	if body := stmt.ChildByFieldName("body"); body != nil {
		prevClass := l.class
		l.class = fullName
		l.lowerBlock(body, classID, fullName)
		l.class = prevClass
	}
}

// lowerFunction lowers a function or method definition.
func (l *pythonLowering) lowerFunction(stmt *sitter.Node, parent graph.NodeID, qualifier string) {
	nameNode := stmt.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, l.source)
	fullName := qualifier + "." + name

	methodID := l.add(graph.Node{
		Kind:     graph.NodeMethod,
		Name:     name,
		FullName: fullName,
	}, stmt, parent)

	if body := stmt.ChildByFieldName("body"); body != nil {
		l.lowerBlock(body, methodID, fullName)
	}
}

// lowerAssignment lowers "target = source" to an assignment call with the
// target as first and the source as second argument. Unrecognized target
// shapes are skipped.
func (l *pythonLowering) lowerAssignment(stmt *sitter.Node, parent graph.NodeID) {
	left := stmt.ChildByFieldName("left")
	right := stmt.ChildByFieldName("right")
	if left == nil || right == nil {
		return
	}

	switch left.Kind() {
	case "identifier":
		name := extractNodeText(left, l.source)
		l.declareLocal(name, stmt, parent)
		assign := l.add(graph.Node{
			Kind: graph.NodeCall,
			Name: graph.AssignmentCall,
		}, stmt, parent)
		l.add(graph.Node{Kind: graph.NodeIdentifier, Name: name}, left, assign)
		l.lowerExpression(right, assign)

	case "attribute":
		assign := l.add(graph.Node{
			Kind: graph.NodeCall,
			Name: graph.AssignmentCall,
		}, stmt, parent)
		l.add(graph.Node{
			Kind: graph.NodeFieldIdentifier,
			Name: l.canonicalFieldName(left),
		}, left, assign)
		l.lowerExpression(right, assign)
	}
}

// lowerExpression lowers one expression node as a child of the given parent.
func (l *pythonLowering) lowerExpression(expr *sitter.Node, parent graph.NodeID) {
	switch expr.Kind() {
	case "identifier":
		l.add(graph.Node{Kind: graph.NodeIdentifier, Name: extractNodeText(expr, l.source)}, expr, parent)
	case "call":
		l.lowerCall(expr, parent)
	case "attribute":
		l.lowerFieldAccess(expr, parent)
	case "lambda":
		l.add(graph.Node{Kind: graph.NodeMethodRef}, expr, parent)
	default:
		// Literals and everything else; the propagation hook only reacts to
		// literal kinds it knows.
		l.add(graph.Node{Kind: graph.NodeLiteral, Name: expr.Kind()}, expr, parent)
	}
}

// lowerCall lowers a call expression. Method calls on a plain identifier
// receiver put the receiver as first argument; the call name is the invoked
// attribute or function name.
func (l *pythonLowering) lowerCall(expr *sitter.Node, parent graph.NodeID) {
	fn := expr.ChildByFieldName("function")
	if fn == nil {
		return
	}

	var callID graph.NodeID
	switch fn.Kind() {
	case "identifier":
		callID = l.add(graph.Node{
			Kind: graph.NodeCall,
			Name: extractNodeText(fn, l.source),
		}, expr, parent)

	case "attribute":
		obj := fn.ChildByFieldName("object")
		attr := fn.ChildByFieldName("attribute")
		if obj == nil || attr == nil {
			return
		}
		callID = l.add(graph.Node{
			Kind: graph.NodeCall,
			Name: extractNodeText(attr, l.source),
		}, expr, parent)
		if obj.Kind() == "identifier" {
			l.add(graph.Node{Kind: graph.NodeIdentifier, Name: extractNodeText(obj, l.source)}, obj, callID)
		}

	default:
		return
	}

	if args := expr.ChildByFieldName("arguments"); args != nil {
		for _, arg := range namedChildren(args) {
			l.lowerExpression(arg, callID)
		}
	}
}

// lowerFieldAccess lowers "x.field" to a field-access call with the receiver
// first and the field selector second.
func (l *pythonLowering) lowerFieldAccess(expr *sitter.Node, parent graph.NodeID) {
	obj := expr.ChildByFieldName("object")
	attr := expr.ChildByFieldName("attribute")
	if obj == nil || attr == nil {
		return
	}

	callID := l.add(graph.Node{
		Kind: graph.NodeCall,
		Name: graph.FieldAccessCall,
	}, expr, parent)
	if obj.Kind() == "identifier" {
		l.add(graph.Node{Kind: graph.NodeIdentifier, Name: extractNodeText(obj, l.source)}, obj, callID)
	} else {
		l.lowerExpression(obj, callID)
	}
	l.add(graph.Node{
		Kind: graph.NodeFieldIdentifier,
		Name: l.canonicalFieldName(expr),
	}, attr, callID)
}

// declareLocal emits a Local node the first time a variable name appears in
// the unit.
func (l *pythonLowering) declareLocal(name string, ts *sitter.Node, parent graph.NodeID) {
	if l.locals[name] {
		return
	}
	l.locals[name] = true
	l.add(graph.Node{Kind: graph.NodeLocal, Name: name}, ts, parent)
}

// canonicalFieldName builds the dot-qualified member name for an attribute
// expression. Inside a class, "self.x" canonicalizes to the class qualifier.
func (l *pythonLowering) canonicalFieldName(attr *sitter.Node) string {
	text := extractNodeText(attr, l.source)
	if l.class != "" && strings.HasPrefix(text, "self.") {
		return l.class + strings.TrimPrefix(text, "self")
	}
	return l.module + "." + text
}
