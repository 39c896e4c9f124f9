package frontend

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tsruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"

	"github.com/codetrail/typeweave/internal/graph"
	"github.com/codetrail/typeweave/internal/recovery"
)

// rubyFrontend lowers Ruby files into the program graph. It covers the
// shapes type recovery feeds on: requires, class and method definitions,
// assignments, and method calls.
type rubyFrontend struct {
	language *sitter.Language
}

// NewRubyFrontend creates the Ruby frontend.
func NewRubyFrontend() Frontend {
	return &rubyFrontend{language: sitter.NewLanguage(tsruby.Language())}
}

func (f *rubyFrontend) Language() string     { return "ruby" }
func (f *rubyFrontend) Extensions() []string { return []string{".rb"} }

func (f *rubyFrontend) Hooks(p *graph.Program) recovery.LanguageHooks {
	return &rubyHooks{program: p}
}

// LowerFile parses one Ruby source file and lowers it into graph nodes.
func (f *rubyFrontend) LowerFile(p *graph.Program, path string, source []byte) error {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(f.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return fmt.Errorf("failed to parse ruby file: %s", path)
	}
	defer tree.Close()

	module := strings.TrimSuffix(filepath.Base(path), ".rb")
	p.AddUnit(path, f.Language())

	l := &rubyLowering{
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

type rubyLowering struct {
	program *graph.Program
	file    string
	module  string
	source  []byte
	locals  map[string]bool
	class   string
	err     error
}

func (l *rubyLowering) add(n graph.Node, ts *sitter.Node, parent graph.NodeID) graph.NodeID {
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

func (l *rubyLowering) lowerBlock(block *sitter.Node, parent graph.NodeID, qualifier string) {
	for _, stmt := range namedChildren(block) {
		if l.err != nil {
			return
		}
		switch stmt.Kind() {
		case "class":
			l.lowerClass(stmt, parent, qualifier)
		case "method":
			l.lowerMethod(stmt, parent, qualifier)
		case "assignment":
			l.lowerAssignment(stmt, parent)
		case "call":
			l.lowerCall(stmt, parent)
		default:
			// if/unless/while/case and other compound statements.
			l.lowerBlock(stmt, parent, qualifier)
		}
	}
}

func (l *rubyLowering) lowerClass(stmt *sitter.Node, parent graph.NodeID, qualifier string) {
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

func (l *rubyLowering) lowerMethod(stmt *sitter.Node, parent graph.NodeID, qualifier string) {
	nameNode := stmt.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, l.source)

	methodID := l.add(graph.Node{
		Kind:     graph.NodeMethod,
		Name:     name,
		FullName: qualifier + "." + name,
	}, stmt, parent)

	if body := stmt.ChildByFieldName("body"); body != nil {
		l.lowerBlock(body, methodID, qualifier+"."+name)
	}
}

func (l *rubyLowering) lowerAssignment(stmt *sitter.Node, parent graph.NodeID) {
	left := stmt.ChildByFieldName("left")
	right := stmt.ChildByFieldName("right")
	if left == nil || right == nil {
		return
	}

	switch left.Kind() {
	case "identifier":
		name := extractNodeText(left, l.source)
		if !l.locals[name] {
			l.locals[name] = true
			l.add(graph.Node{Kind: graph.NodeLocal, Name: name}, stmt, parent)
		}
		assign := l.add(graph.Node{Kind: graph.NodeCall, Name: graph.AssignmentCall}, stmt, parent)
		l.add(graph.Node{Kind: graph.NodeIdentifier, Name: name}, left, assign)
		l.lowerExpression(right, assign)

	case "instance_variable":
		assign := l.add(graph.Node{Kind: graph.NodeCall, Name: graph.AssignmentCall}, stmt, parent)
		canonical := l.module + "." + extractNodeText(left, l.source)
		if l.class != "" {
			canonical = l.class + "." + extractNodeText(left, l.source)
		}
		l.add(graph.Node{Kind: graph.NodeFieldIdentifier, Name: canonical}, left, assign)
		l.lowerExpression(right, assign)
	}
}

func (l *rubyLowering) lowerExpression(expr *sitter.Node, parent graph.NodeID) {
	switch expr.Kind() {
	case "identifier":
		l.add(graph.Node{Kind: graph.NodeIdentifier, Name: extractNodeText(expr, l.source)}, expr, parent)
	case "call":
		l.lowerCall(expr, parent)
	default:
		l.add(graph.Node{Kind: graph.NodeLiteral, Name: expr.Kind()}, expr, parent)
	}
}

// lowerCall lowers a Ruby call. Constructor calls on a constant receiver
// keep the written invocation name ("Thing.new") so each constructor gets
// its own call alias; requires become import nodes.
func (l *rubyLowering) lowerCall(expr *sitter.Node, parent graph.NodeID) {
	methodNode := expr.ChildByFieldName("method")
	if methodNode == nil {
		return
	}
	method := extractNodeText(methodNode, l.source)
	receiver := expr.ChildByFieldName("receiver")

	if receiver == nil && (method == "require" || method == "require_relative") {
		l.lowerRequire(expr, parent)
		return
	}

	var callID graph.NodeID
	switch {
	case receiver == nil:
		callID = l.add(graph.Node{Kind: graph.NodeCall, Name: method}, expr, parent)

	case receiver.Kind() == "constant":
		callID = l.add(graph.Node{
			Kind: graph.NodeCall,
			Name: extractNodeText(receiver, l.source) + "." + method,
		}, expr, parent)

	case receiver.Kind() == "identifier":
		callID = l.add(graph.Node{Kind: graph.NodeCall, Name: method}, expr, parent)
		l.add(graph.Node{Kind: graph.NodeIdentifier, Name: extractNodeText(receiver, l.source)}, receiver, callID)

	default:
		callID = l.add(graph.Node{Kind: graph.NodeCall, Name: method}, expr, parent)
	}

	if args := expr.ChildByFieldName("arguments"); args != nil {
		for _, arg := range namedChildren(args) {
			l.lowerExpression(arg, callID)
		}
	}
}

// lowerRequire lowers "require 'foo/bar'" to an import of path foo/bar with
// calling name bar.
func (l *rubyLowering) lowerRequire(expr *sitter.Node, parent graph.NodeID) {
	args := expr.ChildByFieldName("arguments")
	if args == nil {
		return
	}
	children := namedChildren(args)
	if len(children) == 0 || children[0].Kind() != "string" {
		return
	}

	path := strings.Trim(extractNodeText(children[0], l.source), `"'`)
	if path == "" {
		return
	}
	name := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		name = path[idx+1:]
	}

	l.add(graph.Node{
		Kind:     graph.NodeImport,
		Name:     name,
		FullName: path,
	}, expr, parent)
}
