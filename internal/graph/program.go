package graph

import (
	"fmt"
	"sort"

	"github.com/dominikbraun/graph"
)

// Program holds the full program graph for one analysis run. Frontends build
// it single-threaded per file; during recovery it is read-only and all writes
// go through a Mutations batch.
type Program struct {
	nodes  map[NodeID]*Node
	order  []NodeID            // insertion order, document order within a file
	units  map[string][]NodeID // file path -> node IDs in document order
	langs  map[string]string   // file path -> language
	ast    graph.Graph[int64, int64]
	nextID NodeID

	methodsByFullName map[string][]NodeID
}

// NewProgram creates an empty program graph. AST edges are tracked in a
// directed acyclic graph so malformed frontend output (dangling parents,
// containment cycles) is rejected at construction time.
func NewProgram() *Program {
	return &Program{
		nodes:             make(map[NodeID]*Node),
		units:             make(map[string][]NodeID),
		langs:             make(map[string]string),
		ast:               graph.New(func(id int64) int64 { return id }, graph.Directed(), graph.PreventCycles()),
		methodsByFullName: make(map[string][]NodeID),
	}
}

// AddUnit registers a compilation unit (one source file) and its language.
func (p *Program) AddUnit(file, language string) {
	if _, ok := p.units[file]; !ok {
		p.units[file] = []NodeID{}
	}
	p.langs[file] = language
}

// AddNode adds a node to the program and assigns it an ID.
// The node's File must name a registered compilation unit.
func (p *Program) AddNode(n Node) (NodeID, error) {
	if _, ok := p.units[n.File]; !ok {
		return 0, fmt.Errorf("unknown compilation unit %q", n.File)
	}

	p.nextID++
	n.ID = p.nextID
	p.nodes[n.ID] = &n
	p.order = append(p.order, n.ID)
	p.units[n.File] = append(p.units[n.File], n.ID)

	if err := p.ast.AddVertex(int64(n.ID)); err != nil {
		return 0, fmt.Errorf("failed to add node %d: %w", n.ID, err)
	}

	if n.Kind == NodeMethod && n.FullName != "" {
		p.methodsByFullName[n.FullName] = append(p.methodsByFullName[n.FullName], n.ID)
	}

	return n.ID, nil
}

// SetParent records an AST containment edge from parent to child and appends
// the child to the parent's ordered child list.
func (p *Program) SetParent(child, parent NodeID) error {
	c, ok := p.nodes[child]
	if !ok {
		return fmt.Errorf("unknown child node %d", child)
	}
	pa, ok := p.nodes[parent]
	if !ok {
		return fmt.Errorf("unknown parent node %d", parent)
	}

	// PreventCycles makes the underlying graph reject containment loops.
	if err := p.ast.AddEdge(int64(parent), int64(child)); err != nil {
		return fmt.Errorf("invalid AST edge %d -> %d: %w", parent, child, err)
	}

	c.Parent = parent
	pa.Children = append(pa.Children, child)
	return nil
}

// Node returns the node with the given ID.
func (p *Program) Node(id NodeID) (*Node, bool) {
	n, ok := p.nodes[id]
	return n, ok
}

// NodeCount returns the number of nodes in the program.
func (p *Program) NodeCount() int {
	return len(p.nodes)
}

// HasMethodWithFullName reports whether a method definition with the given
// fully qualified name exists anywhere in the program. Used by pruning hooks.
func (p *Program) HasMethodWithFullName(fullName string) bool {
	return len(p.methodsByFullName[fullName]) > 0
}

// Units returns all compilation units in deterministic (file path) order.
func (p *Program) Units() []*CompilationUnit {
	files := make([]string, 0, len(p.units))
	for file := range p.units {
		files = append(files, file)
	}
	sort.Strings(files)

	units := make([]*CompilationUnit, 0, len(files))
	for _, file := range files {
		units = append(units, p.Unit(file))
	}
	return units
}

// Unit returns the compilation unit for the given file, or nil if unknown.
func (p *Program) Unit(file string) *CompilationUnit {
	if _, ok := p.units[file]; !ok {
		return nil
	}
	return &CompilationUnit{program: p, file: file}
}

// CompilationUnit is a handle onto one source file's slice of the program
// graph. Recovery runs independently per unit.
type CompilationUnit struct {
	program *Program
	file    string
}

// File returns the unit's source file path.
func (u *CompilationUnit) File() string { return u.file }

// Language returns the unit's source language.
func (u *CompilationUnit) Language() string { return u.program.langs[u.file] }

// Program returns the owning program graph.
func (u *CompilationUnit) Program() *Program { return u.program }

// ImportNodes returns the unit's import statement nodes in document order.
func (u *CompilationUnit) ImportNodes() []*Node {
	return u.nodesOfKind(NodeImport)
}

// InternalMethodNodes returns the unit's method definition nodes in document
// order.
func (u *CompilationUnit) InternalMethodNodes() []*Node {
	return u.nodesOfKind(NodeMethod)
}

// AssignmentNodes returns the unit's assignment calls in document order.
func (u *CompilationUnit) AssignmentNodes() []*Node {
	var nodes []*Node
	for _, id := range u.program.units[u.file] {
		n := u.program.nodes[id]
		if n.Kind == NodeCall && n.Name == AssignmentCall {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Walk visits every node of the unit exactly once in document order.
func (u *CompilationUnit) Walk(visit func(*Node)) {
	for _, id := range u.program.units[u.file] {
		visit(u.program.nodes[id])
	}
}

// EnclosingCall returns the nearest call node enclosing the given node, or
// nil if the node is not part of a call.
func (u *CompilationUnit) EnclosingCall(id NodeID) *Node {
	n, ok := u.program.nodes[id]
	if !ok {
		return nil
	}
	for n.Parent != 0 {
		parent, ok := u.program.nodes[n.Parent]
		if !ok {
			return nil
		}
		if parent.Kind == NodeCall {
			return parent
		}
		n = parent
	}
	return nil
}

// Arguments returns a call node's argument nodes in document order.
func (u *CompilationUnit) Arguments(call *Node) []*Node {
	args := make([]*Node, 0, len(call.Children))
	for _, id := range call.Children {
		args = append(args, u.program.nodes[id])
	}
	return args
}

func (u *CompilationUnit) nodesOfKind(kind NodeKind) []*Node {
	var nodes []*Node
	for _, id := range u.program.units[u.file] {
		if n := u.program.nodes[id]; n.Kind == kind {
			nodes = append(nodes, n)
		}
	}
	return nodes
}
