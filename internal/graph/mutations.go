package graph

import (
	"fmt"
	"sync"
)

// Mutations accumulates type-attribute edits from concurrent recovery tasks
// and applies them to the program graph as one batch. Edits are write-only
// until Apply so partial results are never visible mid-run.
type Mutations struct {
	mu    sync.Mutex
	edits []edit
}

type edit struct {
	node  NodeID
	exact string
	hints []string
}

// NewMutations creates an empty mutation batch.
func NewMutations() *Mutations {
	return &Mutations{}
}

// SetType queues an exact single-valued type attribute for a node.
func (m *Mutations) SetType(node NodeID, typeFullName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, edit{node: node, exact: typeFullName})
}

// SetTypeHints queues a multi-candidate type-hint attribute for a node.
func (m *Mutations) SetTypeHints(node NodeID, typeFullNames []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hints := make([]string, len(typeFullNames))
	copy(hints, typeFullNames)
	m.edits = append(m.edits, edit{node: node, hints: hints})
}

// Len returns the number of queued edits.
func (m *Mutations) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.edits)
}

// Apply writes all queued edits onto the program graph. The batch is left
// intact on error so the caller can inspect it; nothing is written if any
// edit references an unknown node.
func (m *Mutations) Apply(p *Program) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.edits {
		if _, ok := p.nodes[e.node]; !ok {
			return 0, fmt.Errorf("mutation references unknown node %d", e.node)
		}
	}

	for _, e := range m.edits {
		n := p.nodes[e.node]
		if e.exact != "" {
			n.TypeFullName = e.exact
			n.TypeHints = nil
		} else {
			n.TypeHints = e.hints
			n.TypeFullName = ""
		}
	}

	applied := len(m.edits)
	m.edits = nil
	return applied, nil
}
