package recovery

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/codetrail/typeweave/internal/graph"
)

// unitTask runs the full recovery lifecycle for one compilation unit:
// prepopulation, parallel procedure resolution, pruning, sequential
// assignment propagation, and persistence of results into the shared
// mutation batch. Phases are strictly ordered; no phase begins before the
// previous one has fully joined.
type unitTask struct {
	unit  *graph.CompilationUnit
	hooks LanguageHooks
	out   *graph.Mutations
}

func newUnitTask(unit *graph.CompilationUnit, hooks LanguageHooks, out *graph.Mutations) *unitTask {
	return &unitTask{unit: unit, hooks: hooks, out: out}
}

// Run executes all phases. The unit's symbol table is discarded on every
// exit path, including error returns, so no per-unit state survives the task.
func (t *unitTask) Run(ctx context.Context) error {
	table := NewSymbolTable()
	defer table.Discard()

	// Phase 1: prepopulate with externally known facts.
	if pre, ok := t.hooks.(Prepopulator); ok {
		pre.Prepopulate(table)
	}

	// Phase 2: resolve imports and internal methods in parallel. Resolvers
	// only union into the table, so completion order is irrelevant.
	if err := t.resolveDeclarations(ctx, table); err != nil {
		return fmt.Errorf("unit %s: %w", t.unit.File(), err)
	}

	// Phase 3: prune over-approximated call aliases against the graph.
	if pruner, ok := t.hooks.(Pruner); ok {
		pruner.PruneAgainstGraph(table)
	}

	// Phase 4: propagate through assignments, sequentially and in document
	// order. The hook may read entries written by earlier assignments.
	for _, assign := range t.unit.AssignmentNodes() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := t.hooks.PropagateAssignment(assign, table); err != nil {
			return fmt.Errorf("unit %s: propagation failed at line %d: %w", t.unit.File(), assign.Line, err)
		}
	}

	// Phase 5: persist recovered types into the mutation batch.
	if err := t.persist(table); err != nil {
		return fmt.Errorf("unit %s: %w", t.unit.File(), err)
	}

	return nil
}

// resolveDeclarations forks one resolver per import/method node and joins.
func (t *unitTask) resolveDeclarations(ctx context.Context, table *SymbolTable) error {
	worklist := append(t.unit.ImportNodes(), t.unit.InternalMethodNodes()...)
	if len(worklist) == 0 {
		return nil
	}

	resolver := &procedureResolver{hooks: t.hooks, table: table}

	g, ctx := errgroup.WithContext(ctx)
	for _, node := range worklist {
		node := node
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return resolver.resolve(node)
		})
	}
	return g.Wait()
}

// persist walks every node of the unit exactly once and writes type
// attributes for nodes the table has entries for. The identifier case
// analysis is ordered; the first matching case wins.
func (t *unitTask) persist(table *SymbolTable) error {
	var locals, identifiers, calls []*graph.Node
	t.unit.Walk(func(n *graph.Node) {
		switch n.Kind {
		case graph.NodeLocal:
			locals = append(locals, n)
		case graph.NodeIdentifier:
			identifiers = append(identifiers, n)
		case graph.NodeCall:
			calls = append(calls, n)
		}
	})

	// Locals keep their full candidate set as a hint: a local may take on
	// multiple types across control paths and must never be collapsed.
	for _, local := range locals {
		key, err := DeriveKey(local)
		if err != nil {
			return err
		}
		if candidates := table.Get(key); len(candidates) > 0 {
			t.out.SetTypeHints(local.ID, candidates)
		}
	}

	// Identifiers, examined together with their enclosing call. Calls
	// written here are excluded from the generic call pass below.
	covered := make(map[graph.NodeID]bool)
	for _, ident := range identifiers {
		key, err := DeriveKey(ident)
		if err != nil {
			return err
		}
		if !table.Contains(key) {
			continue
		}
		candidates := table.Get(key)
		if len(candidates) == 0 {
			continue
		}
		if err := t.persistIdentifier(table, ident, candidates, covered); err != nil {
			return err
		}
	}

	// Remaining calls with their own table entries.
	for _, call := range calls {
		if covered[call.ID] {
			continue
		}
		key, err := DeriveKey(call)
		if err != nil {
			return err
		}
		if candidates := table.Get(key); len(candidates) > 0 {
			t.write(call.ID, candidates)
		}
	}

	return nil
}

// persistIdentifier applies the ordered case analysis for one identifier
// with known candidates.
func (t *unitTask) persistIdentifier(table *SymbolTable, ident *graph.Node, candidates []string, covered map[graph.NodeID]bool) error {
	call := t.unit.EnclosingCall(ident.ID)
	if call == nil {
		// No matching call shape: the identifier keeps its own candidates.
		t.write(ident.ID, candidates)
		return nil
	}

	args := t.unit.Arguments(call)
	isTarget := len(args) >= 2 && args[0].ID == ident.ID
	isReceiver := len(args) >= 1 && args[0].ID == ident.ID

	switch {
	case call.Name == graph.AssignmentCall && isTarget && args[1].Kind == graph.NodeCall:
		// Assignment from a call: the source call keeps its own candidates.
		srcCall := args[1]
		srcKey, err := DeriveKey(srcCall)
		if err != nil {
			return err
		}
		callTypes := table.Get(srcKey)
		t.write(srcCall.ID, callTypes)
		covered[srcCall.ID] = true
		if equalSets(candidates, callTypes) {
			// Constructor / function-pointer case.
			t.write(ident.ID, callTypes)
		} else {
			// Ordinary return value: keep the identifier's own candidates.
			t.write(ident.ID, candidates)
		}

	case call.Name == graph.AssignmentCall && isTarget:
		// Assignment from a non-call source.
		t.write(ident.ID, candidates)
		t.write(call.ID, candidates)
		covered[call.ID] = true

	case call.Name != graph.AssignmentCall && call.Name != graph.FieldAccessCall && isReceiver:
		// Receiver of an ordinary call: the call falls back to the
		// receiver's candidates when it has none of its own.
		t.write(ident.ID, candidates)
		callKey, err := DeriveKey(call)
		if err != nil {
			return err
		}
		if callTypes := table.Get(callKey); len(callTypes) > 0 {
			t.write(call.ID, callTypes)
		} else {
			t.write(call.ID, candidates)
		}
		covered[call.ID] = true

	case call.Name == graph.FieldAccessCall && isTarget && args[1].Kind == graph.NodeFieldIdentifier:
		// Receiver of a field access: only the receiver is annotated.
		t.write(ident.ID, candidates)

	default:
		t.write(ident.ID, candidates)
	}

	return nil
}

// write queues candidates onto a node: one candidate becomes the exact type
// attribute, several become the type-hint attribute, none writes nothing.
func (t *unitTask) write(node graph.NodeID, candidates []string) {
	switch len(candidates) {
	case 0:
	case 1:
		t.out.SetType(node, candidates[0])
	default:
		t.out.SetTypeHints(node, candidates)
	}
}

// equalSets compares two sorted candidate slices.
func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
