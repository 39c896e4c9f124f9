package recovery

import (
	"sort"
	"sync"
)

// SymbolTable maps scope keys to candidate type full-names. It is safe for
// concurrent use by the parallel resolver tasks of a single compilation unit.
//
// Absence of a key means "no information", which callers must not conflate
// with an explicitly stored empty set. Each table is scoped to one
// compilation unit's recovery task and discarded when that task finishes.
type SymbolTable struct {
	mu      sync.RWMutex
	entries map[ScopeKey]map[string]struct{}
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{entries: make(map[ScopeKey]map[string]struct{})}
}

// Put overwrites the candidate set for a key unconditionally and returns the
// previous set, if any.
func (t *SymbolTable) Put(key ScopeKey, types []string) (previous []string, existed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.entries[key]; ok {
		previous = sortedSlice(old)
		existed = true
	}
	t.entries[key] = toSet(types)
	return previous, existed
}

// Append unions the given types into the key's candidate set and returns the
// merged set. Union is commutative, so concurrent appends to the same key
// converge to the same content regardless of ordering.
func (t *SymbolTable) Append(key ScopeKey, types []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.entries[key]
	if !ok {
		set = make(map[string]struct{}, len(types))
		t.entries[key] = set
	}
	for _, typ := range types {
		set[typ] = struct{}{}
	}
	return sortedSlice(set)
}

// Get returns the stored candidate set in sorted order, or an empty slice if
// the key is absent. Use Contains to distinguish the two.
func (t *SymbolTable) Get(key ScopeKey) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	set, ok := t.entries[key]
	if !ok {
		return []string{}
	}
	return sortedSlice(set)
}

// Contains reports whether the key is present, even with an empty set.
func (t *SymbolTable) Contains(key ScopeKey) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[key]
	return ok
}

// Keys returns all present keys in no particular order.
func (t *SymbolTable) Keys() []ScopeKey {
	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := make([]ScopeKey, 0, len(t.entries))
	for key := range t.entries {
		keys = append(keys, key)
	}
	return keys
}

// Len returns the number of keys present.
func (t *SymbolTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Discard releases the table's contents. The recovery task calls this on
// every exit path; using the table afterwards yields no information.
func (t *SymbolTable) Discard() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[ScopeKey]map[string]struct{})
}

func toSet(types []string) map[string]struct{} {
	set := make(map[string]struct{}, len(types))
	for _, typ := range types {
		set[typ] = struct{}{}
	}
	return set
}

func sortedSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for typ := range set {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}
