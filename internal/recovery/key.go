package recovery

import (
	"errors"
	"fmt"

	"github.com/codetrail/typeweave/internal/graph"
)

// ErrUnsupportedNodeKind is returned when a scope key is requested for a node
// kind the recovery core does not index. This is an integration error, not a
// recoverable condition.
var ErrUnsupportedNodeKind = errors.New("unsupported node kind for scope key derivation")

// KeyKind discriminates the variants of a scope key.
type KeyKind string

const (
	// KeyLocalVar identifies a variable by name within a lexical scope.
	KeyLocalVar KeyKind = "local"
	// KeyFieldVar identifies a member by its canonical dot-qualified name.
	KeyFieldVar KeyKind = "field"
	// KeyCallAlias identifies a callable by the name used to invoke it.
	KeyCallAlias KeyKind = "call"
)

// ScopeKey is the canonical symbol-table index for a variable, field, or
// callable. Keys are comparable and safe to use as map keys.
type ScopeKey struct {
	Kind KeyKind
	Name string
}

// LocalVarKey returns the scope key for a variable name.
func LocalVarKey(name string) ScopeKey { return ScopeKey{Kind: KeyLocalVar, Name: name} }

// FieldVarKey returns the scope key for a canonical member name.
func FieldVarKey(name string) ScopeKey { return ScopeKey{Kind: KeyFieldVar, Name: name} }

// CallAliasKey returns the scope key for a callable's calling name.
func CallAliasKey(name string) ScopeKey { return ScopeKey{Kind: KeyCallAlias, Name: name} }

// String returns a readable form, e.g. "local:count".
func (k ScopeKey) String() string {
	return fmt.Sprintf("%s:%s", k.Kind, k.Name)
}

// DeriveKey derives the canonical scope key for a graph node. Derivation is
// total over the supported node kinds and deterministic; any other kind is a
// programming error and fails loudly.
func DeriveKey(n *graph.Node) (ScopeKey, error) {
	switch n.Kind {
	case graph.NodeLocal, graph.NodeIdentifier:
		return LocalVarKey(n.Name), nil
	case graph.NodeFieldIdentifier:
		return FieldVarKey(n.Name), nil
	case graph.NodeCall, graph.NodeMethod:
		return CallAliasKey(n.Name), nil
	case graph.NodeMethodRef:
		return CallAliasKey(n.Code), nil
	default:
		return ScopeKey{}, fmt.Errorf("%w: %s (node %d)", ErrUnsupportedNodeKind, n.Kind, n.ID)
	}
}
