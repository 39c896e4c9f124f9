package graph

// NodeID uniquely identifies a node within a Program.
type NodeID int64

// NodeKind represents the kind of a program-graph node.
type NodeKind string

const (
	NodeFile            NodeKind = "file"
	NodeImport          NodeKind = "import"
	NodeMethod          NodeKind = "method"
	NodeMethodRef       NodeKind = "method_ref"
	NodeLocal           NodeKind = "local"
	NodeIdentifier      NodeKind = "identifier"
	NodeCall            NodeKind = "call"
	NodeFieldIdentifier NodeKind = "field_identifier"
	NodeLiteral         NodeKind = "literal"
)

// Operator call names. Assignments and member accesses are lowered to calls
// with these reserved names so the recovery core can treat them uniformly.
const (
	AssignmentCall  = "<operator>.assignment"
	FieldAccessCall = "<operator>.fieldAccess"
	ImportCall      = "<operator>.import"
)

// Node represents a single program-graph entity with its source location.
// Children are stored in document order; argument positions of a call are its
// children in order.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name"`      // Calling/variable name; canonical dotted name for field identifiers
	FullName string   `json:"full_name"` // Fully qualified name (methods, imports)
	Code     string   `json:"code"`      // Source text of the node
	File     string   `json:"file"`      // Relative file path (compilation unit)
	Line     int      `json:"line"`      // 1-indexed start line
	Column   int      `json:"column"`    // 0 if unknown
	Parent   NodeID   `json:"parent"`    // 0 means no parent
	Children []NodeID `json:"children,omitempty"`

	// Recovered type information, written only by Mutations.Apply.
	TypeFullName string   `json:"type_full_name,omitempty"` // Exact single type
	TypeHints    []string `json:"type_hints,omitempty"`     // Multi-candidate hint
}

// Location represents a source position.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}
