package recovery

// ProcedureDeclaration describes how a callable is reachable within a scope:
// the name it is invoked by, the fully qualified name it resolves to, and an
// over-approximate set of alternate full names that a later pruning step may
// narrow against the graph.
type ProcedureDeclaration struct {
	CallingName   string
	FullName      string
	IsConstructor bool

	// PossibleCalleeNames is a derived hint and excluded from equality.
	PossibleCalleeNames []string
}

// Equal reports whether two declarations denote the same procedure.
// PossibleCalleeNames is an over-approximation pruned later and does not
// participate.
func (d ProcedureDeclaration) Equal(other ProcedureDeclaration) bool {
	return d.CallingName == other.CallingName &&
		d.FullName == other.FullName &&
		d.IsConstructor == other.IsConstructor
}

// CandidateNames returns the full name plus all possible callee names,
// the set the resolver writes under the declaration's call alias.
func (d ProcedureDeclaration) CandidateNames() []string {
	names := make([]string, 0, len(d.PossibleCalleeNames)+1)
	if d.FullName != "" {
		names = append(names, d.FullName)
	}
	names = append(names, d.PossibleCalleeNames...)
	return names
}
