package recovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan for Procedure Declarations:
// - Equal compares calling name, full name, and constructor flag
// - Equal ignores the derived possible-callee-name hint
// - CandidateNames lists the full name before the alternates
// - CandidateNames omits an empty full name

func TestProcedureDeclaration_Equal(t *testing.T) {
	t.Parallel()

	base := ProcedureDeclaration{CallingName: "Thing.new", FullName: "app.Thing", IsConstructor: true}

	assert.True(t, base.Equal(ProcedureDeclaration{CallingName: "Thing.new", FullName: "app.Thing", IsConstructor: true}))
	assert.False(t, base.Equal(ProcedureDeclaration{CallingName: "Other.new", FullName: "app.Thing", IsConstructor: true}))
	assert.False(t, base.Equal(ProcedureDeclaration{CallingName: "Thing.new", FullName: "app.Other", IsConstructor: true}))
	assert.False(t, base.Equal(ProcedureDeclaration{CallingName: "Thing.new", FullName: "app.Thing", IsConstructor: false}))
}

func TestProcedureDeclaration_EqualIgnoresCalleeNames(t *testing.T) {
	t.Parallel()

	a := ProcedureDeclaration{CallingName: "Greeter", FullName: "app.Greeter"}
	b := ProcedureDeclaration{CallingName: "Greeter", FullName: "app.Greeter", PossibleCalleeNames: []string{"app.Greeter.__init__"}}

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
}

func TestProcedureDeclaration_CandidateNames(t *testing.T) {
	t.Parallel()

	decl := ProcedureDeclaration{
		CallingName:         "Greeter",
		FullName:            "app.Greeter",
		PossibleCalleeNames: []string{"app.Greeter.__init__"},
	}
	assert.Equal(t, []string{"app.Greeter", "app.Greeter.__init__"}, decl.CandidateNames())

	empty := ProcedureDeclaration{CallingName: "x", PossibleCalleeNames: []string{"app.x"}}
	assert.Equal(t, []string{"app.x"}, empty.CandidateNames())
}
