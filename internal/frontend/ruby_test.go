package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codetrail/typeweave/internal/graph"
)

// Test Plan for the Ruby Frontend:
// - Requires lower to import nodes named after the path's last segment
// - Classes and defs lower to method nodes with qualified full names
// - Constructor calls keep the written invocation name "Thing.new"
// - Constructor assignments recover the class as exact type
// - Literal assignments recover Ruby core type names
// - Method calls on typed receivers resolve to the defined method
// - Diverging branches union into type hints

const rubySample = `require 'json'

class Thing
  def initialize
  end

  def speak
  end
end

v = Thing.new()
v.speak()
n = 42
`

func TestRubyFrontend_LowersDeclarations(t *testing.T) {
	t.Parallel()

	f := NewRubyFrontend()
	p := graph.NewProgram()
	require.NoError(t, f.LowerFile(p, "app.rb", []byte(rubySample)))

	unit := p.Unit("app.rb")
	require.NotNil(t, unit)
	assert.Equal(t, "ruby", unit.Language())

	imports := unit.ImportNodes()
	require.Len(t, imports, 1)
	assert.Equal(t, "json", imports[0].Name)
	assert.Equal(t, "json", imports[0].FullName)

	assert.True(t, p.HasMethodWithFullName("app.Thing"))
	assert.True(t, p.HasMethodWithFullName("app.Thing.initialize"))
	assert.True(t, p.HasMethodWithFullName("app.Thing.speak"))
}

func TestRubyFrontend_RequirePathKeepsLastSegment(t *testing.T) {
	t.Parallel()

	f := NewRubyFrontend()
	p := graph.NewProgram()
	require.NoError(t, f.LowerFile(p, "app.rb", []byte("require 'active_support/core_ext'\n")))

	imports := p.Unit("app.rb").ImportNodes()
	require.Len(t, imports, 1)
	assert.Equal(t, "core_ext", imports[0].Name)
	assert.Equal(t, "active_support/core_ext", imports[0].FullName)
}

func TestRubyFrontend_RecoversConstructorType(t *testing.T) {
	t.Parallel()

	unit := lowerAndRecover(t, NewRubyFrontend(), "app.rb", rubySample)

	locals := findNodes(unit, graph.NodeLocal, "v")
	require.Len(t, locals, 1)
	assert.Equal(t, []string{"app.Thing"}, locals[0].TypeHints)

	ctors := findNodes(unit, graph.NodeCall, "Thing.new")
	require.Len(t, ctors, 1)
	assert.Equal(t, "app.Thing", ctors[0].TypeFullName)

	for _, ident := range findNodes(unit, graph.NodeIdentifier, "v") {
		assert.Equal(t, "app.Thing", ident.TypeFullName)
	}
}

func TestRubyFrontend_RecoversLiteralType(t *testing.T) {
	t.Parallel()

	unit := lowerAndRecover(t, NewRubyFrontend(), "app.rb", rubySample)

	locals := findNodes(unit, graph.NodeLocal, "n")
	require.Len(t, locals, 1)
	assert.Equal(t, []string{"Integer"}, locals[0].TypeHints)
}

func TestRubyFrontend_ResolvesMethodCallOnReceiver(t *testing.T) {
	t.Parallel()

	unit := lowerAndRecover(t, NewRubyFrontend(), "app.rb", rubySample)

	calls := findNodes(unit, graph.NodeCall, "speak")
	require.Len(t, calls, 1)
	assert.Equal(t, "app.Thing.speak", calls[0].TypeFullName)
}

func TestRubyFrontend_BranchesUnionIntoHints(t *testing.T) {
	t.Parallel()

	source := `class A
end

class B
end

if rand > 0.5
  v = A.new()
else
  v = B.new()
end
`
	unit := lowerAndRecover(t, NewRubyFrontend(), "app.rb", source)

	locals := findNodes(unit, graph.NodeLocal, "v")
	require.Len(t, locals, 1)
	assert.Equal(t, []string{"app.A", "app.B"}, locals[0].TypeHints)
	assert.Empty(t, locals[0].TypeFullName)
}

func TestRubyFrontend_UnknownSourceLeavesNoType(t *testing.T) {
	t.Parallel()

	unit := lowerAndRecover(t, NewRubyFrontend(), "app.rb", "v = mystery()\n")

	locals := findNodes(unit, graph.NodeLocal, "v")
	require.Len(t, locals, 1)
	assert.Empty(t, locals[0].TypeHints)
	assert.Empty(t, locals[0].TypeFullName)
}
