package frontend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codetrail/typeweave/internal/graph"
	"github.com/codetrail/typeweave/internal/recovery"
)

// Test Plan for the Python Frontend:
// - Imports lower to import nodes plus an alias binding
// - Classes and methods lower to method nodes with qualified full names
// - Assignments lower to assignment calls with target first, source second
// - Constructor assignments recover the class as exact type
// - Aliased imports recover the imported entity on the alias
// - Literal assignments recover builtin type names
// - Method calls on typed receivers resolve to the defined method

const pythonSample = `import foo as bar

class Greeter:
    def __init__(self):
        self.name = "hi"

    def speak(self):
        pass

g = Greeter()
g.speak()
n = 42
`

// lowerAndRecover lowers one source file and runs a full recovery pass.
func lowerAndRecover(t *testing.T, f Frontend, file, source string) *graph.CompilationUnit {
	t.Helper()

	p := graph.NewProgram()
	require.NoError(t, f.LowerFile(p, file, []byte(source)))

	hooks := map[string]recovery.LanguageHooks{f.Language(): f.Hooks(p)}
	_, err := recovery.NewOrchestrator(p, hooks).Run(context.Background())
	require.NoError(t, err)

	unit := p.Unit(file)
	require.NotNil(t, unit)
	return unit
}

// findNodes collects the unit's nodes of a kind and name in document order.
func findNodes(unit *graph.CompilationUnit, kind graph.NodeKind, name string) []*graph.Node {
	var nodes []*graph.Node
	unit.Walk(func(n *graph.Node) {
		if n.Kind == kind && n.Name == name {
			nodes = append(nodes, n)
		}
	})
	return nodes
}

func TestPythonFrontend_LowersDeclarations(t *testing.T) {
	t.Parallel()

	f := NewPythonFrontend()
	p := graph.NewProgram()
	require.NoError(t, f.LowerFile(p, "app.py", []byte(pythonSample)))

	unit := p.Unit("app.py")
	require.NotNil(t, unit)
	assert.Equal(t, "python", unit.Language())

	imports := unit.ImportNodes()
	require.Len(t, imports, 1)
	assert.Equal(t, "bar", imports[0].Name)
	assert.Equal(t, "foo", imports[0].FullName)

	assert.True(t, p.HasMethodWithFullName("app.Greeter"))
	assert.True(t, p.HasMethodWithFullName("app.Greeter.__init__"))
	assert.True(t, p.HasMethodWithFullName("app.Greeter.speak"))

	// Assignments: alias binding, self.name, g = Greeter(), n = 42.
	assert.Len(t, unit.AssignmentNodes(), 4)
}

func TestPythonFrontend_RecoversConstructorType(t *testing.T) {
	t.Parallel()

	unit := lowerAndRecover(t, NewPythonFrontend(), "app.py", pythonSample)

	locals := findNodes(unit, graph.NodeLocal, "g")
	require.Len(t, locals, 1)
	assert.Equal(t, []string{"app.Greeter"}, locals[0].TypeHints)

	ctors := findNodes(unit, graph.NodeCall, "Greeter")
	require.Len(t, ctors, 1)
	assert.Equal(t, "app.Greeter", ctors[0].TypeFullName)

	for _, ident := range findNodes(unit, graph.NodeIdentifier, "g") {
		assert.Equal(t, "app.Greeter", ident.TypeFullName)
	}
}

func TestPythonFrontend_RecoversImportAlias(t *testing.T) {
	t.Parallel()

	unit := lowerAndRecover(t, NewPythonFrontend(), "app.py", pythonSample)

	locals := findNodes(unit, graph.NodeLocal, "bar")
	require.Len(t, locals, 1)
	assert.Equal(t, []string{"foo"}, locals[0].TypeHints)

	idents := findNodes(unit, graph.NodeIdentifier, "bar")
	require.NotEmpty(t, idents)
	assert.Equal(t, "foo", idents[0].TypeFullName)
}

func TestPythonFrontend_RecoversLiteralType(t *testing.T) {
	t.Parallel()

	unit := lowerAndRecover(t, NewPythonFrontend(), "app.py", pythonSample)

	locals := findNodes(unit, graph.NodeLocal, "n")
	require.Len(t, locals, 1)
	assert.Equal(t, []string{"int"}, locals[0].TypeHints)
}

func TestPythonFrontend_ResolvesMethodCallOnReceiver(t *testing.T) {
	t.Parallel()

	unit := lowerAndRecover(t, NewPythonFrontend(), "app.py", pythonSample)

	calls := findNodes(unit, graph.NodeCall, "speak")
	require.Len(t, calls, 1)
	assert.Equal(t, "app.Greeter.speak", calls[0].TypeFullName)
}

func TestPythonFrontend_BranchesUnionIntoHints(t *testing.T) {
	t.Parallel()

	source := `class A:
    pass

class B:
    pass

if True:
    v = A()
else:
    v = B()
`
	unit := lowerAndRecover(t, NewPythonFrontend(), "app.py", source)

	locals := findNodes(unit, graph.NodeLocal, "v")
	require.Len(t, locals, 1)
	assert.Equal(t, []string{"app.A", "app.B"}, locals[0].TypeHints)
	assert.Empty(t, locals[0].TypeFullName)
}

func TestPythonFrontend_FieldAccessTypesReceiverOnly(t *testing.T) {
	t.Parallel()

	source := `class Thing:
    pass

v = Thing()
v.size
`
	unit := lowerAndRecover(t, NewPythonFrontend(), "app.py", source)

	idents := findNodes(unit, graph.NodeIdentifier, "v")
	require.Len(t, idents, 2)
	for _, ident := range idents {
		assert.Equal(t, "app.Thing", ident.TypeFullName)
	}

	accesses := findNodes(unit, graph.NodeCall, graph.FieldAccessCall)
	require.Len(t, accesses, 1)
	assert.Empty(t, accesses[0].TypeFullName)
	assert.Empty(t, accesses[0].TypeHints)
}

func TestPythonFrontend_UnknownSourceLeavesNoType(t *testing.T) {
	t.Parallel()

	unit := lowerAndRecover(t, NewPythonFrontend(), "app.py", "v = mystery()\n")

	locals := findNodes(unit, graph.NodeLocal, "v")
	require.Len(t, locals, 1)
	assert.Empty(t, locals[0].TypeHints)
	assert.Empty(t, locals[0].TypeFullName)
}
