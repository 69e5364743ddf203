package sema

import (
	"errors"
	"strings"
	"testing"

	"github.com/grove-lang/grove/internal/ast"
	"github.com/grove-lang/grove/internal/diagnostics"
	"github.com/grove-lang/grove/internal/lexer/token"
	"github.com/grove-lang/grove/internal/parser"
	"github.com/grove-lang/grove/internal/scope"
	"github.com/grove-lang/grove/internal/types"
	"github.com/nalgeon/be"
)

func parseModule(t *testing.T, src string) (*Module, *diagnostics.Collector) {
	t.Helper()
	collector := diagnostics.New()
	tree, err := parser.ParseSource("", []byte(src), collector)
	be.Err(t, err, nil)
	return NewModule(tree), collector
}

func resolveSource(t *testing.T, src string) (*Module, *diagnostics.Collector, error) {
	t.Helper()
	module, collector := parseModule(t, src)
	err := New(module, collector).Resolve()
	return module, collector, err
}

// findDecl returns the n-th node (zero based) of kind called name.
func findDecl(m *Module, kind ast.NodeKind, name string, n int) ast.NodeID {
	for _, node := range m.Tree.Nodes {
		if node.Kind == kind && node.Name() == name {
			if n == 0 {
				return node.ID
			}
			n--
		}
	}
	return ast.NoNode
}

func diagKind(t *testing.T, err error) diagnostics.Kind {
	t.Helper()
	var diag *diagnostics.Diag
	be.True(t, errors.As(err, &diag))
	return diag.Kind
}

func TestResolvePointClass(t *testing.T) {
	m, collector, err := resolveSource(t, "class Point { x: int32; y: int32 }")
	be.Err(t, err, nil)
	be.Equal(t, len(collector.Diags), 0)

	class := findDecl(m, ast.KIND_CLASS_DECL, "Point", 0)
	node := m.Node(class)
	be.True(t, node.IsResolved())
	be.True(t, node.Type.IsReference())
	be.Equal(t, node.Type.String(), "Point&")

	classType := types.ClassOf(node.Type)
	be.Equal(t, classType.Name, "Point")
	be.Equal(t, len(classType.Members), 2)
	be.True(t, classType.Members[0].Is(types.INT32))
	be.True(t, classType.Members[1].Is(types.INT32))

	id, ok := m.ClassDecl(node.Type)
	be.True(t, ok)
	be.Equal(t, id, class)

	sym, ok := m.Global.LookupCurrent("Point")
	be.True(t, ok)
	be.Equal(t, sym.Kind, scope.SYMBOL_CLASS)

	y, ok := m.Member(class, "y")
	be.True(t, ok)
	be.Equal(t, y.Index, 1)

	// every node is resolved and carries a type
	for _, node := range m.Tree.Nodes {
		be.True(t, node.IsResolved())
		be.True(t, node.Type != nil)
	}
}

func TestDefaultConstructor(t *testing.T) {
	m, _, err := resolveSource(t, "class Point { x: int32; y: int32 }")
	be.Err(t, err, nil)

	class := findDecl(m, ast.KIND_CLASS_DECL, "Point", 0)
	ctors := m.Ctors[class]
	be.Equal(t, len(ctors), 1)
	ctor := ctors[0]

	// spliced right after the class
	root := m.Node(m.Tree.Root)
	be.Equal(t, root.Children, []ast.NodeID{class, ctor})

	params := m.Tree.Params(ctor)
	be.Equal(t, len(params), 1)
	this := m.Node(params[0])
	be.Equal(t, this.Name(), "this")
	be.Equal(t, this.Type.String(), "Point&*")

	body := m.Node(m.Tree.Body(ctor))
	be.Equal(t, len(body.Children), 1)
	ret := m.Node(body.Children[0])
	be.Equal(t, ret.Kind, ast.KIND_RETURN_STMT)
	be.Equal(t, len(ret.Children), 0)

	fn := m.Node(ctor).Type.T.(*types.Function)
	be.True(t, fn.Ret.IsVoid())

	// constructors are reached through their class, never by name
	sym, ok := m.Global.LookupCurrent("Point")
	be.True(t, ok)
	be.Equal(t, ast.NodeID(sym.Decl), class)
}

func TestForwardingConstructor(t *testing.T) {
	src := `
class Point {
	x: int32;
	y: int32;
	def Point(x: int32, y: int32) {
		this.x = x
		this.y = y
	}
}`
	m, _, err := resolveSource(t, src)
	be.Err(t, err, nil)

	class := findDecl(m, ast.KIND_CLASS_DECL, "Point", 0)
	method := findDecl(m, ast.KIND_METHOD_DECL, "Point", 0)
	ctors := m.Ctors[class]
	be.Equal(t, len(ctors), 1)
	ctor := ctors[0]

	// receiver first, then the copied parameters
	var names []string
	for _, param := range m.Tree.Params(ctor) {
		names = append(names, m.Node(param).Name())
	}
	be.Equal(t, names, []string{"this", "x", "y"})
	be.True(t, m.Tree.Params(ctor)[1] != m.Tree.Params(method)[1])

	body := m.Node(m.Tree.Body(ctor))
	be.Equal(t, len(body.Children), 2)
	call := body.Children[0]
	be.Equal(t, m.Node(call).Kind, ast.KIND_CALL_EXPR)
	be.Equal(t, m.Calls[call], method)
	be.Equal(t, len(m.Tree.Args(call)), 2)
	be.Equal(t, m.Node(body.Children[1]).Kind, ast.KIND_RETURN_STMT)

	// constructor-named methods stay out of the class scope
	_, ok := m.Scopes[class].LookupCurrent("Point")
	be.True(t, !ok)
}

func TestMemberDefaultsInConstructor(t *testing.T) {
	m, _, err := resolveSource(t, "class Counter { count: int32 = 5; step := 2u8; label: char }")
	be.Err(t, err, nil)

	class := findDecl(m, ast.KIND_CLASS_DECL, "Counter", 0)
	step := findDecl(m, ast.KIND_MEMBER_DECL, "step", 0)
	be.True(t, m.Node(step).Type.Is(types.UINT8))

	ctor := m.Ctors[class][0]
	body := m.Node(m.Tree.Body(ctor))
	// two defaults, then the return
	be.Equal(t, len(body.Children), 3)

	assign := m.Node(body.Children[0])
	be.Equal(t, assign.Kind, ast.KIND_BINARY_EXPR)
	target := m.Node(assign.Children[0])
	be.Equal(t, target.Name(), "count")
	be.Equal(t, m.Refs[target.ID].Kind, scope.SYMBOL_MEMBER)

	value := assign.Children[1]
	original := m.Tree.Initializer(findDecl(m, ast.KIND_MEMBER_DECL, "count", 0))
	be.True(t, value != original)
	be.Equal(t, m.Node(value).Data.(*ast.LiteralExpr).Int, uint64(5))
	be.True(t, m.Node(value).IsResolved())
}

func TestMethodCall(t *testing.T) {
	src := `
class Counter {
	count: int32
	def add(n: int32) -> int32 {
		this.count += n
		return this.count
	}
}

def main() -> int32 {
	c := Counter()
	return c.add(2)
}`
	m, _, err := resolveSource(t, src)
	be.Err(t, err, nil)

	add := findDecl(m, ast.KIND_METHOD_DECL, "add", 0)
	be.Equal(t, m.Tree.Func(add).NumParams, 2)

	main := findDecl(m, ast.KIND_FUNC_DECL, "main", 0)
	body := m.Node(m.Tree.Body(main))
	ret := body.Children[1]
	call := m.Tree.Initializer(ret)
	be.Equal(t, m.Calls[call], add)
	be.True(t, m.Node(call).Type.Is(types.INT32))

	c := findDecl(m, ast.KIND_VAR_DECL, "c", 0)
	be.Equal(t, m.Node(c).Type.String(), "Counter&")
	ctorCall := m.Tree.Initializer(c)
	be.Equal(t, m.Calls[ctorCall], m.Ctors[findDecl(m, ast.KIND_CLASS_DECL, "Counter", 0)][0])
}

func TestRecursion(t *testing.T) {
	src := `
def fact(n: int64) -> int64 {
	if n < 2 {
		return 1
	}
	return n * fact(n - 1)
}`
	m, _, err := resolveSource(t, src)
	be.Err(t, err, nil)

	fact := findDecl(m, ast.KIND_FUNC_DECL, "fact", 0)
	be.Equal(t, m.Node(fact).Type.String(), "(int64) -> int64")
	be.True(t, m.Node(fact).Signed == false)

	n := findDecl(m, ast.KIND_PARAM, "n", 0)
	be.True(t, m.Node(n).Signed)
}

func TestIdempotence(t *testing.T) {
	src := `
class Point { x: int32; y: int32 }
def main() -> int32 {
	p := Point()
	p.x = 3
	return p.x + p.y
}`
	m, collector := parseModule(t, src)
	r := New(m, collector)
	be.Err(t, r.Resolve(), nil)

	size := m.Tree.Len()
	order := len(m.Order)
	typesBefore := make([]string, size)
	for i, node := range m.Tree.Nodes {
		typesBefore[i] = node.Type.String()
	}

	be.Err(t, r.Resolve(), nil)
	be.Equal(t, m.Tree.Len(), size)
	be.Equal(t, len(m.Order), order)
	be.Equal(t, len(m.Ctors[findDecl(m, ast.KIND_CLASS_DECL, "Point", 0)]), 1)
	for i, node := range m.Tree.Nodes {
		be.Equal(t, node.Type.String(), typesBefore[i])
	}
}

func TestDuplicateClass(t *testing.T) {
	src := "class Point { x: int32 }\nclass Point { y: int32 }"
	m, collector, err := resolveSource(t, src)
	be.True(t, errors.Is(err, diagnostics.ERR_DUPLICATE_DEFINITION))

	second := m.Node(m.Tree.Root).Children[1]
	be.Equal(t, len(collector.Diags), 1)
	diag := collector.Diags[0]
	be.Equal(t, diag.Kind, diagnostics.DUPLICATE_DEFINITION)
	be.Equal(t, diag.Node, int(second))
	be.Equal(t, diag.Pos.Line, 2)
	be.Equal(t, diag.Message, "'Point' is already declared at test.grv:1:1")
}

func TestCycle(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"self", "class Node { next: Node }"},
		{"mutual", "class A { b: B }\nclass B { a: A }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, collector, err := resolveSource(t, tt.src)
			be.True(t, errors.Is(err, diagnostics.ERR_CYCLE))
			be.Equal(t, len(collector.Diags), 1)
			be.True(t, strings.HasSuffix(collector.Diags[0].Message, "depends on itself"))
		})
	}
}

func TestScopeRestoredAfterError(t *testing.T) {
	src := `
def main() {
	a := 1
	if a < 2 {
		b := missing
	}
}`
	m, collector := parseModule(t, src)
	r := New(m, collector)

	err := r.Resolve()
	be.True(t, errors.Is(err, diagnostics.ERR_UNRESOLVED_REFERENCE))
	be.True(t, r.ctx.current() == m.Global)

	// the module stays aborted
	be.Equal(t, r.Resolve(), err)
	be.Equal(t, len(collector.Diags), 1)
}

func TestScopeRestoredInsideBlock(t *testing.T) {
	src := `
def main() {
	a := 1
	if a < 2 {
		b := missing
	}
}`
	m, collector := parseModule(t, src)
	r := New(m, collector)

	fn := findDecl(m, ast.KIND_FUNC_DECL, "main", 0)
	body := r.scopeOf(m.Tree.Body(fn))
	leave := r.ctx.enter(body)

	err := r.ResolveNode(findDecl(m, ast.KIND_VAR_DECL, "b", 0))
	be.True(t, errors.Is(err, diagnostics.ERR_UNRESOLVED_REFERENCE))
	be.True(t, r.ctx.current() == body)

	leave()
	be.True(t, r.ctx.current() == m.Global)
}

func TestResolveFunctionPartsFirst(t *testing.T) {
	tests := []struct {
		name string
		node func(m *Module, fn ast.NodeID) ast.NodeID
	}{
		{"body", func(m *Module, fn ast.NodeID) ast.NodeID {
			return m.Tree.Body(fn)
		}},
		{"return", func(m *Module, fn ast.NodeID) ast.NodeID {
			return m.Tree.Child(m.Tree.Body(fn), 0)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, collector := parseModule(t, "def f() -> int32 { return 1 }")
			r := New(m, collector)
			fn := findDecl(m, ast.KIND_FUNC_DECL, "f", 0)
			id := tt.node(m, fn)

			be.Err(t, r.ResolveNode(id), nil)
			be.True(t, m.Node(id).IsResolved())
			be.True(t, m.Node(fn).IsResolved())
			be.Equal(t, m.Deps[id][0], fn)

			be.Err(t, r.Resolve(), nil)
			be.Equal(t, len(collector.Diags), 0)
		})
	}
}

func TestResolveReturnFirstReportsMismatch(t *testing.T) {
	m, collector := parseModule(t, "def f() -> int32 { return 1.5 }")
	fn := findDecl(m, ast.KIND_FUNC_DECL, "f", 0)

	err := New(m, collector).ResolveNode(m.Tree.Child(m.Tree.Body(fn), 0))
	be.True(t, errors.Is(err, diagnostics.ERR_TYPE_MISMATCH))
	be.Equal(t, len(collector.Diags), 1)
}

func TestNarrowingPolicy(t *testing.T) {
	tests := []struct {
		decl string
		ok   bool
	}{
		{"x: int32 = 3.14", false},
		{"x: int8 = 300", true},
		{"x: uint8 = 'a'", true},
		{"x: double = 3", true},
		{"x: float = 2.5", true},
		{"x: int64 = 2.5f", false},
		{"x: bool = 1", false},
		{"x: int32 = 1 < 2", false},
		{"x: bool = 1 < 2", true},
	}
	for _, tt := range tests {
		t.Run(tt.decl, func(t *testing.T) {
			_, _, err := resolveSource(t, "def main() {\n"+tt.decl+"\n}")
			if tt.ok {
				be.Err(t, err, nil)
			} else {
				be.True(t, errors.Is(err, diagnostics.ERR_TYPE_MISMATCH))
			}
		})
	}
}

func TestNarrowingDiagnostic(t *testing.T) {
	m, collector, err := resolveSource(t, "def main() {\nx: int32 = 3.14\n}")
	be.True(t, errors.Is(err, diagnostics.ERR_TYPE_MISMATCH))

	diag := collector.Diags[0]
	be.Equal(t, diag.Message, "implicit conversion from 'double' to 'int32' loses the fractional part")
	be.Equal(t, m.Node(ast.NodeID(diag.Node)).Kind, ast.KIND_LITERAL_EXPR)
	be.Equal(t, diag.Pos.Line, 2)
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		kind    diagnostics.Kind
		message string
	}{
		{
			"top level variable",
			"x := 1",
			diagnostics.INVALID_CHILD,
			"variable declaration is not allowed at the top level",
		},
		{
			"statement in class",
			"class P { x: int32; return 1 }",
			diagnostics.INVALID_CHILD,
			"return statement is not allowed in the body of class 'P'",
		},
		{
			"empty class",
			"class E {}",
			diagnostics.INVALID_CHILD,
			"class 'E' declares no members",
		},
		{
			"duplicate member",
			"class P { x: int32; x: int64 }",
			diagnostics.DUPLICATE_DEFINITION,
			"'x' is already declared at test.grv:1:11",
		},
		{
			"undefined name",
			"def main() -> int32 { return y }",
			diagnostics.UNRESOLVED_REFERENCE,
			"'y' is not defined",
		},
		{
			"unknown type",
			"def f(p: Shape) {}",
			diagnostics.UNRESOLVED_REFERENCE,
			"unknown type 'Shape'",
		},
		{
			"bare member",
			"class C { count: int32; def get() -> int32 { return count } }",
			diagnostics.UNRESOLVED_REFERENCE,
			"'count' is a member, access it through 'this.count'",
		},
		{
			"captured variable",
			"def outer(a: int32) -> int32 {\ndef inner() -> int32 { return a }\nreturn inner()\n}",
			diagnostics.UNRESOLVED_REFERENCE,
			"'a' belongs to an enclosing function",
		},
		{
			"missing return",
			"def f() -> int32 { x := 1 }",
			diagnostics.TYPE_MISMATCH,
			"function 'f' must end with a return of 'int32'",
		},
		{
			"void return value",
			"def f() { return 1 }",
			diagnostics.TYPE_MISMATCH,
			"function 'f' doesn't return a value",
		},
		{
			"arity",
			"def f(a: int32) {}\ndef main() { f(1, 2) }",
			diagnostics.TYPE_MISMATCH,
			"function 'f' expects 1 argument(s), got 2",
		},
		{
			"no such constructor",
			"class P { x: int32 }\ndef main() { p := P(1) }",
			diagnostics.TYPE_MISMATCH,
			"no constructor of 'P' takes 1 argument(s)",
		},
		{
			"access on builtin",
			"def f(a: int32) -> int32 { return a.x }",
			diagnostics.TYPE_MISMATCH,
			"'int32' has no member 'x'",
		},
		{
			"unknown member",
			"class P { x: int32 }\ndef main() { p := P(); p.z = 1 }",
			diagnostics.UNRESOLVED_REFERENCE,
			"class 'P' has no member 'z'",
		},
		{
			"assign to call",
			"def f() -> int32 { return 1 }\ndef main() { f() = 2 }",
			diagnostics.TYPE_MISMATCH,
			"can't assign to this expression",
		},
		{
			"function as value",
			"def f() {}\ndef main() { g := f }",
			diagnostics.TYPE_MISMATCH,
			"function 'f' is not a value",
		},
		{
			"mixed float arithmetic",
			"def main() { x := 1 + 2.5 }",
			diagnostics.TYPE_MISMATCH,
			"can't mix floating-point 'double' with 'int32'",
		},
		{
			"void variable",
			"def f() {}\ndef main() { x := f() }",
			diagnostics.TYPE_MISMATCH,
			"can't use a void value to initialize 'x'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, collector, err := resolveSource(t, tt.src)
			be.True(t, err != nil)
			be.Equal(t, diagKind(t, err), tt.kind)
			be.Equal(t, len(collector.Diags), 1)
			be.Equal(t, collector.Diags[0].Message, tt.message)
		})
	}
}

func TestInertDeclarations(t *testing.T) {
	tree := ast.NewTree()
	root := tree.NewRoot("inert.grv")
	pos := token.NewPosition("inert.grv", 1, 1)

	class := tree.New(ast.KIND_CLASS_DECL, pos, &ast.ClassDecl{Name: "Color"})
	tree.Append(root, class)
	member := tree.New(ast.KIND_MEMBER_DECL, pos, &ast.MemberDecl{
		Name: "rgb",
		Type: ast.NewBuiltinTypeExpr(types.UINT32),
	})
	tree.Append(class, member)
	enum := tree.New(ast.KIND_ENUM_DECL, pos, &ast.InertDecl{Name: "Channel"})
	tree.Append(class, enum)

	m := NewModule(tree)
	be.Err(t, New(m, diagnostics.New()).Resolve(), nil)
	be.True(t, m.Node(enum).IsResolved())
	be.True(t, m.Node(enum).Type.IsVoid())
	// inert declarations do not take part in the layout
	be.Equal(t, len(types.ClassOf(m.Node(class).Type).Members), 1)
}

func TestInertOutsideClass(t *testing.T) {
	tree := ast.NewTree()
	root := tree.NewRoot("inert.grv")
	pos := token.NewPosition("inert.grv", 1, 1)
	tree.Append(root, tree.New(ast.KIND_IMPORT_DECL, pos, &ast.InertDecl{Name: "io"}))

	err := New(NewModule(tree), diagnostics.New()).Resolve()
	be.True(t, errors.Is(err, diagnostics.ERR_INVALID_CHILD))
}

func TestAccessWithoutValueSite(t *testing.T) {
	tree := ast.NewTree()
	root := tree.NewRoot("access.grv")
	pos := token.NewPosition("access.grv", 1, 1)
	access := tree.New(ast.KIND_ACCESS_EXPR, pos, &ast.AccessExpr{Name: "x"})
	tree.Append(access, tree.New(ast.KIND_BLOCK_STMT, pos, nil))
	tree.Append(root, access)

	collector := diagnostics.New()
	err := New(NewModule(tree), collector).ResolveNode(access)
	be.True(t, errors.Is(err, diagnostics.ERR_FATAL_INTERNAL))
	be.Equal(t, len(collector.Diags), 1)
	be.Equal(t, collector.Diags[0].Node, int(access))
}

func TestDependencyEdges(t *testing.T) {
	src := "class Line { from: Point; to: Point }\nclass Point { x: int32 }"
	m, _, err := resolveSource(t, src)
	be.Err(t, err, nil)

	line := findDecl(m, ast.KIND_CLASS_DECL, "Line", 0)
	point := findDecl(m, ast.KIND_CLASS_DECL, "Point", 0)
	from := findDecl(m, ast.KIND_MEMBER_DECL, "from", 0)
	be.Equal(t, m.Deps[from], []ast.NodeID{point})

	// prerequisites become resolved before their dependents
	position := func(id ast.NodeID) int {
		for i, resolved := range m.Order {
			if resolved == id {
				return i
			}
		}
		return -1
	}
	be.True(t, position(point) < position(from))
	be.True(t, position(from) < position(line))
}
