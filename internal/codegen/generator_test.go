package codegen

import (
	"errors"
	"strings"
	"testing"

	"github.com/grove-lang/grove/internal/ast"
	"github.com/grove-lang/grove/internal/diagnostics"
	"github.com/grove-lang/grove/internal/sema"
	"github.com/grove-lang/grove/internal/testutil"
	"github.com/nalgeon/be"
)

func build(t *testing.T, src string) (*sema.Module, *Trace) {
	t.Helper()
	module := testutil.Resolve(t, src)
	trace := NewTrace()
	be.Err(t, New(module, trace).Build(module.Tree.Root), nil)
	return module, trace
}

func contains(ops []string, op string) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

func TestBuildFunction(t *testing.T) {
	_, trace := build(t, "def add(a: int32, b: int32) -> int32 { return a + b }")
	want := []string{
		"function @add (int32, int32) -> int32 external",
		"entry:",
		"%1 = alloca int32",
		"store %arg0 -> %1",
		"%2 = alloca int32",
		"store %arg1 -> %2",
		"%3 = load int32 %1",
		"%4 = load int32 %2",
		"%5 = add %3, %4",
		"ret %5",
	}
	be.Equal(t, trace.Ops, want)
}

func TestBuildCasts(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ops  []string
	}{
		{
			"sign extension",
			"def f(a: int8, b: int64) -> int64 { return a + b }",
			[]string{"%5 = sext %3 to int64", "%6 = add %5, %4", "ret %6"},
		},
		{
			"zero extension",
			"def f(a: uint8, b: uint32) -> uint32 { return a * b }",
			[]string{"%5 = zext %3 to uint32", "%6 = mul %5, %4"},
		},
		{
			"unsigned compare",
			"def f(a: uint8, b: uint8) -> bool { return a < b }",
			[]string{"%5 = cmp ult %3, %4", "ret %5"},
		},
		{
			"signed division",
			"def f(a: int32, b: int32) -> int32 { return a / b }",
			[]string{"%5 = sdiv %3, %4"},
		},
		{
			"float arithmetic",
			"def f(a: float, b: double) -> double { return a - b }",
			[]string{"%5 = fpext %3 to double", "%6 = fsub %5, %4"},
		},
		{
			"truncating assignment",
			"def f(a: int64) { b: int8 = a }",
			[]string{"%2 = alloca int8", "%3 = load int64 %1", "%4 = trunc %3 to int8", "store %4 -> %2", "ret void"},
		},
		{
			"integer to float",
			"def f(a: int32) -> double { return a }",
			[]string{"%3 = sitofp %2 to double", "ret %3"},
		},
		{
			"negation",
			"def f(a: double) -> double { return -a }",
			[]string{"%3 = fneg %2"},
		},
		{
			"compound assignment",
			"def f(a: int16) { a += 1 }",
			[]string{"%2 = load int16 %1", "%3 = sext %2 to int32", "%4 = add %3, int32 1", "%5 = trunc %4 to int16", "store %5 -> %1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, trace := build(t, tt.src)
			for _, op := range tt.ops {
				be.True(t, contains(trace.Ops, op))
			}
		})
	}
}

func TestBuildIf(t *testing.T) {
	src := `
def pick(c: bool) -> int32 {
	if c {
		return 1
	} else {
		return 2
	}
	return 0
}`
	_, trace := build(t, src)
	want := []string{
		"function @pick (bool) -> int32 external",
		"entry:",
		"%1 = alloca bool",
		"store %arg0 -> %1",
		"%2 = load bool %1",
		"br %2, if.then, if.else",
		"if.then:",
		"ret int32 1",
		"if.else:",
		"ret int32 2",
		"if.end:",
		"ret int32 0",
	}
	be.Equal(t, trace.Ops, want)
}

func TestBuildIntegerCondition(t *testing.T) {
	_, trace := build(t, "def f(n: int32) { if n { n = 1 } }")
	be.True(t, contains(trace.Ops, "%3 = cmp ne %2, int32 0"))
	be.True(t, contains(trace.Ops, "br %3, if.then, if.end"))
	// the then block falls through to the end block
	be.True(t, contains(trace.Ops, "br if.end"))
	be.Equal(t, trace.Ops[len(trace.Ops)-1], "ret void")
}

func TestBuildClass(t *testing.T) {
	src := `
class Point { x: int32; y: int32 }
def main() -> int32 {
	p := Point()
	p.x = 3
	return p.x + p.y
}`
	_, trace := build(t, src)
	want := []string{
		"function @Point.new (Point&*) -> void internal",
		"function @main () -> int32 external",
		"entry:",
		"%1 = alloca Point&*",
		"store %arg0 -> %1",
		"ret void",
		"entry:",
		"%2 = alloca Point",
		"call @Point.new(%2)",
		"%3 = member Point %2 0",
		"store int32 3 -> %3",
		"%4 = member Point %2 0",
		"%5 = load int32 %4",
		"%6 = member Point %2 1",
		"%7 = load int32 %6",
		"%8 = add %5, %7",
		"ret %8",
	}
	be.Equal(t, trace.Ops, want)
}

func TestBuildConstructorAndMethod(t *testing.T) {
	src := `
class Counter {
	count: int32 = 1
	def Counter(start: int32) {
		this.count = start
	}
	def get() -> int32 {
		return this.count
	}
}
def main() -> int32 {
	c := Counter(5)
	return c.get()
}`
	_, trace := build(t, src)
	ops := trace.String()

	be.True(t, strings.Contains(ops, "function @Counter.Counter (Counter&*, int32) -> void internal"))
	be.True(t, strings.Contains(ops, "function @Counter.get (Counter&*) -> int32 internal"))
	be.True(t, strings.Contains(ops, "function @Counter.new (Counter&*, int32) -> void internal"))

	// member default, then forwarding to the constructor-named method
	be.True(t, strings.Contains(ops, "store int32 1 -> "))
	be.True(t, strings.Contains(ops, "call @Counter.Counter("))
	be.True(t, strings.Contains(ops, "call @Counter.new(%"))
	be.True(t, strings.Contains(ops, " = call @Counter.get(%"))
}

func TestBuildClassReturnedByValue(t *testing.T) {
	src := `
class P { x: int32 }
def mk() -> P {
	p := P()
	return p
}
def main() -> int32 {
	q := mk()
	return q.x
}`
	_, trace := build(t, src)
	want := []string{
		"function @P.new (P&*) -> void internal",
		"function @mk () -> P external",
		"function @main () -> int32 external",
		"entry:",
		"%1 = alloca P&*",
		"store %arg0 -> %1",
		"ret void",
		"entry:",
		"%2 = alloca P",
		"call @P.new(%2)",
		// the callee's slot is copied out before its frame goes away
		"%3 = load P %2",
		"ret %3",
		"entry:",
		"%4 = call @mk()",
		"%5 = alloca P",
		"store %4 -> %5",
		"%6 = member P %5 0",
		"%7 = load int32 %6",
		"ret %7",
	}
	be.Equal(t, trace.Ops, want)
}

func TestBuildStates(t *testing.T) {
	module, trace := build(t, "def add(a: int32, b: int32) -> int32 { return a + b }")
	tree := module.Tree
	tree.Walk(tree.Root, func(id ast.NodeID) bool {
		be.Equal(t, tree.Get(id).State, ast.BUILT)
		return true
	})

	add := testutil.FindDecl(module.Tree, ast.KIND_FUNC_DECL, "add")
	sym := module.Symbols[add]
	be.True(t, sym.Locked)
	be.Equal(t, sym.Value, Value("@add"))

	// building again is a no-op
	size := len(trace.Ops)
	be.Err(t, New(module, trace).Build(module.Tree.Root), nil)
	be.Equal(t, len(trace.Ops), size)
}

func TestBuildBeforeResolve(t *testing.T) {
	tree := testutil.Parse(t, "def main() {}")
	module := sema.NewModule(tree)

	err := New(module, NewTrace()).Build(tree.Root)
	be.True(t, errors.Is(err, diagnostics.ERR_FATAL_INTERNAL))
	be.True(t, diagnostics.IsFatal(err))
}

func TestBuildSingleFunction(t *testing.T) {
	module := testutil.Resolve(t, "def one() -> int32 { return 1 }\ndef two() -> int32 { return one() + one() }")
	two := testutil.FindDecl(module.Tree, ast.KIND_FUNC_DECL, "two")

	trace := NewTrace()
	be.Err(t, New(module, trace).Build(two), nil)
	be.Equal(t, module.Node(two).State, ast.BUILT)
	// the callee is declared on demand but its body is left alone
	be.True(t, contains(trace.Ops, "function @one () -> int32 external"))
	be.Equal(t, module.Node(testutil.FindDecl(module.Tree, ast.KIND_FUNC_DECL, "one")).State, ast.RESOLVED)
}

func TestBuildExternCall(t *testing.T) {
	_, trace := build(t, "extern def putchar(c: int32) -> int32\ndef main() { putchar(65) }")
	be.True(t, contains(trace.Ops, "function @putchar (int32) -> int32 external"))
	be.True(t, contains(trace.Ops, "%1 = call @putchar(int32 65)"))
}
