package integration

import (
	"errors"
	"strings"
	"testing"

	"github.com/grove-lang/grove/internal/codegen"
	"github.com/grove-lang/grove/internal/compiler"
	"github.com/grove-lang/grove/internal/diagnostics"
	"github.com/nalgeon/be"
)

func compileFile(t *testing.T, path string) (*codegen.Trace, *diagnostics.Collector, error) {
	t.Helper()
	collector := diagnostics.New()
	c := compiler.New(collector)

	module, err := c.Check(path)
	if err != nil {
		return nil, collector, err
	}
	trace := codegen.NewTrace()
	err = c.Generate(module, trace)
	return trace, collector, err
}

func TestCompileFactorial(t *testing.T) {
	trace, diags, err := compileFile(t, "testdata/fact.grv")
	be.Err(t, err, nil)
	be.Equal(t, len(diags.Diags), 0)

	ops := trace.String()
	be.True(t, strings.Contains(ops, "function @fact (int64) -> int64 external"))
	be.True(t, strings.Contains(ops, "cmp sle"))
	be.True(t, strings.Contains(ops, "= call @fact("))
	// fact's result is narrowed into r
	be.True(t, strings.Contains(ops, "trunc"))
}

func TestCompilePoint(t *testing.T) {
	trace, diags, err := compileFile(t, "testdata/point.grv")
	be.Err(t, err, nil)
	be.Equal(t, len(diags.Diags), 0)

	ops := trace.String()
	be.True(t, strings.Contains(ops, "function @putchar (int32) -> int32 external"))
	be.True(t, strings.Contains(ops, "function @Point.sum (Point&*) -> int32 internal"))
	be.True(t, strings.Contains(ops, "function @Point.new (Point&*) -> void internal"))
	be.True(t, strings.Contains(ops, "store int32 40 -> "))
	be.True(t, strings.Contains(ops, "= call @Point.sum(%"))
}

func TestCompileCounter(t *testing.T) {
	trace, diags, err := compileFile(t, "testdata/counter.grv")
	be.Err(t, err, nil)
	be.Equal(t, len(diags.Diags), 0)

	ops := trace.String()
	// one constructor per constructor-named method, in source order
	be.True(t, strings.Contains(ops, "function @Counter.new (Counter&*, int64) -> void internal"))
	be.True(t, strings.Contains(ops, "function @Counter.new.1 (Counter&*) -> void internal"))
	be.True(t, strings.Contains(ops, "store int64 10 -> "))
	be.True(t, strings.Contains(ops, "store uint8 2 -> "))
	be.True(t, strings.Contains(ops, "zext"))
}

func TestUndefinedVariable(t *testing.T) {
	_, diags, err := compileFile(t, "testdata/errors/undefined_var.grv")
	be.True(t, errors.Is(err, diagnostics.ERR_UNRESOLVED_REFERENCE))
	be.Equal(t, len(diags.Diags), 1)
	be.Equal(t, compiler.Format(diags.Diags[0]),
		"testdata/errors/undefined_var.grv:3:13: unresolved reference: 'y' is not defined")
}

func TestTypeMismatch(t *testing.T) {
	_, diags, err := compileFile(t, "testdata/errors/type_mismatch.grv")
	be.True(t, errors.Is(err, diagnostics.ERR_TYPE_MISMATCH))
	be.Equal(t, len(diags.Diags), 1)
	be.True(t, strings.Contains(diags.Diags[0].Message, "loses the fractional part"))
}

func TestBadSyntax(t *testing.T) {
	_, diags, err := compileFile(t, "testdata/errors/bad_syntax.grv")
	be.True(t, err != nil)
	be.True(t, len(diags.Diags) > 0)
	be.Equal(t, diags.Diags[0].Kind, diagnostics.SYNTAX)
}

func TestCycle(t *testing.T) {
	_, diags, err := compileFile(t, "testdata/errors/cycle.grv")
	be.True(t, errors.Is(err, diagnostics.ERR_CYCLE))
	be.Equal(t, len(diags.Diags), 1)
}
