package compiler

import (
	"errors"
	"testing"

	"github.com/grove-lang/grove/internal/codegen"
	"github.com/grove-lang/grove/internal/diagnostics"
	"github.com/grove-lang/grove/internal/lexer/token"
	"github.com/nalgeon/be"
)

func TestCheckAndGenerate(t *testing.T) {
	collector := diagnostics.New()
	c := New(collector)

	module, err := c.CheckSource("sum.grv", []byte("def sum(a: int32, b: int32) -> int32 { return a + b }"))
	be.Err(t, err, nil)

	trace := codegen.NewTrace()
	be.Err(t, c.Generate(module, trace), nil)
	be.Equal(t, trace.Ops[0], "function @sum (int32, int32) -> int32 external")
	be.Equal(t, len(collector.Diags), 0)
}

func TestCheckReportsOnce(t *testing.T) {
	collector := diagnostics.New()
	_, err := New(collector).CheckSource("bad.grv", []byte("def main() { x = 1 }"))
	be.True(t, errors.Is(err, diagnostics.ERR_UNRESOLVED_REFERENCE))
	be.Equal(t, len(collector.Diags), 1)
	be.Equal(t, Format(collector.Diags[0]), "bad.grv:1:14: unresolved reference: 'x' is not defined")
}

func TestFormat(t *testing.T) {
	diag := diagnostics.Errorf(diagnostics.CYCLE, 3, token.NewPosition("a.grv", 5, 2), "cycle")
	be.Equal(t, Format(*diag), "a.grv:2:5: dependency cycle: cycle")

	fatal := diagnostics.Fatal("boom")
	be.Equal(t, Format(*fatal), "internal compiler error: boom")
}
