package ast

import (
	"fmt"

	"github.com/grove-lang/grove/internal/lexer/token"
	"github.com/grove-lang/grove/internal/types"
)

// Valued is implemented by payloads of nodes that produce a value.
type Valued interface {
	valueNode()
}

type IdExpr struct {
	Name string
}

func (id *IdExpr) Ident() string { return id.Name }
func (id *IdExpr) String() string { return id.Name }

type LiteralExpr struct {
	Kind  types.BuiltinKind
	Int   uint64
	Float float64
}

func (literal *LiteralExpr) String() string {
	if literal.Kind.IsFloat() {
		return fmt.Sprintf("%g", literal.Float)
	}
	return fmt.Sprintf("%d", literal.Int)
}

type UnaryExpr struct {
	Op token.Kind
}

type BinaryExpr struct {
	Op token.Kind
}

type CallExpr struct{}

type AccessExpr struct {
	Name string
}

func (access *AccessExpr) Ident() string { return access.Name }

func (*IdExpr) valueNode()      {}
func (*LiteralExpr) valueNode() {}
func (*UnaryExpr) valueNode()   {}
func (*BinaryExpr) valueNode()  {}
func (*CallExpr) valueNode()    {}
func (*AccessExpr) valueNode()  {}
