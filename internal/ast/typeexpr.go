package ast

import (
	"fmt"
	"strings"

	"github.com/grove-lang/grove/internal/lexer/token"
	"github.com/grove-lang/grove/internal/types"
)

type TypeExprKind int

const (
	TYPE_EXPR_BUILTIN TypeExprKind = iota
	TYPE_EXPR_NAMED
	TYPE_EXPR_POINTER
	TYPE_EXPR_REFERENCE
	TYPE_EXPR_ARRAY
	TYPE_EXPR_TUPLE
)

// TypeExpr is a type as written in the source. The resolver turns it into a
// *types.Type.
type TypeExpr struct {
	Kind    TypeExprKind
	Pos     token.Pos
	Builtin types.BuiltinKind
	Name    string
	Elem    *TypeExpr
	Size    int64
	Elems   []*TypeExpr
}

func NewBuiltinTypeExpr(kind types.BuiltinKind) *TypeExpr {
	return &TypeExpr{Kind: TYPE_EXPR_BUILTIN, Builtin: kind}
}

func NewNamedTypeExpr(name string) *TypeExpr {
	return &TypeExpr{Kind: TYPE_EXPR_NAMED, Name: name}
}

func NewPointerTypeExpr(elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: TYPE_EXPR_POINTER, Elem: elem, Pos: elem.Pos}
}

func NewReferenceTypeExpr(elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: TYPE_EXPR_REFERENCE, Elem: elem, Pos: elem.Pos}
}

func (te *TypeExpr) IsInferred() bool {
	return te == nil || (te.Kind == TYPE_EXPR_BUILTIN && te.Builtin == types.VAR)
}

// Names lists every class name the type expression mentions.
func (te *TypeExpr) Names() []string {
	if te == nil {
		return nil
	}
	switch te.Kind {
	case TYPE_EXPR_NAMED:
		return []string{te.Name}
	case TYPE_EXPR_POINTER, TYPE_EXPR_REFERENCE, TYPE_EXPR_ARRAY:
		return te.Elem.Names()
	case TYPE_EXPR_TUPLE:
		var names []string
		for _, elem := range te.Elems {
			names = append(names, elem.Names()...)
		}
		return names
	default:
		return nil
	}
}

func (te *TypeExpr) Copy() *TypeExpr {
	if te == nil {
		return nil
	}
	cp := *te
	cp.Elem = te.Elem.Copy()
	if te.Elems != nil {
		cp.Elems = make([]*TypeExpr, len(te.Elems))
		for i, elem := range te.Elems {
			cp.Elems[i] = elem.Copy()
		}
	}
	return &cp
}

func (te *TypeExpr) String() string {
	if te == nil {
		return "var"
	}
	switch te.Kind {
	case TYPE_EXPR_BUILTIN:
		return te.Builtin.String()
	case TYPE_EXPR_NAMED:
		return te.Name
	case TYPE_EXPR_POINTER:
		return te.Elem.String() + "*"
	case TYPE_EXPR_REFERENCE:
		return te.Elem.String() + "&"
	case TYPE_EXPR_ARRAY:
		return fmt.Sprintf("%s[%d]", te.Elem, te.Size)
	case TYPE_EXPR_TUPLE:
		elems := make([]string, len(te.Elems))
		for i, elem := range te.Elems {
			elems[i] = elem.String()
		}
		return "(" + strings.Join(elems, ", ") + ")"
	default:
		return "?"
	}
}
