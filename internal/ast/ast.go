// Package ast defines the syntax tree handed to the resolver. Nodes live in
// an arena (Tree) and refer to each other through stable NodeIDs.
package ast

import (
	"fmt"

	"github.com/grove-lang/grove/internal/lexer/token"
	"github.com/grove-lang/grove/internal/types"
)

type NodeID int

const NoNode NodeID = -1

type NodeKind int

const (
	KIND_PROGRAM NodeKind = iota

	DECL_START // declaration node start delimiter
	KIND_CLASS_DECL
	KIND_MEMBER_DECL
	KIND_FUNC_DECL
	KIND_METHOD_DECL
	KIND_CTOR_DECL
	KIND_EXTERN_FUNC_DECL
	KIND_PARAM
	KIND_VAR_DECL
	KIND_ENUM_DECL
	KIND_PROPERTY_DECL
	KIND_IMPORT_DECL
	KIND_EXTENSION_DECL
	DECL_END // declaration node end delimiter

	STMT_START // statement node start delimiter
	KIND_BLOCK_STMT
	KIND_RETURN_STMT
	KIND_IF_STMT
	STMT_END // statement node end delimiter

	EXPR_START // expression node start delimiter
	KIND_ID_EXPR
	KIND_LITERAL_EXPR
	KIND_UNARY_EXPR
	KIND_BINARY_EXPR
	KIND_CALL_EXPR
	KIND_ACCESS_EXPR
	EXPR_END // expression node end delimiter
)

func (kind NodeKind) IsDecl() bool {
	return kind > DECL_START && kind < DECL_END
}

func (kind NodeKind) IsStmt() bool {
	return kind > STMT_START && kind < STMT_END
}

func (kind NodeKind) IsExpr() bool {
	return kind > EXPR_START && kind < EXPR_END
}

// IsFunction reports whether nodes of this kind carry parameters and, except
// for externs, a body.
func (kind NodeKind) IsFunction() bool {
	switch kind {
	case KIND_FUNC_DECL, KIND_METHOD_DECL, KIND_CTOR_DECL, KIND_EXTERN_FUNC_DECL:
		return true
	}
	return false
}

// IsInert reports whether nodes of this kind are accepted in class bodies but
// contribute neither types nor code.
func (kind NodeKind) IsInert() bool {
	switch kind {
	case KIND_ENUM_DECL, KIND_PROPERTY_DECL, KIND_IMPORT_DECL, KIND_EXTENSION_DECL:
		return true
	}
	return false
}

func (kind NodeKind) String() string {
	switch kind {
	case KIND_PROGRAM:
		return "KIND_PROGRAM"
	case KIND_CLASS_DECL:
		return "KIND_CLASS_DECL"
	case KIND_MEMBER_DECL:
		return "KIND_MEMBER_DECL"
	case KIND_FUNC_DECL:
		return "KIND_FUNC_DECL"
	case KIND_METHOD_DECL:
		return "KIND_METHOD_DECL"
	case KIND_CTOR_DECL:
		return "KIND_CTOR_DECL"
	case KIND_EXTERN_FUNC_DECL:
		return "KIND_EXTERN_FUNC_DECL"
	case KIND_PARAM:
		return "KIND_PARAM"
	case KIND_VAR_DECL:
		return "KIND_VAR_DECL"
	case KIND_ENUM_DECL:
		return "KIND_ENUM_DECL"
	case KIND_PROPERTY_DECL:
		return "KIND_PROPERTY_DECL"
	case KIND_IMPORT_DECL:
		return "KIND_IMPORT_DECL"
	case KIND_EXTENSION_DECL:
		return "KIND_EXTENSION_DECL"
	case KIND_BLOCK_STMT:
		return "KIND_BLOCK_STMT"
	case KIND_RETURN_STMT:
		return "KIND_RETURN_STMT"
	case KIND_IF_STMT:
		return "KIND_IF_STMT"
	case KIND_ID_EXPR:
		return "KIND_ID_EXPR"
	case KIND_LITERAL_EXPR:
		return "KIND_LITERAL_EXPR"
	case KIND_UNARY_EXPR:
		return "KIND_UNARY_EXPR"
	case KIND_BINARY_EXPR:
		return "KIND_BINARY_EXPR"
	case KIND_CALL_EXPR:
		return "KIND_CALL_EXPR"
	case KIND_ACCESS_EXPR:
		return "KIND_ACCESS_EXPR"
	default:
		return fmt.Sprintf("Unknown Node Kind: %d", int(kind))
	}
}

type State int

const (
	UNRESOLVED State = iota
	RESOLVING
	RESOLVED
	BUILT
)

func (state State) String() string {
	switch state {
	case UNRESOLVED:
		return "unresolved"
	case RESOLVING:
		return "resolving"
	case RESOLVED:
		return "resolved"
	case BUILT:
		return "built"
	default:
		return fmt.Sprintf("State(%d)", int(state))
	}
}

// Node is a single tree element. The role of each child is positional and
// depends on Kind:
//
//	KIND_PROGRAM, KIND_BLOCK_STMT, KIND_CLASS_DECL  statements / declarations
//	KIND_*FUNC_DECL, METHOD, CTOR                  params..., body (none for externs)
//	KIND_MEMBER_DECL, KIND_VAR_DECL                 optional initializer
//	KIND_RETURN_STMT                                optional value
//	KIND_IF_STMT                                    cond, then, optional else
//	KIND_UNARY_EXPR, KIND_ACCESS_EXPR               operand
//	KIND_BINARY_EXPR                                lhs, rhs
//	KIND_CALL_EXPR                                  callee, args...
type Node struct {
	ID       NodeID
	Kind     NodeKind
	Pos      token.Pos
	Parent   NodeID
	Children []NodeID

	State  State
	Type   *types.Type
	Signed bool

	Data any
}

func (n *Node) IsResolved() bool {
	return n.State == RESOLVED || n.State == BUILT
}

func (n *Node) Name() string {
	if named, ok := n.Data.(Named); ok {
		return named.Ident()
	}
	return ""
}

func (n *Node) String() string {
	if name := n.Name(); name != "" {
		return fmt.Sprintf("%s #%d (%s)", n.Kind, n.ID, name)
	}
	return fmt.Sprintf("%s #%d", n.Kind, n.ID)
}
