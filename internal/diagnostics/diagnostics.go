// Package diagnostics defines the errors raised while resolving and building
// a module, and the sink they are reported to.
package diagnostics

import (
	"errors"
	"fmt"

	"github.com/grove-lang/grove/internal/lexer/token"
)

type Kind int

const (
	DUPLICATE_DEFINITION Kind = iota
	INVALID_CHILD
	TYPE_MISMATCH
	UNRESOLVED_REFERENCE
	CYCLE
	FATAL_INTERNAL
	SYNTAX
)

var (
	ERR_DUPLICATE_DEFINITION = errors.New("duplicate definition")
	ERR_INVALID_CHILD        = errors.New("invalid child")
	ERR_TYPE_MISMATCH        = errors.New("type mismatch")
	ERR_UNRESOLVED_REFERENCE = errors.New("unresolved reference")
	ERR_CYCLE                = errors.New("dependency cycle")
	ERR_FATAL_INTERNAL       = errors.New("internal compiler error")
	ERR_SYNTAX               = errors.New("syntax error")
)

func (kind Kind) sentinel() error {
	switch kind {
	case DUPLICATE_DEFINITION:
		return ERR_DUPLICATE_DEFINITION
	case INVALID_CHILD:
		return ERR_INVALID_CHILD
	case TYPE_MISMATCH:
		return ERR_TYPE_MISMATCH
	case UNRESOLVED_REFERENCE:
		return ERR_UNRESOLVED_REFERENCE
	case CYCLE:
		return ERR_CYCLE
	case SYNTAX:
		return ERR_SYNTAX
	default:
		return ERR_FATAL_INTERNAL
	}
}

func (kind Kind) String() string {
	return kind.sentinel().Error()
}

// NoNode marks a diagnostic that is not attached to a tree node.
const NoNode = -1

// Diag is a single compiler error. Node is the identity of the offending node
// inside its module's tree.
type Diag struct {
	Kind    Kind
	Node    int
	Pos     token.Pos
	Message string
}

func Errorf(kind Kind, node int, pos token.Pos, format string, args ...any) *Diag {
	return &Diag{
		Kind:    kind,
		Node:    node,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}

// Fatal builds an internal error that is not tied to a source location.
func Fatal(format string, args ...any) *Diag {
	return Errorf(FATAL_INTERNAL, NoNode, token.Pos{}, format, args...)
}

func (d *Diag) Error() string {
	return d.Message
}

func (d *Diag) Unwrap() error {
	return d.Kind.sentinel()
}

func (d *Diag) IsFatal() bool {
	return d.Kind == FATAL_INTERNAL
}

// IsFatal reports whether err signals a defect in the compiler rather than in
// the program being compiled.
func IsFatal(err error) bool {
	return errors.Is(err, ERR_FATAL_INTERNAL)
}
