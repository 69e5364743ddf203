// Package scope implements lexical scopes and the symbols declared in them.
package scope

import (
	"errors"
	"fmt"
	"strings"

	"github.com/grove-lang/grove/internal/diagnostics"
	"github.com/grove-lang/grove/internal/types"
)

var (
	ERR_SYMBOL_ALREADY_DEFINED_ON_SCOPE = errors.New("symbol already defined on scope")
)

type SymbolKind int

const (
	SYMBOL_VAR SymbolKind = iota
	SYMBOL_PARAM
	SYMBOL_MEMBER
	SYMBOL_FUNC
	SYMBOL_METHOD
	SYMBOL_EXTERN
	SYMBOL_CLASS
)

func (kind SymbolKind) String() string {
	switch kind {
	case SYMBOL_VAR:
		return "variable"
	case SYMBOL_PARAM:
		return "parameter"
	case SYMBOL_MEMBER:
		return "member"
	case SYMBOL_FUNC:
		return "function"
	case SYMBOL_METHOD:
		return "method"
	case SYMBOL_EXTERN:
		return "extern function"
	case SYMBOL_CLASS:
		return "class"
	default:
		return fmt.Sprintf("SymbolKind(%d)", int(kind))
	}
}

// Symbol is a named entity. Value is the backend handle, bound lazily while
// building; once Locked, the binding must not change.
type Symbol struct {
	Name   string
	Kind   SymbolKind
	Type   *types.Type
	Decl   int
	Index  int
	Signed bool
	Locked bool
	Value  any
}

func NewSymbol(name string, kind SymbolKind, ty *types.Type, decl int) *Symbol {
	return &Symbol{
		Name:   name,
		Kind:   kind,
		Type:   ty,
		Decl:   decl,
		Signed: ty.IsSigned(),
	}
}

// Bind sets the backend value of the symbol and locks it.
func (sym *Symbol) Bind(value any) error {
	if sym.Locked {
		return diagnostics.Fatal("symbol '%s' is already bound", sym.Name)
	}
	sym.Value = value
	sym.Locked = true
	return nil
}

func (sym *Symbol) String() string {
	return fmt.Sprintf("%s %s: %s", sym.Kind, sym.Name, sym.Type)
}

type Scope struct {
	Parent  *Scope
	Symbols map[string]*Symbol
	// declaration order
	Names []string
}

func New(parent *Scope) *Scope {
	return &Scope{Parent: parent, Symbols: make(map[string]*Symbol)}
}

func (scope *Scope) Declare(name string, sym *Symbol) error {
	if _, ok := scope.Symbols[name]; ok {
		return ERR_SYMBOL_ALREADY_DEFINED_ON_SCOPE
	}
	scope.Symbols[name] = sym
	scope.Names = append(scope.Names, name)
	return nil
}

func (scope *Scope) LookupCurrent(name string) (*Symbol, bool) {
	sym, ok := scope.Symbols[name]
	return sym, ok
}

func (scope *Scope) Lookup(name string) (*Symbol, bool) {
	for current := scope; current != nil; current = current.Parent {
		if sym, ok := current.Symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

func (scope *Scope) Depth() int {
	depth := 0
	for current := scope.Parent; current != nil; current = current.Parent {
		depth++
	}
	return depth
}

func (scope *Scope) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scope(depth=%d):", scope.Depth())
	for _, name := range scope.Names {
		fmt.Fprintf(&b, " %s", scope.Symbols[name])
	}
	return b.String()
}

// Stack tracks the innermost scope of an ongoing walk.
type Stack struct {
	Current *Scope
}

func NewStack(global *Scope) *Stack {
	return &Stack{Current: global}
}

// Enter makes s the current scope and returns the function restoring the
// previous one. Callers defer it so every exit path pops.
func (st *Stack) Enter(s *Scope) func() {
	previous := st.Current
	st.Current = s
	return func() {
		st.Current = previous
	}
}
