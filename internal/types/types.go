// Package types implements the closed set of types a grove program can have
// and the structural rules used to compare them.
package types

import (
	"fmt"
	"strings"

	"github.com/grove-lang/grove/internal/diagnostics"
)

type Kind int

const (
	TYPE_BUILTIN Kind = iota
	TYPE_POINTER
	TYPE_REFERENCE
	TYPE_ARRAY
	TYPE_TUPLE
	TYPE_FUNCTION
	TYPE_CLASS
)

func (kind Kind) String() string {
	switch kind {
	case TYPE_BUILTIN:
		return "builtin"
	case TYPE_POINTER:
		return "pointer"
	case TYPE_REFERENCE:
		return "reference"
	case TYPE_ARRAY:
		return "array"
	case TYPE_TUPLE:
		return "tuple"
	case TYPE_FUNCTION:
		return "function"
	case TYPE_CLASS:
		return "class"
	default:
		return fmt.Sprintf("Kind(%d)", int(kind))
	}
}

// Type is a tagged variant: T holds *Builtin, *Pointer, *Reference, *Array,
// *Tuple, *Function or *Class depending on Kind. Types are immutable once
// built and may be shared freely.
type Type struct {
	Kind Kind
	T    any
}

type Pointer struct {
	Elem *Type
}

// Reference is an addressable alias. Class instances are always handled
// through one.
type Reference struct {
	Elem *Type
}

type Array struct {
	Elem *Type
	Size int64
}

type Tuple struct {
	Elems []*Type
}

type Function struct {
	Params []*Type
	Ret    *Type
}

type Class struct {
	Name    string
	Members []*Type
}

var (
	VOID_TYPE = NewBuiltin(VOID)
	BOOL_TYPE = NewBuiltin(BOOL)
	VAR_TYPE  = NewBuiltin(VAR)
)

func NewBuiltin(kind BuiltinKind) *Type {
	return &Type{Kind: TYPE_BUILTIN, T: &Builtin{Kind: kind}}
}

func NewPointer(elem *Type) (*Type, error) {
	if !elem.IsResolved() {
		return nil, diagnostics.Fatal("pointer to unresolved type %s", elem)
	}
	return &Type{Kind: TYPE_POINTER, T: &Pointer{Elem: elem}}, nil
}

func NewReference(elem *Type) (*Type, error) {
	if !elem.IsResolved() {
		return nil, diagnostics.Fatal("reference to unresolved type %s", elem)
	}
	return &Type{Kind: TYPE_REFERENCE, T: &Reference{Elem: elem}}, nil
}

func NewArray(elem *Type, size int64) (*Type, error) {
	if !elem.IsResolved() {
		return nil, diagnostics.Fatal("array of unresolved type %s", elem)
	}
	if size < 0 {
		return nil, diagnostics.Fatal("array of %s with negative size %d", elem, size)
	}
	return &Type{Kind: TYPE_ARRAY, T: &Array{Elem: elem, Size: size}}, nil
}

func NewTuple(elems []*Type) (*Type, error) {
	if len(elems) == 0 {
		return nil, diagnostics.Fatal("tuple without elements")
	}
	for _, elem := range elems {
		if !elem.IsResolved() {
			return nil, diagnostics.Fatal("tuple with unresolved element %s", elem)
		}
	}
	return &Type{Kind: TYPE_TUPLE, T: &Tuple{Elems: elems}}, nil
}

func NewFunction(params []*Type, ret *Type) (*Type, error) {
	if !ret.IsResolved() {
		return nil, diagnostics.Fatal("function returning unresolved type %s", ret)
	}
	for _, param := range params {
		if !param.IsResolved() || param.IsVoid() {
			return nil, diagnostics.Fatal("function with invalid parameter type %s", param)
		}
	}
	return &Type{Kind: TYPE_FUNCTION, T: &Function{Params: params, Ret: ret}}, nil
}

func NewClass(name string, members []*Type) (*Type, error) {
	if name == "" {
		return nil, diagnostics.Fatal("class type without a name")
	}
	if len(members) == 0 {
		return nil, diagnostics.Fatal("class type '%s' without members", name)
	}
	for _, member := range members {
		if !member.IsResolved() || member.IsVoid() {
			return nil, diagnostics.Fatal("class '%s' with invalid member type %s", name, member)
		}
	}
	return &Type{Kind: TYPE_CLASS, T: &Class{Name: name, Members: members}}, nil
}

// Matches compares two types structurally.
func Matches(a, b *Type) bool {
	if a == nil || b == nil {
		return false
	}
	if a == b {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case TYPE_BUILTIN:
		return a.T.(*Builtin).Equals(b.T.(*Builtin))
	case TYPE_POINTER:
		return Matches(a.T.(*Pointer).Elem, b.T.(*Pointer).Elem)
	case TYPE_REFERENCE:
		return Matches(a.T.(*Reference).Elem, b.T.(*Reference).Elem)
	case TYPE_ARRAY:
		left, right := a.T.(*Array), b.T.(*Array)
		return left.Size == right.Size && Matches(left.Elem, right.Elem)
	case TYPE_TUPLE:
		return matchesAll(a.T.(*Tuple).Elems, b.T.(*Tuple).Elems)
	case TYPE_FUNCTION:
		left, right := a.T.(*Function), b.T.(*Function)
		return Matches(left.Ret, right.Ret) && matchesAll(left.Params, right.Params)
	case TYPE_CLASS:
		left, right := a.T.(*Class), b.T.(*Class)
		return left.Name == right.Name && matchesAll(left.Members, right.Members)
	default:
		return false
	}
}

func matchesAll(left, right []*Type) bool {
	if len(left) != len(right) {
		return false
	}
	for i := range left {
		if !Matches(left[i], right[i]) {
			return false
		}
	}
	return true
}

func (ty *Type) Matches(other *Type) bool {
	return Matches(ty, other)
}

func (ty *Type) builtin() (*Builtin, bool) {
	if ty == nil || ty.Kind != TYPE_BUILTIN {
		return nil, false
	}
	return ty.T.(*Builtin), true
}

func (ty *Type) BuiltinKind() (BuiltinKind, bool) {
	b, ok := ty.builtin()
	if !ok {
		return 0, false
	}
	return b.Kind, true
}

func (ty *Type) Is(kind BuiltinKind) bool {
	b, ok := ty.builtin()
	return ok && b.Kind == kind
}

func (ty *Type) IsVoid() bool { return ty.Is(VOID) }

func (ty *Type) IsVar() bool { return ty.Is(VAR) }

func (ty *Type) IsBool() bool { return ty.Is(BOOL) }

func (ty *Type) IsInteger() bool {
	b, ok := ty.builtin()
	return ok && b.Kind.IsInteger()
}

func (ty *Type) IsFloatingPoint() bool {
	b, ok := ty.builtin()
	return ok && b.Kind.IsFloat()
}

func (ty *Type) IsNumeric() bool {
	b, ok := ty.builtin()
	return ok && b.Kind.IsNumeric()
}

func (ty *Type) IsSigned() bool {
	b, ok := ty.builtin()
	return ok && b.Kind.IsSigned()
}

func (ty *Type) BitSize() int {
	b, ok := ty.builtin()
	if !ok {
		return -1
	}
	return b.Kind.BitSize()
}

func (ty *Type) IsPointer() bool {
	return ty != nil && ty.Kind == TYPE_POINTER
}

func (ty *Type) IsReference() bool {
	return ty != nil && ty.Kind == TYPE_REFERENCE
}

func (ty *Type) IsClass() bool {
	return ty != nil && ty.Kind == TYPE_CLASS
}

// Elem returns the type wrapped by a pointer, reference or array.
func (ty *Type) Elem() *Type {
	if ty == nil {
		return nil
	}
	switch ty.Kind {
	case TYPE_POINTER:
		return ty.T.(*Pointer).Elem
	case TYPE_REFERENCE:
		return ty.T.(*Reference).Elem
	case TYPE_ARRAY:
		return ty.T.(*Array).Elem
	default:
		return nil
	}
}

// ClassOf unwraps references and a single level of pointer down to a class
// type. It returns nil when ty does not denote a class instance.
func ClassOf(ty *Type) *Class {
	if ty.IsPointer() {
		ty = ty.Elem()
	}
	if ty.IsReference() {
		ty = ty.Elem()
	}
	if !ty.IsClass() {
		return nil
	}
	return ty.T.(*Class)
}

// IsResolved reports whether ty is fully known, i.e. it is not nil and no
// inferred placeholder is left anywhere inside it.
func (ty *Type) IsResolved() bool {
	if ty == nil {
		return false
	}
	switch ty.Kind {
	case TYPE_BUILTIN:
		return !ty.IsVar()
	case TYPE_POINTER, TYPE_REFERENCE, TYPE_ARRAY:
		return ty.Elem().IsResolved()
	case TYPE_TUPLE:
		return allResolved(ty.T.(*Tuple).Elems)
	case TYPE_FUNCTION:
		fn := ty.T.(*Function)
		return fn.Ret.IsResolved() && allResolved(fn.Params)
	case TYPE_CLASS:
		return allResolved(ty.T.(*Class).Members)
	default:
		return false
	}
}

func allResolved(tys []*Type) bool {
	for _, ty := range tys {
		if !ty.IsResolved() {
			return false
		}
	}
	return true
}

func (ty *Type) String() string {
	if ty == nil {
		return "<unresolved>"
	}
	switch ty.Kind {
	case TYPE_BUILTIN:
		return ty.T.(*Builtin).String()
	case TYPE_POINTER:
		return ty.Elem().String() + "*"
	case TYPE_REFERENCE:
		return ty.Elem().String() + "&"
	case TYPE_ARRAY:
		arr := ty.T.(*Array)
		return fmt.Sprintf("%s[%d]", arr.Elem, arr.Size)
	case TYPE_TUPLE:
		return "(" + joinTypes(ty.T.(*Tuple).Elems) + ")"
	case TYPE_FUNCTION:
		fn := ty.T.(*Function)
		return fmt.Sprintf("(%s) -> %s", joinTypes(fn.Params), fn.Ret)
	case TYPE_CLASS:
		return ty.T.(*Class).Name
	default:
		return fmt.Sprintf("Type(%d)", int(ty.Kind))
	}
}

func joinTypes(tys []*Type) string {
	names := make([]string, len(tys))
	for i, ty := range tys {
		names[i] = ty.String()
	}
	return strings.Join(names, ", ")
}
