package ast

// Named is implemented by payloads of declarations that introduce a name.
type Named interface {
	Ident() string
}

// Typed is implemented by payloads that may carry a written type.
type Typed interface {
	Declared() *TypeExpr
}

type Program struct {
	Filename string
}

type ClassDecl struct {
	Name string
}

func (c *ClassDecl) Ident() string { return c.Name }

type MemberDecl struct {
	Name string
	Type *TypeExpr
}

func (m *MemberDecl) Ident() string       { return m.Name }
func (m *MemberDecl) Declared() *TypeExpr { return m.Type }

// FuncDecl is shared by functions, methods, constructors and externs.
// NumParams leading children are parameters.
type FuncDecl struct {
	Name      string
	RetType   *TypeExpr
	NumParams int
}

func (f *FuncDecl) Ident() string       { return f.Name }
func (f *FuncDecl) Declared() *TypeExpr { return f.RetType }

type ParamDecl struct {
	Name string
	Type *TypeExpr
}

func (p *ParamDecl) Ident() string       { return p.Name }
func (p *ParamDecl) Declared() *TypeExpr { return p.Type }

// VarDecl with a nil Type is inferred from its initializer.
type VarDecl struct {
	Name string
	Type *TypeExpr
}

func (v *VarDecl) Ident() string       { return v.Name }
func (v *VarDecl) Declared() *TypeExpr { return v.Type }

// InertDecl backs enums, properties, imports and extensions.
type InertDecl struct {
	Name string
}

func (i *InertDecl) Ident() string { return i.Name }
