package sema

import (
	"github.com/grove-lang/grove/internal/ast"
	"github.com/grove-lang/grove/internal/scope"
	"github.com/grove-lang/grove/internal/types"
)

// Module is a single compilation unit: the tree, its global scope and every
// side table the resolver fills in. Nodes never point at symbols directly;
// the links live here.
type Module struct {
	Tree   *ast.Tree
	Global *scope.Scope

	// scope owned by a PROGRAM, BLOCK, CLASS or function node
	Scopes map[ast.NodeID]*scope.Scope
	// declaration node -> symbol it introduced
	Symbols map[ast.NodeID]*scope.Symbol
	// ID and ACCESS expression -> symbol it denotes
	Refs map[ast.NodeID]*scope.Symbol
	// CALL expression -> called function, method or constructor
	Calls map[ast.NodeID]ast.NodeID
	// dependency edges discovered while resolving a node
	Deps map[ast.NodeID][]ast.NodeID

	Classes map[*types.Class]ast.NodeID
	Ctors   map[ast.NodeID][]ast.NodeID

	// nodes in the order they became resolved
	Order []ast.NodeID
}

func NewModule(tree *ast.Tree) *Module {
	global := scope.New(nil)
	return &Module{
		Tree:    tree,
		Global:  global,
		Scopes:  map[ast.NodeID]*scope.Scope{tree.Root: global},
		Symbols: make(map[ast.NodeID]*scope.Symbol),
		Refs:    make(map[ast.NodeID]*scope.Symbol),
		Calls:   make(map[ast.NodeID]ast.NodeID),
		Deps:    make(map[ast.NodeID][]ast.NodeID),
		Classes: make(map[*types.Class]ast.NodeID),
		Ctors:   make(map[ast.NodeID][]ast.NodeID),
	}
}

func (m *Module) Node(id ast.NodeID) *ast.Node {
	return m.Tree.Get(id)
}

// ClassDecl returns the declaration behind a class instance type.
func (m *Module) ClassDecl(ty *types.Type) (ast.NodeID, bool) {
	class := types.ClassOf(ty)
	if class == nil {
		return ast.NoNode, false
	}
	id, ok := m.Classes[class]
	return id, ok
}

// Member returns the symbol of the named member of a class declaration.
func (m *Module) Member(class ast.NodeID, name string) (*scope.Symbol, bool) {
	classScope, ok := m.Scopes[class]
	if !ok {
		return nil, false
	}
	sym, ok := classScope.LookupCurrent(name)
	if !ok || sym.Kind != scope.SYMBOL_MEMBER {
		return nil, false
	}
	return sym, true
}

// Methods lists the methods of class called name, constructor-named ones
// included.
func (m *Module) Methods(class ast.NodeID, name string) []ast.NodeID {
	var methods []ast.NodeID
	for _, child := range m.Node(class).Children {
		node := m.Node(child)
		if node.Kind == ast.KIND_METHOD_DECL && node.Name() == name {
			methods = append(methods, child)
		}
	}
	return methods
}

// MemberDecls returns the member declarations of class in layout order.
func (m *Module) MemberDecls(class ast.NodeID) []ast.NodeID {
	var members []ast.NodeID
	for _, child := range m.Node(class).Children {
		if m.Node(child).Kind == ast.KIND_MEMBER_DECL {
			members = append(members, child)
		}
	}
	return members
}
