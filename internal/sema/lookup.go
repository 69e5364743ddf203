package sema

import (
	"golang.org/x/exp/slices"

	"github.com/grove-lang/grove/internal/ast"
	"github.com/grove-lang/grove/internal/scope"
)

func ownsScope(kind ast.NodeKind) bool {
	switch kind {
	case ast.KIND_PROGRAM, ast.KIND_BLOCK_STMT, ast.KIND_CLASS_DECL:
		return true
	}
	return kind.IsFunction()
}

// scopeOf returns the scope declarations under id go into, creating scopes
// on first use.
func (r *Resolver) scopeOf(id ast.NodeID) *scope.Scope {
	if id == ast.NoNode {
		return r.module.Global
	}
	if s, ok := r.module.Scopes[id]; ok {
		return s
	}

	node := r.module.Node(id)
	if !ownsScope(node.Kind) {
		return r.scopeOf(node.Parent)
	}
	s := scope.New(r.scopeOf(node.Parent))
	r.module.Scopes[id] = s
	return s
}

func isClass(kind ast.NodeKind) bool {
	return kind == ast.KIND_CLASS_DECL
}

func anyNamed(ast.NodeKind) bool {
	return true
}

// findNamed searches the tree structurally for the declaration name denotes
// at from. Classes, functions, externs and methods are visible anywhere in
// their enclosing body; variables and parameters only after their
// declaration. Members and constructors are never found by bare name.
func (r *Resolver) findNamed(from ast.NodeID, name string, accept func(ast.NodeKind) bool) ast.NodeID {
	tree := r.module.Tree
	child := from
	for parent := tree.Get(from).Parent; parent != ast.NoNode; parent = tree.Get(parent).Parent {
		siblings := tree.Get(parent).Children
		position := slices.Index(siblings, child)
		for i, sibling := range siblings {
			node := tree.Get(sibling)
			if node.Name() != name || !accept(node.Kind) {
				continue
			}

			switch node.Kind {
			case ast.KIND_CLASS_DECL, ast.KIND_FUNC_DECL, ast.KIND_EXTERN_FUNC_DECL:
				return sibling
			case ast.KIND_METHOD_DECL:
				// constructor-named methods are reached through the class
				if tree.Get(parent).Name() != name {
					return sibling
				}
			case ast.KIND_VAR_DECL, ast.KIND_PARAM:
				if i < position {
					return sibling
				}
			}
		}
		child = parent
	}
	return ast.NoNode
}

// findDuplicate looks for another named declaration called name among the
// declarations visible from decl.
func (r *Resolver) findDuplicate(decl ast.NodeID, name string) ast.NodeID {
	tree := r.module.Tree
	for parent := tree.Get(decl).Parent; parent != ast.NoNode; parent = tree.Get(parent).Parent {
		for _, sibling := range tree.Get(parent).Children {
			if sibling == decl {
				continue
			}
			node := tree.Get(sibling)
			switch node.Kind {
			case ast.KIND_CLASS_DECL, ast.KIND_FUNC_DECL, ast.KIND_EXTERN_FUNC_DECL:
				if node.Name() == name {
					return sibling
				}
			}
		}
	}
	return ast.NoNode
}

// later returns whichever of a and b appears last in the source.
func (r *Resolver) later(a, b ast.NodeID) ast.NodeID {
	pa, pb := r.module.Node(a).Pos, r.module.Node(b).Pos
	if pa.Line != pb.Line {
		if pa.Line > pb.Line {
			return a
		}
		return b
	}
	if pa.Column >= pb.Column {
		return a
	}
	return b
}
