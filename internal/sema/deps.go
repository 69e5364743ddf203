package sema

import (
	"github.com/grove-lang/grove/internal/ast"
	"github.com/grove-lang/grove/internal/diagnostics"
)

// dependencies returns the nodes that must be resolved before id. Structural
// checks that decide which children are legal run here, before any child is
// touched.
func (r *Resolver) dependencies(id ast.NodeID) ([]ast.NodeID, error) {
	tree := r.module.Tree
	node := tree.Get(id)

	switch node.Kind {
	case ast.KIND_PROGRAM:
		for _, child := range node.Children {
			switch tree.Get(child).Kind {
			case ast.KIND_CLASS_DECL, ast.KIND_FUNC_DECL, ast.KIND_EXTERN_FUNC_DECL, ast.KIND_CTOR_DECL:
			default:
				return nil, r.errorf(
					diagnostics.INVALID_CHILD, child,
					"%s is not allowed at the top level", describeKind(tree.Get(child).Kind),
				)
			}
		}
		return clone(node.Children), nil
	case ast.KIND_BLOCK_STMT:
		// a function body checks its returns against the signature
		if parent := tree.Get(node.Parent); parent != nil && parent.Kind.IsFunction() && tree.Body(parent.ID) == id {
			return append([]ast.NodeID{parent.ID}, node.Children...), nil
		}
		return clone(node.Children), nil
	case ast.KIND_RETURN_STMT:
		if fn := r.enclosingFunction(id); fn != ast.NoNode {
			return append([]ast.NodeID{fn}, node.Children...), nil
		}
		return clone(node.Children), nil
	case ast.KIND_IF_STMT, ast.KIND_UNARY_EXPR, ast.KIND_BINARY_EXPR, ast.KIND_CALL_EXPR, ast.KIND_ACCESS_EXPR:
		return clone(node.Children), nil
	case ast.KIND_CLASS_DECL:
		if err := r.checkClassShape(id); err != nil {
			return nil, err
		}
		return r.module.MemberDecls(id), nil
	case ast.KIND_MEMBER_DECL, ast.KIND_VAR_DECL:
		deps := r.typeDependencies(id, tree.DeclaredType(id))
		return append(deps, node.Children...), nil
	case ast.KIND_PARAM:
		return r.typeDependencies(id, tree.DeclaredType(id)), nil
	case ast.KIND_FUNC_DECL, ast.KIND_METHOD_DECL, ast.KIND_CTOR_DECL, ast.KIND_EXTERN_FUNC_DECL:
		deps := clone(tree.Params(id))
		return append(deps, r.typeDependencies(id, tree.Func(id).RetType)...), nil
	case ast.KIND_ID_EXPR:
		decl := r.findNamed(id, node.Name(), anyNamed)
		if decl == ast.NoNode {
			return nil, nil
		}
		return []ast.NodeID{decl}, nil
	default:
		return nil, nil
	}
}

func (r *Resolver) typeDependencies(from ast.NodeID, te *ast.TypeExpr) []ast.NodeID {
	var deps []ast.NodeID
	for _, name := range te.Names() {
		if decl := r.findNamed(from, name, isClass); decl != ast.NoNode {
			deps = append(deps, decl)
		}
	}
	return deps
}

func clone(ids []ast.NodeID) []ast.NodeID {
	return append([]ast.NodeID(nil), ids...)
}

func describeKind(kind ast.NodeKind) string {
	switch kind {
	case ast.KIND_VAR_DECL:
		return "variable declaration"
	case ast.KIND_MEMBER_DECL:
		return "member declaration"
	case ast.KIND_METHOD_DECL:
		return "method"
	case ast.KIND_RETURN_STMT:
		return "return statement"
	case ast.KIND_IF_STMT:
		return "if statement"
	case ast.KIND_BLOCK_STMT:
		return "block"
	case ast.KIND_PARAM:
		return "parameter"
	}
	if kind.IsExpr() {
		return "expression"
	}
	return kind.String()
}
