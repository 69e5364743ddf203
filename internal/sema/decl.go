package sema

import (
	"errors"

	"github.com/grove-lang/grove/internal/ast"
	"github.com/grove-lang/grove/internal/casting"
	"github.com/grove-lang/grove/internal/diagnostics"
	"github.com/grove-lang/grove/internal/scope"
	"github.com/grove-lang/grove/internal/types"
)

// declare adds sym to the current scope and links it to its declaration.
func (r *Resolver) declare(id ast.NodeID, sym *scope.Symbol) error {
	err := r.ctx.current().Declare(sym.Name, sym)
	if errors.Is(err, scope.ERR_SYMBOL_ALREADY_DEFINED_ON_SCOPE) {
		previous, _ := r.ctx.current().LookupCurrent(sym.Name)
		return r.errorf(
			diagnostics.DUPLICATE_DEFINITION, id,
			"'%s' is already declared at %s", sym.Name, r.module.Node(ast.NodeID(previous.Decl)).Pos,
		)
	}
	if err != nil {
		return err
	}
	r.module.Symbols[id] = sym
	return nil
}

// resolveType turns a written type into a type, looking class names up from
// the declaration at id.
func (r *Resolver) resolveType(id ast.NodeID, te *ast.TypeExpr) (*types.Type, error) {
	located := func(ty *types.Type, err error) (*types.Type, error) {
		if err != nil {
			return nil, r.at(id, err)
		}
		return ty, nil
	}

	switch te.Kind {
	case ast.TYPE_EXPR_BUILTIN:
		if te.Builtin == types.VAR {
			return nil, r.errorf(diagnostics.TYPE_MISMATCH, id, "'var' is only allowed on initialized variables")
		}
		return types.NewBuiltin(te.Builtin), nil
	case ast.TYPE_EXPR_NAMED:
		decl := r.findNamed(id, te.Name, isClass)
		if decl == ast.NoNode {
			return nil, r.errorf(diagnostics.UNRESOLVED_REFERENCE, id, "unknown type '%s'", te.Name)
		}
		if err := r.resolve(decl); err != nil {
			return nil, err
		}
		return r.module.Node(decl).Type, nil
	case ast.TYPE_EXPR_POINTER:
		elem, err := r.resolveType(id, te.Elem)
		if err != nil {
			return nil, err
		}
		return located(types.NewPointer(elem))
	case ast.TYPE_EXPR_REFERENCE:
		elem, err := r.resolveType(id, te.Elem)
		if err != nil {
			return nil, err
		}
		if elem.IsReference() {
			return elem, nil
		}
		return located(types.NewReference(elem))
	case ast.TYPE_EXPR_ARRAY:
		elem, err := r.resolveType(id, te.Elem)
		if err != nil {
			return nil, err
		}
		return located(types.NewArray(elem, te.Size))
	case ast.TYPE_EXPR_TUPLE:
		elems := make([]*types.Type, len(te.Elems))
		for i, elem := range te.Elems {
			ty, err := r.resolveType(id, elem)
			if err != nil {
				return nil, err
			}
			elems[i] = ty
		}
		return located(types.NewTuple(elems))
	default:
		return nil, diagnostics.Fatal("unknown type expression kind %d", te.Kind)
	}
}

func (r *Resolver) resolveProgram(id ast.NodeID) error {
	r.module.Node(id).Type = types.VOID_TYPE
	return nil
}

func (r *Resolver) resolveBlock(id ast.NodeID) error {
	tree := r.module.Tree
	node := tree.Get(id)
	node.Type = types.VOID_TYPE

	parent := tree.Get(node.Parent)
	if parent == nil || !parent.Kind.IsFunction() || tree.Body(parent.ID) != id {
		return nil
	}
	ret := parent.Type.T.(*types.Function).Ret
	if !ret.IsVoid() && !tree.EndsWithReturn(id) {
		return r.errorf(
			diagnostics.TYPE_MISMATCH, parent.ID,
			"%s must end with a return of '%s'", describe(parent), ret,
		)
	}
	return nil
}

func (r *Resolver) resolveMember(id ast.NodeID) error {
	tree := r.module.Tree
	node := tree.Get(id)
	class := node.Parent
	if class == ast.NoNode || tree.Get(class).Kind != ast.KIND_CLASS_DECL {
		return r.errorf(diagnostics.INVALID_CHILD, id, "member '%s' outside of a class body", node.Name())
	}

	ty, err := r.declaredOrInferred(id)
	if err != nil {
		return err
	}
	node.Type = ty

	sym := scope.NewSymbol(node.Name(), scope.SYMBOL_MEMBER, ty, int(id))
	for i, member := range r.module.MemberDecls(class) {
		if member == id {
			sym.Index = i
		}
	}
	return r.declare(id, sym)
}

func (r *Resolver) resolveVar(id ast.NodeID) error {
	node := r.module.Node(id)
	if r.enclosingFunction(id) == ast.NoNode {
		return r.errorf(diagnostics.INVALID_CHILD, id, "variable '%s' outside of a function body", node.Name())
	}

	ty, err := r.declaredOrInferred(id)
	if err != nil {
		return err
	}
	node.Type = ty
	return r.declare(id, scope.NewSymbol(node.Name(), scope.SYMBOL_VAR, ty, int(id)))
}

// declaredOrInferred computes the type of a variable or member: the written
// type, checked against the initializer, or the initializer's type.
func (r *Resolver) declaredOrInferred(id ast.NodeID) (*types.Type, error) {
	tree := r.module.Tree
	declared := tree.DeclaredType(id)
	value := tree.Initializer(id)

	if declared.IsInferred() {
		if value == ast.NoNode {
			return nil, r.errorf(diagnostics.TYPE_MISMATCH, id, "'%s' needs a type or an initial value", tree.Get(id).Name())
		}
		ty := tree.Get(value).Type
		if ty.IsVoid() {
			return nil, r.errorf(diagnostics.TYPE_MISMATCH, value, "can't use a void value to initialize '%s'", tree.Get(id).Name())
		}
		return ty, nil
	}

	ty, err := r.resolveType(id, declared)
	if err != nil {
		return nil, err
	}
	if ty.IsVoid() {
		return nil, r.errorf(diagnostics.TYPE_MISMATCH, id, "'%s' can't have type void", tree.Get(id).Name())
	}
	if value != ast.NoNode {
		if err := casting.CanAssign(ty, tree.Get(value).Type); err != nil {
			return nil, r.at(value, err)
		}
	}
	return ty, nil
}

func (r *Resolver) resolveParam(id ast.NodeID) error {
	node := r.module.Node(id)
	if node.Parent == ast.NoNode || !r.module.Node(node.Parent).Kind.IsFunction() {
		return r.errorf(diagnostics.INVALID_CHILD, id, "parameter '%s' outside of a function", node.Name())
	}

	ty, err := r.resolveType(id, r.module.Tree.DeclaredType(id))
	if err != nil {
		return err
	}
	if ty.IsVoid() {
		return r.errorf(diagnostics.TYPE_MISMATCH, id, "parameter '%s' can't have type void", node.Name())
	}
	node.Type = ty
	return r.declare(id, scope.NewSymbol(node.Name(), scope.SYMBOL_PARAM, ty, int(id)))
}

func (r *Resolver) resolveFunction(id ast.NodeID) error {
	tree := r.module.Tree
	node := tree.Get(id)
	decl := tree.Func(id)

	parent := tree.Get(node.Parent)
	switch node.Kind {
	case ast.KIND_METHOD_DECL:
		if parent == nil || parent.Kind != ast.KIND_CLASS_DECL {
			return r.errorf(diagnostics.INVALID_CHILD, id, "method '%s' outside of a class body", decl.Name)
		}
	case ast.KIND_EXTERN_FUNC_DECL:
		if tree.Body(id) != ast.NoNode {
			return r.errorf(diagnostics.INVALID_CHILD, id, "extern function '%s' can't have a body", decl.Name)
		}
	default:
		if tree.Body(id) == ast.NoNode {
			return r.errorf(diagnostics.INVALID_CHILD, id, "%s has no body", describe(node))
		}
	}

	ret, err := r.resolveType(id, decl.RetType)
	if err != nil {
		return err
	}
	params := tree.Params(id)
	paramTypes := make([]*types.Type, len(params))
	for i, param := range params {
		paramTypes[i] = tree.Get(param).Type
	}
	fnType, err := types.NewFunction(paramTypes, ret)
	if err != nil {
		return r.at(id, err)
	}
	node.Type = fnType

	switch node.Kind {
	case ast.KIND_FUNC_DECL:
		err = r.declare(id, scope.NewSymbol(decl.Name, scope.SYMBOL_FUNC, fnType, int(id)))
	case ast.KIND_EXTERN_FUNC_DECL:
		err = r.declare(id, scope.NewSymbol(decl.Name, scope.SYMBOL_EXTERN, fnType, int(id)))
	case ast.KIND_METHOD_DECL:
		if decl.Name != parent.Name() {
			err = r.declare(id, scope.NewSymbol(decl.Name, scope.SYMBOL_METHOD, fnType, int(id)))
		}
	}
	if err != nil {
		return err
	}

	if body := tree.Body(id); body != ast.NoNode {
		r.enqueue(body)
	}
	return nil
}

// enclosingFunction returns the closest function-like ancestor of id.
func (r *Resolver) enclosingFunction(id ast.NodeID) ast.NodeID {
	return r.module.Tree.FindAncestor(
		id, ast.KIND_FUNC_DECL, ast.KIND_METHOD_DECL, ast.KIND_CTOR_DECL,
	)
}
