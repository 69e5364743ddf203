package sema

import (
	"github.com/grove-lang/grove/internal/ast"
	"github.com/grove-lang/grove/internal/casting"
	"github.com/grove-lang/grove/internal/diagnostics"
	"github.com/grove-lang/grove/internal/scope"
	"github.com/grove-lang/grove/internal/types"
)

func (r *Resolver) isCallee(id ast.NodeID) bool {
	parent := r.module.Node(r.module.Node(id).Parent)
	return parent != nil && parent.Kind == ast.KIND_CALL_EXPR && r.module.Tree.Callee(parent.ID) == id
}

func (r *Resolver) resolveId(id ast.NodeID) error {
	node := r.module.Node(id)
	name := node.Name()

	sym, ok := r.ctx.current().Lookup(name)
	if !ok {
		return r.errorf(diagnostics.UNRESOLVED_REFERENCE, id, "'%s' is not defined", name)
	}

	switch sym.Kind {
	case scope.SYMBOL_MEMBER:
		return r.errorf(diagnostics.UNRESOLVED_REFERENCE, id, "'%s' is a member, access it through '%s.%s'", name, receiverName, name)
	case scope.SYMBOL_METHOD:
		return r.errorf(diagnostics.UNRESOLVED_REFERENCE, id, "method '%s' must be called through an instance", name)
	case scope.SYMBOL_VAR, scope.SYMBOL_PARAM:
		if r.enclosingFunction(ast.NodeID(sym.Decl)) != r.enclosingFunction(id) {
			return r.errorf(diagnostics.UNRESOLVED_REFERENCE, id, "'%s' belongs to an enclosing function", name)
		}
	case scope.SYMBOL_CLASS, scope.SYMBOL_FUNC, scope.SYMBOL_EXTERN:
		if !r.isCallee(id) {
			return r.errorf(diagnostics.TYPE_MISMATCH, id, "%s '%s' is not a value", sym.Kind, name)
		}
	}

	r.module.Refs[id] = sym
	node.Type = sym.Type
	return nil
}

func (r *Resolver) resolveLiteral(id ast.NodeID) error {
	node := r.module.Node(id)
	literal := node.Data.(*ast.LiteralExpr)
	node.Type = types.NewBuiltin(literal.Kind)
	return nil
}

func (r *Resolver) resolveUnary(id ast.NodeID) error {
	node := r.module.Node(id)
	operand := r.module.Node(r.module.Tree.Child(id, 0))
	if !operand.Type.IsNumeric() || operand.Type.IsBool() {
		return r.errorf(
			diagnostics.TYPE_MISMATCH, id,
			"operator '%s' is not defined for '%s'", node.Data.(*ast.UnaryExpr).Op, operand.Type,
		)
	}
	node.Type = operand.Type
	return nil
}

// isAssignable reports whether id denotes a storage location.
func (r *Resolver) isAssignable(id ast.NodeID) bool {
	sym, ok := r.module.Refs[id]
	if !ok {
		return false
	}
	switch sym.Kind {
	case scope.SYMBOL_VAR, scope.SYMBOL_PARAM, scope.SYMBOL_MEMBER:
		return true
	}
	return false
}

func (r *Resolver) resolveBinary(id ast.NodeID) error {
	tree := r.module.Tree
	node := tree.Get(id)
	op := node.Data.(*ast.BinaryExpr).Op
	lhs, rhs := tree.Get(tree.Child(id, 0)), tree.Get(tree.Child(id, 1))

	switch {
	case op.IsAssign():
		if !r.isAssignable(lhs.ID) {
			return r.errorf(diagnostics.TYPE_MISMATCH, lhs.ID, "can't assign to this expression")
		}
		var err error
		if op.IsCompoundAssign() {
			err = casting.IsCompatible(op, lhs.Type, rhs.Type)
		} else {
			err = casting.CanAssign(lhs.Type, rhs.Type)
		}
		if err != nil {
			return r.at(id, err)
		}
		node.Type = lhs.Type
	case op.IsCompare():
		if err := casting.IsCompatible(op, lhs.Type, rhs.Type); err != nil {
			return r.at(id, err)
		}
		node.Type = types.BOOL_TYPE
	case op.IsArithmetic():
		fitting, err := casting.FittingType(lhs.Type, rhs.Type)
		if err != nil {
			return r.at(id, err)
		}
		if fitting.IsPointer() || fitting.IsBool() {
			return r.errorf(diagnostics.TYPE_MISMATCH, id, "operator '%s' is not defined for '%s'", op, fitting)
		}
		node.Type = fitting
	default:
		return diagnostics.Fatal("unimplemented binary operator: %s", op)
	}
	return nil
}

// selectOverload picks the candidate whose parameter count, receiver
// included, matches the call.
func (r *Resolver) selectOverload(candidates []ast.NodeID, args int) ast.NodeID {
	for _, candidate := range candidates {
		if r.module.Tree.Func(candidate).NumParams == args+1 {
			return candidate
		}
	}
	return ast.NoNode
}

func (r *Resolver) resolveCall(id ast.NodeID) error {
	tree := r.module.Tree
	node := tree.Get(id)
	callee := tree.Get(tree.Callee(id))
	args := tree.Args(id)

	var target ast.NodeID
	var receiver bool

	switch callee.Kind {
	case ast.KIND_ID_EXPR:
		sym := r.module.Refs[callee.ID]
		switch sym.Kind {
		case scope.SYMBOL_FUNC, scope.SYMBOL_EXTERN:
			target = ast.NodeID(sym.Decl)
		case scope.SYMBOL_CLASS:
			class := ast.NodeID(sym.Decl)
			target = r.selectOverload(r.module.Ctors[class], len(args))
			if target == ast.NoNode {
				return r.errorf(diagnostics.TYPE_MISMATCH, id, "no constructor of '%s' takes %d argument(s)", sym.Name, len(args))
			}
			receiver = true
		default:
			return r.errorf(diagnostics.TYPE_MISMATCH, id, "%s '%s' is not callable", sym.Kind, sym.Name)
		}
	case ast.KIND_ACCESS_EXPR:
		if _, isMember := r.module.Refs[callee.ID]; isMember {
			return r.errorf(diagnostics.TYPE_MISMATCH, id, "member '%s' is not callable", callee.Name())
		}
		object := tree.Get(tree.Child(callee.ID, 0))
		class, _ := r.module.ClassDecl(object.Type)
		target = r.selectOverload(r.module.Methods(class, callee.Name()), len(args))
		if target == ast.NoNode {
			return r.errorf(diagnostics.TYPE_MISMATCH, id, "no method '%s' takes %d argument(s)", callee.Name(), len(args))
		}
		receiver = true
	default:
		return r.errorf(diagnostics.TYPE_MISMATCH, id, "expression of type '%s' is not callable", callee.Type)
	}

	if err := r.resolve(target); err != nil {
		return err
	}
	fn := tree.Get(target).Type.T.(*types.Function)
	params := fn.Params
	if receiver {
		params = params[1:]
	}
	if len(params) != len(args) {
		return r.errorf(
			diagnostics.TYPE_MISMATCH, id,
			"%s expects %d argument(s), got %d", describe(tree.Get(target)), len(params), len(args),
		)
	}
	for i, arg := range args {
		if err := casting.CanAssign(params[i], tree.Get(arg).Type); err != nil {
			return r.at(arg, err)
		}
	}

	r.module.Calls[id] = target
	if tree.Get(target).Kind == ast.KIND_CTOR_DECL {
		node.Type = callee.Type
	} else {
		node.Type = fn.Ret
	}
	return nil
}

func (r *Resolver) resolveAccess(id ast.NodeID) error {
	tree := r.module.Tree
	node := tree.Get(id)
	name := node.Name()

	object := tree.Child(id, 0)
	if !tree.IsValued(object) {
		return diagnostics.Errorf(
			diagnostics.FATAL_INTERNAL, int(id), node.Pos,
			"access to '%s' without a value-producing access site", name,
		)
	}
	objectType := tree.Get(object).Type
	class, ok := r.module.ClassDecl(objectType)
	if !ok {
		return r.errorf(diagnostics.TYPE_MISMATCH, id, "'%s' has no member '%s'", objectType, name)
	}

	if sym, ok := r.module.Member(class, name); ok {
		r.module.Refs[id] = sym
		node.Type = sym.Type
		return nil
	}

	methods := r.module.Methods(class, name)
	if len(methods) == 0 {
		return r.errorf(diagnostics.UNRESOLVED_REFERENCE, id, "class '%s' has no member '%s'", tree.Get(class).Name(), name)
	}
	if !r.isCallee(id) {
		return r.errorf(diagnostics.TYPE_MISMATCH, id, "method '%s' must be called", name)
	}
	if err := r.resolve(methods[0]); err != nil {
		return err
	}
	node.Type = tree.Get(methods[0]).Type
	return nil
}

func (r *Resolver) resolveReturn(id ast.NodeID) error {
	tree := r.module.Tree
	node := tree.Get(id)
	node.Type = types.VOID_TYPE

	fn := r.enclosingFunction(id)
	if fn == ast.NoNode {
		return r.errorf(diagnostics.INVALID_CHILD, id, "return outside of a function body")
	}
	ret := tree.Get(fn).Type.T.(*types.Function).Ret

	value := tree.Initializer(id)
	if value == ast.NoNode {
		if !ret.IsVoid() {
			return r.errorf(diagnostics.TYPE_MISMATCH, id, "%s must return a value of type '%s'", describe(tree.Get(fn)), ret)
		}
		return nil
	}
	if ret.IsVoid() {
		return r.errorf(diagnostics.TYPE_MISMATCH, value, "%s doesn't return a value", describe(tree.Get(fn)))
	}
	if err := casting.CanAssign(ret, tree.Get(value).Type); err != nil {
		return r.at(value, err)
	}
	return nil
}

func (r *Resolver) resolveIf(id ast.NodeID) error {
	tree := r.module.Tree
	tree.Get(id).Type = types.VOID_TYPE

	cond := tree.Get(tree.Child(id, 0))
	if !cond.Type.IsInteger() {
		return r.errorf(diagnostics.TYPE_MISMATCH, cond.ID, "condition must be a bool or an integer, not '%s'", cond.Type)
	}
	return nil
}
