package codegen

import (
	"github.com/grove-lang/grove/internal/ast"
	"github.com/grove-lang/grove/internal/casting"
	"github.com/grove-lang/grove/internal/lexer/token"
	"github.com/grove-lang/grove/internal/scope"
	"github.com/grove-lang/grove/internal/types"
)

func (g *Generator) expr(id ast.NodeID) (Value, error) {
	node := g.module.Node(id)
	switch node.Kind {
	case ast.KIND_LITERAL_EXPR:
		literal := node.Data.(*ast.LiteralExpr)
		if node.Type.IsFloatingPoint() {
			return g.backend.ConstFloat(node.Type, literal.Float), nil
		}
		return g.backend.ConstInt(node.Type, literal.Int), nil
	case ast.KIND_ID_EXPR:
		v, err := g.variable(id)
		if err != nil {
			return nil, err
		}
		if v.alias {
			return v.ptr, nil
		}
		return g.backend.CreateLoad(v.ty, v.ptr), nil
	case ast.KIND_ACCESS_EXPR:
		ptr, err := g.memberPtr(id)
		if err != nil || node.Type.IsReference() {
			return ptr, err
		}
		return g.backend.CreateLoad(node.Type, ptr), nil
	case ast.KIND_UNARY_EXPR:
		operand, err := g.expr(g.module.Tree.Child(id, 0))
		if err != nil {
			return nil, err
		}
		return g.backend.CreateNeg(operand, node.Type.IsFloatingPoint()), nil
	case ast.KIND_BINARY_EXPR:
		return g.binary(id)
	case ast.KIND_CALL_EXPR:
		return g.call(id)
	default:
		return nil, g.fatal(id, "unimplemented expression: %s", node)
	}
}

// variable returns the binding of the variable or parameter an ID denotes.
func (g *Generator) variable(id ast.NodeID) (*variable, error) {
	sym, ok := g.module.Refs[id]
	if !ok {
		return nil, g.fatal(id, "%s is not bound to a symbol", g.module.Node(id))
	}
	v, ok := sym.Value.(*variable)
	if !ok {
		return nil, g.fatal(id, "%s '%s' is used before it is built", sym.Kind, sym.Name)
	}
	return v, nil
}

// address returns where the value denoted by an ID or ACCESS lives. For
// references that is the address of the referent.
func (g *Generator) address(id ast.NodeID) (Value, error) {
	node := g.module.Node(id)
	switch node.Kind {
	case ast.KIND_ID_EXPR:
		v, err := g.variable(id)
		if err != nil {
			return nil, err
		}
		if !v.alias && v.ty.IsReference() {
			return g.backend.CreateLoad(v.ty, v.ptr), nil
		}
		return v.ptr, nil
	case ast.KIND_ACCESS_EXPR:
		return g.memberPtr(id)
	default:
		return nil, g.fatal(id, "%s is not addressable", node)
	}
}

// reference evaluates id as the address of its value, spilling values that
// have none to a temporary.
func (g *Generator) reference(id ast.NodeID) (Value, error) {
	node := g.module.Node(id)
	switch {
	case node.Type.IsReference():
		return g.expr(id)
	case node.Kind == ast.KIND_ID_EXPR || node.Kind == ast.KIND_ACCESS_EXPR:
		return g.address(id)
	}
	v, err := g.expr(id)
	if err != nil {
		return nil, err
	}
	tmp := g.backend.CreateAlloca(node.Type, "")
	g.backend.CreateStore(v, tmp)
	return tmp, nil
}

func (g *Generator) memberPtr(id ast.NodeID) (Value, error) {
	tree := g.module.Tree
	object := tree.Child(id, 0)

	base, err := g.expr(object)
	if err != nil {
		return nil, err
	}
	class, ok := g.module.ClassDecl(tree.Get(object).Type)
	if !ok {
		return nil, g.fatal(id, "member access on '%s'", tree.Get(object).Type)
	}
	sym, ok := g.module.Refs[id]
	if !ok || sym.Kind != scope.SYMBOL_MEMBER {
		return nil, g.fatal(id, "%s does not denote a member", tree.Get(id))
	}
	return g.backend.CreateMemberPtr(tree.Get(class).Type.Elem(), base, sym.Index), nil
}

// convert casts v from one type to another under the assignment policy.
// A reference converted to a non-reference is loaded first.
func (g *Generator) convert(v Value, from, to *types.Type) Value {
	if from.IsReference() && !to.IsReference() {
		from = from.Elem()
		v = g.backend.CreateLoad(from, v)
	}
	if op := casting.Select(from, to); op != casting.NONE {
		return g.backend.CreateCast(op, v, to)
	}
	return v
}

// store writes v into the location dst of type to. Locations of reference
// type receive a copy of the referent.
func (g *Generator) store(v Value, from, to *types.Type, dst Value) Value {
	if to.IsReference() {
		to = to.Elem()
	}
	v = g.convert(v, from, to)
	g.backend.CreateStore(v, dst)
	return v
}

func (g *Generator) binary(id ast.NodeID) (Value, error) {
	tree := g.module.Tree
	node := tree.Get(id)
	op := node.Data.(*ast.BinaryExpr).Op
	lhs, rhs := tree.Get(tree.Child(id, 0)), tree.Get(tree.Child(id, 1))

	if op.IsAssign() {
		return g.assign(op, lhs, rhs)
	}

	l, err := g.expr(lhs.ID)
	if err != nil {
		return nil, err
	}
	r, err := g.expr(rhs.ID)
	if err != nil {
		return nil, err
	}

	if op.IsCompare() {
		fitting, err := casting.FittingType(lhs.Type, rhs.Type)
		if err != nil {
			return nil, g.fatal(id, "comparison of '%s' and '%s' survived resolution", lhs.Type, rhs.Type)
		}
		l, r = g.convert(l, lhs.Type, fitting), g.convert(r, rhs.Type, fitting)
		return g.backend.CreateCompare(predicate(op, fitting), l, r), nil
	}

	l, r = g.convert(l, lhs.Type, node.Type), g.convert(r, rhs.Type, node.Type)
	return g.backend.CreateBinOp(binOp(op, node.Type), l, r), nil
}

func (g *Generator) assign(op token.Kind, lhs, rhs *ast.Node) (Value, error) {
	dst, err := g.address(lhs.ID)
	if err != nil {
		return nil, err
	}
	v, err := g.expr(rhs.ID)
	if err != nil {
		return nil, err
	}

	if op.IsCompoundAssign() {
		fitting, err := casting.FittingType(lhs.Type, rhs.Type)
		if err != nil {
			return nil, g.fatal(lhs.ID, "compound assignment of '%s' to '%s' survived resolution", rhs.Type, lhs.Type)
		}
		current := g.backend.CreateLoad(lhs.Type, dst)
		l, r := g.convert(current, lhs.Type, fitting), g.convert(v, rhs.Type, fitting)
		return g.store(g.backend.CreateBinOp(binOp(op.Underlying(), fitting), l, r), fitting, lhs.Type, dst), nil
	}

	stored := g.store(v, rhs.Type, lhs.Type, dst)
	if lhs.Type.IsReference() {
		return dst, nil
	}
	return stored, nil
}

func (g *Generator) call(id ast.NodeID) (Value, error) {
	tree := g.module.Tree
	target, ok := g.module.Calls[id]
	if !ok {
		return nil, g.fatal(id, "call without a resolved target")
	}
	if err := g.declare(target); err != nil {
		return nil, err
	}
	targetNode := tree.Get(target)
	signature := targetNode.Type
	callee := tree.Get(tree.Callee(id))

	var args []Value
	var receiver Value
	switch targetNode.Kind {
	case ast.KIND_CTOR_DECL:
		receiver = g.backend.CreateAlloca(callee.Type.Elem(), "")
		args = append(args, receiver)
	case ast.KIND_METHOD_DECL:
		object, err := g.expr(tree.Child(callee.ID, 0))
		if err != nil {
			return nil, err
		}
		args = append(args, object)
	}

	params := signature.T.(*types.Function).Params[len(args):]
	for i, arg := range tree.Args(id) {
		var v Value
		var err error
		if params[i].IsReference() {
			v, err = g.reference(arg)
		} else {
			v, err = g.expr(arg)
			if err == nil {
				v = g.convert(v, tree.Get(arg).Type, params[i])
			}
		}
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	result := g.backend.CreateCall(g.functions[target], lower(signature), args)
	if receiver != nil {
		return receiver, nil
	}
	if ret := signature.T.(*types.Function).Ret; ret.IsReference() {
		slot := g.backend.CreateAlloca(ret.Elem(), "")
		g.backend.CreateStore(result, slot)
		return slot, nil
	}
	return result, nil
}

func binOp(op token.Kind, ty *types.Type) BinOp {
	float, signed := ty.IsFloatingPoint(), ty.IsSigned()
	switch op {
	case token.PLUS:
		if float {
			return OP_FADD
		}
		return OP_ADD
	case token.MINUS:
		if float {
			return OP_FSUB
		}
		return OP_SUB
	case token.STAR:
		if float {
			return OP_FMUL
		}
		return OP_MUL
	case token.SLASH:
		switch {
		case float:
			return OP_FDIV
		case signed:
			return OP_SDIV
		}
		return OP_UDIV
	default:
		switch {
		case float:
			return OP_FREM
		case signed:
			return OP_SREM
		}
		return OP_UREM
	}
}

func predicate(op token.Kind, ty *types.Type) Predicate {
	float, signed := ty.IsFloatingPoint(), ty.IsSigned()
	switch op {
	case token.EQUAL_EQUAL:
		if float {
			return PRED_OEQ
		}
		return PRED_EQ
	case token.BANG_EQUAL:
		if float {
			return PRED_ONE
		}
		return PRED_NE
	case token.LESS:
		switch {
		case float:
			return PRED_OLT
		case signed:
			return PRED_SLT
		}
		return PRED_ULT
	case token.LESS_EQ:
		switch {
		case float:
			return PRED_OLE
		case signed:
			return PRED_SLE
		}
		return PRED_ULE
	case token.GREATER:
		switch {
		case float:
			return PRED_OGT
		case signed:
			return PRED_SGT
		}
		return PRED_UGT
	default:
		switch {
		case float:
			return PRED_OGE
		case signed:
			return PRED_SGE
		}
		return PRED_UGE
	}
}
