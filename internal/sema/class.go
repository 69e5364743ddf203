package sema

import (
	"github.com/grove-lang/grove/internal/ast"
	"github.com/grove-lang/grove/internal/diagnostics"
	"github.com/grove-lang/grove/internal/lexer/token"
	"github.com/grove-lang/grove/internal/scope"
	"github.com/grove-lang/grove/internal/types"
)

const receiverName = "this"

func permittedInClass(kind ast.NodeKind) bool {
	switch kind {
	case ast.KIND_MEMBER_DECL, ast.KIND_METHOD_DECL, ast.KIND_CLASS_DECL, ast.KIND_CTOR_DECL:
		return true
	}
	return kind.IsInert()
}

// checkClassShape runs before any member is resolved: the class name must be
// unique among the visible declarations, and the body may only hold member
// kinds.
func (r *Resolver) checkClassShape(id ast.NodeID) error {
	node := r.module.Node(id)

	if other := r.findDuplicate(id, node.Name()); other != ast.NoNode {
		second := r.later(id, other)
		first := id
		if second == id {
			first = other
		}
		return r.errorf(
			diagnostics.DUPLICATE_DEFINITION, second,
			"'%s' is already declared at %s", node.Name(), r.module.Node(first).Pos,
		)
	}

	for _, child := range node.Children {
		kind := r.module.Node(child).Kind
		if !permittedInClass(kind) {
			return r.errorf(
				diagnostics.INVALID_CHILD, child,
				"%s is not allowed in the body of class '%s'", describeKind(kind), node.Name(),
			)
		}
	}
	return nil
}

func (r *Resolver) resolveClass(id ast.NodeID) error {
	tree := r.module.Tree
	node := tree.Get(id)
	name := node.Name()

	members := r.module.MemberDecls(id)
	if len(members) == 0 {
		return r.errorf(diagnostics.INVALID_CHILD, id, "class '%s' declares no members", name)
	}
	memberTypes := make([]*types.Type, len(members))
	for i, member := range members {
		memberTypes[i] = tree.Get(member).Type
	}

	classType, err := types.NewClass(name, memberTypes)
	if err != nil {
		return r.at(id, err)
	}
	refType, err := types.NewReference(classType)
	if err != nil {
		return r.at(id, err)
	}
	node.Type = refType
	r.module.Classes[classType.T.(*types.Class)] = id

	sym := scope.NewSymbol(name, scope.SYMBOL_CLASS, refType, int(id))
	if err := r.declare(id, sym); err != nil {
		return err
	}

	var methods, ctorMethods []ast.NodeID
	for _, child := range node.Children {
		switch tree.Get(child).Kind {
		case ast.KIND_METHOD_DECL:
			r.addReceiver(id, child)
			methods = append(methods, child)
			if tree.Get(child).Name() == name {
				ctorMethods = append(ctorMethods, child)
			}
		case ast.KIND_MEMBER_DECL:
		default:
			r.enqueue(child)
		}
	}
	for _, method := range methods {
		r.enqueue(method)
	}

	var ctors []ast.NodeID
	if len(ctorMethods) == 0 {
		ctors = append(ctors, r.defaultCtor(id))
	}
	for _, method := range ctorMethods {
		ctors = append(ctors, r.forwardingCtor(id, method))
	}

	// keep source order: the first constructor goes right after the class
	anchor := id
	for _, ctor := range ctors {
		tree.InsertAfter(anchor, ctor)
		anchor = ctor
		r.module.Ctors[id] = append(r.module.Ctors[id], ctor)
		r.enqueue(ctor)
	}
	return nil
}

func (r *Resolver) receiverType(class ast.NodeID) *ast.TypeExpr {
	node := r.module.Node(class)
	named := ast.NewNamedTypeExpr(node.Name())
	named.Pos = node.Pos
	return ast.NewPointerTypeExpr(named)
}

// addReceiver gives a method its implicit leading receiver parameter.
func (r *Resolver) addReceiver(class, method ast.NodeID) {
	tree := r.module.Tree
	params := tree.Params(method)
	if len(params) > 0 && tree.Get(params[0]).Name() == receiverName {
		return
	}
	this := tree.New(ast.KIND_PARAM, tree.Get(method).Pos, &ast.ParamDecl{
		Name: receiverName,
		Type: r.receiverType(class),
	})
	tree.AddParam(method, 0, this)
}

// newCtor allocates a constructor for class whose body starts with the
// member default assignments.
func (r *Resolver) newCtor(class ast.NodeID, pos token.Pos) (ctor, body ast.NodeID) {
	tree := r.module.Tree
	ctor = tree.New(ast.KIND_CTOR_DECL, pos, &ast.FuncDecl{
		Name:    tree.Get(class).Name(),
		RetType: ast.NewBuiltinTypeExpr(types.VOID),
	})
	body = tree.New(ast.KIND_BLOCK_STMT, pos, nil)

	for _, member := range r.module.MemberDecls(class) {
		value := tree.Initializer(member)
		if value == ast.NoNode {
			continue
		}
		memberPos := tree.Get(member).Pos
		assign := tree.New(ast.KIND_BINARY_EXPR, memberPos, &ast.BinaryExpr{Op: token.EQUAL})
		tree.Append(assign, r.receiverAccess(memberPos, tree.Get(member).Name()))
		tree.Append(assign, tree.Copy(value))
		tree.Append(body, assign)
	}
	return ctor, body
}

func (r *Resolver) receiverAccess(pos token.Pos, name string) ast.NodeID {
	tree := r.module.Tree
	access := tree.New(ast.KIND_ACCESS_EXPR, pos, &ast.AccessExpr{Name: name})
	tree.Append(access, tree.New(ast.KIND_ID_EXPR, pos, &ast.IdExpr{Name: receiverName}))
	return access
}

func (r *Resolver) finishCtor(ctor, body ast.NodeID) ast.NodeID {
	tree := r.module.Tree
	tree.Append(body, tree.New(ast.KIND_RETURN_STMT, tree.Get(body).Pos, nil))
	tree.Append(ctor, body)
	return ctor
}

// defaultCtor builds `def Class(this: Class*) { defaults...; return }`.
func (r *Resolver) defaultCtor(class ast.NodeID) ast.NodeID {
	tree := r.module.Tree
	pos := tree.Get(class).Pos
	ctor, body := r.newCtor(class, pos)

	this := tree.New(ast.KIND_PARAM, pos, &ast.ParamDecl{Name: receiverName, Type: r.receiverType(class)})
	tree.AddParam(ctor, 0, this)
	return r.finishCtor(ctor, body)
}

// forwardingCtor builds a constructor with the parameters of method whose
// body forwards them to it: `this.Class(params...); return`.
func (r *Resolver) forwardingCtor(class, method ast.NodeID) ast.NodeID {
	tree := r.module.Tree
	pos := tree.Get(method).Pos
	ctor, body := r.newCtor(class, pos)

	params := clone(tree.Params(method))
	for i, param := range params {
		tree.AddParam(ctor, i, tree.Copy(param))
	}

	call := tree.New(ast.KIND_CALL_EXPR, pos, &ast.CallExpr{})
	tree.Append(call, r.receiverAccess(pos, tree.Get(class).Name()))
	for _, param := range params[1:] {
		paramNode := tree.Get(param)
		tree.Append(call, tree.New(ast.KIND_ID_EXPR, paramNode.Pos, &ast.IdExpr{Name: paramNode.Name()}))
	}
	tree.Append(body, call)
	return r.finishCtor(ctor, body)
}

// resolveInert gives enums, properties, imports and extensions inside a class
// body a type so the module counts as resolved. They produce no code.
func (r *Resolver) resolveInert(id ast.NodeID) error {
	node := r.module.Node(id)
	if r.module.Node(node.Parent).Kind != ast.KIND_CLASS_DECL {
		return r.errorf(diagnostics.INVALID_CHILD, id, "%s is only allowed in a class body", describeKind(node.Kind))
	}
	node.Type = types.VOID_TYPE
	return nil
}
