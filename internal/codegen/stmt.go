package codegen

import (
	"github.com/grove-lang/grove/internal/ast"
	"github.com/grove-lang/grove/internal/types"
)

func (g *Generator) buildBlock(block ast.NodeID) error {
	for _, stmt := range g.module.Node(block).Children {
		if g.terminated {
			break
		}
		if err := g.buildStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) buildStmt(id ast.NodeID) error {
	node := g.module.Node(id)
	switch node.Kind {
	case ast.KIND_BLOCK_STMT:
		return g.buildBlock(id)
	case ast.KIND_VAR_DECL:
		return g.buildVar(id)
	case ast.KIND_RETURN_STMT:
		return g.buildReturn(id)
	case ast.KIND_IF_STMT:
		return g.buildIf(id)
	case ast.KIND_CLASS_DECL, ast.KIND_FUNC_DECL, ast.KIND_EXTERN_FUNC_DECL, ast.KIND_CTOR_DECL:
		// emitted by buildProgram
		return nil
	}
	if node.Kind.IsExpr() {
		_, err := g.expr(id)
		return err
	}
	return g.fatal(id, "unimplemented statement: %s", node)
}

func (g *Generator) buildVar(id ast.NodeID) error {
	tree := g.module.Tree
	node := tree.Get(id)
	value := tree.Initializer(id)

	if node.Type.IsReference() {
		var addr Value
		var err error
		if value == ast.NoNode {
			addr = g.backend.CreateAlloca(node.Type.Elem(), node.Name())
		} else {
			addr, err = g.reference(value)
			if err != nil {
				return err
			}
		}
		return g.bind(id, &variable{ty: node.Type, ptr: addr, alias: true})
	}

	slot := g.backend.CreateAlloca(node.Type, node.Name())
	if value != ast.NoNode {
		v, err := g.expr(value)
		if err != nil {
			return err
		}
		g.store(v, tree.Get(value).Type, node.Type, slot)
	}
	return g.bind(id, &variable{ty: node.Type, ptr: slot})
}

func (g *Generator) buildReturn(id ast.NodeID) error {
	tree := g.module.Tree
	value := tree.Initializer(id)
	defer func() { g.terminated = true }()

	if value == ast.NoNode {
		g.backend.CreateRetVoid()
		return nil
	}

	ret := tree.Get(g.fn).Type.T.(*types.Function).Ret
	if ret.IsReference() {
		addr, err := g.reference(value)
		if err != nil {
			return err
		}
		g.backend.CreateRet(g.backend.CreateLoad(ret.Elem(), addr))
		return nil
	}

	v, err := g.expr(value)
	if err != nil {
		return err
	}
	g.backend.CreateRet(g.convert(v, tree.Get(value).Type, ret))
	return nil
}

func (g *Generator) buildIf(id ast.NodeID) error {
	tree := g.module.Tree
	condID, thenID, elseID := tree.Child(id, 0), tree.Child(id, 1), tree.Child(id, 2)

	cond, err := g.expr(condID)
	if err != nil {
		return err
	}
	if condType := tree.Get(condID).Type; !condType.IsBool() {
		cond = g.backend.CreateCompare(PRED_NE, cond, g.backend.ConstInt(condType, 0))
	}

	fn := g.functions[g.fn]
	then := g.backend.AppendBlock(fn, "if.then")
	var els Block
	if elseID != ast.NoNode {
		els = g.backend.AppendBlock(fn, "if.else")
	}
	end := g.backend.AppendBlock(fn, "if.end")
	if els == nil {
		els = end
	}
	g.backend.CreateCondBr(cond, then, els)

	g.enter(then)
	if err := g.buildStmt(thenID); err != nil {
		return err
	}
	if !g.terminated {
		g.backend.CreateBr(end)
	}

	if elseID != ast.NoNode {
		g.enter(els)
		if err := g.buildStmt(elseID); err != nil {
			return err
		}
		if !g.terminated {
			g.backend.CreateBr(end)
		}
	}

	g.enter(end)
	return nil
}
