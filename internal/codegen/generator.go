package codegen

import (
	"fmt"
	"io"
	"log"

	"github.com/grove-lang/grove/internal/ast"
	"github.com/grove-lang/grove/internal/diagnostics"
	"github.com/grove-lang/grove/internal/sema"
	"github.com/grove-lang/grove/internal/types"
)

// variable is the value bound to the symbol of a variable or parameter.
// An alias holds the address of its referent instead of a slot.
type variable struct {
	ty    *types.Type
	ptr   Value
	alias bool
}

type Generator struct {
	module  *sema.Module
	backend Backend
	logger  *log.Logger

	functions map[ast.NodeID]Value
	names     map[string]int

	fn         ast.NodeID
	terminated bool
}

func New(module *sema.Module, backend Backend) *Generator {
	return &Generator{
		module:    module,
		backend:   backend,
		logger:    log.New(io.Discard, "", 0),
		functions: make(map[ast.NodeID]Value),
		names:     make(map[string]int),
		fn:        ast.NoNode,
	}
}

func (g *Generator) SetLogger(logger *log.Logger) {
	g.logger = logger
}

// Build emits id, which must be the program or a function-like declaration.
// Building a node that is not resolved yet is an internal error; building
// it twice does nothing.
func (g *Generator) Build(id ast.NodeID) error {
	tree := g.module.Tree
	node := tree.Get(id)
	if node == nil {
		return diagnostics.Fatal("building unknown node #%d", id)
	}
	if node.State == ast.BUILT {
		return nil
	}

	var unresolved *ast.Node
	tree.Walk(id, func(child ast.NodeID) bool {
		if n := tree.Get(child); unresolved == nil && !n.IsResolved() {
			unresolved = n
		}
		return unresolved == nil
	})
	if unresolved != nil {
		return diagnostics.Errorf(
			diagnostics.FATAL_INTERNAL, int(unresolved.ID), unresolved.Pos,
			"%s is built before it was resolved", unresolved,
		)
	}

	var err error
	switch {
	case node.Kind == ast.KIND_PROGRAM:
		err = g.buildProgram(id)
	case node.Kind.IsFunction():
		err = g.declare(id)
		if err == nil && tree.Body(id) != ast.NoNode {
			err = g.buildFunction(id)
		}
	default:
		return diagnostics.Errorf(diagnostics.FATAL_INTERNAL, int(id), node.Pos, "%s can't be built on its own", node)
	}
	if err != nil {
		return err
	}

	tree.Walk(id, func(child ast.NodeID) bool {
		tree.Get(child).State = ast.BUILT
		return true
	})
	return nil
}

// buildProgram declares every function first so bodies can call functions
// declared after them, then emits the bodies.
func (g *Generator) buildProgram(root ast.NodeID) error {
	tree := g.module.Tree

	var functions []ast.NodeID
	tree.Walk(root, func(id ast.NodeID) bool {
		if tree.Get(id).Kind.IsFunction() {
			functions = append(functions, id)
		}
		return true
	})

	for _, fn := range functions {
		if err := g.declare(fn); err != nil {
			return err
		}
	}
	for _, fn := range functions {
		if tree.Body(fn) == ast.NoNode || tree.Get(fn).State == ast.BUILT {
			continue
		}
		if err := g.buildFunction(fn); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) declare(fn ast.NodeID) error {
	if _, ok := g.functions[fn]; ok {
		return nil
	}
	node := g.module.Node(fn)

	linkage := LINKAGE_INTERNAL
	switch {
	case node.Kind == ast.KIND_EXTERN_FUNC_DECL:
		linkage = LINKAGE_EXTERNAL
	case node.Kind == ast.KIND_FUNC_DECL && node.Parent == g.module.Tree.Root:
		linkage = LINKAGE_EXTERNAL
	}

	value := g.backend.CreateFunction(g.mangle(fn), lower(node.Type), linkage)
	g.functions[fn] = value
	if sym, ok := g.module.Symbols[fn]; ok {
		return sym.Bind(value)
	}
	return nil
}

// lower returns the signature a function has in the backend. A reference
// result is returned by value; the caller spills it to a slot it owns.
func lower(signature *types.Type) *types.Type {
	fn := signature.T.(*types.Function)
	if !fn.Ret.IsReference() {
		return signature
	}
	return &types.Type{Kind: types.TYPE_FUNCTION, T: &types.Function{Params: fn.Params, Ret: fn.Ret.Elem()}}
}

// mangle names a function after the classes and functions enclosing it.
// Externs and top-level functions keep their name.
func (g *Generator) mangle(fn ast.NodeID) string {
	tree := g.module.Tree
	node := tree.Get(fn)

	name := node.Name()
	if node.Kind == ast.KIND_CTOR_DECL {
		name += ".new"
	}
	if node.Kind != ast.KIND_EXTERN_FUNC_DECL {
		for parent := tree.Get(node.Parent); parent != nil && parent.ID != tree.Root; parent = tree.Get(parent.Parent) {
			if parent.Kind == ast.KIND_CLASS_DECL || parent.Kind.IsFunction() {
				name = parent.Name() + "." + name
			}
		}
	}

	n := g.names[name]
	g.names[name]++
	if n > 0 {
		name = fmt.Sprintf("%s.%d", name, n)
	}
	return name
}

func (g *Generator) buildFunction(fn ast.NodeID) error {
	tree := g.module.Tree
	node := tree.Get(fn)
	value := g.functions[fn]
	g.logger.Printf("build %s", node)

	g.fn = fn
	g.enter(g.backend.AppendBlock(value, "entry"))

	for i, param := range tree.Params(fn) {
		paramNode := tree.Get(param)
		slot := g.backend.CreateAlloca(paramNode.Type, paramNode.Name())
		g.backend.CreateStore(g.backend.Param(value, i), slot)
		if err := g.bind(param, &variable{ty: paramNode.Type, ptr: slot}); err != nil {
			return err
		}
	}

	if err := g.buildBlock(tree.Body(fn)); err != nil {
		return err
	}
	if !g.terminated {
		g.backend.CreateRetVoid()
		g.terminated = true
	}
	return nil
}

func (g *Generator) enter(block Block) {
	g.backend.SetInsertionPoint(block)
	g.terminated = false
}

func (g *Generator) bind(decl ast.NodeID, v *variable) error {
	sym, ok := g.module.Symbols[decl]
	if !ok {
		return g.fatal(decl, "%s has no symbol", g.module.Node(decl))
	}
	return sym.Bind(v)
}

func (g *Generator) fatal(id ast.NodeID, format string, args ...any) error {
	node := g.module.Node(id)
	return diagnostics.Errorf(diagnostics.FATAL_INTERNAL, int(id), node.Pos, format, args...)
}
