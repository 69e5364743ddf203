// Package sema resolves a parsed module: it orders declarations by their
// dependencies, builds scopes, assigns a type to every node and synthesizes
// the implicit declarations classes need.
package sema

import (
	"errors"
	"io"
	"log"

	"github.com/grove-lang/grove/internal/ast"
	"github.com/grove-lang/grove/internal/diagnostics"
	"github.com/grove-lang/grove/internal/scope"
)

// context is the mutable state of one walk. The current scope lives here and
// never in the tree.
type context struct {
	scopes *scope.Stack
}

func (ctx *context) enter(s *scope.Scope) func() {
	return ctx.scopes.Enter(s)
}

func (ctx *context) current() *scope.Scope {
	return ctx.scopes.Current
}

type Resolver struct {
	module    *Module
	collector diagnostics.Reporter
	logger    *log.Logger

	ctx     *context
	pending []ast.NodeID
	failed  error
}

func New(module *Module, collector diagnostics.Reporter) *Resolver {
	return &Resolver{
		module:    module,
		collector: collector,
		logger:    log.New(io.Discard, "", 0),
		ctx:       &context{scopes: scope.NewStack(module.Global)},
	}
}

func (r *Resolver) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Resolver) Module() *Module {
	return r.module
}

// Resolve resolves the whole module.
func (r *Resolver) Resolve() error {
	return r.ResolveNode(r.module.Tree.Root)
}

// ResolveNode resolves id, its dependencies and everything scheduled while
// doing so. The first error aborts the module: it is reported once and
// returned again by every later call.
func (r *Resolver) ResolveNode(id ast.NodeID) error {
	if r.failed != nil {
		return r.failed
	}

	err := r.resolve(id)
	if err == nil {
		err = r.drain()
	}
	if err == nil && id == r.module.Tree.Root {
		err = r.checkComplete()
	}
	if err != nil {
		r.failed = err
		var diag *diagnostics.Diag
		if !errors.As(err, &diag) {
			diag = diagnostics.Fatal("%s", err)
		}
		r.collector.ReportAndSave(*diag)
		return err
	}
	return nil
}

// enqueue schedules a node whose resolution must not happen inside the
// resolution of the node that produced it (bodies, methods, synthesized
// constructors).
func (r *Resolver) enqueue(id ast.NodeID) {
	r.pending = append(r.pending, id)
}

func (r *Resolver) drain() error {
	for len(r.pending) > 0 {
		id := r.pending[0]
		r.pending = r.pending[1:]
		if err := r.resolve(id); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolve(id ast.NodeID) error {
	node := r.module.Node(id)
	if node == nil {
		return diagnostics.Fatal("resolving unknown node #%d", id)
	}

	switch node.State {
	case ast.RESOLVED, ast.BUILT:
		return nil
	case ast.RESOLVING:
		return r.errorf(diagnostics.CYCLE, id, "%s depends on itself", describe(node))
	}

	node.State = ast.RESOLVING
	r.logger.Printf("resolve %s", node)

	defer r.ctx.enter(r.scopeOf(node.Parent))()

	deps, err := r.dependencies(id)
	if err != nil {
		return err
	}
	r.module.Deps[id] = deps
	for _, dep := range deps {
		if err := r.resolve(dep); err != nil {
			return err
		}
	}

	if err := r.resolveNode(id); err != nil {
		return err
	}
	if node.Type == nil {
		return diagnostics.Fatal("%s resolved without a type", node)
	}
	node.Signed = node.Type.IsSigned()

	node.State = ast.RESOLVED
	r.module.Order = append(r.module.Order, id)
	return nil
}

func (r *Resolver) resolveNode(id ast.NodeID) error {
	node := r.module.Node(id)
	switch node.Kind {
	case ast.KIND_PROGRAM:
		return r.resolveProgram(id)
	case ast.KIND_BLOCK_STMT:
		return r.resolveBlock(id)
	case ast.KIND_CLASS_DECL:
		return r.resolveClass(id)
	case ast.KIND_MEMBER_DECL:
		return r.resolveMember(id)
	case ast.KIND_FUNC_DECL, ast.KIND_METHOD_DECL, ast.KIND_CTOR_DECL, ast.KIND_EXTERN_FUNC_DECL:
		return r.resolveFunction(id)
	case ast.KIND_PARAM:
		return r.resolveParam(id)
	case ast.KIND_VAR_DECL:
		return r.resolveVar(id)
	case ast.KIND_RETURN_STMT:
		return r.resolveReturn(id)
	case ast.KIND_IF_STMT:
		return r.resolveIf(id)
	case ast.KIND_ID_EXPR:
		return r.resolveId(id)
	case ast.KIND_LITERAL_EXPR:
		return r.resolveLiteral(id)
	case ast.KIND_UNARY_EXPR:
		return r.resolveUnary(id)
	case ast.KIND_BINARY_EXPR:
		return r.resolveBinary(id)
	case ast.KIND_CALL_EXPR:
		return r.resolveCall(id)
	case ast.KIND_ACCESS_EXPR:
		return r.resolveAccess(id)
	case ast.KIND_ENUM_DECL, ast.KIND_PROPERTY_DECL, ast.KIND_IMPORT_DECL, ast.KIND_EXTENSION_DECL:
		return r.resolveInert(id)
	default:
		return diagnostics.Fatal("unimplemented node kind for resolution: %s", node.Kind)
	}
}

// checkComplete verifies that every node reachable from the root ended up
// resolved.
func (r *Resolver) checkComplete() error {
	var missing *ast.Node
	r.module.Tree.Walk(r.module.Tree.Root, func(id ast.NodeID) bool {
		node := r.module.Node(id)
		if missing == nil && !node.IsResolved() {
			missing = node
		}
		return missing == nil
	})
	if missing != nil {
		return diagnostics.Fatal("%s was never resolved", missing)
	}
	return nil
}

func (r *Resolver) errorf(kind diagnostics.Kind, id ast.NodeID, format string, args ...any) error {
	node := r.module.Node(id)
	return diagnostics.Errorf(kind, int(id), node.Pos, format, args...)
}

// at attaches a detached diagnostic (from the type algebra) to node id.
func (r *Resolver) at(id ast.NodeID, err error) error {
	var diag *diagnostics.Diag
	if !errors.As(err, &diag) || diag.Node != diagnostics.NoNode {
		return err
	}
	located := *diag
	located.Node = int(id)
	located.Pos = r.module.Node(id).Pos
	return &located
}

func describe(node *ast.Node) string {
	switch node.Kind {
	case ast.KIND_CLASS_DECL:
		return "class '" + node.Name() + "'"
	case ast.KIND_FUNC_DECL, ast.KIND_EXTERN_FUNC_DECL:
		return "function '" + node.Name() + "'"
	case ast.KIND_METHOD_DECL:
		return "method '" + node.Name() + "'"
	case ast.KIND_CTOR_DECL:
		return "constructor of '" + node.Name() + "'"
	case ast.KIND_MEMBER_DECL:
		return "member '" + node.Name() + "'"
	}
	if name := node.Name(); name != "" {
		return "'" + name + "'"
	}
	return node.String()
}
