// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"testing"

	"github.com/grove-lang/grove/internal/ast"
	"github.com/grove-lang/grove/internal/diagnostics"
	"github.com/grove-lang/grove/internal/parser"
	"github.com/grove-lang/grove/internal/sema"
	"github.com/nalgeon/be"
)

const DefaultFilename = "test.grv"

// Parse parses src and fails the test on syntax errors.
func Parse(t testing.TB, src string) *ast.Tree {
	t.Helper()
	collector := diagnostics.New()
	tree, err := parser.ParseSource(DefaultFilename, []byte(src), collector)
	be.Err(t, err, nil)
	return tree
}

// Resolve parses and resolves src and fails the test on any diagnostic.
func Resolve(t testing.TB, src string) *sema.Module {
	t.Helper()
	collector := diagnostics.New()
	module := sema.NewModule(Parse(t, src))
	be.Err(t, sema.New(module, collector).Resolve(), nil)
	be.Equal(t, len(collector.Diags), 0)
	return module
}

// FindDecl returns the first node of kind called name.
func FindDecl(tree *ast.Tree, kind ast.NodeKind, name string) ast.NodeID {
	for _, node := range tree.Nodes {
		if node.Kind == kind && node.Name() == name {
			return node.ID
		}
	}
	return ast.NoNode
}
