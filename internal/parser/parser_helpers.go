package parser

import (
	"github.com/grove-lang/grove/internal/ast"
	"github.com/grove-lang/grove/internal/diagnostics"
	"github.com/grove-lang/grove/internal/lexer"
)

const defaultFilename = "test.grv"

// ParseSource lexes and parses src as a single file.
func ParseSource(filename string, src []byte, collector diagnostics.Reporter) (*ast.Tree, error) {
	if filename == "" {
		filename = defaultFilename
	}
	lex := lexer.New(filename, src, collector)
	return New(collector).ParseFile(lex)
}

func ParseFilePath(path string, collector diagnostics.Reporter) (*ast.Tree, error) {
	lex, err := lexer.NewFromFilePath(path, collector)
	if err != nil {
		return nil, err
	}
	return New(collector).ParseFile(lex)
}

// ParseExprFrom parses a single expression into a detached node of a new
// tree.
func ParseExprFrom(expr, filename string) (*ast.Tree, ast.NodeID, error) {
	if filename == "" {
		filename = defaultFilename
	}
	collector := diagnostics.New()
	p := New(collector)
	p.lex = lexer.New(filename, []byte(expr), collector)
	p.tree = ast.NewTree()

	id, err := p.parseExpr()
	if err != nil {
		return nil, ast.NoNode, err
	}
	return p.tree, id, nil
}
