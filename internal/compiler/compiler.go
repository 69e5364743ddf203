// Package compiler runs the phases of a build over one source file: parse,
// resolve and generate.
package compiler

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/grove-lang/grove/internal/codegen"
	"github.com/grove-lang/grove/internal/diagnostics"
	"github.com/grove-lang/grove/internal/parser"
	"github.com/grove-lang/grove/internal/sema"
)

type Compiler struct {
	collector diagnostics.Reporter
	logger    *log.Logger
}

func New(collector diagnostics.Reporter) *Compiler {
	return &Compiler{
		collector: collector,
		logger:    log.New(io.Discard, "", 0),
	}
}

func (c *Compiler) SetLogger(logger *log.Logger) {
	c.logger = logger
}

// Check parses and resolves the file at path.
func (c *Compiler) Check(path string) (*sema.Module, error) {
	tree, err := parser.ParseFilePath(path, c.collector)
	if err != nil {
		return nil, err
	}
	return c.resolve(sema.NewModule(tree))
}

func (c *Compiler) CheckSource(filename string, src []byte) (*sema.Module, error) {
	tree, err := parser.ParseSource(filename, src, c.collector)
	if err != nil {
		return nil, err
	}
	return c.resolve(sema.NewModule(tree))
}

func (c *Compiler) resolve(module *sema.Module) (*sema.Module, error) {
	resolver := sema.New(module, c.collector)
	resolver.SetLogger(c.logger)
	if err := resolver.Resolve(); err != nil {
		return nil, err
	}
	c.logger.Printf("resolved %d nodes", len(module.Order))
	return module, nil
}

// Generate builds a resolved module into backend. Build errors are reported
// like resolution errors.
func (c *Compiler) Generate(module *sema.Module, backend codegen.Backend) error {
	generator := codegen.New(module, backend)
	generator.SetLogger(c.logger)

	err := generator.Build(module.Tree.Root)
	if err != nil {
		var diag *diagnostics.Diag
		if !errors.As(err, &diag) {
			diag = diagnostics.Fatal("%s", err)
		}
		c.collector.ReportAndSave(*diag)
		return fmt.Errorf("build: %w", err)
	}
	return nil
}
