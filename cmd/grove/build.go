package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/grove-lang/grove/internal/codegen"
	"github.com/grove-lang/grove/internal/codegen/llvm"
	"github.com/grove-lang/grove/internal/compiler"
	"github.com/grove-lang/grove/internal/config"
	"github.com/grove-lang/grove/internal/diagnostics"
)

type buildOptions struct {
	release bool
	debug   bool
	emit    string
	output  string
	verbose bool
}

func newBuildCmd() *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build [path]",
		Short: "Resolve and build a program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTarget(targetArg(args))
			if err != nil {
				return err
			}
			if err := opts.apply(t.project); err != nil {
				return err
			}
			return runBuild(cmd.OutOrStdout(), cmd.ErrOrStderr(), t)
		},
	}
	cmd.Flags().BoolVar(&opts.release, "release", false, "build in release mode")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "build in debug mode")
	cmd.MarkFlagsMutuallyExclusive("release", "debug")
	cmd.Flags().StringVar(&opts.emit, "emit", "", "what to produce: exe, llvm-ir or trace")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path, - for stdout")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every build step")
	return cmd
}

// apply overrides the project settings with the flags that were given.
func (opts buildOptions) apply(project *config.Project) error {
	switch {
	case opts.release:
		project.BuildType = config.RELEASE
	case opts.debug:
		project.BuildType = config.DEBUG
	}
	if opts.emit != "" {
		emit, err := config.ParseEmit(opts.emit)
		if err != nil {
			return err
		}
		project.Emit = emit
	}
	if opts.output != "" {
		project.Output = opts.output
	}
	project.Verbose = project.Verbose || opts.verbose
	return nil
}

func runBuild(stdout, stderr io.Writer, t *target) error {
	project := t.project
	logger := newLogger(stderr, project.Verbose)
	logger.Printf("building %s (%s, %s)", t.path, project.BuildType, project.Emit)

	collector := diagnostics.New()
	c := compiler.New(collector)
	c.SetLogger(logger)

	module, err := c.Check(t.path)
	if err != nil {
		return reportDiags(stderr, collector, err)
	}

	output := project.OutputPath()
	if project.Emit == config.EMIT_TRACE {
		trace := codegen.NewTrace()
		if err := c.Generate(module, trace); err != nil {
			return reportDiags(stderr, collector, err)
		}
		return writeOutput(stdout, output, trace.String()+"\n")
	}

	backend := llvm.New(project.Name, project.TargetTriple)
	defer backend.Dispose()
	if err := c.Generate(module, backend); err != nil {
		return reportDiags(stderr, collector, err)
	}
	if err := backend.Verify(); err != nil {
		return exitCodeError{code: EXIT_INTERNAL, err: fmt.Errorf("internal compiler error: invalid module: %w", err)}
	}

	if project.Emit == config.EMIT_LLVM_IR {
		return writeOutput(stdout, output, backend.String())
	}
	if output == "-" {
		return errors.New("an executable can't be written to stdout")
	}

	envs, _, err := config.LoadEnvs()
	if err != nil {
		logger.Printf("using default toolchain: %s", err)
		envs = config.DefaultEnvs()
	}
	return backend.WriteExecutable(output, project.BuildType, envs, project.Verbose, logger)
}

func writeOutput(stdout io.Writer, path, content string) error {
	if path == "-" {
		_, err := io.WriteString(stdout, content)
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}
