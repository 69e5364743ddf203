package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/grove-lang/grove/internal/compiler"
	"github.com/grove-lang/grove/internal/config"
	"github.com/grove-lang/grove/internal/diagnostics"
)

var version = "0.1.0-dev"

const (
	EXIT_USER_ERROR = 1
	EXIT_INTERNAL   = 70
)

var HELP_LONG string = `grove - a small class-based language compiled through LLVM.

Sources are resolved (names, types, classes, constructors) and then lowered
to LLVM IR, or to a textual operation trace with --emit trace.

Examples:
  grove check                        Resolve the project in the current directory
  grove check main.grv --watch       Re-check main.grv on every save
  grove build path/to/project        Build the program in the specified directory
  grove build main.grv --release     Build main.grv in release mode
  grove build main.grv --emit llvm-ir -o main.ll
  grove env                          Display environment details
`

type exitCodeError struct {
	code int
	err  error
}

func (e exitCodeError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e exitCodeError) ExitCode() int {
	if e.code <= 0 {
		return EXIT_USER_ERROR
	}
	return e.code
}

func (e exitCodeError) Unwrap() error {
	return e.err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "grove",
		Short:         "Compiler for the grove language",
		Long:          HELP_LONG,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newCheckCmd(),
		newBuildCmd(),
		newEnvCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the compiler version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "grove %s\n", version)
		},
	}
}

// target is the source file a command works on, with the project settings
// that apply to it.
type target struct {
	project *config.Project
	path    string
}

// loadTarget accepts a project directory or a single source file. A file
// uses the project file of its directory, if any, with main set to it.
func loadTarget(arg string) (*target, error) {
	info, err := os.Stat(arg)
	if err != nil {
		return nil, fmt.Errorf("no such file or directory: %s", arg)
	}

	if info.IsDir() {
		project, err := config.LoadProject(arg)
		if err != nil {
			return nil, err
		}
		return &target{project: project, path: filepath.Join(arg, project.Main)}, nil
	}

	project, err := config.LoadProject(filepath.Dir(arg))
	if err != nil {
		return nil, err
	}
	project.Main = filepath.Base(arg)
	return &target{project: project, path: arg}, nil
}

func targetArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(w, "[grove] ", 0)
}

// reportDiags prints the collected diagnostics and turns err into the exit
// status: internal errors exit with EXIT_INTERNAL, everything else with
// EXIT_USER_ERROR.
func reportDiags(w io.Writer, collector *diagnostics.Collector, err error) error {
	for _, diag := range collector.Diags {
		fmt.Fprintln(w, compiler.Format(diag))
	}
	if collector.HasFatal() || diagnostics.IsFatal(err) {
		return exitCodeError{code: EXIT_INTERNAL}
	}
	if len(collector.Diags) == 0 {
		return exitCodeError{code: EXIT_USER_ERROR, err: err}
	}
	return exitCodeError{code: EXIT_USER_ERROR}
}
