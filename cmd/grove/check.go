package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/grove-lang/grove/internal/compiler"
	"github.com/grove-lang/grove/internal/diagnostics"
)

func newCheckCmd() *cobra.Command {
	var watch bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Resolve a program and report the first error",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTarget(targetArg(args))
			if err != nil {
				return err
			}
			verbose = verbose || t.project.Verbose

			if !watch {
				return runCheck(cmd.OutOrStdout(), cmd.ErrOrStderr(), t.path, verbose)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			_ = runCheck(cmd.OutOrStdout(), cmd.ErrOrStderr(), t.path, verbose)
			return watchFile(ctx, t.path, 200*time.Millisecond, func() {
				_ = runCheck(cmd.OutOrStdout(), cmd.ErrOrStderr(), t.path, verbose)
			})
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-check whenever the file changes")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every resolution step")
	return cmd
}

func runCheck(stdout, stderr io.Writer, path string, verbose bool) error {
	collector := diagnostics.New()
	c := compiler.New(collector)
	c.SetLogger(newLogger(stderr, verbose))

	if _, err := c.Check(path); err != nil {
		return reportDiags(stderr, collector, err)
	}
	fmt.Fprintf(stdout, "%s: ok\n", path)
	return nil
}

// watchFile calls onChange after path is written, coalescing bursts of
// events that arrive within debounce. It returns when ctx is done.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	// editors often replace the file instead of writing it, so watch the
	// directory
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)
		case <-timer.C:
			onChange()
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return watchErr
		}
	}
}
