package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grove-lang/grove/internal/codegen/llvm"
	"github.com/grove-lang/grove/internal/config"
)

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show environment information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			envs, path, err := config.LoadEnvs()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "GROVE_VERSION='%s'\n", version)
			fmt.Fprintf(out, "GROVE_ENV_FILE='%s'\n", path)
			fmt.Fprintf(out, "GROVE_TARGET='%s'\n", llvm.DefaultTriple())
			envs.Show(out)
			return nil
		},
	}
}
