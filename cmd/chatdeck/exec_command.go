package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chatdeck/internal/shell"
)

func newExecCommand(ctx *commandContext) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "exec -- <command>",
		Short: "Run a shell command and stream its output line by line",
		Long: "Runs the command through the configured shell with stdout and stderr merged,\n" +
			"printing each line as it arrives. chatdeck exits with the command's exit status.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runner := shell.NewRunner(
				shell.WithShell(cfg.Exec.Shell),
				shell.WithDir(dir),
				shell.WithLogger(ctx.log()),
			)

			out := cmd.OutOrStdout()
			result, err := runner.Run(cmd.Context(), strings.Join(args, " "), func(line string) {
				fmt.Fprintln(out, line)
			})
			if err != nil {
				return err
			}
			if result.ExitCode != 0 {
				return &exitCodeError{code: exitStatus(result.ExitCode)}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Working directory for the command")
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// exitStatus maps a signal-terminated command (-1) onto a conventional
// failure status.
func exitStatus(code int) int {
	if code < 0 {
		return 1
	}
	return code
}
