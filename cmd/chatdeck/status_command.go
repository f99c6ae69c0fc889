package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"chatdeck/internal/preflight"
)

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check directories, shell and configuration documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cfg)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(results)+1)
			for _, r := range results {
				rows = append(rows, []string{r.Name, passLabel(r.Passed, colorize), r.Detail})
			}
			rows = append(rows, []string{"Exec endpoint", yesNo(cfg.Exec.Enabled), cfg.Exec.Shell})
			fmt.Fprintln(out, renderTable([]string{"Check", "OK", "Detail"}, rows, nil))

			if !preflight.AllPassed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}

func passLabel(passed, colorize bool) string {
	label := yesNo(passed)
	if !colorize {
		return label
	}
	if passed {
		return ansiGreen + label + ansiReset
	}
	return ansiRed + label + ansiReset
}
