package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chatdeck/internal/uploads"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Copy a local file into the uploads directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			saver := uploads.NewSaver(cfg.Paths.UploadsDir, uploads.WithLogger(ctx.log()))

			file := uploads.FromPath(args[0])
			if strings.TrimSpace(name) != "" {
				file = uploads.FromPathAs(args[0], name)
			}
			path, err := saver.Save(file)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Store the file under a different name")
	return cmd
}
