package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"chatdeck/internal/config"
	"chatdeck/internal/confstore"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigPathCommand(ctx))
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigSaveCommand(ctx))
	configCmd.AddCommand(newConfigRegenerateCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample settings file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Review [paths] and [api] before running chatdeck serve.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the settings file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing settings if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate the settings file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path [name]",
		Short: "Print the configuration directory or a document path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.store()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), store.Dir())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), store.Path(args[0]))
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show a configuration document (default config.cfg)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := confstore.GlobalName
			if len(args) == 1 {
				name = args[0]
			}
			if !confstore.IsRecognized(name) {
				return fmt.Errorf("unknown config document %q (expected one of %s)", name, strings.Join(documentNames(), ", "))
			}
			store, err := ctx.store()
			if err != nil {
				return err
			}
			doc, err := store.Read(name)
			if err != nil {
				return err
			}
			return writeDocument(cmd.OutOrStdout(), doc, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, toml or json")
	return cmd
}

func newConfigSaveCommand(ctx *commandContext) *cobra.Command {
	var from string
	var format string
	var noMerge bool

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Normalize a document and save it, regenerating config.cfg",
		Long: "Reads a document from --from (a file, or - for stdin), strips empty values and\n" +
			"writes it under the given name. Saving a partial document rebuilds config.cfg\n" +
			"unless --no-merge is set. Names other than the known documents are ignored.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			data, err := readInput(cmd.InOrStdin(), from)
			if err != nil {
				return err
			}
			inputFormat := confstore.FormatFromPath(from)
			if strings.TrimSpace(format) != "" {
				inputFormat, err = confstore.ParseFormat(format)
				if err != nil {
					return err
				}
			}
			doc, err := confstore.Decode(inputFormat, data)
			if err != nil {
				return err
			}

			store, err := ctx.store()
			if err != nil {
				return err
			}
			path, err := store.Save(name, doc, !noMerge)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !confstore.IsRecognized(name) {
				fmt.Fprintf(out, "Skipped %s (not a known config document)\n", path)
				return nil
			}
			fmt.Fprintf(out, "Saved %s\n", path)
			if !noMerge {
				fmt.Fprintf(out, "Regenerated %s\n", store.Path(confstore.GlobalName))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "-", "Input file, or - for stdin")
	cmd.Flags().StringVar(&format, "format", "", "Input format: toml, json, jsonc or yaml (default from file extension)")
	cmd.Flags().BoolVar(&noMerge, "no-merge", false, "Do not regenerate config.cfg")
	return cmd
}

func newConfigRegenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate",
		Short: "Rebuild config.cfg from the partial documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.store()
			if err != nil {
				return err
			}
			path, err := store.RegenerateGlobal()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Regenerated %s\n", path)
			return nil
		},
	}
}

func documentNames() []string {
	return append(confstore.PartialNames(), confstore.GlobalName)
}

func readInput(stdin io.Reader, from string) ([]byte, error) {
	if from == "" || from == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(from)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", from, err)
	}
	return data, nil
}

func writeDocument(out io.Writer, doc confstore.Document, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table":
		rows := flattenDocument(doc)
		if len(rows) == 0 {
			fmt.Fprintln(out, "(empty)")
			return nil
		}
		fmt.Fprintln(out, renderTable([]string{"Key", "Value"}, rows, nil))
		return nil
	case "toml":
		data, err := toml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		_, err = out.Write(data)
		return err
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(doc)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// flattenDocument lists leaf values under dotted keys, sorted by key.
func flattenDocument(doc map[string]any) [][]string {
	var rows [][]string
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for key, value := range m {
			full := key
			if prefix != "" {
				full = prefix + "." + key
			}
			if nested, ok := value.(map[string]any); ok {
				walk(full, nested)
				continue
			}
			rows = append(rows, []string{full, formatValue(value)})
		}
	}
	walk("", doc)
	slices.SortFunc(rows, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
	return rows
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}
