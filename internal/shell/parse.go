package shell

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// ErrEmptyCommand is returned when the command line has no content.
var ErrEmptyCommand = errors.New("command required")

// variantForShell maps a shell binary onto the grammar it accepts. Shells
// without a matching grammar (zsh, fish, ...) report false and their command
// lines are not parsed.
func variantForShell(shell string) (syntax.LangVariant, bool) {
	switch filepath.Base(strings.TrimSpace(shell)) {
	case "sh", "dash", "ash", "busybox":
		return syntax.LangPOSIX, true
	case "bash":
		return syntax.LangBash, true
	case "mksh", "ksh":
		return syntax.LangMirBSDKorn, true
	default:
		return 0, false
	}
}

// Check parses command as a /bin/sh command line and returns the names of
// the programs it invokes, in source order.
func Check(command string) ([]string, error) {
	return CheckFor(defaultShell, command)
}

// CheckFor parses command with the grammar of shell and returns the names of
// the programs it invokes, in source order. Names built from expansions are
// reported as they are written. For shells whose grammar is unknown only
// emptiness is checked and no names are returned.
func CheckFor(shell, command string) ([]string, error) {
	if strings.TrimSpace(command) == "" {
		return nil, ErrEmptyCommand
	}
	variant, ok := variantForShell(shell)
	if !ok {
		return nil, nil
	}
	parser := syntax.NewParser(
		syntax.Variant(variant),
		syntax.KeepComments(false),
	)
	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return nil, fmt.Errorf("parse command: %w", err)
	}

	var programs []string
	syntax.Walk(file, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}
		var sb strings.Builder
		printer := syntax.NewPrinter()
		if err := printer.Print(&sb, call.Args[0]); err == nil && sb.Len() > 0 {
			programs = append(programs, sb.String())
		}
		return true
	})
	return programs, nil
}
