package preflight

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"chatdeck/internal/confstore"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckLazyDirectory is CheckDirectoryAccess for directories created on first
// use: a missing directory passes when its nearest existing ancestor is writable.
func CheckLazyDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}
	parent := path
	for {
		next := parentDir(parent)
		if next == parent {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing parent)", path)}
		}
		parent = next
		if info, err := os.Stat(parent); err == nil {
			if !info.IsDir() {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s is not a directory)", path, parent)}
			}
			break
		}
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (created on first use)", path)}
}

// CheckBinary verifies that command resolves to an executable.
func CheckBinary(name, command string) Result {
	command = strings.TrimSpace(command)
	if command == "" {
		return Result{Name: name, Detail: "command not configured"}
	}
	resolved, err := exec.LookPath(command)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found", command)}
	}
	return Result{Name: name, Passed: true, Detail: resolved}
}

// CheckDocuments verifies that every configuration document present in the
// store parses. Missing documents are fine.
func CheckDocuments(store *confstore.Store) Result {
	const name = "Configuration documents"

	names := append([]string{confstore.GlobalName}, confstore.PartialNames()...)
	var broken []string
	for _, doc := range names {
		if _, err := store.Read(doc); err != nil {
			var parseErr *confstore.ParseError
			if errors.As(err, &parseErr) {
				broken = append(broken, doc+": parse error")
				continue
			}
			broken = append(broken, fmt.Sprintf("%s: %v", doc, err))
		}
	}
	if len(broken) > 0 {
		return Result{Name: name, Detail: strings.Join(broken, "; ")}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d documents readable", len(names))}
}

func parentDir(path string) string {
	trimmed := strings.TrimRight(path, string(os.PathSeparator))
	idx := strings.LastIndexByte(trimmed, os.PathSeparator)
	switch {
	case idx < 0:
		return "."
	case idx == 0:
		return string(os.PathSeparator)
	default:
		return trimmed[:idx]
	}
}
