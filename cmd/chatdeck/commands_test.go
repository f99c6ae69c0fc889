package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExecCommandStreamsAndPropagatesExitCode(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"exec", "--", "echo hello; echo oops >&2; exit 5"}, env.configPath, nil)
	var exitErr *exitCodeError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected exitCodeError, got %v", err)
	}
	if exitErr.code != 5 {
		t.Fatalf("exit code = %d, want 5", exitErr.code)
	}
	if out != "hello\noops\n" {
		t.Fatalf("unexpected output %q", out)
	}

	out, _, err = runCLI(t, []string{"exec", "echo", "-n", "ok"}, env.configPath, nil)
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	requireContains(t, out, "ok")
}

func TestUploadCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	src := filepath.Join(env.baseDir, "report.txt")
	if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"upload", src, "--name", "renamed.txt"}, env.configPath, nil)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	target := filepath.Join(env.uploadsDir, "renamed.txt")
	requireContains(t, out, target)
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read upload: %v", err)
	}
	if string(data) != "data" {
		t.Fatalf("upload content = %q", data)
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"status"}, env.configPath, nil)
	requireContains(t, out, "Config directory")
	requireContains(t, out, "Uploads directory")
	if _, statErr := os.Stat("/bin/sh"); statErr == nil && err != nil {
		t.Fatalf("status: %v", err)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatal("output to a buffer must not be colorized")
	}
}

func TestExitStatus(t *testing.T) {
	if exitStatus(-1) != 1 || exitStatus(3) != 3 {
		t.Fatal("unexpected exit status mapping")
	}
}
