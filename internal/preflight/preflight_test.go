package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chatdeck/internal/confstore"
	"chatdeck/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckLazyDirectory_Missing(t *testing.T) {
	result := CheckLazyDirectory("uploads", filepath.Join(t.TempDir(), "a", "b"))
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "created on first use") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckLazyDirectory_UnderFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckLazyDirectory("uploads", filepath.Join(f, "uploads"))
	if result.Passed {
		t.Fatal("expected failure when parent is a file")
	}
}

func TestCheckBinary(t *testing.T) {
	if result := CheckBinary("shell", ""); result.Passed {
		t.Fatal("expected failure for empty command")
	}
	if result := CheckBinary("shell", "chatdeck-definitely-missing-binary"); result.Passed {
		t.Fatal("expected failure for missing binary")
	}
	if _, err := os.Stat("/bin/sh"); err == nil {
		if result := CheckBinary("shell", "/bin/sh"); !result.Passed {
			t.Fatalf("expected /bin/sh to pass, got %s", result.Detail)
		}
	}
}

func TestCheckDocuments(t *testing.T) {
	dir := t.TempDir()
	store := confstore.New(dir)
	if result := CheckDocuments(store); !result.Passed {
		t.Fatalf("expected pass for empty dir, got %s", result.Detail)
	}

	if err := os.WriteFile(filepath.Join(dir, confstore.ChatName), []byte("broken = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDocuments(store)
	if result.Passed {
		t.Fatal("expected failure for unparsable document")
	}
	if !strings.Contains(result.Detail, confstore.ChatName) {
		t.Fatalf("detail should name the broken file: %q", result.Detail)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := RunAll(cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if !results[0].Passed || !results[1].Passed || !results[3].Passed {
		t.Fatalf("unexpected failures: %+v", results)
	}
	if RunAll(nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestAllPassed(t *testing.T) {
	if !AllPassed(nil) {
		t.Fatal("no results should count as passed")
	}
	if AllPassed([]Result{{Passed: true}, {Passed: false}}) {
		t.Fatal("expected false with a failure")
	}
}

func TestRunAllWithStubbedShell(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithStubbedBinaries("chatdeck-test-sh"),
		testsupport.WithShell("chatdeck-test-sh"),
	)
	results := RunAll(cfg)
	if !AllPassed(results) {
		t.Fatalf("expected all checks to pass: %+v", results)
	}
}
