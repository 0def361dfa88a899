package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ttrsync/internal/config"
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
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
	if !result.NotExist {
		t.Fatal("expected NotExist for missing dir")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.ttr")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
	if result.NotExist {
		t.Fatal("a regular file is not a missing path")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil, t.TempDir()); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_SkipsMissingStateDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(t.TempDir(), "state")

	results := RunAll(&cfg, t.TempDir())
	if len(results) != 1 {
		t.Fatalf("expected only the sync directory check, got %d", len(results))
	}
	if err := Err(results); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestRunAll_ChecksExistingStateDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()

	results := RunAll(&cfg, t.TempDir())
	if len(results) != 2 {
		t.Fatalf("expected sync and state checks, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestErrNamesFailedChecks(t *testing.T) {
	err := Err([]Result{
		{Name: "Sync directory", Passed: true},
		{Name: "State directory", Detail: "/x (error: does not exist)"},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "State directory") || strings.Contains(err.Error(), "Sync directory") {
		t.Fatalf("unexpected error text %q", err)
	}
}
