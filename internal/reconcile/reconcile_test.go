package reconcile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"ttrsync/internal/replay"
)

func descriptor(id string, day int) replay.Descriptor {
	return replay.Descriptor{ID: id, RecordedAt: time.Date(2023, 5, day, 12, 30, 0, 0, time.UTC)}
}

func TestPlanPartitionsDescriptors(t *testing.T) {
	fsys := afero.NewMemMapFs()
	dir := "/replays"
	a := descriptor("A", 1)
	b := descriptor("B", 2)
	c := descriptor("C", 3)

	for _, name := range []string{a.Filename(), c.Filename(), "D.txt", "E.TTR"} {
		if err := afero.WriteFile(fsys, filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	if err := fsys.MkdirAll(filepath.Join(dir, "nested.ttr"), 0o755); err != nil {
		t.Fatalf("seed dir: %v", err)
	}

	plan, err := New(fsys, nil).Plan(context.Background(), dir, []replay.Descriptor{a, b})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if diff := cmp.Diff([]string{a.Path(dir), b.Path(dir)}, plan.Desired); diff != "" {
		t.Fatalf("desired mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]replay.Descriptor{b}, plan.ToDownload); diff != "" {
		t.Fatalf("to-download mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{a.Path(dir), c.Path(dir)}, plan.Existing); diff != "" {
		t.Fatalf("existing mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{c.Path(dir)}, plan.Stale()); diff != "" {
		t.Fatalf("stale mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanCreatesMissingDirectory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	plan, err := New(fsys, nil).Plan(context.Background(), "/fresh", []replay.Descriptor{descriptor("A", 1)})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	info, err := fsys.Stat("/fresh")
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory to be created: %v", err)
	}
	if len(plan.ToDownload) != 1 || len(plan.Existing) != 0 {
		t.Fatalf("unexpected plan for empty directory: %+v", plan)
	}
}

func TestPlanDuplicateFilenamesAreBothDesired(t *testing.T) {
	// Same filename, different sub-second timestamps: distinct descriptors.
	first := replay.Descriptor{ID: "A", RecordedAt: time.Date(2023, 5, 1, 12, 30, 0, 0, time.UTC)}
	second := replay.Descriptor{ID: "A", RecordedAt: first.RecordedAt.Add(100 * time.Millisecond)}
	plan, err := New(afero.NewMemMapFs(), nil).Plan(context.Background(), "/d", []replay.Descriptor{first, second})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Desired) != 2 || plan.Desired[0] != plan.Desired[1] {
		t.Fatalf("expected two identical desired paths, got %v", plan.Desired)
	}
	if len(plan.ToDownload) != 2 {
		t.Fatalf("expected both descriptors to be missing, got %d", len(plan.ToDownload))
	}
}

func TestPlanDirectoryErrors(t *testing.T) {
	base := t.TempDir()

	t.Run("parent missing", func(t *testing.T) {
		dir := filepath.Join(base, "no", "such", "parent")
		_, err := New(nil, nil).Plan(context.Background(), dir, nil)
		var createErr *DirectoryCreateError
		if !errors.As(err, &createErr) || createErr.Path != dir {
			t.Fatalf("expected DirectoryCreateError for %s, got %v", dir, err)
		}
	})

	t.Run("file in the way", func(t *testing.T) {
		path := filepath.Join(base, "plainfile")
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("seed file: %v", err)
		}
		_, err := New(nil, nil).Plan(context.Background(), path, nil)
		var createErr *DirectoryCreateError
		if !errors.As(err, &createErr) {
			t.Fatalf("expected DirectoryCreateError, got %v", err)
		}
	})
}

func TestStaleWithNothingExisting(t *testing.T) {
	if stale := (Plan{Desired: []string{"/a"}}).Stale(); len(stale) != 0 {
		t.Fatalf("expected no stale files, got %v", stale)
	}
}
