package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"ttrsync/internal/logging"
	"ttrsync/internal/replay"
)

// DirectoryCreateError reports a sync directory that is missing and could not
// be created, or a path that exists but is not a directory.
type DirectoryCreateError struct {
	Path string
	Err  error
}

func (e *DirectoryCreateError) Error() string {
	return fmt.Sprintf("create directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryCreateError) Unwrap() error { return e.Err }

// Plan is the reconciliation of remote descriptors against one directory.
type Plan struct {
	Dir string
	// Desired has one path per descriptor, in descriptor order. Two distinct
	// descriptors may map to the same path.
	Desired []string
	// ToDownload lists descriptors whose path did not exist when checked.
	ToDownload []replay.Descriptor
	// Existing lists replay files found in Dir, sorted by name.
	Existing []string
}

// Stale returns the existing replay files that no descriptor wants.
func (p Plan) Stale() []string {
	desired := make(map[string]struct{}, len(p.Desired))
	for _, path := range p.Desired {
		desired[path] = struct{}{}
	}
	var stale []string
	for _, path := range p.Existing {
		if _, ok := desired[path]; !ok {
			stale = append(stale, path)
		}
	}
	return stale
}

// Reconciler compares descriptors with the files on disk.
type Reconciler struct {
	fs     afero.Fs
	logger *slog.Logger
}

// New constructs a Reconciler over fsys. A nil fsys means the OS filesystem.
func New(fsys afero.Fs, logger *slog.Logger) *Reconciler {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Reconciler{fs: fsys, logger: logging.NewComponentLogger(logger, "reconcile")}
}

// Plan ensures dir exists, checks every descriptor's path concurrently and
// lists the replay files already present. It never deletes or downloads.
func (r *Reconciler) Plan(ctx context.Context, dir string, descriptors []replay.Descriptor) (Plan, error) {
	logger := logging.WithContext(ctx, r.logger)

	if err := r.ensureDir(dir, logger); err != nil {
		return Plan{}, err
	}

	desired := make([]string, len(descriptors))
	for i, d := range descriptors {
		desired[i] = d.Path(dir)
	}

	present := make([]bool, len(desired))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range desired {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ok, err := afero.Exists(r.fs, path)
			if err != nil {
				return fmt.Errorf("check %s: %w", path, err)
			}
			present[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Plan{}, err
	}

	var toDownload []replay.Descriptor
	for i, d := range descriptors {
		if !present[i] {
			toDownload = append(toDownload, d)
		}
	}

	existing, err := r.listReplayFiles(dir)
	if err != nil {
		return Plan{}, err
	}

	logger.Debug("reconciled directory",
		logging.String(logging.FieldPath, dir),
		logging.Int("desired", len(desired)),
		logging.Int("missing", len(toDownload)),
		logging.Int("existing", len(existing)),
	)
	return Plan{
		Dir:        dir,
		Desired:    desired,
		ToDownload: toDownload,
		Existing:   existing,
	}, nil
}

func (r *Reconciler) ensureDir(dir string, logger *slog.Logger) error {
	info, err := r.fs.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return &DirectoryCreateError{Path: dir, Err: errors.New("path exists and is not a directory")}
		}
		return nil
	case errors.Is(err, os.ErrNotExist):
		if err := r.fs.Mkdir(dir, 0o755); err != nil {
			return &DirectoryCreateError{Path: dir, Err: err}
		}
		logger.Info("created directory", logging.String(logging.FieldPath, dir))
		return nil
	default:
		return &DirectoryCreateError{Path: dir, Err: err}
	}
}

func (r *Reconciler) listReplayFiles(dir string) ([]string, error) {
	entries, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !replay.IsReplayFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}
