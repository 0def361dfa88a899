package prune

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"ttrsync/internal/logging"
)

// PruneError reports a stale replay file that could not be deleted.
type PruneError struct {
	Path string
	Err  error
}

func (e *PruneError) Error() string {
	return fmt.Sprintf("remove %s: %v", e.Path, e.Err)
}

func (e *PruneError) Unwrap() error { return e.Err }

// Pruner deletes stale replay files.
type Pruner struct {
	fs     afero.Fs
	logger *slog.Logger
}

// New constructs a Pruner over fsys. A nil fsys means the OS filesystem.
func New(fsys afero.Fs, logger *slog.Logger) *Pruner {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Pruner{fs: fsys, logger: logging.NewComponentLogger(logger, "prune")}
}

// Prune deletes every path concurrently and waits for all of them. The first
// failure is returned as a *PruneError; files already deleted stay deleted.
// The returned slice lists the removed paths in input order.
func (p *Pruner) Prune(ctx context.Context, paths []string) ([]string, error) {
	if p == nil {
		return nil, errors.New("prune: pruner unavailable")
	}
	logger := logging.WithContext(ctx, p.logger)
	if len(paths) == 0 {
		logger.Debug("nothing to prune")
		return nil, nil
	}

	removed := make([]bool, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := p.fs.Remove(path); err != nil {
				return &PruneError{Path: path, Err: err}
			}
			removed[i] = true
			logger.Info("removed stale replay", logging.String(logging.FieldPath, path))
			return nil
		})
	}
	err := g.Wait()

	var out []string
	for i, path := range paths {
		if removed[i] {
			out = append(out, path)
		}
	}
	if err != nil {
		return out, err
	}
	logger.Debug("pruned directory", logging.Int("removed", len(out)))
	return out, nil
}
