package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"ttrsync/internal/logging"
	"ttrsync/internal/replay"
	"ttrsync/internal/services/content"
)

// partialPattern names the temp files downloads are written to before being
// renamed into place.
const partialPattern = ".ttrsync-*.part"

// Source fetches one replay payload per call.
type Source interface {
	Fetch(ctx context.Context, id string) ([]byte, error)
}

// DownloadHTTPError reports a non-2xx, non-429 answer from the content service.
type DownloadHTTPError struct {
	ReplayID   string
	StatusCode int
	Status     string
}

func (e *DownloadHTTPError) Error() string {
	return fmt.Sprintf("download replay %s: unexpected status %s", e.ReplayID, e.Status)
}

// DownloadTransportError reports a network failure while downloading.
type DownloadTransportError struct {
	ReplayID string
	Err      error
}

func (e *DownloadTransportError) Error() string {
	return fmt.Sprintf("download replay %s: %v", e.ReplayID, e.Err)
}

func (e *DownloadTransportError) Unwrap() error { return e.Err }

// Report summarizes what a Run did, including runs that stopped early.
type Report struct {
	Downloaded     []string
	Bytes          int64
	RateLimited    int
	BackoffEngaged bool
}

// Driver downloads missing replays one at a time.
type Driver struct {
	source Source
	fs     afero.Fs
	logger *slog.Logger
	delay  time.Duration
	sleep  Sleeper
}

// Option customizes the driver.
type Option func(*Driver)

// WithFs overrides the filesystem replays are written to.
func WithFs(fsys afero.Fs) Option {
	return func(d *Driver) {
		if fsys != nil {
			d.fs = fsys
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithBackoffDelay overrides the fixed rate-limit delay.
func WithBackoffDelay(delay time.Duration) Option {
	return func(d *Driver) {
		d.delay = delay
	}
}

// WithSleeper overrides how backoff sleeps are performed (useful for tests).
func WithSleeper(sleep Sleeper) Option {
	return func(d *Driver) {
		d.sleep = sleep
	}
}

// New constructs a Driver pulling payloads from source.
func New(source Source, opts ...Option) *Driver {
	d := &Driver{
		source: source,
		fs:     afero.NewOsFs(),
		delay:  DefaultBackoffDelay,
		sleep:  SleepWithContext,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.NewComponentLogger(d.logger, "download")
	return d
}

// Run downloads every descriptor into dir, strictly in sequence. A 429 is
// retried after the run's fixed backoff; any other failure stops the run and
// leaves already written files in place.
func (d *Driver) Run(ctx context.Context, dir string, descriptors []replay.Descriptor) (Report, error) {
	if d == nil || d.source == nil {
		return Report{}, errors.New("download: content source unavailable")
	}
	logger := logging.WithContext(ctx, d.logger)
	backoff := NewBackoff(d.delay, d.sleep, logger)

	var report Report
	finish := func(err error) (Report, error) {
		report.RateLimited = backoff.RateLimitedCount()
		report.BackoffEngaged = backoff.Engaged()
		return report, err
	}

	d.sweepPartials(dir, logger)

	logger.Info("downloading missing replays", logging.Int("count", len(descriptors)))
	for _, desc := range descriptors {
		data, err := d.fetch(ctx, desc.ID, backoff, logger)
		if err != nil {
			return finish(err)
		}
		path := desc.Path(dir)
		if err := d.write(dir, path, data); err != nil {
			return finish(err)
		}
		report.Downloaded = append(report.Downloaded, path)
		report.Bytes += int64(len(data))
		logger.Info("downloaded", logging.String(logging.FieldPath, desc.Filename()), logging.Int("bytes", len(data)))
	}
	return finish(nil)
}

func (d *Driver) fetch(ctx context.Context, id string, backoff *Backoff, logger *slog.Logger) ([]byte, error) {
	for {
		if err := backoff.Wait(ctx); err != nil {
			return nil, err
		}
		logging.Trace(ctx, logger, "requesting replay", logging.String(logging.FieldReplayID, id))
		data, err := d.source.Fetch(ctx, id)
		if err == nil {
			return data, nil
		}
		var statusErr *content.StatusError
		if errors.As(err, &statusErr) {
			if statusErr.RateLimited() {
				backoff.RateLimited(id)
				continue
			}
			return nil, &DownloadHTTPError{ReplayID: id, StatusCode: statusErr.StatusCode, Status: statusErr.Status}
		}
		return nil, &DownloadTransportError{ReplayID: id, Err: err}
	}
}

// write replaces path with data via a temp file in the same directory, so an
// interrupted write never leaves a truncated replay behind.
func (d *Driver) write(dir, path string, data []byte) error {
	tmp, err := afero.TempFile(d.fs, dir, partialPattern)
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = d.fs.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := d.fs.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := d.fs.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// sweepPartials removes temp files left behind by an interrupted run. Runs on
// one directory are serialized, so any partial found here is abandoned.
func (d *Driver) sweepPartials(dir string, logger *slog.Logger) {
	matches, err := afero.Glob(d.fs, filepath.Join(dir, partialPattern))
	if err != nil {
		logger.Debug("scan for partial downloads failed", logging.Error(err))
		return
	}
	for _, path := range matches {
		if err := d.fs.Remove(path); err != nil {
			logging.WarnWithContext(logger, "could not remove partial download", "partial_cleanup_failed",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "the leftover temp file stays in the sync directory"),
				logging.String(logging.FieldErrorHint, "delete the file by hand"),
			)
			continue
		}
		logger.Debug("removed partial download", logging.String(logging.FieldPath, path))
	}
}
