package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"ttrsync/internal/config"
	"ttrsync/internal/download"
	"ttrsync/internal/fetch"
	"ttrsync/internal/logging"
	"ttrsync/internal/preflight"
	"ttrsync/internal/prune"
	"ttrsync/internal/reconcile"
	"ttrsync/internal/services/content"
	"ttrsync/internal/services/metadata"
)

// Options selects what one run synchronizes.
type Options struct {
	Streams []string
	// Directory overrides the configured sync directory when set.
	Directory string
	Remove    bool
	// DryRun stops after reconciliation. The directory is still created.
	DryRun bool
}

// Result summarizes a run. It is filled in as far as the run got, so a failed
// run still reports what it downloaded before stopping.
type Result struct {
	RunID     string
	Directory string
	DryRun    bool

	Streams  int
	Records  int
	Unique   int
	Existing int

	ToDownload []string
	Stale      []string

	Downloaded     []string
	Bytes          int64
	RateLimited    int
	BackoffEngaged bool
	Removed        []string

	Duration time.Duration
}

// Syncer wires the service clients and pipeline stages for a config.
type Syncer struct {
	cfg      *config.Config
	base     *slog.Logger
	logger   *slog.Logger
	streams  fetch.StreamSource
	replays  download.Source
	sleep    download.Sleeper
	newRunID func() string
}

// Option customizes a Syncer.
type Option func(*Syncer)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Syncer) {
		s.logger = logger
	}
}

// WithSleeper overrides how download backoff sleeps (useful for tests).
func WithSleeper(sleep download.Sleeper) Option {
	return func(s *Syncer) {
		s.sleep = sleep
	}
}

// WithStreamSource replaces the metadata client.
func WithStreamSource(source fetch.StreamSource) Option {
	return func(s *Syncer) {
		s.streams = source
	}
}

// WithReplaySource replaces the content client.
func WithReplaySource(source download.Source) Option {
	return func(s *Syncer) {
		s.replays = source
	}
}

// New builds a Syncer for cfg, creating HTTP clients for both services unless
// options supply replacements.
func New(cfg *config.Config, opts ...Option) (*Syncer, error) {
	if cfg == nil {
		return nil, errors.New("syncer requires a config")
	}
	s := &Syncer{cfg: cfg, newRunID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}

	if s.streams == nil {
		client, err := metadata.New(metadata.Config{
			BaseURL:    cfg.Metadata.BaseURL,
			UserAgent:  cfg.UserAgent(),
			HTTPClient: &http.Client{Timeout: cfg.MetadataTimeout()},
		})
		if err != nil {
			return nil, err
		}
		s.streams = client
	}
	if s.replays == nil {
		client, err := content.New(content.Config{
			BaseURL:    cfg.Content.BaseURL,
			UserAgent:  cfg.UserAgent(),
			HTTPClient: &http.Client{Timeout: cfg.ContentTimeout()},
		})
		if err != nil {
			return nil, err
		}
		s.replays = client
	}
	s.base = s.logger
	s.logger = logging.NewComponentLogger(s.logger, "sync")
	return s, nil
}

// Run executes fetch, reconcile, download and the optional prune in order.
func (s *Syncer) Run(ctx context.Context, opts Options) (Result, error) {
	started := time.Now()
	streams := cleanStreams(opts.Streams)
	if len(streams) == 0 {
		return Result{}, errors.New("at least one stream is required")
	}

	dir := opts.Directory
	if strings.TrimSpace(dir) == "" {
		dir = s.cfg.Sync.Directory
	}
	dir, err := config.ExpandPath(dir)
	if err != nil {
		return Result{}, fmt.Errorf("resolve directory: %w", err)
	}

	result := Result{
		RunID:     s.newRunID(),
		Directory: dir,
		DryRun:    opts.DryRun,
		Streams:   len(streams),
	}
	ctx = logging.WithRunID(ctx, result.RunID)
	logger := logging.WithContext(ctx, s.logger)
	base := s.base

	finish := func(err error) (Result, error) {
		result.Duration = time.Since(started)
		return result, err
	}

	if err := s.cfg.EnsureDirectories(); err != nil {
		return finish(err)
	}
	lock, err := acquireLock(s.cfg.LockDir(), dir)
	if err != nil {
		return finish(err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Debug("release lock failed", logging.Error(err))
		}
	}()

	logger.Info("sync started",
		logging.String(logging.FieldPath, dir),
		logging.Strings("streams", streams),
		logging.Bool("remove", opts.Remove),
		logging.Bool("dry_run", opts.DryRun),
	)

	fetched, err := fetch.New(s.streams, base).Fetch(ctx, streams)
	if err != nil {
		return finish(fmt.Errorf("fetch streams: %w", err))
	}
	result.Records = fetched.Records
	result.Unique = len(fetched.Descriptors)

	plan, err := reconcile.New(afero.NewOsFs(), base).Plan(ctx, dir, fetched.Descriptors)
	if err != nil {
		return finish(fmt.Errorf("reconcile: %w", err))
	}
	result.Existing = len(plan.Existing)
	for _, d := range plan.ToDownload {
		result.ToDownload = append(result.ToDownload, d.Path(dir))
	}
	if opts.Remove {
		result.Stale = plan.Stale()
	}

	if opts.DryRun {
		logger.Info("dry run complete",
			logging.Int("to_download", len(result.ToDownload)),
			logging.Int("to_remove", len(result.Stale)),
		)
		return finish(nil)
	}

	if len(plan.ToDownload) > 0 {
		if err := preflight.Err(preflight.RunAll(s.cfg, dir)); err != nil {
			return finish(err)
		}
	}

	driver := download.New(s.replays,
		download.WithLogger(base),
		download.WithBackoffDelay(s.cfg.BackoffDelay()),
		download.WithSleeper(s.sleep),
	)
	report, err := driver.Run(ctx, dir, plan.ToDownload)
	result.Downloaded = report.Downloaded
	result.Bytes = report.Bytes
	result.RateLimited = report.RateLimited
	result.BackoffEngaged = report.BackoffEngaged
	if err != nil {
		return finish(err)
	}

	if opts.Remove {
		removed, err := prune.New(afero.NewOsFs(), base).Prune(ctx, result.Stale)
		result.Removed = removed
		if err != nil {
			return finish(err)
		}
	}

	result, err = finish(nil)
	logger.Info("sync complete",
		logging.Int("downloaded", len(result.Downloaded)),
		logging.Int("removed", len(result.Removed)),
		logging.Int("rate_limited", result.RateLimited),
		logging.Duration("elapsed", result.Duration),
	)
	return result, err
}

func cleanStreams(streams []string) []string {
	out := make([]string, 0, len(streams))
	for _, stream := range streams {
		if stream = strings.TrimSpace(stream); stream != "" {
			out = append(out, stream)
		}
	}
	return out
}
