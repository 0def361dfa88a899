package fetch

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"ttrsync/internal/logging"
	"ttrsync/internal/replay"
)

// StreamSource returns the raw records listed in one named stream.
type StreamSource interface {
	Stream(ctx context.Context, name string) ([]replay.Record, error)
}

// Result is the outcome of fetching every requested stream.
type Result struct {
	// Descriptors holds the deduplicated replays in first-seen order.
	Descriptors []replay.Descriptor
	// Records counts raw records across all streams before deduplication.
	Records int
}

// Fetcher fans out one request per stream and merges the results.
type Fetcher struct {
	source StreamSource
	logger *slog.Logger
}

// New constructs a Fetcher reading from source.
func New(source StreamSource, logger *slog.Logger) *Fetcher {
	return &Fetcher{source: source, logger: logging.NewComponentLogger(logger, "fetch")}
}

// Fetch requests every stream at once and waits for all of them. The first
// failure cancels the outstanding requests and is returned; there is no
// partial result. Records are converted to descriptors, concatenated in the
// order streams were given, and deduplicated.
func (f *Fetcher) Fetch(ctx context.Context, streams []string) (Result, error) {
	if f == nil || f.source == nil {
		return Result{}, errors.New("fetch: stream source unavailable")
	}
	logger := logging.WithContext(ctx, f.logger)

	perStream := make([][]replay.Descriptor, len(streams))
	g, gctx := errgroup.WithContext(ctx)
	for i, stream := range streams {
		g.Go(func() error {
			logging.Trace(gctx, logger, "requesting stream", logging.String(logging.FieldStream, stream))
			records, err := f.source.Stream(gctx, stream)
			if err != nil {
				return err
			}
			descriptors := make([]replay.Descriptor, 0, len(records))
			for _, rec := range records {
				d, err := replay.FromRecord(rec)
				if err != nil {
					return err
				}
				descriptors = append(descriptors, d)
			}
			perStream[i] = descriptors
			logger.Info("fetched records",
				logging.String(logging.FieldStream, stream),
				logging.Int("records", len(records)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var all []replay.Descriptor
	for _, descriptors := range perStream {
		all = append(all, descriptors...)
	}
	unique := replay.Dedup(all)
	logger.Debug("merged streams",
		logging.Int("streams", len(streams)),
		logging.Int("records", len(all)),
		logging.Int("unique", len(unique)),
	)
	return Result{Descriptors: unique, Records: len(all)}, nil
}
