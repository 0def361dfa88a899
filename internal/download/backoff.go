package download

import (
	"context"
	"log/slog"
	"time"

	"ttrsync/internal/logging"
)

// DefaultBackoffDelay is the fixed wait applied once the content service has
// answered 429.
const DefaultBackoffDelay = 5 * time.Second

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff is the rate-limit state of a single run. Once engaged it stays
// engaged and every later request waits the same fixed delay first; the delay
// never grows. It is owned by one sequential download loop and needs no
// locking.
type Backoff struct {
	delay       time.Duration
	sleep       Sleeper
	logger      *slog.Logger
	engaged     bool
	rateLimited int
}

// NewBackoff constructs a disengaged Backoff.
func NewBackoff(delay time.Duration, sleep Sleeper, logger *slog.Logger) *Backoff {
	if delay <= 0 {
		delay = DefaultBackoffDelay
	}
	if sleep == nil {
		sleep = SleepWithContext
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Backoff{delay: delay, sleep: sleep, logger: logger}
}

// Wait sleeps the fixed delay when backoff is engaged.
func (b *Backoff) Wait(ctx context.Context) error {
	if !b.engaged {
		return nil
	}
	logging.Trace(ctx, b.logger, "backing off", logging.Duration("delay", b.delay))
	return b.sleep(ctx, b.delay)
}

// RateLimited records a 429. The first one engages backoff; later ones only
// warn again.
func (b *Backoff) RateLimited(id string) {
	b.rateLimited++
	if b.engaged {
		logging.WarnWithContext(b.logger, "content service returned 429", "rate_limited",
			logging.String(logging.FieldReplayID, id),
			logging.Int("count", b.rateLimited),
			logging.String(logging.FieldImpact, "download retried after the fixed delay"),
			logging.String(logging.FieldErrorHint, "the service is overloaded; the run continues slowly"),
		)
		return
	}
	b.engaged = true
	logging.WarnWithContext(b.logger, "content service returned 429 - adding a "+b.delay.String()+" delay", "rate_limit_engaged",
		logging.String(logging.FieldReplayID, id),
		logging.Duration("delay", b.delay),
		logging.String(logging.FieldImpact, "every remaining download waits before its request"),
		logging.String(logging.FieldErrorHint, "the service is overloaded; the run continues slowly"),
	)
}

// Engaged reports whether the run has been rate limited at least once.
func (b *Backoff) Engaged() bool { return b.engaged }

// RateLimitedCount returns how many 429 responses were seen.
func (b *Backoff) RateLimitedCount() int { return b.rateLimited }
