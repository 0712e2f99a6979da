package util

import (
	"context"
	"log/slog"
	"time"
)

// Defaults sized for market-data fetches: three tries starting at half a
// second rides out a transient timeout or throttle while still surfacing a
// real outage within a couple of seconds.
const (
	defaultRetryAttempts = 3
	defaultRetryBase     = 500 * time.Millisecond
)

// Retrier reruns failing operations with exponential backoff, logging each
// intermediate failure. The zero value uses the defaults above and the
// default logger.
type Retrier struct {
	Attempts int
	Base     time.Duration
	Log      *slog.Logger
}

// Do calls fn until it succeeds, the attempts run out, or ctx ends between
// attempts. op names the operation in the retry log lines. The last error
// is returned when every attempt fails.
func (r Retrier) Do(ctx context.Context, op string, fn func() error) error {
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	delay := r.Base
	if delay <= 0 {
		delay = defaultRetryBase
	}
	log := r.Log
	if log == nil {
		log = slog.Default()
	}

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts {
			return err
		}

		log.Warn("retrying", "op", op, "attempt", attempt, "backoff", delay, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
