package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/giygas/pharmacy-inventory-api/logging"
)

// waitBackoff blocks for d or until ctx is done. Tests replace it to record
// the delays without sleeping.
var waitBackoff = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// loadWithRetry runs Reload until it succeeds or MaxRetries extra attempts
// have failed. The delay starts at RetryDelay and doubles each attempt. A
// cancelled context ends the wait with ctx.Err(). ErrReloadInProgress is
// returned at once: the running reload already does the work.
func (s *Scheduler) loadWithRetry(ctx context.Context) error {
	delay := s.opts.RetryDelay

	for attempt := 0; ; attempt++ {
		err := s.Reload(ctx)
		if err == nil || errors.Is(err, ErrReloadInProgress) {
			return err
		}

		if attempt >= s.opts.MaxRetries {
			return err
		}

		logging.Warn("Catalog load failed, retrying",
			"attempt", attempt+1,
			"max_retries", s.opts.MaxRetries,
			"backoff", delay.String(),
			"error", err,
		)

		if err := waitBackoff(ctx, delay); err != nil {
			return err
		}
		delay *= 2
	}
}
