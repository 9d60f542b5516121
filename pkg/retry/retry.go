package retry

import (
	"context"
	"time"
)

// Policy describes a bounded exponential backoff schedule.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first one.
	MaxAttempts int
	// InitialBackoff is the delay before the second attempt. Each further
	// attempt doubles the delay, capped at MaxBackoff.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between attempts. Zero means no cap.
	MaxBackoff time.Duration
}

// DefaultPolicy is used when a zero Policy is supplied.
var DefaultPolicy = Policy{
	MaxAttempts:    3,
	InitialBackoff: 200 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
}

// Do runs fn until it succeeds, the attempt budget is exhausted, or ctx is
// cancelled. The error of the last attempt is returned. Context cancellation
// during a backoff wait returns ctx.Err() immediately.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p = DefaultPolicy
	}

	backoff := p.InitialBackoff
	if backoff <= 0 {
		backoff = DefaultPolicy.InitialBackoff
	}

	var err error
	for attempt := 1; ; attempt++ {
		err = fn(ctx)
		if err == nil || attempt >= p.MaxAttempts {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
		if p.MaxBackoff > 0 && backoff > p.MaxBackoff {
			backoff = p.MaxBackoff
		}
	}
}
