// Package retry provides the backoff policy shared by every remote-call
// wrapper in the pipeline.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Policy retries an operation with exponential backoff and jitter.
// The delay before attempt n+1 is BaseDelay * Multiplier^(n-1) plus a
// random jitter in [0, JitterBound). Pause, when set, is slept after every
// attempt regardless of outcome, as a crude rate limit on the remote.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	JitterBound time.Duration
	Pause       time.Duration
}

// Default mirrors the enrichment defaults: 3 attempts, 1s base, doubling,
// up to half a second of jitter.
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
		JitterBound: 500 * time.Millisecond,
	}
}

// Do runs op until it succeeds or the attempt budget is exhausted, in which
// case the last error is returned. The sleeps honor ctx cancellation.
func (p Policy) Do(ctx context.Context, log *zap.Logger, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op(ctx)
		if p.Pause > 0 {
			if err := sleep(ctx, p.Pause); err != nil {
				return err
			}
		}
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		delay := p.backoff(attempt)
		if log != nil {
			log.Info("transient error, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}

func (p Policy) backoff(attempt int) time.Duration {
	mult := p.Multiplier
	if mult <= 0 {
		mult = 2
	}
	d := float64(p.BaseDelay) * math.Pow(mult, float64(attempt-1))
	delay := time.Duration(d)
	if p.JitterBound > 0 {
		delay += time.Duration(rand.Float64() * float64(p.JitterBound))
	}
	return delay
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
