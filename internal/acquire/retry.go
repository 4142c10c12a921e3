package acquire

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/quantmind-br/codedoc-go/internal/domain"
)

// Retrier retries retryable download failures with exponential backoff.
// MaxRetries of zero means a single attempt.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
}

// RetrierOptions contains options for creating a Retrier
type RetrierOptions struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// NewRetrier creates a new Retrier
func NewRetrier(opts RetrierOptions) *Retrier {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = time.Second
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = 30 * time.Second
	}
	return &Retrier{
		maxRetries:      opts.MaxRetries,
		initialInterval: opts.InitialInterval,
		maxInterval:     opts.MaxInterval,
	}
}

func (r *Retrier) newBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.maxRetries)), ctx)
}

// Retry runs operation until it succeeds, fails permanently, or retries run out.
// The last operation error is returned unchanged.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	var lastErr error

	err := backoff.Retry(func() error {
		lastErr = operation()
		if lastErr == nil {
			return nil
		}
		if !domain.IsRetryable(lastErr) {
			return backoff.Permanent(lastErr)
		}
		return lastErr
	}, r.newBackoff(ctx))

	if err != nil && lastErr != nil {
		return lastErr
	}
	return err
}
