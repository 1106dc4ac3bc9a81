package provider

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"time"

	"invoicevision/internal/port"
)

// RetryConfig bounds the retry loop around a ModelExtractor.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxRetryAfter  time.Duration
}

// DefaultRetryConfig returns the standard retry bounds: 3 attempts, backoff
// doubling from 500ms up to 8s, Retry-After hints capped at 30s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
		MaxRetryAfter:  30 * time.Second,
	}
}

// Retrying wraps a ModelExtractor with bounded retries: transient failures
// (429, 5xx, transport errors, timeouts) are retried with exponential backoff
// and jitter, honoring Retry-After hints; auth and bad-request failures are
// returned immediately. Attempts are sequential, never speculative. Safe for
// concurrent use: no state mutates after construction.
type Retrying struct {
	next port.ModelExtractor
	cfg  RetryConfig
}

// NewRetrying wraps next with the given retry bounds. Zero or negative
// MaxAttempts is treated as a single attempt.
func NewRetrying(next port.ModelExtractor, cfg RetryConfig) *Retrying {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}
	return &Retrying{next: next, cfg: cfg}
}

func (r *Retrying) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	var lastErr error
	backoff := r.cfg.InitialBackoff

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		out, err := r.next.Extract(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !Retriable(err) {
			return nil, err
		}
		if attempt == r.cfg.MaxAttempts {
			break
		}

		wait := backoff + time.Duration(rand.Int63n(int64(backoff/2)+1))
		var rlErr *RateLimitError
		if errors.As(err, &rlErr) && rlErr.RetryAfter > 0 {
			wait = rlErr.RetryAfter
			if wait > r.cfg.MaxRetryAfter {
				wait = r.cfg.MaxRetryAfter
			}
		}

		log.Printf("provider.Retrying: attempt %d/%d failed, retrying in %s: %v",
			attempt, r.cfg.MaxAttempts, wait, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}

		backoff *= 2
		if backoff > r.cfg.MaxBackoff {
			backoff = r.cfg.MaxBackoff
		}
	}

	return nil, lastErr
}
