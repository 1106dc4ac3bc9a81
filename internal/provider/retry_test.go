package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicevision/internal/domain"
	"invoicevision/internal/port"
)

// scriptedExtractor returns one entry per attempt, in order.
type scriptedExtractor struct {
	calls   int
	outputs []*port.ExtractOutput
	errs    []error
}

func (s *scriptedExtractor) Extract(_ context.Context, _ port.ExtractInput) (*port.ExtractOutput, error) {
	i := s.calls
	s.calls++
	return s.outputs[i], s.errs[i]
}

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		MaxRetryAfter:  5 * time.Millisecond,
	}
}

func TestRetrying_SuccessFirstAttempt(t *testing.T) {
	inner := &scriptedExtractor{
		outputs: []*port.ExtractOutput{{RawText: "{}", ModelUsed: "m"}},
		errs:    []error{nil},
	}
	r := NewRetrying(inner, fastRetry(3))

	out, err := r.Extract(context.Background(), port.ExtractInput{})
	require.NoError(t, err)

	assert.Equal(t, "{}", out.RawText)
	assert.Equal(t, 1, inner.calls)
}

func TestRetrying_TransientThenSuccess(t *testing.T) {
	inner := &scriptedExtractor{
		outputs: []*port.ExtractOutput{nil, {RawText: "ok"}},
		errs:    []error{errors.New("connection reset"), nil},
	}
	r := NewRetrying(inner, fastRetry(3))

	out, err := r.Extract(context.Background(), port.ExtractInput{})
	require.NoError(t, err)

	assert.Equal(t, "ok", out.RawText)
	assert.Equal(t, 2, inner.calls)
}

func TestRetrying_ExhaustsAttempts(t *testing.T) {
	transient := errors.New("upstream returned status 503")
	inner := &scriptedExtractor{
		outputs: []*port.ExtractOutput{nil, nil, nil},
		errs:    []error{transient, transient, transient},
	}
	r := NewRetrying(inner, fastRetry(3))

	_, err := r.Extract(context.Background(), port.ExtractInput{})

	require.Error(t, err)
	assert.Equal(t, transient, err)
	assert.Equal(t, 3, inner.calls, "exactly MaxAttempts calls")
}

func TestRetrying_AuthErrorNotRetried(t *testing.T) {
	authErr := &AuthError{Provider: "openrouter", StatusCode: 401, Err: errors.New("invalid key")}
	inner := &scriptedExtractor{
		outputs: []*port.ExtractOutput{nil},
		errs:    []error{authErr},
	}
	r := NewRetrying(inner, fastRetry(3))

	_, err := r.Extract(context.Background(), port.ExtractInput{})

	var got *AuthError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 1, inner.calls, "auth failures are final")
}

func TestRetrying_BadRequestNotRetried(t *testing.T) {
	inner := &scriptedExtractor{
		outputs: []*port.ExtractOutput{nil},
		errs:    []error{&BadRequestError{Provider: "openrouter", Err: errors.New("bad image")}},
	}
	r := NewRetrying(inner, fastRetry(3))

	_, err := r.Extract(context.Background(), port.ExtractInput{})

	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestRetrying_HonorsRetryAfterCap(t *testing.T) {
	rl := &RateLimitError{Provider: "openrouter", RetryAfter: time.Hour, Err: errors.New("429")}
	inner := &scriptedExtractor{
		outputs: []*port.ExtractOutput{nil, {RawText: "ok"}},
		errs:    []error{rl, nil},
	}
	r := NewRetrying(inner, fastRetry(2))

	start := time.Now()
	out, err := r.Extract(context.Background(), port.ExtractInput{})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "ok", out.RawText)
	assert.Less(t, elapsed, time.Second, "Retry-After hint is capped, not honored verbatim")
}

func TestRetrying_ContextCanceledDuringBackoff(t *testing.T) {
	transient := errors.New("timeout")
	inner := &scriptedExtractor{
		outputs: []*port.ExtractOutput{nil, nil},
		errs:    []error{transient, transient},
	}
	cfg := fastRetry(2)
	cfg.InitialBackoff = time.Minute
	cfg.MaxBackoff = time.Minute
	r := NewRetrying(inner, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.Extract(ctx, port.ExtractInput{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, inner.calls)
}

func TestClassifyFailure(t *testing.T) {
	auth := ClassifyFailure(&AuthError{Provider: "openrouter", StatusCode: 401, Err: errors.New("no")})
	assert.Equal(t, domain.FailureAuth, auth.Kind)
	assert.False(t, auth.Retriable)

	bad := ClassifyFailure(&BadRequestError{Provider: "openrouter", Err: errors.New("no")})
	assert.Equal(t, domain.FailureInvalidImage, bad.Kind)
	assert.False(t, bad.Retriable)

	rl := ClassifyFailure(NewRateLimitError("openrouter", errors.New("429"), 5))
	assert.Equal(t, domain.FailureRateLimited, rl.Kind)
	assert.True(t, rl.Retriable)

	net := ClassifyFailure(errors.New("dial tcp: i/o timeout"))
	assert.Equal(t, domain.FailureTransientNetwork, net.Kind)
	assert.True(t, net.Retriable)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 30, ParseRetryAfterHeader("30"))
	assert.Equal(t, 0, ParseRetryAfterHeader(""))
	assert.Equal(t, 0, ParseRetryAfterHeader("Wed, 21 Oct 2025 07:28:00 GMT"))
}

func TestNewRateLimitError_DefaultRetryAfter(t *testing.T) {
	err := NewRateLimitError("openrouter", errors.New("429"), 0)
	assert.Equal(t, 60*time.Second, err.RetryAfter)
}
