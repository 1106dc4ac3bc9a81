package provider

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"invoicevision/internal/domain"
)

// RateLimitError indicates the provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0,
// defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// AuthError indicates the provider rejected the credential (HTTP 401/403).
// Never retried.
type AuthError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s authentication failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// BadRequestError indicates the provider rejected the request body
// (HTTP 400). Never retried: the same request would fail again.
type BadRequestError struct {
	Provider string
	Err      error
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("%s rejected request: %v", e.Provider, e.Err)
}

func (e *BadRequestError) Unwrap() error {
	return e.Err
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// Retriable reports whether another attempt with the same request could
// succeed. Auth and bad-request failures are final; everything else
// (rate limits, 5xx, transport errors, timeouts) is worth retrying.
func Retriable(err error) bool {
	var authErr *AuthError
	var badReq *BadRequestError
	if errors.As(err, &authErr) || errors.As(err, &badReq) {
		return false
	}
	return true
}

// ClassifyFailure maps a provider error onto the caller-facing failure
// taxonomy. Credential material never appears in the message.
func ClassifyFailure(err error) *domain.ExtractionFailure {
	var rlErr *RateLimitError
	var authErr *AuthError
	var badReq *BadRequestError
	switch {
	case errors.As(err, &authErr):
		return &domain.ExtractionFailure{
			Kind:      domain.FailureAuth,
			Message:   authErr.Error(),
			Retriable: false,
		}
	case errors.As(err, &badReq):
		return &domain.ExtractionFailure{
			Kind:      domain.FailureInvalidImage,
			Message:   badReq.Error(),
			Retriable: false,
		}
	case errors.As(err, &rlErr):
		return &domain.ExtractionFailure{
			Kind:      domain.FailureRateLimited,
			Message:   rlErr.Error(),
			Retriable: true,
		}
	default:
		return &domain.ExtractionFailure{
			Kind:      domain.FailureTransientNetwork,
			Message:   err.Error(),
			Retriable: true,
		}
	}
}
