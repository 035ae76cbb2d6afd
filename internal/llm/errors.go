package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Kind names a class of provider failure. It is recorded on LLM events
// and drives the retry decision.
type Kind string

const (
	KindRateLimited Kind = "rate_limited"
	KindUnavailable Kind = "unavailable"
	KindInvalid     Kind = "invalid_response"
	KindTruncated   Kind = "truncated"
	KindCanceled    Kind = "canceled"
	KindOther       Kind = "other"
)

// ErrRateLimit is returned when the provider answers HTTP 429.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse carries output that failed to parse or did not match
// the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable wraps transport and server-side failures.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "LLM provider unavailable"
	}
	return "LLM provider unavailable: " + e.Err.Error()
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means the response stopped at MaxTokens. An outline
// cut off mid-module is unusable.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return fmt.Sprintf("LLM response truncated after %d bytes: max tokens exceeded", len(e.Content))
}

// KindOf classifies err. A nil error has no kind.
func KindOf(err error) Kind {
	var (
		rl     *ErrRateLimit
		inv    *ErrInvalidResponse
		down   *ErrProviderUnavailable
		maxTok *ErrMaxTokensExceeded
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.As(err, &maxTok):
		return KindTruncated
	case errors.As(err, &inv):
		return KindInvalid
	case errors.As(err, &rl):
		return KindRateLimited
	case errors.As(err, &down):
		return KindUnavailable
	default:
		return KindOther
	}
}
