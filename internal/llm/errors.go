package llm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyInput        = errors.New("llm: empty input")
	ErrRetriesExhausted  = errors.New("llm: retries exhausted")
	ErrMalformedResponse = errors.New("llm: malformed response")
	ErrEmptyResponse     = errors.New("llm: empty response")
	ErrPermanent         = errors.New("llm: permanent error")
)

// APIError is a non-2xx answer from a model provider.
type APIError struct {
	StatusCode int
	Status     string // provider status, e.g. RESOURCE_EXHAUSTED
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("llm api status %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("llm api status %d: %s", e.StatusCode, e.Message)
}

// RateLimited reports whether the provider refused the call for rate or quota reasons.
func (e *APIError) RateLimited() bool {
	if e.StatusCode == 429 || e.Status == "RESOURCE_EXHAUSTED" {
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "quota exceeded") || strings.Contains(msg, "exceeded your current quota")
}

// IsRateLimited reports whether err is a transient rate-limit or quota error.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.RateLimited()
}
