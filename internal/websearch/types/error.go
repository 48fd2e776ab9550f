package types

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrInvalidProviderID = errors.New("websearch: provider id is required")
	ErrInvalidAPIHost    = errors.New("websearch: api host is required")
	ErrMissingAPIKey     = errors.New("websearch: api key is required")
	ErrEmptyQuery        = errors.New("websearch: empty query")
	ErrProviderNotFound  = errors.New("websearch: provider not found")
)

// ProviderError is a failed call to a search API. StatusCode is zero when
// no response was received.
type ProviderError struct {
	Provider   ProviderID
	StatusCode int
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Provider, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("[%s][%d] %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Temporary reports whether the same request may succeed later: transport
// failures, 429 and 5xx.
func (e *ProviderError) Temporary() bool {
	if e.StatusCode == 0 {
		return e.Err != nil
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}
