package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork wraps transport failures: DNS, TLS, refused connections, timeouts.
	ErrNetwork = errors.New("network failure")
	// ErrUnexpectedStatus is wrapped by every *StatusError.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrMalformedResponse marks bodies that fail to decode or validate.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }
