package projectclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
)

// TransportError is a failure to reach the server or read its response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("projects api: %s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response. Body holds at most bodyLimit bytes.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("projects api: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Is lets callers match a 404 against domain.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == domain.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// DecodeError is a 2xx response whose body is malformed or has an invalid shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("projects api: decode: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// IsTransient reports whether a retry may succeed.
func IsTransient(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusRequestTimeout,
			se.StatusCode == http.StatusTooManyRequests,
			se.StatusCode >= 500:
			return true
		}
	}
	return false
}
