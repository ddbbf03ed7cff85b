package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches any *HTTPError with status 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoSession is returned by authenticated calls made without a token.
	// No request is sent.
	ErrNoSession = errors.New("no active session")
)

// connectMessage is shown for every connectivity failure.
const connectMessage = "Unable to connect to server. Please check your connection."

// NetworkError reports a request that never produced an HTTP response
// (DNS, refused connection, reset, timeout).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, connectMessage)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Retryable is always true: the user may try the same request again.
func (e *NetworkError) Retryable() bool { return true }

// HTTPError reports a non-2xx response.
type HTTPError struct {
	Op      string
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Retryable reports whether repeating the request may succeed.
func (e *HTTPError) Retryable() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// IsRetryable reports whether err carries a retry affordance.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}

// Message returns the user-facing text of err: the backend's message for
// HTTP errors, the connectivity notice for network errors, err.Error()
// otherwise.
func Message(err error) string {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Message
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return connectMessage
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
