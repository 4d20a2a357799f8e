package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/goccy/go-json"
)

// ErrRequestTimeout marks requests that exceeded the gateway timeout.
var ErrRequestTimeout = errors.New("request timed out, check the network connection")

// NetworkError reports a request that never produced an HTTP response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the request was aborted by the gateway timeout.
func (e *NetworkError) Timeout() bool { return errors.Is(e.Err, ErrRequestTimeout) }

// APIError reports a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d, message=%s", e.Status, e.Message)
}

// IsNetworkError reports whether err comes from a transport failure or timeout.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

func newNetworkError(method, path string, err error, timeout time.Duration) *NetworkError {
	if isTimeout(err) {
		err = fmt.Errorf("%w (after %s)", ErrRequestTimeout, timeout)
	}
	return &NetworkError{Method: method, Path: path, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// newAPIError takes the message from a JSON object's "message" field, then from
// any other body as raw text, then falls back to a status-coded message.
func newAPIError(status int, body []byte) *APIError {
	message := ""
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 {
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			message = payload.Message
		} else {
			message = string(trimmed)
		}
	}

	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}

	return &APIError{Status: status, Message: message}
}
