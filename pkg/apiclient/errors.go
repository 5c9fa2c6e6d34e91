package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidBaseURL = errors.New("apiclient: invalid base URL")
	ErrRequestFailed  = errors.New("apiclient: request failed")
	ErrEncodeRequest  = errors.New("apiclient: failed to encode request body")
	ErrDecodeResponse = errors.New("apiclient: failed to decode response body")
)

// Error is a non-2xx response of the backend API.
type Error struct {
	StatusCode int
	Method     string
	Path       string
	Body       []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("apiclient: %s %s: unexpected status %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsNotFound reports a 404 response.
func (e *Error) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err is an *Error with status 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.IsNotFound()
}
