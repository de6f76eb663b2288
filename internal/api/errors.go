package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrProvisionalID means an update or delete targeted a comment the server
// has never heard of. The call is rejected before any bytes are sent; the
// caller is expected to resolve provisional comments locally.
var ErrProvisionalID = errors.New("comment has a provisional id; resolve locally instead of calling the server")

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsAuthExpired reports whether the error is a 401/403 response, meaning the
// persisted session is no longer accepted and must be cleared.
func IsAuthExpired(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// IsNotFound reports whether the error is a 404 response. Callers deleting a
// comment treat this as success: the end state matches intent.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusNotFound
}
