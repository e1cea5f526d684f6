package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthenticated is returned when an operation that needs a session
// is attempted without one. No network call is made in that case.
var ErrUnauthenticated = errors.New("not authenticated")

// NetworkError is a transport-level failure: the request never produced
// an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsAuthError reports whether err is a 401/403 response, meaning the
// session is expired or forbidden and credentials must be discarded.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}
