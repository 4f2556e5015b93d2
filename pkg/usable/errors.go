package usable

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrDecode is returned when a response does not match the expected shape.
	ErrDecode = errors.New("unexpected response from usable api")

	// ErrUnauthorized is matched by APIError values with status 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is matched by APIError values with status 404.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx response from the Usable API.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("usable api: %s (HTTP %d): %s", e.Message, e.StatusCode, e.Details)
	}
	return fmt.Sprintf("usable api: %s (HTTP %d)", e.Message, e.StatusCode)
}

// Is lets callers test for ErrUnauthorized and ErrNotFound.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// StatusCode extracts the HTTP status of an APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
