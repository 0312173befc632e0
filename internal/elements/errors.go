package elements

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrInvalidResponse = errors.New("invalid response from Elements")

// APIError is a non-success answer from the Elements API.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Elements API error (%s %s, status %d): %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// IsRetryable reports whether err is a conflict or gateway timeout, the two
// answers Elements gives while it is busy with the same record.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusConflict || apiErr.StatusCode == http.StatusGatewayTimeout
	}
	return false
}

func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}
