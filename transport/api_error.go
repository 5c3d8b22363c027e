package transport

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/openjobs/go-jobboard/internal/errors"
)

// APIError is a non-2xx response from the backend, carrying the
// backend-provided message when one was returned.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// Unwrap maps the status onto the error taxonomy so callers can use errors.Is
// without inspecting status codes.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case http.StatusForbidden:
		return apperrors.ErrForbidden
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	case http.StatusConflict:
		return apperrors.ErrDuplicate
	default:
		return apperrors.ErrOperationFailed
	}
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	// Best effort: the backend wraps error details as {"message": "..."}.
	_ = json.Unmarshal(body, apiErr)
	return apiErr
}
