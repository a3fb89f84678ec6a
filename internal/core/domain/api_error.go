package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrConflict  = errors.New("conflict")
	ErrNetwork   = errors.New("backend unreachable")
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("access forbidden")
)

// APIError is a normalized non-2xx backend response. Only the request pipeline
// creates these.
type APIError struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Is lets errors.Is match status-derived sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	}
	return false
}

// AsAPIError unwraps err to an *APIError when there is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Status
	}
	return 0
}

// Notified marks err as already shown to the user, so outer layers do not
// publish a second toast for the same failure.
func Notified(err error) error {
	if err == nil {
		return nil
	}
	return &notifiedError{err: err}
}

// IsNotified reports whether any error in err's chain was marked by Notified.
func IsNotified(err error) bool {
	var n *notifiedError
	return errors.As(err, &n)
}

type notifiedError struct{ err error }

func (e *notifiedError) Error() string { return e.err.Error() }
func (e *notifiedError) Unwrap() error { return e.err }
