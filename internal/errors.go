package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorCategory is the coarse classification every gateway failure collapses
// into. The attendance backend is an external collaborator; nothing below it
// (transport errors, malformed bodies, raw statuses) may leak past this type.
type ErrorCategory string

const (
	CategoryNetwork      ErrorCategory = "network"
	CategoryUnauthorized ErrorCategory = "unauthorized"
	CategoryForbidden    ErrorCategory = "forbidden"
	CategoryNotFound     ErrorCategory = "not_found"
	CategoryValidation   ErrorCategory = "validation"
	CategoryServer       ErrorCategory = "server"
	CategoryUnknown      ErrorCategory = "unknown"
)

// CategoryForStatus maps an HTTP status to its category. Status 0 means the
// request never produced a response (DNS, refused connection, timeout).
func CategoryForStatus(status int) ErrorCategory {
	switch {
	case status == 0:
		return CategoryNetwork
	case status == http.StatusUnauthorized:
		return CategoryUnauthorized
	case status == http.StatusForbidden:
		return CategoryForbidden
	case status == http.StatusNotFound:
		return CategoryNotFound
	case status == http.StatusUnprocessableEntity:
		return CategoryValidation
	case status >= 500 && status <= 599:
		return CategoryServer
	default:
		return CategoryUnknown
	}
}

// APIError is the single error shape produced by the backend gateway.
type APIError struct {
	Category ErrorCategory `json:"category"`
	Status   int           `json:"status"`
	Message  string        `json:"message"`
	Details  interface{}   `json:"details,omitempty"`
	Cause    error         `json:"-"`
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

func (e *APIError) WithDetails(details interface{}) *APIError {
	e.Details = details
	return e
}

// NewAPIError builds an error for a non-2xx backend response.
func NewAPIError(status int, message string) *APIError {
	return &APIError{
		Category: CategoryForStatus(status),
		Status:   status,
		Message:  message,
	}
}

// NewNetworkError wraps a transport-level failure (no response at all).
func NewNetworkError(message string, cause error) *APIError {
	return &APIError{
		Category: CategoryNetwork,
		Status:   0,
		Message:  message,
		Cause:    cause,
	}
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Sign-in failures are deliberately indistinct: reconciliation collapses every
// cause to this one error so callers cannot probe which emails exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

type errorResponse struct {
	Error *APIError `json:"error"`
}

// ToHTTPResponse renders the error for this service's own API consumers. The
// backend status is translated, never forwarded verbatim: infrastructural
// failures become a 502 with a generic message.
func (e *APIError) ToHTTPResponse() (int, interface{}) {
	switch e.Category {
	case CategoryNetwork, CategoryServer:
		generic := &APIError{
			Category: e.Category,
			Status:   e.Status,
			Message:  "attendance service unavailable, try again",
		}
		return http.StatusBadGateway, errorResponse{Error: generic}
	case CategoryUnknown:
		return http.StatusBadGateway, errorResponse{Error: e}
	default:
		return e.Status, errorResponse{Error: e}
	}
}

func (e *APIError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Category ErrorCategory `json:"category"`
		Status   int           `json:"status"`
		Message  string        `json:"message"`
		Details  interface{}   `json:"details,omitempty"`
	}{
		Category: e.Category,
		Status:   e.Status,
		Message:  e.Message,
		Details:  e.Details,
	})
}
