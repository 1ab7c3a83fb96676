// Package errors provides standardized error handling for the lead pipeline.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeMethodNotAllowed  ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeLeadNotFound      ErrorCode = "LEAD_NOT_FOUND"

	ErrCodeSinkDeliveryFailed ErrorCode = "SINK_DELIVERY_FAILED"
	ErrCodeSinkTimeout        ErrorCode = "SINK_TIMEOUT"

	ErrCodeStorageUnavailable     ErrorCode = "STORAGE_UNAVAILABLE"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HTTPStatus maps error codes to the status returned at the HTTP boundary.
// Sink errors are contained inside the fan-out and never reach it.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrCodeLeadNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a non-retryable, client-fixable input error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Required fields are missing or invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitError creates an error for a client that exceeded its window.
func NewRateLimitError(clientIP string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimitExceeded,
		Message:   "Rate limit exceeded. Please try again later.",
		Details:   fmt.Sprintf("clientIP: %s", clientIP),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMethodNotAllowedError creates an error for non-POST requests.
func NewMethodNotAllowedError(method string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMethodNotAllowed,
		Message:   "Only POST requests are accepted",
		Details:   fmt.Sprintf("method: %s", method),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLeadNotFoundError creates an error for an unknown lead id.
func NewLeadNotFoundError(leadID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLeadNotFound,
		Message:   "Lead not found",
		Details:   fmt.Sprintf("leadId: %s", leadID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSinkDeliveryError creates a retryable per-sink delivery error. It is
// counted in the fan-out summary, never surfaced to the end user.
func NewSinkDeliveryError(sink string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSinkDeliveryFailed,
		Message:   "Sink delivery failed",
		Details:   fmt.Sprintf("sink: %s, error: %s", sink, err.Error()),
		Retryable: true,
		Metadata:  map[string]interface{}{"sink": sink},
		Timestamp: time.Now().UTC(),
	}
}

// NewSinkTimeoutError creates a per-sink timeout error.
func NewSinkTimeoutError(sink string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSinkTimeout,
		Message:   "Sink call exceeded timeout threshold",
		Details:   fmt.Sprintf("sink: %s", sink),
		Retryable: true,
		Metadata:  map[string]interface{}{"sink": sink},
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageUnavailableError creates a retryable storage error.
func NewStorageUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageUnavailable,
		Message:   "Storage backend unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError creates the generic top-level error. The user-facing
// message is deliberately generic; the cause goes to the logs only.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Erro interno. Tente novamente ou entre em contato via WhatsApp.",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether an error carries a retryable code.
func IsRetryable(err error) bool {
	if se, ok := err.(*StandardError); ok {
		return se.Retryable
	}
	return false
}
