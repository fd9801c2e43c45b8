package errors

import (
	stderrors "errors"
	"fmt"
)

// APIError is the error every handler reports to clients.
// Message is safe to show to end users.
type APIError struct {
	Code    ErrorCode      `json:"error"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Status  int            `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates an APIError with an explicit message
func New(code ErrorCode, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Status:  code.StatusCode(),
	}
}

// NotFound creates a NOT_FOUND error for a resource, e.g. NotFound("Post")
func NotFound(resource string) *APIError {
	return New(ErrNotFound, fmt.Sprintf("%s not found", resource))
}

// Unauthorized creates an UNAUTHORIZED error
func Unauthorized(message string) *APIError {
	if message == "" {
		message = "Not authenticated"
	}
	return New(ErrUnauthorized, message)
}

// Forbidden creates a FORBIDDEN error
func Forbidden(message string) *APIError {
	if message == "" {
		message = "Not authorized"
	}
	return New(ErrForbidden, message)
}

// Conflict creates a CONFLICT error carrying the message verbatim
func Conflict(message string) *APIError {
	return New(ErrConflict, message)
}

// ValidationError creates a VALIDATION_ERROR bound to a request field
func ValidationError(field, message string) *APIError {
	e := New(ErrValidation, message)
	e.Field = field
	return e
}

// BadRequest creates a BAD_REQUEST error
func BadRequest(message string) *APIError {
	return New(ErrBadRequest, message)
}

// InternalError creates an INTERNAL_ERROR
func InternalError(message string) *APIError {
	if message == "" {
		message = "internal server error"
	}
	return New(ErrInternalError, message)
}

// AlreadyExists creates an ALREADY_EXISTS error
func AlreadyExists(resource string) *APIError {
	return New(ErrAlreadyExists, fmt.Sprintf("%s already exists", resource))
}

// RateLimited creates a RATE_LIMITED error
func RateLimited(message string) *APIError {
	if message == "" {
		message = "rate limit exceeded"
	}
	return New(ErrRateLimited, message)
}

// ServiceUnavailable creates a SERVICE_UNAVAILABLE error
func ServiceUnavailable(service string) *APIError {
	return New(ErrServiceUnavail, fmt.Sprintf("%s is temporarily unavailable", service))
}

// PayloadTooLarge creates a PAYLOAD_TOO_LARGE error
func PayloadTooLarge(message string) *APIError {
	return New(ErrPayloadTooBig, message)
}

// WithDetails attaches a detail entry to the error
func (e *APIError) WithDetails(key string, value any) *APIError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// As returns the APIError wrapped in err, if any
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
