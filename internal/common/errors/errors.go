package errors

import (
	"fmt"
	"time"
)

// ErrorCode identifies a class of failure.
type ErrorCode string

const (
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeConflict   ErrorCode = "CONFLICT"
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"

	ErrCodeUserNotFound  ErrorCode = "USER_NOT_FOUND"
	ErrCodeGroupNotFound ErrorCode = "GROUP_NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Backend API failures: unreachable host, timeout, non-success status.
	ErrCodeExternalAPI ErrorCode = "EXTERNAL_API_ERROR"

	// Host bridge failures.
	ErrCodeCapabilityUnavailable ErrorCode = "CAPABILITY_UNAVAILABLE"
	ErrCodeScanCancelled         ErrorCode = "SCAN_CANCELLED"
)

// AppError is a typed application error.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether the error denotes a valid absence of a resource.
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound ||
		e.Code == ErrCodeUserNotFound ||
		e.Code == ErrCodeGroupNotFound
}

// IsCancelled reports whether the error is a user cancellation.
func (e *AppError) IsCancelled() bool {
	return e.Code == ErrCodeScanCancelled
}

// WithDetail attaches a detail value to the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// NewUserNotFoundError creates a "user not found" error.
func NewUserNotFoundError(id interface{}) *AppError {
	return New(ErrCodeUserNotFound, fmt.Sprintf("User not found: %v", id)).
		WithDetail("id", id)
}

// NewGroupNotFoundError creates a "group not found" error.
func NewGroupNotFoundError(groupID int64) *AppError {
	return New(ErrCodeGroupNotFound, fmt.Sprintf("Group not found: %d", groupID)).
		WithDetail("group_id", groupID)
}

// NewConflictError creates a conflict error.
func NewConflictError(resource, reason string) *AppError {
	return New(ErrCodeConflict, fmt.Sprintf("Conflict with %s: %s", resource, reason)).
		WithDetail("resource", resource).
		WithDetail("reason", reason)
}

// NewExternalAPIError creates a backend API error.
func NewExternalAPIError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeExternalAPI, fmt.Sprintf("API request failed: %s", operation)).
		WithDetail("operation", operation)
}

// NewCapabilityError creates an error for an unavailable host capability.
func NewCapabilityError(capability string, err error) *AppError {
	return Wrap(err, ErrCodeCapabilityUnavailable, fmt.Sprintf("Host capability unavailable: %s", capability)).
		WithDetail("capability", capability)
}

// NewScanCancelledError creates a "scan cancelled" error.
func NewScanCancelledError() *AppError {
	return New(ErrCodeScanCancelled, "QR scan cancelled")
}

// NewValidationError creates a validation error for a field.
func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// IsAppError reports whether err is an AppError.
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError converts err to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}
