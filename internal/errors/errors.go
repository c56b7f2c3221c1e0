package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Share link denial reasons
	ErrCodeLinkNotFound    ErrorCode = "LINK_NOT_FOUND"
	ErrCodeLinkDisabled    ErrorCode = "LINK_DISABLED"
	ErrCodeLinkExpired     ErrorCode = "LINK_EXPIRED"
	ErrCodePasswordMissing ErrorCode = "PASSWORD_REQUIRED"
	ErrCodePasswordInvalid ErrorCode = "PASSWORD_INVALID"

	// Validation
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED"

	// Resource
	ErrCodeNotFound            ErrorCode = "NOT_FOUND"
	ErrCodeDuplicateAccessCode ErrorCode = "DUPLICATE_ACCESS_CODE"
	ErrCodeConflict            ErrorCode = "CONFLICT"

	// Code generation
	ErrCodeGenerationExhausted ErrorCode = "CODE_GENERATION_EXHAUSTED"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabase ErrorCode = "DATABASE_ERROR"
	ErrCodeCache    ErrorCode = "CACHE_ERROR"
)

// AppError is a structured error that can be returned to clients
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func LinkNotFound() *AppError {
	return New(ErrCodeLinkNotFound, "Share link does not exist or was removed")
}

func LinkDisabled() *AppError {
	return New(ErrCodeLinkDisabled, "Share link was disabled by its owner")
}

func LinkExpired() *AppError {
	return New(ErrCodeLinkExpired, "Share link has expired")
}

func PasswordRequired() *AppError {
	return New(ErrCodePasswordMissing, "This share link requires an access password")
}

func PasswordInvalid() *AppError {
	return New(ErrCodePasswordInvalid, "Incorrect access password")
}

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func DuplicateAccessCode(code string) *AppError {
	return New(ErrCodeDuplicateAccessCode,
		fmt.Sprintf("Access code %s already belongs to an active share link", code))
}

func GenerationExhausted(attempts int) *AppError {
	return New(ErrCodeGenerationExhausted,
		fmt.Sprintf("Could not generate a unique access code after %d attempts", attempts))
}

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func InvalidInput(field string, reason string) *AppError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("Invalid %s: %s", field, reason))
}

func MissingRequired(field string) *AppError {
	return New(ErrCodeMissingRequired, fmt.Sprintf("%s is required", field))
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func Database(cause error) *AppError {
	return Wrap(ErrCodeDatabase, "Database error", cause)
}

func Cache(cause error) *AppError {
	return Wrap(ErrCodeCache, "Cache error", cause)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
