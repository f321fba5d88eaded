package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on Code so wrapped copies still satisfy errors.Is against the sentinels.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Validation returns a ValidationFailed error carrying a client-facing message.
func Validation(message string) *DomainError {
	return &DomainError{
		Code:    CodeValidationFailed,
		Message: message,
	}
}

const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTaskNotFound       = "TASK_NOT_FOUND"
	CodeSessionConflict    = "SESSION_CONFLICT"
	CodeInternal           = "INTERNAL_ERROR"
)

// Predefined domain errors
var (
	// User errors
	ErrEmailTaken         = NewDomainError(CodeEmailTaken, "Email already registered")
	ErrUserNotFound       = NewDomainError(CodeUserNotFound, "User doesn't exist, please register")
	ErrInvalidCredentials = NewDomainError(CodeInvalidCredentials, "Invalid credentials")

	// Authentication errors
	ErrUnauthenticated     = NewDomainError(CodeUnauthenticated, "Unauthorized")
	ErrInvalidRefreshToken = NewDomainError(CodeUnauthenticated, "Invalid or expired refresh token")
	ErrTokenInvalid        = NewDomainError(CodeTokenInvalid, "invalid token")
	ErrTokenExpired        = NewDomainError(CodeTokenExpired, "token has expired")
	ErrSessionConflict     = NewDomainError(CodeSessionConflict, "Session changed by another login, please try again")

	// Task errors
	ErrTaskNotFound = NewDomainError(CodeTaskNotFound, "Task not found")

	// System errors
	ErrInternal = NewDomainError(CodeInternal, "Internal server error")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// IsInternal reports whether err should be hidden behind a generic message.
func IsInternal(err error) bool {
	domainErr := GetDomainError(err)
	return domainErr == nil || domainErr.Code == CodeInternal
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	case CodeValidationFailed, CodeEmailTaken:
		return http.StatusBadRequest

	case CodeInvalidCredentials, CodeUnauthenticated, CodeTokenInvalid, CodeTokenExpired:
		return http.StatusUnauthorized

	case CodeUserNotFound, CodeTaskNotFound:
		return http.StatusNotFound

	case CodeSessionConflict:
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage returns the client-facing message. Internal errors never leak their cause:
// fallback is returned instead.
func GetErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) && domainErr.Code != CodeInternal {
		return domainErr.Message
	}

	return fallback
}
