package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrValidation   = errors.New("validation failed")
)

// Per-document failures. None of these abort a run; the document is skipped.
var (
	ErrDocumentRead      = errors.New("document unreadable")
	ErrIdentityNotFound  = errors.New("identity not found")
	ErrInsufficientPages = errors.New("insufficient pages")
	ErrFilenameMismatch  = errors.New("filename does not match canonical pattern")
)

// Error codes carried by AppError.
const (
	CodeConfig    = "CONFIG_ERROR"
	CodeOverrides = "OVERRIDES_ERROR"
	CodeInput     = "INPUT_ERROR"
	CodeOutput    = "OUTPUT_ERROR"
)

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsDocumentError reports whether err is one of the per-document failures
// that callers record and step over.
func IsDocumentError(err error) bool {
	return errors.Is(err, ErrDocumentRead) ||
		errors.Is(err, ErrIdentityNotFound) ||
		errors.Is(err, ErrInsufficientPages) ||
		errors.Is(err, ErrFilenameMismatch)
}
