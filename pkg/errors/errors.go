// Package errors provides the coded error type used across deftsilo.
//
// Every failure carries an ErrorCode so callers and tests can branch on the
// category of a failure without matching message text.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"

	// Generation errors
	ErrFilesystem ErrorCode = "FILESYSTEM"
	ErrSubprocess ErrorCode = "SUBPROCESS"
	ErrEscape     ErrorCode = "ESCAPE"
	ErrType       ErrorCode = "TYPE"
	ErrEncoding   ErrorCode = "ENCODING"
	ErrRender     ErrorCode = "RENDER"

	// Installer errors
	ErrClobber        ErrorCode = "CLOBBER"
	ErrUnsavedChanges ErrorCode = "UNSAVED_CHANGES"
	ErrManifest       ErrorCode = "MANIFEST"
)

// Detail keys shared by producers and consumers of DeftsiloError.
const (
	DetailPath   = "path"
	DetailReason = "reason"
)

// DeftsiloError represents a structured error with code and details
type DeftsiloError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DeftsiloError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DeftsiloError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DeftsiloError) Is(target error) bool {
	var targetErr *DeftsiloError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DeftsiloError with the given code and message
func New(code ErrorCode, message string) *DeftsiloError {
	return &DeftsiloError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DeftsiloError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DeftsiloError {
	return &DeftsiloError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DeftsiloError.
// Callers must check err != nil first: a nil *DeftsiloError stored in an
// error interface is not a nil error.
func Wrap(err error, code ErrorCode, message string) *DeftsiloError {
	if err == nil {
		return nil
	}
	return &DeftsiloError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DeftsiloError {
	if err == nil {
		return nil
	}
	return &DeftsiloError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Classify returns err unchanged when it already carries a code and wraps
// it with code otherwise.
func Classify(err error, code ErrorCode, message string) *DeftsiloError {
	if err == nil {
		return nil
	}
	var deftErr *DeftsiloError
	if errors.As(err, &deftErr) {
		return deftErr
	}
	return Wrap(err, code, message)
}

// WithDetail adds a detail to the error
func (e *DeftsiloError) WithDetail(key string, value interface{}) *DeftsiloError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithPath records the offending path in the error details
func (e *DeftsiloError) WithPath(path string) *DeftsiloError {
	return e.WithDetail(DetailPath, path)
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var deftErr *DeftsiloError
	if errors.As(err, &deftErr) {
		return deftErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DeftsiloError
func GetErrorCode(err error) ErrorCode {
	var deftErr *DeftsiloError
	if errors.As(err, &deftErr) {
		return deftErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a DeftsiloError
func GetErrorDetails(err error) map[string]interface{} {
	var deftErr *DeftsiloError
	if errors.As(err, &deftErr) {
		return deftErr.Details
	}
	return nil
}
