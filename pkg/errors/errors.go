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
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Feed errors
	ErrFeedLoad ErrorCode = "FEED_LOAD"
	ErrFeedSave ErrorCode = "FEED_SAVE"

	// Recipe errors
	ErrInvalidRecipe ErrorCode = "INVALID_RECIPE"

	// Step errors
	ErrSourceMissing   ErrorCode = "SOURCE_MISSING"
	ErrUnsupportedType ErrorCode = "UNSUPPORTED_TYPE"
	ErrPathNotFound    ErrorCode = "PATH_NOT_FOUND"
	ErrStepExecution   ErrorCode = "STEP_EXECUTION"

	// Digest errors
	ErrUnknownAlgorithm  ErrorCode = "UNKNOWN_ALGORITHM"
	ErrMalformedDigestID ErrorCode = "MALFORMED_DIGEST_ID"

	// Batch errors
	ErrBatchSelection ErrorCode = "BATCH_SELECTION"
)

// RecookError represents a structured error with code and details
type RecookError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RecookError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RecookError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *RecookError) Is(target error) bool {
	var targetErr *RecookError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RecookError with the given code and message
func New(code ErrorCode, message string) *RecookError {
	return &RecookError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RecookError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RecookError {
	return &RecookError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RecookError
func Wrap(err error, code ErrorCode, message string) *RecookError {
	if err == nil {
		return nil
	}
	return &RecookError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RecookError {
	if err == nil {
		return nil
	}
	return &RecookError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RecookError) WithDetail(key string, value interface{}) *RecookError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var recookErr *RecookError
	if errors.As(err, &recookErr) {
		return recookErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a RecookError
func GetErrorCode(err error) ErrorCode {
	var recookErr *RecookError
	if errors.As(err, &recookErr) {
		return recookErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a RecookError
func GetErrorDetails(err error) map[string]interface{} {
	var recookErr *RecookError
	if errors.As(err, &recookErr) {
		return recookErr.Details
	}
	return nil
}
