package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeBuild      ErrorType = "build"
	ErrorTypeInternal   ErrorType = "internal"
)

// DocmuxError is a structured error type with context.
type DocmuxError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Project     string
	FilePath    string
	Recoverable bool
}

// Error implements the error interface.
func (e *DocmuxError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Project != "" {
		parts = append(parts, "project:"+e.Project)
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *DocmuxError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *DocmuxError) Is(target error) bool {
	var t *DocmuxError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *DocmuxError) WithContext(key string, value interface{}) *DocmuxError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithFile adds file location information.
func (e *DocmuxError) WithFile(filePath string) *DocmuxError {
	e.FilePath = filePath

	return e
}

// WithProject adds project context.
func (e *DocmuxError) WithProject(project string) *DocmuxError {
	e.Project = project

	return e
}

// Error creation functions

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *DocmuxError {
	return &DocmuxError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error. Configuration errors abort
// the current command but never the long-running serve loop.
func NewConfigError(code, message string) *DocmuxError {
	return &DocmuxError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *DocmuxError {
	return &DocmuxError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewNetworkError creates a network error.
func NewNetworkError(code, message string, cause error) *DocmuxError {
	return &DocmuxError{
		Type:        ErrorTypeNetwork,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewBuildError creates a build error.
func NewBuildError(code, message string, cause error) *DocmuxError {
	return &DocmuxError{
		Type:        ErrorTypeBuild,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *DocmuxError {
	return &DocmuxError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// FileNotFound wraps a missing-file failure. The cause is always matched by
// fs.ErrNotExist.
func FileNotFound(path string, cause error) *DocmuxError {
	if cause == nil {
		cause = fs.ErrNotExist
	}

	return NewIOError("FILE_NOT_FOUND", "file does not exist", cause).WithFile(path)
}

// Error recovery and handling utilities

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var de *DocmuxError
	if errors.As(err, &de) {
		return de.Recoverable
	}

	return false
}

// IsConfigError checks if an error is a configuration error.
func IsConfigError(err error) bool {
	return isType(err, ErrorTypeConfig)
}

// IsBuildError checks if an error is build-related.
func IsBuildError(err error) bool {
	return isType(err, ErrorTypeBuild)
}

// IsNotFound reports whether err is, or wraps, a missing-file failure.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func isType(err error, t ErrorType) bool {
	var de *DocmuxError
	if errors.As(err, &de) {
		return de.Type == t
	}

	return false
}

// GetErrorType returns the category of err, or ErrorTypeInternal when err is
// not a DocmuxError.
func GetErrorType(err error) ErrorType {
	var de *DocmuxError
	if errors.As(err, &de) {
		return de.Type
	}

	return ErrorTypeInternal
}

// WrapIO wraps an I/O failure, mapping missing files to FileNotFound.
func WrapIO(err error, path, message string) error {
	if err == nil {
		return nil
	}

	if IsNotFound(err) {
		return FileNotFound(path, err)
	}

	return NewIOError("IO_ERROR", message, err).WithFile(path)
}
