package errors

import (
	"errors"
	"fmt"
	"time"
)

// Metadata holds structured error attributes for diagnostics and logging.
type Metadata map[string]interface{}

// AppError represents a structured application error with consistent metadata.
// Hint carries at least one suggested remediation command for the operator.
type AppError struct {
	Code      string
	Kind      Kind
	Message   string
	Operation string
	Module    string
	Hint      string
	Err       error
	Metadata  Metadata
	Timestamp time.Time
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Code, e.Message, e.Err)
	}

	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Code, e.Message)
}

// Unwrap exposes the wrapped error to errors.Is/errors.As.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation annotates the error with the current operation name.
func (e *AppError) WithOperation(operation string) *AppError {
	e.Operation = operation
	return e
}

// WithModule annotates the error with the module name.
func (e *AppError) WithModule(module string) *AppError {
	e.Module = module
	return e
}

// WithHint attaches a remediation suggestion shown to the operator.
func (e *AppError) WithHint(hint string) *AppError {
	e.Hint = hint
	return e
}

// WithField appends a single metadata entry.
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(Metadata)
	}
	e.Metadata[key] = value
	return e
}

// WithFields merges the provided metadata entries.
func (e *AppError) WithFields(metadata Metadata) *AppError {
	if len(metadata) == 0 {
		return e
	}
	if e.Metadata == nil {
		e.Metadata = make(Metadata, len(metadata))
	}
	for k, v := range metadata {
		e.Metadata[k] = v
	}
	return e
}

// ExitCode maps the error kind onto the process exit status.
func (e *AppError) ExitCode() int {
	if e == nil {
		return 0
	}
	return e.Kind.ExitCode()
}

// As unwraps standard errors to AppError when possible.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ExitCodeFor resolves the exit status for an arbitrary error value.
// Errors outside the AppError taxonomy count as generic failures.
func ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if appErr, ok := As(err); ok {
		return appErr.ExitCode()
	}
	return 1
}

// HintFor extracts the remediation hint from an error, if any.
func HintFor(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Hint
	}
	return ""
}
