// Package errors provides a lightweight structured error type (BuildError)
// for category-based classification of failures in the build pipeline and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a build error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External system integration errors
	CategoryNetwork ErrorCategory = "network"
	CategoryGit     ErrorCategory = "git"

	// Build and processing errors
	CategoryToolchain  ErrorCategory = "toolchain"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryPublish    ErrorCategory = "publish"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Aborts the whole run
	SeverityError   ErrorSeverity = "error"   // Fails one package, run continues
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// BuildError is a structured error with category, severity, and an optional cause
type BuildError struct {
	Category ErrorCategory
	Severity ErrorSeverity
	Message  string
	Cause    error
}

// Error implements the error interface
func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// New creates a new BuildError
func New(category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new BuildError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// Fatal creates a new run-aborting BuildError
func Fatal(category ErrorCategory, message string) *BuildError {
	return New(category, SeverityFatal, message)
}

// WrapFatal wraps an existing error as a run-aborting BuildError
func WrapFatal(err error, category ErrorCategory, message string) *BuildError {
	return Wrap(err, category, SeverityFatal, message)
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if be, ok := err.(*BuildError); ok {
		return be.Category == category
	}
	return false
}

// IsFatal checks if an error should abort the run
func IsFatal(err error) bool {
	if be, ok := err.(*BuildError); ok {
		return be.Severity == SeverityFatal
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a BuildError
func GetCategory(err error) ErrorCategory {
	if be, ok := err.(*BuildError); ok {
		return be.Category
	}
	return CategoryInternal
}
