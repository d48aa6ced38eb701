package foundation

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationResult contains the result of a validation operation.
// All violations are collected so callers can report everything at once
// before performing any side effect.
type ValidationResult struct {
	Valid  bool
	Errors []FieldError
}

// FieldError represents a single validation failure.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

// Error implements the error interface.
func (fe FieldError) Error() string {
	if fe.Field != "" {
		return fmt.Sprintf("field '%s': %s", fe.Field, fe.Message)
	}
	return fe.Message
}

// Valid creates a successful validation result.
func Valid() ValidationResult {
	return ValidationResult{Valid: true}
}

// Invalid creates a failed validation result with errors.
func Invalid(errs ...FieldError) ValidationResult {
	return ValidationResult{
		Valid:  false,
		Errors: errs,
	}
}

// NewFieldError creates a validation error.
func NewFieldError(field, code, message string) FieldError {
	return FieldError{
		Field:   field,
		Code:    code,
		Message: message,
	}
}

// Combine merges multiple validation results.
func (vr ValidationResult) Combine(other ValidationResult) ValidationResult {
	if vr.Valid && other.Valid {
		return Valid()
	}

	var allErrors []FieldError
	allErrors = append(allErrors, vr.Errors...)
	allErrors = append(allErrors, other.Errors...)

	return Invalid(allErrors...)
}

// ToError converts a validation result to a single error if invalid, nil otherwise.
func (vr ValidationResult) ToError() error {
	if vr.Valid {
		return nil
	}
	msgs := make([]string, 0, len(vr.Errors))
	for _, fe := range vr.Errors {
		msgs = append(msgs, fe.Error())
	}
	return errors.New(strings.Join(msgs, "; "))
}
