package utils

import "fmt"

// AppError wraps an operation, human-facing message, and underlying error.
type AppError struct {
	Op  string
	Msg string
	Err error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(op, msg string, err error) error {
	return &AppError{Op: op, Msg: msg, Err: err}
}

// SchemaError reports an input table whose columns cannot be mapped to the
// canonical log schema. It is never retried; the caller surfaces it verbatim.
type SchemaError struct {
	Msg string
}

func (e *SchemaError) Error() string {
	return "schema error: " + e.Msg
}

// NewSchemaError builds a SchemaError from a format string.
func NewSchemaError(format string, args ...any) error {
	return &SchemaError{Msg: fmt.Sprintf(format, args...)}
}

// ValidationError reports input data that mapped onto the schema but cannot
// be analysed (empty dataset, unparsable timestamps, nothing left after
// cleaning). The message names the rule that failed so the caller can show it.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Msg
}

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
