// Package apperrors defines the error kinds raised by the pattern, task,
// and scheduler packages.
package apperrors

import (
	"fmt"
	"strings"
)

// =============================================================================
// Error Codes
// =============================================================================

// ErrorCode identifies one of the core's error kinds.
type ErrorCode string

const (
	// ErrorCodeInvalidPattern covers a malformed pattern scalar, or a zero
	// or negative step on a stepped field.
	ErrorCodeInvalidPattern ErrorCode = "INVALID_PATTERN"
	// ErrorCodeUnreconcilable means TimePattern.Materialize exceeded its
	// reconciliation loop without satisfying week/day-of-week/day-of-year.
	ErrorCodeUnreconcilable ErrorCode = "UNRECONCILABLE"
	// ErrorCodeInvalidArgument covers stagger <= 0, parallel < 1,
	// duration < 0, or a schema_version above current. A depends_on id
	// that names no task in a loaded document is reported as a
	// ValidationError issue, not under this code.
	ErrorCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrorCodeCycle means the dependency graph contains a cycle.
	ErrorCodeCycle ErrorCode = "CYCLE"
	// ErrorCodeUnsatisfiableDependency means a dependent task could not be
	// placed but has downstream dependents.
	ErrorCodeUnsatisfiableDependency ErrorCode = "UNSATISFIABLE_DEPENDENCY"
	// ErrorCodeValidation wraps one or more accumulated load errors.
	ErrorCodeValidation ErrorCode = "VALIDATION_ERROR"
)

// AppError is the base error type returned by the core packages.
type AppError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

func (err *AppError) Error() string {
	return err.Message
}

// NewAppError constructs an AppError.
func NewAppError(code ErrorCode, message string, details map[string]any) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

// InvalidPattern builds an ErrorCodeInvalidPattern error.
func InvalidPattern(format string, args ...any) *AppError {
	return NewAppError(ErrorCodeInvalidPattern, fmt.Sprintf(format, args...), nil)
}

// Unreconcilable builds an ErrorCodeUnreconcilable error.
func Unreconcilable(format string, args ...any) *AppError {
	return NewAppError(ErrorCodeUnreconcilable, fmt.Sprintf(format, args...), nil)
}

// InvalidArgument builds an ErrorCodeInvalidArgument error.
func InvalidArgument(format string, args ...any) *AppError {
	return NewAppError(ErrorCodeInvalidArgument, fmt.Sprintf(format, args...), nil)
}

// Cycle builds an ErrorCodeCycle error.
func Cycle(format string, args ...any) *AppError {
	return NewAppError(ErrorCodeCycle, fmt.Sprintf(format, args...), nil)
}

// UnsatisfiableDependency builds an ErrorCodeUnsatisfiableDependency error.
func UnsatisfiableDependency(format string, args ...any) *AppError {
	return NewAppError(ErrorCodeUnsatisfiableDependency, fmt.Sprintf(format, args...), nil)
}

// =============================================================================
// Validation
// =============================================================================

// ValidationIssue is one accumulated load error, positioned at the node
// that produced it.
type ValidationIssue struct {
	Line    int
	Column  int
	Message string
}

func (i ValidationIssue) String() string {
	return fmt.Sprintf("%d:%d: %s", i.Line, i.Column, i.Message)
}

// ValidationError accumulates every issue found while loading a document,
// rather than short-circuiting on the first one.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		lines = append(lines, issue.String())
	}
	return fmt.Sprintf("%d validation error(s):\n%s", len(e.Issues), strings.Join(lines, "\n"))
}

// Code reports the error kind, matching AppError's Code field so callers
// can branch on error kind without a type assertion.
func (e *ValidationError) Code() ErrorCode { return ErrorCodeValidation }

// HasIssues reports whether the error carries any accumulated issue.
func (e *ValidationError) HasIssues() bool { return len(e.Issues) > 0 }
