package apperrors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorConstructors(t *testing.T) {
	err := InvalidPattern("bad pattern %q", "x")
	require.Equal(t, ErrorCodeInvalidPattern, err.Code)
	require.Contains(t, err.Error(), "bad pattern")

	require.Equal(t, ErrorCodeUnreconcilable, Unreconcilable("nope").Code)
	require.Equal(t, ErrorCodeInvalidArgument, InvalidArgument("nope").Code)
	require.Equal(t, ErrorCodeCycle, Cycle("nope").Code)
	require.Equal(t, ErrorCodeUnsatisfiableDependency, UnsatisfiableDependency("nope").Code)
}

func TestValidationErrorAccumulates(t *testing.T) {
	verr := &ValidationError{Issues: []ValidationIssue{
		{Line: 1, Column: 2, Message: "first"},
		{Line: 3, Column: 4, Message: "second"},
	}}
	require.True(t, verr.HasIssues())
	require.Equal(t, ErrorCodeValidation, verr.Code())
	require.Contains(t, verr.Error(), "2 validation error(s)")
	require.Contains(t, verr.Error(), "1:2: first")
	require.Contains(t, verr.Error(), "3:4: second")
}

func TestValidationIssueString(t *testing.T) {
	issue := ValidationIssue{Line: 5, Column: 6, Message: "oops"}
	require.Equal(t, "5:6: oops", issue.String())
}
