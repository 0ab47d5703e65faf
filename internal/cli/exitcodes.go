package cli

import "errors"

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitFailure indicates a general error occurred.
	// Use for: Database errors, unexpected failures, or any error that
	// doesn't fit the specific categories below.
	ExitFailure = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: Missing required flags or when the user needs to provide
	// different arguments.
	ExitUsage = 2

	// ExitNotFound indicates a requested resource was not found.
	// Use for: Ticket not found, project not found.
	ExitNotFound = 3

	// ExitDataErr indicates invalid or malformed data.
	ExitDataErr = 4

	// ExitValidation indicates a validation error.
	// Use for: Invalid priority, status, position or any input that fails
	// validation rules.
	ExitValidation = 5

	// ExitConflict indicates the requested slot has no room left.
	// Use for: Exhausted position gaps. Rebalance the column and retry.
	ExitConflict = 6

	// ExitTransient indicates a concurrent writer won. The same command may
	// succeed if run again.
	ExitTransient = 7
)

// ExitError carries the process exit code for an error already reported to
// the user
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by a command to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return Classify(err).Exit
}
