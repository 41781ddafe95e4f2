package cli

import (
	"errors"
	"fmt"
)

// ExitError represents a command failure with a specific exit code.
//
// Commands return NewExitError(code) from their RunE instead of calling
// os.Exit, so tests can assert on the exit code without ending the process.
// [RunWithApp] extracts the code with [IsExitError]; [Execute] performs the
// actual exit.
type ExitError struct {
	// Code is the exit code to return to the shell.
	Code int
}

// Error implements the error interface using the os/exec "exit status N" format.
func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewExitError creates an [ExitError] with the given exit code.
//
// The message describing the failure should already have been printed;
// the ExitError only carries the code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// IsExitError checks if err is (or wraps) an [ExitError] and extracts its code.
//
// Returns (0, false) for nil or for errors without an ExitError in their chain.
func IsExitError(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
