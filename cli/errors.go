// Package cli provides small utilities for building a well-behaved
// command-line search tool: decompressing files by shelling out to an
// external tool (or an in-process fallback decoder), and reading a child
// process's stdout as a stream while capturing its stderr for diagnostics.
package cli

import (
	"fmt"
	"strings"
)

// CommandError is returned when spawning or reading from a child process
// fails, either because the process itself could not be started (an I/O
// error) or because it exited with a non-zero status (in which case its
// stderr, which may be empty, is captured).
type CommandError struct {
	ioErr    error
	stderr   []byte
	isStderr bool
}

func ioCommandError(err error) *CommandError {
	return &CommandError{ioErr: err}
}

func stderrCommandError(b []byte) *CommandError {
	return &CommandError{stderr: b, isStderr: true}
}

// IsEmpty reports whether this is a stderr-backed error with no captured
// output.
func (e *CommandError) IsEmpty() bool {
	return e.isStderr && len(e.stderr) == 0
}

func (e *CommandError) Error() string {
	if !e.isStderr {
		return e.ioErr.Error()
	}
	msg := strings.TrimSpace(string(e.stderr))
	if msg == "" {
		return "<stderr is empty>"
	}
	div := strings.Repeat("-", 79)
	return fmt.Sprintf("\n%s\n%s\n%s", div, msg, div)
}

// Unwrap exposes the underlying I/O error, if any.
func (e *CommandError) Unwrap() error {
	if e.isStderr {
		return nil
	}
	return e.ioErr
}
