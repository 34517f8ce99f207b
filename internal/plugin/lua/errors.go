package lua

import (
	"errors"
	"fmt"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when execution times out.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrNoTable is returned when a keyword script yields no table.
	ErrNoTable = errors.New("keyword script must return a table")

	// ErrBadKeywords is returned for a keyword table of the wrong shape.
	ErrBadKeywords = errors.New("invalid keyword table")
)

// ScriptError wraps a failure of one script.
type ScriptError struct {
	Path string
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("keyword script %s: %v", e.Path, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
