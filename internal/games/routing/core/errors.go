package core

import (
	"errors"
	"fmt"
)

// ErrTerminated is returned by Step once the episode has been scored.
var ErrTerminated = errors.New("routing: episode terminated, call Reset")

// Action error codes.
const (
	CodeActionLength   = "ACTION_LENGTH"
	CodeActionCategory = "ACTION_CATEGORY"
)

// ActionError describes an action vector that cannot be decoded.
// Index is the offending cell (-1 for length errors).
type ActionError struct {
	Code    string
	Index   int
	Value   int
	Message string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// RulesError describes an invalid rule configuration.
type RulesError struct {
	Field   string
	Message string
}

func (e *RulesError) Error() string {
	return fmt.Sprintf("[INVALID_RULES] %s: %s", e.Field, e.Message)
}

// invariant panics when an internal consistency check fails.
func invariant(ok bool, format string, args ...any) {
	if !ok {
		panic("routing: invariant violated: " + fmt.Sprintf(format, args...))
	}
}
