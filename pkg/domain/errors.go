package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotInitialized is returned when an action runs before the viewer is wired.
var ErrNotInitialized = errors.New("agent not initialized")

// ErrUnrecognizedAction is the sentinel matched by UnrecognizedActionError.
var ErrUnrecognizedAction = errors.New("could not understand the request")

// ErrActionFailed is the sentinel matched by ActionExecutionError.
var ErrActionFailed = errors.New("action failed")

// ErrUnsupportedContextVersion is returned when a stored context is newer than this build.
var ErrUnsupportedContextVersion = errors.New("unsupported conversation context version")

// UnrecognizedActionError reports that no interpretation rule matched.
type UnrecognizedActionError struct {
	Text string
}

func (e *UnrecognizedActionError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnrecognizedAction.Error(), e.Text)
}

func (e *UnrecognizedActionError) Unwrap() error { return ErrUnrecognizedAction }

// ActionExecutionError reports a capability that ran but could not complete.
// Cause is the human-readable reason shown to the user.
type ActionExecutionError struct {
	Action ActionName
	Cause  string
	Err    error
}

// NewActionError builds an ActionExecutionError with a formatted cause.
func NewActionError(action ActionName, format string, args ...any) *ActionExecutionError {
	return &ActionExecutionError{Action: action, Cause: fmt.Sprintf(format, args...)}
}

func (e *ActionExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Action, e.Cause, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Action, e.Cause)
}

func (e *ActionExecutionError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrActionFailed, e.Err}
	}
	return []error{ErrActionFailed}
}
