package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrHandlerNotFound indicates that no handler is registered for a
	// command or query. It is raised before the pipeline runs, so neither
	// behaviors nor exception actions observe it.
	ErrHandlerNotFound = errors.New("dispatch: handler not found")
	// ErrAmbiguousHandler indicates that a resolver returned more than one
	// handler for a command or query.
	ErrAmbiguousHandler = errors.New("dispatch: ambiguous handler")
	// ErrHandlerExists is returned when a second handler is registered for
	// the same key.
	ErrHandlerExists = errors.New("dispatch: handler already registered")
	// ErrInvalidRegistration is returned when a nil capability is registered.
	ErrInvalidRegistration = errors.New("dispatch: invalid registration")
	// ErrResultType indicates that an open capability returned a value that is
	// not assignable to the result type of the request.
	ErrResultType = errors.New("dispatch: unexpected result type")
)

// ActionError is returned when an exception action fails while a fault is
// being handled. The action's error replaces the fault: remaining actions and
// exception handlers are skipped.
type ActionError struct {
	// Err is the error returned by the exception action.
	Err error
	// Fault is the fault that was being handled when the action failed.
	Fault error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("dispatch: exception action failed: %v", e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
