package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/fxsml/dispatch"
)

// RecoveryError wraps a panic value with the stack trace.
// This allows panics to be converted to regular errors and handled by
// exception actions and exception handlers.
type RecoveryError struct {
	// PanicValue is the original value that was passed to panic().
	PanicValue any
	// StackTrace contains the full stack trace at the point of panic.
	StackTrace string
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("panic recovered: %v", e.PanicValue)
}

// Unwrap returns the panic value if it is an error.
func (e *RecoveryError) Unwrap() error {
	if err, ok := e.PanicValue.(error); ok {
		return err
	}
	return nil
}

// Recover converts a panic in the inner pipeline into a *RecoveryError with
// the stack trace captured.
func Recover[Req, Res any]() dispatch.BehaviorFunc[Req, Res] {
	return func(ctx context.Context, req Req, next dispatch.NextFunc[Res]) (res Res, err error) {
		defer func() {
			if r := recover(); r != nil {
				var zero Res
				res = zero
				err = &RecoveryError{
					PanicValue: r,
					StackTrace: string(debug.Stack()),
				}
			}
		}()
		return next()
	}
}
