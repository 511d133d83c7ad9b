// Package middleware provides pipeline behaviors and exception actions for
// the dispatch package.
//
// Every constructor is generic and can be registered for a single request
// type or, instantiated with [any, any], for all requests:
//
//	dispatch.RegisterOpenBehavior(reg, middleware.Recover[any, any]())
//	dispatch.RegisterBehavior[CreateOrder, Order](reg, middleware.Retry[CreateOrder, Order](middleware.RetryConfig{}))
//	dispatch.RegisterOpenExceptionAction(reg, middleware.LogException(middleware.LogConfig{}))
//
// Behaviors run in registration order, so register Recover first to turn
// panics anywhere in the pipeline into errors.
package middleware

import "fmt"

// RequestName returns the name used to identify req in logs, metrics and
// traces, for example "orders.CreateOrder".
func RequestName(req any) string {
	return fmt.Sprintf("%T", req)
}
