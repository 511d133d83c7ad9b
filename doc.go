// Package dispatch routes in-process requests to their handlers.
//
// # Overview
//
// Three kinds of requests exist, distinguished by how many handlers they have:
//
//   - Commands: exactly one handler, conventionally changing state (Send)
//   - Queries: exactly one handler, conventionally read-only (Query)
//   - Notifications: zero or more handlers, no result (Publish)
//
// Handlers, pipeline behaviors, exception actions and exception handlers are
// registered explicitly in a Registry at startup and keyed by the request and
// result types:
//
//	reg := dispatch.NewRegistry()
//	origin := dispatch.WithOrigin(dispatch.Origin{Group: "orders", Path: "orders/v1"})
//
//	dispatch.RegisterCommandHandler[CreateOrder, Order](reg, dispatch.HandlerFunc[CreateOrder, Order](
//	    func(ctx context.Context, cmd CreateOrder) (Order, error) {
//	        return store.Create(ctx, cmd)
//	    }), origin)
//	dispatch.RegisterOpenBehavior(reg, middleware.Recover[any, any]())
//
//	d := dispatch.New(reg, dispatch.Config{})
//	order, err := dispatch.Send[CreateOrder, Order](ctx, d, CreateOrder{Item: "book"})
//
// # Pipeline
//
// Behaviors wrap the handler in registration order: for behaviors A, B, C
// the execution flow is A→B→C→handler. A behavior may short-circuit by
// returning without calling next.
//
// # Fault handling
//
// When the pipeline returns an error:
//
//  1. Every exception action matching the request runs, highest priority
//     first. Actions observe, they cannot recover. An action error aborts
//     fault handling and is returned as an *ActionError.
//  2. The highest priority exception handler matching the request and result
//     produces the result. Other exception handlers are not called.
//  3. Without an exception handler the original error is returned unchanged.
//
// Priority is computed by a Scorer from the Origin of the request (the origin
// its handler was registered with) and the Origin of each candidate. Ties keep
// registration order.
//
// Exception actions and handlers receive every fault of the requests they are
// registered for. WithErrorMatch narrows a registration to specific faults.
//
// # Cancellation
//
// The context passed to Send, Query or Publish reaches every handler,
// behavior, action and exception handler unchanged. The dispatcher itself
// never checks it.
package dispatch
