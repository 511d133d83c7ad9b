package dispatch

import "context"

// NextFunc invokes the remainder of the pipeline. It takes no context: the
// context given to Send or Query reaches every layer unchanged.
type NextFunc[Res any] func() (Res, error)

// Handler handles a command or query of type Req and produces a Res.
type Handler[Req, Res any] interface {
	Handle(ctx context.Context, req Req) (Res, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc[Req, Res any] func(ctx context.Context, req Req) (Res, error)

func (f HandlerFunc[Req, Res]) Handle(ctx context.Context, req Req) (Res, error) {
	return f(ctx, req)
}

// Behavior wraps the invocation of a handler. A behavior may run code before
// and after calling next, transform the result or fault, or skip next entirely.
type Behavior[Req, Res any] interface {
	Handle(ctx context.Context, req Req, next NextFunc[Res]) (Res, error)
}

// BehaviorFunc adapts a function to the Behavior interface.
type BehaviorFunc[Req, Res any] func(ctx context.Context, req Req, next NextFunc[Res]) (Res, error)

func (f BehaviorFunc[Req, Res]) Handle(ctx context.Context, req Req, next NextFunc[Res]) (Res, error) {
	return f(ctx, req, next)
}

// NotificationHandler observes a published notification.
type NotificationHandler[N any] interface {
	Handle(ctx context.Context, n N) error
}

// NotificationHandlerFunc adapts a function to the NotificationHandler interface.
type NotificationHandlerFunc[N any] func(ctx context.Context, n N) error

func (f NotificationHandlerFunc[N]) Handle(ctx context.Context, n N) error {
	return f(ctx, n)
}

// ExceptionAction observes a fault raised while handling a request. Actions
// cannot change the outcome of a dispatch; a non-nil return value aborts fault
// handling with an *ActionError.
type ExceptionAction[Req any] interface {
	Execute(ctx context.Context, req Req, err error) error
}

// ExceptionActionFunc adapts a function to the ExceptionAction interface.
type ExceptionActionFunc[Req any] func(ctx context.Context, req Req, err error) error

func (f ExceptionActionFunc[Req]) Execute(ctx context.Context, req Req, err error) error {
	return f(ctx, req, err)
}

// ExceptionHandler recovers from a fault by producing a substitute result.
// At most one exception handler runs per fault.
type ExceptionHandler[Req, Res any] interface {
	Handle(ctx context.Context, req Req, err error) (Res, error)
}

// ExceptionHandlerFunc adapts a function to the ExceptionHandler interface.
type ExceptionHandlerFunc[Req, Res any] func(ctx context.Context, req Req, err error) (Res, error)

func (f ExceptionHandlerFunc[Req, Res]) Handle(ctx context.Context, req Req, err error) (Res, error) {
	return f(ctx, req, err)
}
