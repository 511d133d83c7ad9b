package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
)

// Config configures a Dispatcher.
type Config struct {
	// Logger receives diagnostics about fault handling.
	// Default: slog.Default().
	Logger Logger
	// Scorer orders exception actions and handlers.
	// Default: PriorityScore.
	Scorer Scorer
}

// Dispatcher routes commands, queries and notifications to the capabilities
// found in its Resolver. A Dispatcher holds no per-call state and may be used
// concurrently.
type Dispatcher struct {
	resolver Resolver
	logger   Logger
	scorer   Scorer
}

// New creates a Dispatcher resolving capabilities from resolver.
func New(resolver Resolver, cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	scorer := cfg.Scorer
	if scorer == nil {
		scorer = PriorityScore
	}
	return &Dispatcher{
		resolver: resolver,
		logger:   logger,
		scorer:   scorer,
	}
}

// Send dispatches a command to its handler through the pipeline behaviors
// registered for it. If the pipeline fails, exception actions observe the
// fault and the highest priority exception handler may recover it.
//
// Send returns an error wrapping ErrHandlerNotFound when no handler is
// registered for (Req, Res).
func Send[Req, Res any](ctx context.Context, d *Dispatcher, cmd Req) (Res, error) {
	return dispatchRequest[Req, Res](ctx, d, CategoryCommandHandler, cmd)
}

// Query dispatches a query. It behaves exactly like Send but resolves query
// handlers.
func Query[Req, Res any](ctx context.Context, d *Dispatcher, query Req) (Res, error) {
	return dispatchRequest[Req, Res](ctx, d, CategoryQueryHandler, query)
}

// Publish delivers a notification to every handler registered for N, one
// after another in registration order. The first error stops delivery and is
// returned as is. Notifications bypass behaviors and fault recovery.
func Publish[N any](ctx context.Context, d *Dispatcher, n N) error {
	key := Key{Request: reflect.TypeFor[N]()}
	for _, e := range d.resolver.Resolve(key, CategoryNotificationHandler) {
		var err error
		switch h := e.Instance.(type) {
		case NotificationHandler[N]:
			err = h.Handle(ctx, n)
		case NotificationHandler[any]:
			err = h.Handle(ctx, n)
		default:
			err = fmt.Errorf("%w: notification handler %T", ErrInvalidRegistration, e.Instance)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func dispatchRequest[Req, Res any](ctx context.Context, d *Dispatcher, cat Category, req Req) (Res, error) {
	var zero Res
	key := KeyOf[Req, Res]()

	entry, err := d.resolveHandler(key, cat)
	if err != nil {
		return zero, err
	}
	handler, ok := entry.Instance.(Handler[Req, Res])
	if !ok {
		return zero, fmt.Errorf("%w: %s %T for %s", ErrInvalidRegistration, cat, entry.Instance, key)
	}

	registered := d.resolver.Resolve(key, CategoryBehavior)
	behaviors := make([]Behavior[Req, Res], 0, len(registered))
	for _, e := range registered {
		b, err := asBehavior[Req, Res](e.Instance)
		if err != nil {
			return zero, err
		}
		behaviors = append(behaviors, b)
	}

	run := Chain(ctx, req, func() (Res, error) {
		return handler.Handle(ctx, req)
	}, behaviors...)

	res, err := run()
	if err == nil {
		return res, nil
	}
	return recoverFault[Req, Res](ctx, d, key, entry.Origin, req, err)
}

func (d *Dispatcher) resolveHandler(key Key, cat Category) (Entry, error) {
	handlers := d.resolver.Resolve(key, cat)
	switch len(handlers) {
	case 0:
		return Entry{}, fmt.Errorf("%w: %s for %s", ErrHandlerNotFound, cat, key)
	case 1:
		return handlers[0], nil
	default:
		return Entry{}, fmt.Errorf("%w: %d %ss for %s", ErrAmbiguousHandler, len(handlers), cat, key)
	}
}
