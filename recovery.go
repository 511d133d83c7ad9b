package dispatch

import (
	"context"
	"fmt"
)

// recoverFault handles a fault raised by the pipeline of req. Every matching
// exception action observes the fault, then the highest priority exception
// handler, if any, produces the result. Without an exception handler the
// fault is returned unchanged.
func recoverFault[Req, Res any](
	ctx context.Context,
	d *Dispatcher,
	key Key,
	origin Origin,
	req Req,
	fault error,
) (Res, error) {
	var zero Res

	for _, e := range d.resolveFaultEntries(key, CategoryExceptionAction, origin, fault) {
		if err := executeAction(ctx, e.Instance, req, fault); err != nil {
			d.logger.Warn("Exception action failed",
				"request", key.String(),
				"fault", fault,
				"error", err)
			return zero, &ActionError{Err: err, Fault: fault}
		}
	}

	handlers := d.resolveFaultEntries(key, CategoryExceptionHandler, origin, fault)
	if len(handlers) == 0 {
		return zero, fault
	}

	res, err := handleException[Req, Res](ctx, handlers[0].Instance, req, fault)
	if err != nil {
		return zero, err
	}
	d.logger.Debug("Fault recovered",
		"request", key.String(),
		"fault", fault)
	return res, nil
}

// resolveFaultEntries returns the entries of cat accepting fault, highest
// priority first.
func (d *Dispatcher) resolveFaultEntries(key Key, cat Category, origin Origin, fault error) []Entry {
	entries := d.resolver.Resolve(key, cat)
	accepted := entries[:0:0]
	for _, e := range entries {
		if e.Match == nil || e.Match(fault) {
			accepted = append(accepted, e)
		}
	}
	return sortByPriority(origin, accepted, d.scorer)
}

func executeAction[Req any](ctx context.Context, instance any, req Req, fault error) error {
	switch a := instance.(type) {
	case ExceptionAction[Req]:
		return a.Execute(ctx, req, fault)
	case ExceptionAction[any]:
		return a.Execute(ctx, req, fault)
	default:
		return fmt.Errorf("%w: exception action %T", ErrInvalidRegistration, instance)
	}
}

func handleException[Req, Res any](ctx context.Context, instance any, req Req, fault error) (Res, error) {
	switch h := instance.(type) {
	case ExceptionHandler[Req, Res]:
		return h.Handle(ctx, req, fault)
	case ExceptionHandler[any, Res]:
		return h.Handle(ctx, req, fault)
	default:
		var zero Res
		return zero, fmt.Errorf("%w: exception handler %T", ErrInvalidRegistration, instance)
	}
}
