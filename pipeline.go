package dispatch

import (
	"context"
	"fmt"
	"reflect"
)

// Chain composes behaviors around terminal into a single NextFunc.
// Behaviors are applied in reverse order: for behaviors A, B, C the
// execution flow is A→B→C→terminal, so the first behavior sees the call
// first and the result last.
func Chain[Req, Res any](
	ctx context.Context,
	req Req,
	terminal NextFunc[Res],
	behaviors ...Behavior[Req, Res],
) NextFunc[Res] {
	next := terminal
	for i := len(behaviors) - 1; i >= 0; i-- {
		behavior := behaviors[i]
		inner := next
		next = func() (Res, error) {
			return behavior.Handle(ctx, req, inner)
		}
	}
	return next
}

// asBehavior returns the typed form of a registered behavior. Open behaviors
// are adapted so that they observe the request and result as any.
func asBehavior[Req, Res any](instance any) (Behavior[Req, Res], error) {
	switch b := instance.(type) {
	case Behavior[Req, Res]:
		return b, nil
	case Behavior[any, any]:
		return openBehavior[Req, Res]{open: b}, nil
	default:
		return nil, fmt.Errorf("%w: behavior %T", ErrInvalidRegistration, instance)
	}
}

type openBehavior[Req, Res any] struct {
	open Behavior[any, any]
}

func (b openBehavior[Req, Res]) Handle(ctx context.Context, req Req, next NextFunc[Res]) (Res, error) {
	out, err := b.open.Handle(ctx, req, func() (any, error) {
		return next()
	})
	res, convErr := convertResult[Res](out)
	if err != nil {
		return res, err
	}
	return res, convErr
}

// convertResult converts a result produced by an open capability back to Res.
// A nil value yields the zero Res.
func convertResult[Res any](v any) (Res, error) {
	var zero Res
	if v == nil {
		return zero, nil
	}
	res, ok := v.(Res)
	if !ok {
		return zero, fmt.Errorf("%w: got %T, want %s", ErrResultType, v, reflect.TypeFor[Res]())
	}
	return res, nil
}
