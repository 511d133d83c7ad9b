package middleware

import (
	"context"

	"github.com/fxsml/dispatch"
)

// Validate rejects requests not conforming to their registered schema with a
// *ValidationError before the rest of the pipeline runs.
func Validate[Req, Res any](schemas *Schemas) dispatch.BehaviorFunc[Req, Res] {
	return func(ctx context.Context, req Req, next dispatch.NextFunc[Res]) (Res, error) {
		if err := schemas.Validate(req); err != nil {
			var zero Res
			return zero, err
		}
		return next()
	}
}
