package middleware

import (
	"context"

	"github.com/fxsml/dispatch"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Trace records one span per request around the rest of the pipeline.
// Continuations do not receive a context, so the span is not the parent of
// spans started by inner behaviors or the handler.
func Trace[Req, Res any](tracer trace.Tracer) dispatch.BehaviorFunc[Req, Res] {
	return func(ctx context.Context, req Req, next dispatch.NextFunc[Res]) (Res, error) {
		name := RequestName(req)
		_, span := tracer.Start(ctx, "dispatch "+name,
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attribute.String("dispatch.request", name)),
		)
		defer span.End()

		res, err := next()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return res, err
	}
}
