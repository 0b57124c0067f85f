package database

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/FBK-Manuel/wearehfg/pkg/database"

// SlowThreshold is the duration above which TraceOp logs a warning.
var SlowThreshold = 250 * time.Millisecond

// TraceOp opens a client span for one storage operation. Call the returned
// func with the operation's error when it completes.
func TraceOp(ctx context.Context, logger *slog.Logger, system, operation, key string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, system+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", system),
			attribute.String("db.operation", operation),
			attribute.String("storefront.key", key),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		if elapsed := time.Since(start); elapsed >= SlowThreshold && logger != nil {
			logger.WarnContext(ctx, "slow storage operation",
				slog.String("system", system),
				slog.String("operation", operation),
				slog.Duration("duration", elapsed),
			)
		}
	}
}
