package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var businessTracer = otel.Tracer("business-events")

// StartFeedSpan traces assembly of a user's feed
func StartFeedSpan(ctx context.Context, userID string, authorCount int) (context.Context, trace.Span) {
	return businessTracer.Start(ctx, "feed.build",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("feed.author_count", authorCount),
		),
	)
}

// StartStatsSpan traces computation of a user's smoking statistics
func StartStatsSpan(ctx context.Context, userID string, puffCount int) (context.Context, trace.Span) {
	return businessTracer.Start(ctx, "smoking.stats",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("smoking.puff_count", puffCount),
		),
	)
}

// RecordEvent adds a named domain event to the span active in ctx
func RecordEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}
