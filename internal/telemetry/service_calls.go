package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TraceSearchCall creates a span for Elasticsearch queries.
// Examples: search_profiles, search_strains, index_strain
func TraceSearchCall(ctx context.Context, operation, index, query string) (context.Context, trace.Span) {
	// Truncate long queries to avoid cardinality explosion
	if len(query) > 200 {
		query = query[:200] + "..."
	}
	return otel.Tracer("elasticsearch").Start(ctx, "es."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("es.operation", operation),
			attribute.String("es.index", index),
			attribute.String("es.query", query),
		),
	)
}

// TraceStorageCall creates a span for S3 object operations.
// Examples: presign_upload, put_object, delete_object
func TraceStorageCall(ctx context.Context, operation, key string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("s3").Start(ctx, "s3."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("s3.operation", operation)),
	)
	if key != "" {
		span.SetAttributes(attribute.String("s3.key", key))
	}
	return ctx, span
}

// RecordServiceError records a service error in the span
func RecordServiceError(span trace.Span, service string, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err, trace.WithStackTrace(true))
		span.SetAttributes(
			attribute.String("error.type", "service_error"),
			attribute.String("error.service", service),
		)
	}
}

// RecordServiceSuccess marks the span successful with the number of results
func RecordServiceSuccess(span trace.Span, itemCount int) {
	span.SetAttributes(attribute.Int("result.item_count", itemCount))
	span.SetStatus(codes.Ok, "")
}

// SetRequestContext sets request-specific attributes
func SetRequestContext(span trace.Span, requestID string, userAgent string) {
	if requestID != "" {
		span.SetAttributes(attribute.String("request.id", requestID))
	}
	if userAgent != "" {
		if len(userAgent) > 200 {
			userAgent = userAgent[:200] + "..."
		}
		span.SetAttributes(attribute.String("http.user_agent", userAgent))
	}
}
