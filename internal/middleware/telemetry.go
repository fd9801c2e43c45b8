package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware returns otelgin followed by a handler that adds the
// caller and request ID to the server span. Use as r.Use(TracingMiddleware(name)...).
func TracingMiddleware(serviceName string) gin.HandlersChain {
	return gin.HandlersChain{otelgin.Middleware(serviceName), annotateSpan}
}

// annotateSpan runs inside the otelgin span so it is still recording
func annotateSpan(c *gin.Context) {
	c.Next()

	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}
	if userID := c.GetString("user_id"); userID != "" {
		span.SetAttributes(attribute.String("user.id", userID))
	}
	telemetry.SetRequestContext(span, c.GetString(RequestIDKey), c.Request.UserAgent())
	for _, ginErr := range c.Errors {
		if ginErr.Err != nil {
			span.RecordError(ginErr.Err)
			span.SetStatus(codes.Error, ginErr.Error())
		}
	}
}
