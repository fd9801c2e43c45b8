package telemetry

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// NewInstrumentedHTTPClient creates an HTTP client whose requests are traced
func NewInstrumentedHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: NewInstrumentedTransport(http.DefaultTransport),
	}
}

// NewInstrumentedTransport wraps base with client-side tracing
func NewInstrumentedTransport(base http.RoundTripper) http.RoundTripper {
	return otelhttp.NewTransport(base,
		otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
	)
}
