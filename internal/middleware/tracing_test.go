package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"clubhub/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("test")
	t.Cleanup(func() { observability.Tracer = prev })
	return sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) string {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value.AsString()
		}
	}
	return ""
}

func TestTracingMiddleware_SpanDataSurvivesRequest(t *testing.T) {
	sr := recordSpans(t)
	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Get("/*", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	paths := []string{"/api/student/club/Chess_Club", "/health/live", "/api/student/club/Go_Club"}
	for _, path := range paths {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
	}

	spans := sr.Ended()
	require.Len(t, spans, len(paths))
	for i, span := range spans {
		assert.Equal(t, "GET "+paths[i], span.Name())
		assert.Equal(t, paths[i], spanAttr(span, "http.path"))
		assert.Equal(t, "GET", spanAttr(span, "http.method"))
	}
}
