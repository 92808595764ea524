package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSafeAttributesDropsUnknownKeys(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("tenant.id", "42"),
		attribute.Float64("invoice.total", 199.5),
		attribute.String("http.route", "/insights/overview"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("tenant.id"), attrs[0].Key)
	assert.Equal(t, attribute.Key("http.route"), attrs[1].Key)
}

func TestSafeErrorHidesMessage(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	assert.EqualError(t, SafeError(errors.New(`pq: relation "invoices" does not exist`)), "request failed")
}

func TestWrapHTTPClientPropagatesTraceContext(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	var traceparent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ctx, span := tp.Tracer("test").Start(context.Background(), "push")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL, nil)
	require.NoError(t, err)
	resp, err := WrapHTTPClient(nil).Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Contains(t, traceparent, span.SpanContext().TraceID().String())
}
