package tracing

import (
	"context"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

// Keys that may leave the process on spans. Invoice totals and session tokens never do.
var allowedAttributeKeys = map[attribute.Key]struct{}{
	"request_id":              {},
	"http.method":             {},
	"http.route":              {},
	"http.status_code":        {},
	"http.server_duration_ms": {},
	"tenant.id":               {},
	"insights.scope":          {},
	"insights.store_count":    {},
	"insights.window":         {},
	"insights.ranking_sort":   {},
}

// SafeAttributes drops attributes that are not on the allow list.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedAttributeKeys[attr.Key]; ok {
			out = append(out, attr)
		}
	}
	return out
}

// SafeError replaces error text with a generic message so driver errors
// carrying SQL or parameters are not exported.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New("request failed")
}

func ExtractContext(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// WrapHTTPClient injects the active trace context into outbound requests.
func WrapHTTPClient(client *http.Client) *http.Client {
	if client == nil {
		client = &http.Client{}
	}
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *client
	wrapped.Transport = propagatingTransport{base: base}
	return &wrapped
}

type propagatingTransport struct {
	base http.RoundTripper
}

func (t propagatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(clone.Header))
	return t.base.RoundTrip(clone)
}
