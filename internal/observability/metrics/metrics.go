package metrics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	defaultMeterName = "clinicops"
	exportInterval   = 15 * time.Second
)

type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics holds the OTel instruments pushed over OTLP. A nil *Metrics
// records nothing.
type Metrics struct {
	computations     metric.Int64Counter
	scopeStores      metric.Int64Histogram
	rateLimitAllowed metric.Int64Counter
	rateLimitDenied  metric.Int64Counter
}

// NewProvider installs the global meter provider. Export disabled means a
// noop provider, so instruments are still safe to use.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}
	if log == nil {
		log = zap.NewNop()
	}

	exporter, err := newMetricExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}
	res, err := resource.New(context.Background(), resource.WithAttributes(
		attribute.String("service.name", meterName(cfg)),
		attribute.String("deployment.environment", cfg.Environment),
	))
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval))),
	)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				log.Info("flushing meter provider")
				return provider.Shutdown(ctx)
			},
		})
	}
	log.Info("otlp metrics export enabled",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)
	return provider, nil
}

func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName(cfg))

	var errs []error
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}

	scopeStores, err := meter.Int64Histogram("clinicops_insights_scope_stores",
		metric.WithDescription("Number of stores aggregated per insights request."),
	)
	errs = append(errs, err)

	m := &Metrics{
		computations:     counter("clinicops_insights_computations_total", "Completed insights computations."),
		scopeStores:      scopeStores,
		rateLimitAllowed: counter("clinicops_rate_limit_allowed_total", "Insights requests admitted by the limiter."),
		rateLimitDenied:  counter("clinicops_rate_limit_denied_total", "Insights requests rejected by the limiter."),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) RecordInsightsComputation(ctx context.Context, endpoint, scope string, stores int) {
	if m == nil {
		return
	}
	opt := labels("endpoint", endpoint, "scope", scope)
	m.computations.Add(ctx, 1, opt)
	m.scopeStores.Record(ctx, int64(stores), opt)
}

func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, tenantID, endpoint string) {
	if m == nil {
		return
	}
	m.rateLimitAllowed.Add(ctx, 1, labels("tenant_id", tenantID, "endpoint", endpoint))
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, tenantID, endpoint, reason string) {
	if m == nil {
		return
	}
	m.rateLimitDenied.Add(ctx, 1, labels("tenant_id", tenantID, "endpoint", endpoint, "reason", reason))
}

// labels takes key/value pairs and applies the allow list.
func labels(kv ...string) metric.MeasurementOption {
	attrs := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs = append(attrs, attribute.String(kv[i], strings.TrimSpace(kv[i+1])))
	}
	return metric.WithAttributes(FilterAttributes(attrs...)...)
}

func meterName(cfg Config) string {
	if name := strings.TrimSpace(cfg.ServiceName); name != "" {
		return name
	}
	return defaultMeterName
}

func newMetricExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	ctx := context.Background()
	switch p := strings.ToLower(strings.TrimSpace(protocol)); p {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(ctx, opts...)
	case "", "grpc", "grpc/protobuf":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP metrics protocol %q", p)
	}
}

// Store and user ids never become labels.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"tenant_id":   {},
	"endpoint":    {},
	"scope":       {},
	"status_code": {},
	"reason":      {},
}

// FilterAttributes keeps only allow-listed keys, preserving order.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	kept := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; ok {
			kept = append(kept, attr)
		}
	}
	return kept
}
