package observability

import (
	"github.com/smallbiznis/clinicops/internal/observability/logger"
	"github.com/smallbiznis/clinicops/internal/observability/metrics"
	"github.com/smallbiznis/clinicops/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

// Module wires the logger, the OTel trace and meter providers, and the
// prometheus collectors used by the HTTP layer and the insights engine.
var Module = fx.Module("observability",
	fx.Provide(LoadConfig),
	fx.Provide(
		func(cfg Config) logger.Config {
			debug := cfg.Debug()
			return logger.Config{
				ServiceName:         cfg.ServiceName,
				Environment:         cfg.Environment,
				Version:             cfg.Version,
				Level:               cfg.LogLevel,
				Format:              cfg.LogFormat,
				Debug:               debug,
				IncludeCaller:       true,
				IncludeStackOnError: debug,
			}
		},
		logger.New,
	),
	fx.Provide(
		func(cfg Config) tracing.Config {
			return tracing.Config{
				Enabled:          cfg.OtelEnabled,
				ServiceName:      cfg.ServiceName,
				ServiceVersion:   cfg.Version,
				Environment:      cfg.Environment,
				ExporterEndpoint: cfg.OtelExporterEndpoint,
				ExporterProtocol: cfg.OtelExporterProtocol,
				SamplingRatio:    cfg.OtelSamplingRatio,
			}
		},
		tracing.NewProvider,
	),
	fx.Provide(
		func(cfg Config) metrics.Config {
			return metrics.Config{
				Enabled:          cfg.OtelEnabled,
				ExporterEndpoint: cfg.OtelExporterEndpoint,
				ExporterProtocol: cfg.OtelExporterProtocol,
				ServiceName:      cfg.ServiceName,
				Environment:      cfg.Environment,
			}
		},
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
		metrics.InsightsWithConfig,
	),
	// The trace provider registers itself globally; force construction even
	// though nothing depends on it by type.
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
