package observability

import (
	"os"
	"strconv"
	"strings"

	"github.com/smallbiznis/clinicops/internal/config"
)

const (
	defaultSamplingRatio = 0.1
	defaultOTLPProtocol  = "grpc"
)

// Config holds the logging and OpenTelemetry settings. Values come from the
// application config, overridable through the standard OTEL_* variables.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	env := envLookup(os.Getenv)

	protocol := env.lower("OTEL_EXPORTER_OTLP_PROTOCOL", defaultOTLPProtocol)
	protocol = env.lower("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", protocol)

	return Config{
		ServiceName:          firstNonEmpty(cfg.AppName, "clinicops"),
		Environment:          env.str("DEPLOYMENT_ENV", cfg.Environment),
		Version:              env.str("SERVICE_VERSION", cfg.AppVersion),
		LogLevel:             env.lower("LOG_LEVEL", "info"),
		LogFormat:            env.lower("LOG_FORMAT", "json"),
		OtelEnabled:          env.boolean("OTEL_ENABLED", false),
		OtelExporterEndpoint: env.str("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint),
		OtelExporterProtocol: protocol,
		OtelSamplingRatio:    env.float("OTEL_SAMPLING_RATIO", defaultSamplingRatio),
	}
}

// Debug is true for debug log level or any non-production style environment.
func (c Config) Debug() bool {
	if strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

type envLookup func(string) string

func (l envLookup) str(key, def string) string {
	return firstNonEmpty(l(key), def)
}

func (l envLookup) lower(key, def string) string {
	return strings.ToLower(l.str(key, def))
}

func (l envLookup) boolean(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(l(key))) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func (l envLookup) float(key string, def float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(l(key)), 64)
	if err != nil {
		return def
	}
	return parsed
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
