package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName          string
	AppVersion       string
	Environment      string
	HTTPAddr         string
	AuthCookieSecure bool

	OTLPEndpoint string

	Bootstrap BootstrapConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Cloud     CloudConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
}

type BootstrapConfig struct {
	EnsureDemoTenant bool
}

// RateLimitConfig gates the per-tenant insights limiter.
type RateLimitConfig struct {
	Enabled        bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	InsightsRate   float64
	InsightsBurst  int
	// LockTTLSeconds bounds how long one user's overview computation holds
	// its in-flight guard.
	LockTTLSeconds int
}

// CacheConfig sizes the in-process caches. A zero TTL disables caching.
type CacheConfig struct {
	StoresTTLSeconds int
}

type CloudConfig struct {
	Metrics CloudMetricsConfig
}

type CloudMetricsConfig struct {
	Enabled      bool
	Exporter     string
	Endpoint     string
	AuthToken    string
	PushInterval int
}

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewInsightsConfigHolder),
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	cfg := Config{
		AppName:          getenv("APP_SERVICE", "clinicops"),
		AppVersion:       getenv("APP_VERSION", "0.1.0"),
		Environment:      environment,
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		AuthCookieSecure: authCookieSecure,
		OTLPEndpoint:     getenv("OTLP_ENDPOINT", "localhost:4317"),
		Bootstrap: BootstrapConfig{
			EnsureDemoTenant: getenvBool("BOOTSTRAP_DEMO", environment != "production"),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:      strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "localhost:6379")),
			RedisPassword:  getenv("RATE_LIMIT_REDIS_PASSWORD", ""),
			RedisDB:        getenvInt("RATE_LIMIT_REDIS_DB", 0),
			InsightsRate:   getenvFloat("RATE_LIMIT_INSIGHTS_RATE", 5),
			InsightsBurst:  getenvInt("RATE_LIMIT_INSIGHTS_BURST", 20),
			LockTTLSeconds: getenvInt("RATE_LIMIT_LOCK_TTL_SECONDS", 30),
		},
		Cache: CacheConfig{
			StoresTTLSeconds: getenvInt("CACHE_STORES_TTL_SECONDS", 30),
		},
		Cloud: CloudConfig{
			Metrics: CloudMetricsConfig{
				Enabled:      getenvBool("CLOUD_METRICS_ENABLED", false),
				Exporter:     strings.ToLower(getenv("CLOUD_METRICS_EXPORTER", "")),
				Endpoint:     strings.TrimSpace(getenv("CLOUD_METRICS_ENDPOINT", "")),
				AuthToken:    strings.TrimSpace(getenv("CLOUD_METRICS_AUTH_TOKEN", "")),
				PushInterval: getenvInt("CLOUD_METRICS_PUSH_INTERVAL_SECONDS", 300),
			},
		},
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "clinicops"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
