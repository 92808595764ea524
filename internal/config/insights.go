package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultRankingSort = "month_gross"

// InsightsConfig tunes the insights pipeline at runtime. RankingSort is
// validated by the insights service, which falls back to month_gross.
type InsightsConfig struct {
	RequestTimeout time.Duration `mapstructure:"requestTimeout"`
	MaxConcurrency int           `mapstructure:"maxConcurrency"`
	RankingSort    string        `mapstructure:"rankingSort"`
}

func DefaultInsightsConfig() InsightsConfig {
	return InsightsConfig{
		RequestTimeout: 10 * time.Second,
		MaxConcurrency: 8,
		RankingSort:    defaultRankingSort,
	}
}

type InsightsConfigHolder struct {
	current atomic.Value // holds InsightsConfig
}

// NewInsightsConfigHolder loads insights.yml and keeps it hot reloaded.
func NewInsightsConfigHolder(log *zap.Logger) (*InsightsConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("insights")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/clinicops/config")
	v.AddConfigPath("/etc/clinicops")
	v.AddConfigPath(".")

	return newInsightsConfigHolder(v, log, true)
}

// NewStaticInsightsConfigHolder returns a holder that never reloads.
// Non-positive timeout or concurrency take the default value.
func NewStaticInsightsConfigHolder(cfg InsightsConfig) *InsightsConfigHolder {
	defaults := DefaultInsightsConfig()
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaults.MaxConcurrency
	}

	holder := &InsightsConfigHolder{}
	holder.current.Store(normalizeInsightsConfig(cfg))
	return holder
}

func newInsightsConfigHolder(v *viper.Viper, log *zap.Logger, watch bool) (*InsightsConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("insights.config")

	v.SetEnvPrefix("CLINICOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInsightsConfig()
	v.SetDefault("insights.requestTimeout", defaults.RequestTimeout)
	v.SetDefault("insights.maxConcurrency", defaults.MaxConcurrency)
	v.SetDefault("insights.rankingSort", defaults.RankingSort)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	cfg, err := readInsightsConfig(v)
	if err != nil {
		return nil, err
	}

	holder := &InsightsConfigHolder{}
	holder.current.Store(cfg)

	if watch && fileLoaded {
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := readInsightsConfig(v)
			if err != nil {
				log.Warn("invalid insights config ignored", zap.String("file", e.Name), zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("insights config reloaded", zap.String("file", e.Name))
		})
		v.WatchConfig()
	}

	return holder, nil
}

func (h *InsightsConfigHolder) Get() InsightsConfig {
	if h == nil {
		return DefaultInsightsConfig()
	}
	cfg, ok := h.current.Load().(InsightsConfig)
	if !ok {
		return DefaultInsightsConfig()
	}
	return cfg
}

func readInsightsConfig(v *viper.Viper) (InsightsConfig, error) {
	var cfg InsightsConfig
	if err := v.UnmarshalKey("insights", &cfg); err != nil {
		return InsightsConfig{}, err
	}
	cfg = normalizeInsightsConfig(cfg)
	if err := validateInsightsConfig(cfg); err != nil {
		return InsightsConfig{}, err
	}
	return cfg, nil
}

func normalizeInsightsConfig(cfg InsightsConfig) InsightsConfig {
	cfg.RankingSort = strings.ToLower(strings.TrimSpace(cfg.RankingSort))
	if cfg.RankingSort == "" {
		cfg.RankingSort = defaultRankingSort
	}
	return cfg
}

func validateInsightsConfig(cfg InsightsConfig) error {
	if cfg.RequestTimeout <= 0 {
		return errors.New("insights.requestTimeout must be positive")
	}
	if cfg.MaxConcurrency <= 0 {
		return errors.New("insights.maxConcurrency must be positive")
	}
	return nil
}
