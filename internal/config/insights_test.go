package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFileViper(t *testing.T, body string) *viper.Viper {
	t.Helper()

	dir := t.TempDir()
	if body != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "insights.yml"), []byte(body), 0o600))
	}

	v := viper.New()
	v.SetConfigName("insights")
	v.SetConfigType("yml")
	v.AddConfigPath(dir)
	return v
}

func TestInsightsConfigDefaultsWhenFileMissing(t *testing.T) {
	holder, err := newInsightsConfigHolder(newFileViper(t, ""), zap.NewNop(), false)
	require.NoError(t, err)

	assert.Equal(t, DefaultInsightsConfig(), holder.Get())
}

func TestInsightsConfigReadsFile(t *testing.T) {
	holder, err := newInsightsConfigHolder(newFileViper(t, `
insights:
  requestTimeout: 3s
  maxConcurrency: 2
  rankingSort: Today_Gross
`), zap.NewNop(), false)
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.Equal(t, "today_gross", cfg.RankingSort)
}

func TestInsightsConfigRejectsNonPositiveTimeout(t *testing.T) {
	_, err := newInsightsConfigHolder(newFileViper(t, `
insights:
  requestTimeout: 0s
`), zap.NewNop(), false)
	assert.Error(t, err)
}

func TestInsightsConfigRejectsNonPositiveConcurrency(t *testing.T) {
	_, err := newInsightsConfigHolder(newFileViper(t, `
insights:
  maxConcurrency: 0
`), zap.NewNop(), false)
	assert.Error(t, err)
}

func TestNilHolderFallsBackToDefaults(t *testing.T) {
	var holder *InsightsConfigHolder
	assert.Equal(t, DefaultInsightsConfig(), holder.Get())
}

func TestStaticHolderReplacesNonPositiveLimits(t *testing.T) {
	cfg := NewStaticInsightsConfigHolder(InsightsConfig{RankingSort: " Today_Gross "}).Get()

	assert.Equal(t, DefaultInsightsConfig().RequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, DefaultInsightsConfig().MaxConcurrency, cfg.MaxConcurrency)
	assert.Equal(t, "today_gross", cfg.RankingSort)

	cfg = NewStaticInsightsConfigHolder(InsightsConfig{RequestTimeout: -time.Second, MaxConcurrency: 2}).Get()
	assert.Equal(t, DefaultInsightsConfig().RequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.Equal(t, defaultRankingSort, cfg.RankingSort)
}
