package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("tenant_id", "123"),
		attribute.String("store_id", "456"),
		attribute.String("scope", "all"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("tenant_id"), attrs[0].Key)
	assert.Equal(t, attribute.Key("scope"), attrs[1].Key)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordInsightsComputation(context.Background(), "overview", "all", 3)
		m.RecordRateLimitDenied(context.Background(), "1", "overview", "bucket_empty")
	})
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "clinicops"}, noop.NewMeterProvider())
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		m.RecordInsightsComputation(context.Background(), "dashboard", "single", 1)
		m.RecordRateLimitAllowed(context.Background(), "1", "dashboard")
	})
}
