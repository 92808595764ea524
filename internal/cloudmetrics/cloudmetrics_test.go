package cloudmetrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/prometheus/prometheus/prompb"
	"github.com/smallbiznis/clinicops/internal/config"
	invoicedomain "github.com/smallbiznis/clinicops/internal/invoice/domain"
	"github.com/smallbiznis/clinicops/internal/migration"
	tenantdomain "github.com/smallbiznis/clinicops/internal/tenant/domain"
	"github.com/smallbiznis/clinicops/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type capturePusher struct {
	pushes int
}

func (p *capturePusher) Push(context.Context, *prometheus.Registry) error {
	p.pushes++
	return nil
}

func TestRecorderCountsServedAndErrors(t *testing.T) {
	c := New(prometheus.NewRegistry(), &capturePusher{}, "test", "1.0.0", zap.NewNop())

	RecordInsightsServed("42", "overview")
	RecordInsightsServed("42", "overview")
	RecordEngineError("", "aggregate.today")

	assert.Equal(t, float64(2), testutil.ToFloat64(c.metrics.insightsServed.WithLabelValues("42", "overview")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.engineErrors.WithLabelValues("unknown", "aggregate.today")))
}

func TestNilCloudMetricsIsSafe(t *testing.T) {
	var c *CloudMetrics
	c.SetFleet(FleetSnapshot{Tenants: 1})
	c.SetMemoryUsage(10)
	assert.NoError(t, c.Push(context.Background()))
	assert.Nil(t, c.Registry())
}

func TestPushRequiresPusher(t *testing.T) {
	c := New(prometheus.NewRegistry(), nil, "test", "1.0.0", zap.NewNop())
	assert.Error(t, c.Push(context.Background()))
}

func TestNewPusherDisabledOrMisconfigured(t *testing.T) {
	assert.Nil(t, NewPusher(config.Config{}, zap.NewNop()))

	cfg := config.Config{}
	cfg.Cloud.Metrics.Enabled = true
	assert.Nil(t, NewPusher(cfg, zap.NewNop()))

	cfg.Cloud.Metrics.Exporter = "carrier_pigeon"
	cfg.Cloud.Metrics.Endpoint = "http://localhost:9090"
	assert.Nil(t, NewPusher(cfg, zap.NewNop()))

	cfg.Cloud.Metrics.Exporter = exporterPrometheusRemoteWrite
	assert.IsType(t, &RemoteWritePusher{}, NewPusher(cfg, zap.NewNop()))

	cfg.Cloud.Metrics.Exporter = exporterPrometheusPushgateway
	assert.IsType(t, &PushgatewayPusher{}, NewPusher(cfg, zap.NewNop()))
}

func TestRemoteWritePusherSendsSnappyProtobuf(t *testing.T) {
	var got prompb.WriteRequest
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		decoded, err := snappy.Decode(nil, body)
		require.NoError(t, err)
		require.NoError(t, got.Unmarshal(decoded))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	registry := prometheus.NewRegistry()
	c := New(registry, NewRemoteWritePusher(srv.URL, "secret"), "test", "1.0.0", zap.NewNop())
	c.SetFleet(FleetSnapshot{Tenants: 3, Stores: 7, InvoicesLast24h: 11})

	require.NoError(t, c.Push(context.Background()))
	assert.Equal(t, "snappy", headers.Get("Content-Encoding"))
	assert.Equal(t, "Bearer secret", headers.Get("Authorization"))

	values := map[string]float64{}
	for _, ts := range got.Timeseries {
		for _, label := range ts.Labels {
			if label.Name == "__name__" {
				values[label.Value] = ts.Samples[0].Value
			}
		}
	}
	assert.Equal(t, float64(3), values["clinicops_cloud_tenants"])
	assert.Equal(t, float64(7), values["clinicops_cloud_stores"])
	assert.Equal(t, float64(11), values["clinicops_cloud_invoices_last_24h"])
}

func TestRemoteWritePusherReportsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	registry := prometheus.NewRegistry()
	c := New(registry, NewRemoteWritePusher(srv.URL, ""), "test", "1.0.0", zap.NewNop())
	c.SetFleet(FleetSnapshot{Tenants: 1})

	assert.Error(t, c.Push(context.Background()))
}

func TestBuildRemoteWriteSeriesSortsLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "sample_total"}, []string{"zone", "app"})
	registry.MustRegister(counter)
	counter.WithLabelValues("ap-south-1", "clinicops").Add(2)

	families, err := registry.Gather()
	require.NoError(t, err)

	series := buildRemoteWriteSeries(families, 1000)
	require.Len(t, series, 1)
	names := []string{}
	for _, label := range series[0].Labels {
		names = append(names, label.Name)
	}
	assert.Equal(t, []string{"__name__", "app", "zone"}, names)
	assert.Equal(t, float64(2), series[0].Samples[0].Value)
	assert.Equal(t, int64(1000), series[0].Samples[0].Timestamp)
}

func TestLoadFleetCountsRows(t *testing.T) {
	conn, err := db.NewTest(t.Name())
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	now := time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC)
	require.NoError(t, conn.Create(&tenantdomain.Tenant{ID: 1, Name: "Chain", Slug: "chain", CreatedAt: now}).Error)
	require.NoError(t, conn.Create(&tenantdomain.Store{ID: 11, TenantID: 1, Name: "A", Code: "a", CreatedAt: now}).Error)
	require.NoError(t, conn.Create(&tenantdomain.Store{ID: 12, TenantID: 1, Name: "B", Code: "b", CreatedAt: now}).Error)
	for i, age := range []time.Duration{time.Hour, 23 * time.Hour, 25 * time.Hour} {
		require.NoError(t, conn.Create(&invoicedomain.Invoice{
			ID:            snowflake.ID(100 + i),
			TenantID:      1,
			StoreID:       11,
			Number:        "INV",
			PaymentStatus: "paid",
			Totals:        datatypes.JSON(`{"total":10}`),
			CreatedAt:     now.Add(-age),
		}).Error)
	}

	snapshot, err := loadFleet(context.Background(), conn, now)
	require.NoError(t, err)
	assert.Equal(t, FleetSnapshot{Tenants: 1, Stores: 2, InvoicesLast24h: 2}, snapshot)
}
