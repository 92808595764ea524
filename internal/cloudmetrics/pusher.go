package cloudmetrics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/prometheus/prompb"
	"github.com/smallbiznis/clinicops/internal/config"
	obstracing "github.com/smallbiznis/clinicops/internal/observability/tracing"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/protoadapt"
)

const (
	exporterPrometheusRemoteWrite = "prometheus_remote_write"
	exporterPrometheusPushgateway = "prometheus_pushgateway"
	defaultPushTimeout            = 5 * time.Second
	remoteWriteVersion            = "0.1.0"
)

// Pusher ships the fleet registry to a central Prometheus. Push runs on the
// caller's goroutine.
type Pusher interface {
	Push(ctx context.Context, registry *prometheus.Registry) error
}

// NewPusher returns nil when cloud metrics are off or misconfigured; the
// reason is logged and requests are unaffected.
func NewPusher(cfg config.Config, logger *zap.Logger) Pusher {
	if !cfg.Cloud.Metrics.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	metricsCfg := cfg.Cloud.Metrics
	exporter := strings.ToLower(strings.TrimSpace(metricsCfg.Exporter))
	endpoint := strings.TrimSpace(metricsCfg.Endpoint)

	if err := validatePushTarget(exporter, endpoint); err != nil {
		logger.Warn("cloud metrics disabled",
			zap.String("exporter", exporter),
			zap.Error(err),
		)
		return nil
	}

	if exporter == exporterPrometheusPushgateway {
		return NewPushgatewayPusher(endpoint, cfg.AppName, map[string]string{
			"environment": strings.TrimSpace(cfg.Environment),
		})
	}
	return NewRemoteWritePusher(endpoint, metricsCfg.AuthToken)
}

func validatePushTarget(exporter, endpoint string) error {
	switch exporter {
	case "":
		return errors.New("cloud metrics exporter is required")
	case exporterPrometheusRemoteWrite, exporterPrometheusPushgateway:
	default:
		return fmt.Errorf("unsupported cloud metrics exporter %q", exporter)
	}
	if endpoint == "" {
		return errors.New("cloud metrics endpoint is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return fmt.Errorf("invalid cloud metrics endpoint: %w", err)
	}
	return nil
}

func newPushClient() *http.Client {
	return obstracing.WrapHTTPClient(&http.Client{Timeout: defaultPushTimeout})
}

// RemoteWritePusher posts counters and gauges to a remote_write endpoint as
// snappy-compressed protobuf.
type RemoteWritePusher struct {
	endpoint   string
	authToken  string
	httpClient *http.Client
	now        func() time.Time
}

func NewRemoteWritePusher(endpoint, authToken string) *RemoteWritePusher {
	return &RemoteWritePusher{
		endpoint:   endpoint,
		authToken:  strings.TrimSpace(authToken),
		httpClient: newPushClient(),
		now:        time.Now,
	}
}

func (p *RemoteWritePusher) Push(ctx context.Context, registry *prometheus.Registry) error {
	if p == nil || registry == nil {
		return nil
	}

	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather fleet metrics: %w", err)
	}
	series := buildRemoteWriteSeries(families, p.now().UnixMilli())
	if len(series) == 0 {
		return nil
	}

	payload, err := proto.Marshal(protoadapt.MessageV2Of(&prompb.WriteRequest{Timeseries: series}))
	if err != nil {
		return fmt.Errorf("encode remote write: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(snappy.Encode(nil, payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-protobuf")
	req.Header.Set("Content-Encoding", "snappy")
	req.Header.Set("X-Prometheus-Remote-Write-Version", remoteWriteVersion)
	if p.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.authToken)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("remote write returned %s", resp.Status)
	}
	return nil
}

// PushgatewayPusher replaces the instance's group on a Pushgateway.
type PushgatewayPusher struct {
	endpoint string
	job      string
	grouping map[string]string
	client   *http.Client
}

func NewPushgatewayPusher(endpoint, job string, grouping map[string]string) *PushgatewayPusher {
	return &PushgatewayPusher{
		endpoint: strings.TrimSpace(endpoint),
		job:      strings.TrimSpace(job),
		grouping: grouping,
		client:   newPushClient(),
	}
}

func (p *PushgatewayPusher) Push(ctx context.Context, registry *prometheus.Registry) error {
	if p == nil || registry == nil {
		return nil
	}
	if p.endpoint == "" || p.job == "" {
		return errors.New("pushgateway endpoint and job are required")
	}

	pusher := push.New(p.endpoint, p.job).Gatherer(registry).Client(p.client)
	for key, value := range p.grouping {
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key != "" && value != "" {
			pusher = pusher.Grouping(key, value)
		}
	}
	return pusher.PushContext(ctx)
}

// buildRemoteWriteSeries flattens counters and gauges into one sample each,
// labels sorted by name as remote_write requires.
func buildRemoteWriteSeries(families []*dto.MetricFamily, timestampMs int64) []prompb.TimeSeries {
	var series []prompb.TimeSeries
	for _, family := range families {
		for _, m := range family.GetMetric() {
			value, ok := sampleValue(family.GetType(), m)
			if !ok {
				continue
			}

			labels := []prompb.Label{{Name: "__name__", Value: family.GetName()}}
			for _, pair := range m.GetLabel() {
				labels = append(labels, prompb.Label{Name: pair.GetName(), Value: pair.GetValue()})
			}
			sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })

			series = append(series, prompb.TimeSeries{
				Labels:  labels,
				Samples: []prompb.Sample{{Value: value, Timestamp: timestampMs}},
			})
		}
	}
	return series
}

func sampleValue(kind dto.MetricType, m *dto.Metric) (float64, bool) {
	switch {
	case m == nil:
		return 0, false
	case kind == dto.MetricType_COUNTER && m.GetCounter() != nil:
		return m.GetCounter().GetValue(), true
	case kind == dto.MetricType_GAUGE && m.GetGauge() != nil:
		return m.GetGauge().GetValue(), true
	default:
		return 0, false
	}
}
