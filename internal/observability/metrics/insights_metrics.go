package metrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/clinicops/internal/authorization"
	insightsdomain "github.com/smallbiznis/clinicops/internal/insights/domain"
	"gorm.io/gorm"
)

const (
	InsightsReasonDeadlineExceeded = "deadline_exceeded"
	InsightsReasonUnauthenticated  = "unauthenticated"
	InsightsReasonForbidden        = "forbidden"
	InsightsReasonNotFound         = "not_found"
	InsightsReasonInvalidRequest   = "invalid_request"
	InsightsReasonStatementTimeout = "statement_timeout"
	InsightsReasonDBLockTimeout    = "db_lock_timeout"
	InsightsReasonDBConnection     = "db_connection"
	InsightsReasonDB               = "db"
	InsightsReasonUnknown          = "unknown"
)

const (
	EndpointOverview  = "overview"
	EndpointDashboard = "dashboard"
)

// InsightsMetrics tracks the health of the insights aggregation pipeline.
type InsightsMetrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	windowDuration  *prometheus.HistogramVec
	invoicesScanned *prometheus.CounterVec
}

var (
	insightsMetricsOnce sync.Once
	insightsMetrics     *InsightsMetrics
)

// Insights returns the singleton insights metrics registry.
func Insights() *InsightsMetrics {
	return InsightsWithConfig(Config{})
}

// InsightsWithConfig returns the singleton registry, labelled from cfg on first use.
func InsightsWithConfig(cfg Config) *InsightsMetrics {
	insightsMetricsOnce.Do(func() {
		insightsMetrics = newInsightsMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return insightsMetrics
}

func newInsightsMetrics(registerer prometheus.Registerer, cfg Config) *InsightsMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	constLabels := constLabelsFor(cfg)

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "clinicops_insights_requests_total",
		Help:        "Insights computations by endpoint.",
		ConstLabels: constLabels,
	}, []string{"endpoint"})
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "clinicops_insights_duration_seconds",
		Help:        "End-to-end insights computation latency.",
		Buckets:     []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: constLabels,
	}, []string{"endpoint"})
	errorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "clinicops_insights_errors_total",
		Help:        "Insights failures by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"endpoint", "reason"})
	windowDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "clinicops_insights_window_duration_seconds",
		Help:        "Latency of a single time-window aggregation.",
		Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		ConstLabels: constLabels,
	}, []string{"window"})
	invoicesScanned := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "clinicops_insights_invoices_scanned_total",
		Help:        "Invoice rows folded into aggregates.",
		ConstLabels: constLabels,
	}, []string{"window"})

	registerer.MustRegister(
		requests,
		requestDuration,
		errorsTotal,
		windowDuration,
		invoicesScanned,
	)

	return &InsightsMetrics{
		requests:        requests,
		requestDuration: requestDuration,
		errors:          errorsTotal,
		windowDuration:  windowDuration,
		invoicesScanned: invoicesScanned,
	}
}

// ObserveRequest counts one computation and records its latency.
func (m *InsightsMetrics) ObserveRequest(endpoint string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint).Inc()
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// IncError records a failed computation with its classified reason.
func (m *InsightsMetrics) IncError(endpoint string, err error) {
	if m == nil || err == nil {
		return
	}
	m.errors.WithLabelValues(endpoint, ClassifyInsightsReason(err)).Inc()
}

// ObserveWindow records a single aggregation and the rows it scanned.
func (m *InsightsMetrics) ObserveWindow(window string, duration time.Duration, rows int) {
	if m == nil {
		return
	}
	m.windowDuration.WithLabelValues(window).Observe(duration.Seconds())
	if rows > 0 {
		m.invoicesScanned.WithLabelValues(window).Add(float64(rows))
	}
}

// ClassifyInsightsReason maps pipeline errors to metric and log reasons.
func ClassifyInsightsReason(err error) string {
	switch {
	case err == nil:
		return InsightsReasonUnknown
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return InsightsReasonDeadlineExceeded
	case errors.Is(err, insightsdomain.ErrUnauthenticated):
		return InsightsReasonUnauthenticated
	case errors.Is(err, insightsdomain.ErrForbidden), errors.Is(err, authorization.ErrForbidden):
		return InsightsReasonForbidden
	case errors.Is(err, insightsdomain.ErrStoreNotFound):
		return InsightsReasonNotFound
	case errors.Is(err, insightsdomain.ErrInvalidSortKey),
		errors.Is(err, insightsdomain.ErrInvalidStoreID),
		errors.Is(err, insightsdomain.ErrInvalidTenant):
		return InsightsReasonInvalidRequest
	case hasPGCode(err, "57014"):
		return InsightsReasonStatementTimeout
	case hasPGCode(err, "55P03"):
		return InsightsReasonDBLockTimeout
	case hasPGCodeClass(err, "08"):
		return InsightsReasonDBConnection
	case isDBError(err):
		return InsightsReasonDB
	default:
		return InsightsReasonUnknown
	}
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

func hasPGCodeClass(err error, class string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return len(pgErr.Code) >= 2 && pgErr.Code[:2] == class
	}
	return false
}

func isDBError(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	if errors.Is(err, gorm.ErrInvalidDB) ||
		errors.Is(err, gorm.ErrInvalidTransaction) ||
		errors.Is(err, gorm.ErrInvalidField) ||
		errors.Is(err, gorm.ErrInvalidData) ||
		errors.Is(err, gorm.ErrUnsupportedDriver) ||
		errors.Is(err, gorm.ErrNotImplemented) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr)
}
