package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/clinicops/internal/auth/domain"
	"github.com/smallbiznis/clinicops/internal/clock"
	"github.com/smallbiznis/clinicops/internal/cloudmetrics"
	"github.com/smallbiznis/clinicops/internal/config"
	"github.com/smallbiznis/clinicops/internal/insights/aggregate"
	"github.com/smallbiznis/clinicops/internal/insights/domain"
	"github.com/smallbiznis/clinicops/internal/insights/ranking"
	"github.com/smallbiznis/clinicops/internal/insights/scope"
	"github.com/smallbiznis/clinicops/internal/insights/timerange"
	"github.com/smallbiznis/clinicops/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/clinicops/internal/observability/metrics"
	"github.com/smallbiznis/clinicops/internal/observability/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	windowToday     = "today"
	windowYesterday = "yesterday"
	windowMonth     = "month"
	windowLastMonth = "last_month"
)

type Params struct {
	fx.In

	Invoices domain.InvoiceReader
	Stores   domain.StoreReader
	Clock    clock.Clock
	Log      *zap.Logger
	Config   *config.InsightsConfigHolder `optional:"true"`
	Metrics  *obsmetrics.InsightsMetrics  `optional:"true"`
	OTel     *obsmetrics.Metrics          `optional:"true"`
}

type Service struct {
	invoices domain.InvoiceReader
	stores   domain.StoreReader
	ranges   *timerange.Resolver
	cfg      *config.InsightsConfigHolder
	log      *zap.Logger
	metrics  *obsmetrics.InsightsMetrics
	otel     *obsmetrics.Metrics
	tracer   trace.Tracer
}

func NewService(p Params) domain.Service {
	return &Service{
		invoices: p.Invoices,
		stores:   p.Stores,
		ranges:   timerange.NewResolver(p.Clock),
		cfg:      p.Config,
		log:      p.Log.Named("insights.service"),
		metrics:  p.Metrics,
		otel:     p.OTel,
		tracer:   otel.Tracer("clinicops/insights"),
	}
}

// windowSet holds the four raw aggregates behind one decorated pair.
type windowSet struct {
	today     domain.Aggregate
	yesterday domain.Aggregate
	month     domain.Aggregate
	lastMonth domain.Aggregate
}

func (w windowSet) decorate() (domain.DecoratedAggregate, domain.DecoratedAggregate) {
	return aggregate.Decorate(w.today, w.yesterday), aggregate.Decorate(w.month, w.lastMonth)
}

func (s *Service) Overview(ctx context.Context, req domain.OverviewRequest) (*domain.OverviewResponse, error) {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, "insights.Overview")
	defer span.End()

	resp, resolved, err := s.overview(ctx, req)
	s.observe(ctx, span, obsmetrics.EndpointOverview, started, resolved, err)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) overview(ctx context.Context, req domain.OverviewRequest) (*domain.OverviewResponse, domain.Scope, error) {
	if err := validatePrincipal(req.Principal); err != nil {
		return nil, domain.Scope{}, err
	}

	cfg := s.cfg.Get()
	sortKey, err := s.sortKey(req.Sort, cfg.RankingSort)
	if err != nil {
		return nil, domain.Scope{}, err
	}
	trace.SpanFromContext(ctx).SetAttributes(tracing.SafeAttributes(
		attribute.String("insights.ranking_sort", string(sortKey)),
	)...)

	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	resolved, err := s.resolveScope(ctx, req.Principal, req.Store)
	if err != nil {
		return nil, domain.Scope{}, err
	}

	windows := s.ranges.Windows()
	scopeIDs := resolved.StoreIDs()
	perStore := len(resolved.Stores) > 1

	var tenantSet windowSet
	storeSets := make([]windowSet, len(resolved.Stores))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrency)
	s.schedule(g, gctx, resolved.TenantID, scopeIDs, windows, &tenantSet)
	if perStore {
		for i, store := range resolved.Stores {
			s.schedule(g, gctx, resolved.TenantID, []snowflake.ID{store.ID}, windows, &storeSets[i])
		}
	}
	if err := g.Wait(); err != nil {
		return nil, resolved, err
	}

	tenantToday, tenantMonth := tenantSet.decorate()
	stores := make([]domain.StoreInsight, 0, len(resolved.Stores))
	for i, store := range resolved.Stores {
		today, month := tenantToday, tenantMonth
		if perStore {
			today, month = storeSets[i].decorate()
		}
		stores = append(stores, domain.StoreInsight{
			ID:    store.ID,
			Name:  store.Name,
			City:  store.City,
			Today: today,
			Month: month,
		})
	}
	ranking.Sort(stores, sortKey)

	return &domain.OverviewResponse{
		Scope:  resolved.View(),
		Ranges: windows,
		Tenant: domain.TenantInsight{
			Today: tenantToday,
			Month: tenantMonth,
		},
		Stores: stores,
	}, resolved, nil
}

func (s *Service) DashboardMetrics(ctx context.Context, req domain.DashboardRequest) (*domain.DashboardMetricsResponse, error) {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, "insights.DashboardMetrics")
	defer span.End()

	resp, resolved, err := s.dashboardMetrics(ctx, req)
	s.observe(ctx, span, obsmetrics.EndpointDashboard, started, resolved, err)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) dashboardMetrics(ctx context.Context, req domain.DashboardRequest) (*domain.DashboardMetricsResponse, domain.Scope, error) {
	if err := validatePrincipal(req.Principal); err != nil {
		return nil, domain.Scope{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Get().RequestTimeout)
	defer cancel()

	resolved, err := s.resolveScope(ctx, req.Principal, req.Store)
	if err != nil {
		return nil, domain.Scope{}, err
	}

	today := s.ranges.DayRange(0)
	agg, err := s.aggregate(ctx, windowToday, resolved.TenantID, resolved.StoreIDs(), today)
	if err != nil {
		return nil, resolved, err
	}

	return &domain.DashboardMetricsResponse{
		Store: resolved.View(),
		Range: today,
		Metrics: domain.DashboardMetrics{
			InvoicesToday:       agg.InvoiceCount,
			TodaySalesGross:     agg.GrossRevenue.InexactFloat64(),
			TodaySalesPaid:      agg.PaidRevenue.InexactFloat64(),
			UnpaidInvoicesToday: agg.UnpaidCount,
		},
	}, resolved, nil
}

func (s *Service) resolveScope(ctx context.Context, principal *authdomain.Principal, selector domain.StoreSelector) (domain.Scope, error) {
	stores, err := s.stores.ListStores(ctx, principal.TenantID)
	if err != nil {
		return domain.Scope{}, &domain.ComputationError{Op: "list_stores", Err: err}
	}
	return scope.Resolve(principal, selector, stores)
}

// schedule queues the four windows for one store set. Each task writes only
// its own slot in dst.
func (s *Service) schedule(g *errgroup.Group, ctx context.Context, tenantID snowflake.ID, storeIDs []snowflake.ID, windows domain.Windows, dst *windowSet) {
	tasks := []struct {
		window string
		rng    domain.TimeRange
		out    *domain.Aggregate
	}{
		{window: windowToday, rng: windows.Today, out: &dst.today},
		{window: windowYesterday, rng: windows.Yesterday, out: &dst.yesterday},
		{window: windowMonth, rng: windows.Month, out: &dst.month},
		{window: windowLastMonth, rng: windows.LastMonth, out: &dst.lastMonth},
	}
	for _, task := range tasks {
		g.Go(func() error {
			agg, err := s.aggregate(ctx, task.window, tenantID, storeIDs, task.rng)
			if err != nil {
				return err
			}
			*task.out = agg
			return nil
		})
	}
}

func (s *Service) aggregate(ctx context.Context, window string, tenantID snowflake.ID, storeIDs []snowflake.ID, rng domain.TimeRange) (domain.Aggregate, error) {
	if len(storeIDs) == 0 {
		return aggregate.Accumulate(nil), nil
	}
	if err := ctx.Err(); err != nil {
		return domain.Aggregate{}, &domain.ComputationError{Op: "aggregate." + window, Err: err}
	}

	ctx, span := s.tracer.Start(ctx, "insights.aggregate", trace.WithAttributes(tracing.SafeAttributes(
		attribute.String("insights.window", window),
		attribute.Int("insights.store_count", len(storeIDs)),
	)...))
	defer span.End()

	started := time.Now()
	rows, err := s.invoices.FindInvoices(ctx, tenantID, storeIDs, rng.Start, rng.End)
	if err != nil {
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, "aggregate failed")
		return domain.Aggregate{}, &domain.ComputationError{Op: "aggregate." + window, Err: err}
	}
	s.metrics.ObserveWindow(window, time.Since(started), len(rows))

	return aggregate.Accumulate(rows), nil
}

func (s *Service) sortKey(requested string, configured string) (domain.SortKey, error) {
	if requested != "" {
		return domain.ParseSortKey(requested)
	}
	key, err := domain.ParseSortKey(configured)
	if err != nil {
		s.log.Warn("configured ranking sort is not supported, using month_gross",
			zap.String("ranking_sort", configured),
		)
		return domain.SortMonthGross, nil
	}
	return key, nil
}

func (s *Service) observe(ctx context.Context, span trace.Span, endpoint string, started time.Time, resolved domain.Scope, err error) {
	if err != nil {
		reason := obsmetrics.ClassifyInsightsReason(err)
		s.metrics.IncError(endpoint, err)
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, reason)

		log := logger.WithContext(ctx, s.log)
		var computeErr *domain.ComputationError
		if errors.As(err, &computeErr) {
			cloudmetrics.RecordEngineError(tenantLabel(resolved), computeErr.Op)
			log.Error("insights computation failed",
				zap.String("endpoint", endpoint),
				zap.String("reason", reason),
				zap.Error(err),
			)
		} else {
			log.Debug("insights request rejected",
				zap.String("endpoint", endpoint),
				zap.String("reason", reason),
			)
		}
		return
	}

	scopeLabel := "single"
	if resolved.All {
		scopeLabel = "all"
	}
	span.SetAttributes(tracing.SafeAttributes(
		attribute.String("insights.scope", scopeLabel),
		attribute.Int("insights.store_count", len(resolved.Stores)),
	)...)
	s.metrics.ObserveRequest(endpoint, time.Since(started))
	s.otel.RecordInsightsComputation(ctx, endpoint, scopeLabel, len(resolved.Stores))
	cloudmetrics.RecordInsightsServed(tenantLabel(resolved), endpoint)
}

func tenantLabel(resolved domain.Scope) string {
	if resolved.TenantID == 0 {
		return ""
	}
	return resolved.TenantID.String()
}

func validatePrincipal(principal *authdomain.Principal) error {
	if principal == nil {
		return domain.ErrUnauthenticated
	}
	if principal.TenantID == 0 {
		return domain.ErrInvalidTenant
	}
	return nil
}
