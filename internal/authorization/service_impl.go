package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	authdomain "github.com/smallbiznis/clinicops/internal/auth/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:embed model.conf
var modelText string

const (
	ObjectInsights  = "insights"
	ObjectDashboard = "dashboard"
)

const (
	ActionInsightsView  = "insights.view"
	ActionDashboardView = "dashboard.view"
)

const (
	groupInsightsViewer  = "role:insights_viewer"
	groupDashboardViewer = "role:dashboard_viewer"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds an in-memory enforcer seeded with the role policy.
func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, principal *authdomain.Principal, object string, action string) error {
	if principal == nil {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	if principal.Role == authdomain.RoleUnknown {
		s.logDenied(principal, object, action)
		return ErrForbidden
	}

	allowed, err := s.enforcer.Enforce(subjectForRole(principal.Role), object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.logDenied(principal, object, action)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) logDenied(principal *authdomain.Principal, object string, action string) {
	s.log.Debug("authorization denied",
		zap.String("user_id", principal.UserID.String()),
		zap.String("tenant_id", principal.TenantID.String()),
		zap.String("role", principal.Role.String()),
		zap.String("object", object),
		zap.String("action", action),
	)
}

func subjectForRole(role authdomain.Role) string {
	return "role:" + strings.ToLower(string(role))
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{groupInsightsViewer, ObjectInsights, ActionInsightsView},
		{groupDashboardViewer, ObjectDashboard, ActionDashboardView},
	}

	groupings := [][]string{
		// Insights viewers also see the daily dashboard.
		{groupInsightsViewer, groupDashboardViewer},

		{subjectForRole(authdomain.RoleOwner), groupInsightsViewer},
		{subjectForRole(authdomain.RoleAdmin), groupInsightsViewer},
		{subjectForRole(authdomain.RoleManager), groupInsightsViewer},
		{subjectForRole(authdomain.RoleStaff), groupInsightsViewer},

		{subjectForRole(authdomain.RoleOptometrist), groupDashboardViewer},
		{subjectForRole(authdomain.RoleReceptionist), groupDashboardViewer},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	for _, grouping := range groupings {
		if _, err := enforcer.AddGroupingPolicy(grouping); err != nil {
			return err
		}
	}
	return nil
}
