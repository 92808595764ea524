package service

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/clinicops/internal/auth/domain"
	"github.com/smallbiznis/clinicops/internal/auth/session"
	"github.com/smallbiznis/clinicops/internal/clock"
	tenantdomain "github.com/smallbiznis/clinicops/internal/tenant/domain"
	"go.uber.org/zap"
)

type Service struct {
	log         *zap.Logger
	repo        domain.UserRepository
	sessionRepo domain.SessionRepository
	stores      tenantdomain.Repository
	clock       clock.Clock
}

func New(log *zap.Logger, repo domain.UserRepository, sessionRepo domain.SessionRepository, stores tenantdomain.Repository, clk clock.Clock) domain.Service {
	return &Service{
		log:         log.Named("auth.service"),
		repo:        repo,
		sessionRepo: sessionRepo,
		stores:      stores,
		clock:       clk,
	}
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Principal, error) {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return nil, domain.ErrInvalidSession
	}

	sess, err := s.sessionRepo.GetSessionByTokenHash(ctx, session.HashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, err
	}

	now := s.clock.Now()
	if sess.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	if !now.Before(sess.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}

	user, err := s.repo.FindByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, err
	}

	assigned, err := s.stores.ListAssignedStoreIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	role := domain.ParseRole(user.Role)
	if role == domain.RoleUnknown {
		s.log.Warn("session user has unrecognized role",
			zap.String("user_id", user.ID.String()),
			zap.String("role", user.Role),
		)
	}

	return &domain.Principal{
		UserID:           user.ID,
		TenantID:         user.TenantID,
		Role:             role,
		AssignedStoreIDs: assigned,
	}, nil
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return domain.ErrInvalidSession
	}

	sess, err := s.sessionRepo.GetSessionByTokenHash(ctx, session.HashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.ErrInvalidSession
		}
		return err
	}
	if sess.RevokedAt != nil {
		return nil
	}
	return s.sessionRepo.RevokeSession(ctx, sess.ID, s.clock.Now())
}
