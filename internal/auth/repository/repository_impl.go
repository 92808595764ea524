package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/clinicops/internal/auth/domain"
	"gorm.io/gorm"
)

type userRepo struct {
	db *gorm.DB
}

type sessionRepo struct {
	db *gorm.DB
}

// New returns the gorm-backed user and session stores sharing one handle.
func New(db *gorm.DB) (domain.UserRepository, domain.SessionRepository) {
	return &userRepo{db: db}, &sessionRepo{db: db}
}

// first loads one row matching the condition, mapping gorm's not-found to
// the caller's sentinel.
func first[T any](ctx context.Context, db *gorm.DB, notFound error, query string, args ...any) (*T, error) {
	var row T
	err := db.WithContext(ctx).Where(query, args...).Take(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, notFound
	case err != nil:
		return nil, err
	}
	return &row, nil
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) FindByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	return first[domain.User](ctx, r.db, domain.ErrUserNotFound, "id = ?", id)
}

func (r *sessionRepo) CreateSession(ctx context.Context, session *domain.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepo) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	return first[domain.Session](ctx, r.db, domain.ErrSessionNotFound, "token_hash = ?", tokenHash)
}

func (r *sessionRepo) RevokeSession(ctx context.Context, sessionID snowflake.ID, revokedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ?", sessionID).
		Where("revoked_at IS NULL").
		Update("revoked_at", revokedAt).Error
}
