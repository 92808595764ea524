package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// UserRepository reads and writes dashboard users. Lookups of a missing user
// return ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id snowflake.ID) (*User, error)
}

// SessionRepository stores sessions by the hash of their bearer token; the
// raw token is never persisted.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	// RevokeSession is idempotent: an already revoked session keeps its
	// original revocation time.
	RevokeSession(ctx context.Context, sessionID snowflake.ID, revokedAt time.Time) error
}
