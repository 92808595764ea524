// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User represents a staff account that belongs to one tenant.
type User struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	TenantID  snowflake.ID `gorm:"column:tenant_id;not null;index"`
	Name      string       `gorm:"type:text;not null"`
	Email     string       `gorm:"column:email;not null;uniqueIndex"`
	Role      string       `gorm:"type:text;not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session represents a persisted login session.
type Session struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	UserID    snowflake.ID `gorm:"column:user_id;not null;index"`
	TokenHash string       `gorm:"column:token_hash;type:text;not null;uniqueIndex"`
	ExpiresAt time.Time    `gorm:"column:expires_at;not null;index"`
	RevokedAt *time.Time   `gorm:"column:revoked_at"`
	CreatedAt time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID           snowflake.ID
	TenantID         snowflake.ID
	Role             Role
	AssignedStoreIDs []snowflake.ID
}
