// Package domain contains persistence models for tenants and their stores.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Tenant represents a clinic or retail chain.
type Tenant struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Slug      string       `gorm:"type:text;not null;uniqueIndex:ux_tenants_slug" json:"slug"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }

// Store is a physical location owned by exactly one tenant.
type Store struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID  snowflake.ID `gorm:"not null;index;uniqueIndex:ux_stores_tenant_code,priority:1" json:"tenant_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Code      string       `gorm:"type:text;not null;uniqueIndex:ux_stores_tenant_code,priority:2" json:"code"`
	City      string       `gorm:"type:text;not null;default:''" json:"city"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Store) TableName() string { return "stores" }

// UserStore assigns a user to a store they may operate in.
type UserStore struct {
	UserID    snowflake.ID `gorm:"primaryKey" json:"user_id"`
	StoreID   snowflake.ID `gorm:"primaryKey;index" json:"store_id"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (UserStore) TableName() string { return "user_stores" }
