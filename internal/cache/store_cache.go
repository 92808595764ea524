package cache

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	goCache "github.com/patrickmn/go-cache"
	"github.com/smallbiznis/clinicops/internal/config"
	tenantdomain "github.com/smallbiznis/clinicops/internal/tenant/domain"
	"go.uber.org/zap"
)

const storesKeyPrefix = "stores:"

// StoreLister is the tenant store listing being cached.
type StoreLister interface {
	ListStores(ctx context.Context, tenantID snowflake.ID) ([]tenantdomain.Store, error)
}

// StoreCache memoizes a tenant's store list for a short TTL. Errors are never
// cached.
type StoreCache struct {
	next  StoreLister
	cache *goCache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewStoreCache wraps next. With a non-positive TTL every call goes to next.
func NewStoreCache(next StoreLister, ttl time.Duration, log *zap.Logger) *StoreCache {
	if log == nil {
		log = zap.NewNop()
	}
	c := &StoreCache{next: next, ttl: ttl, log: log.Named("cache.stores")}
	if ttl > 0 {
		c.cache = goCache.New(ttl, 2*ttl)
	}
	return c
}

func NewStoreCacheFromConfig(next tenantdomain.Repository, cfg config.Config, log *zap.Logger) *StoreCache {
	return NewStoreCache(next, time.Duration(cfg.Cache.StoresTTLSeconds)*time.Second, log)
}

func (c *StoreCache) ListStores(ctx context.Context, tenantID snowflake.ID) ([]tenantdomain.Store, error) {
	if c.cache == nil {
		return c.next.ListStores(ctx, tenantID)
	}

	key := storesKeyPrefix + tenantID.String()
	if cached, ok := c.cache.Get(key); ok {
		if stores, ok := cached.([]tenantdomain.Store); ok {
			return cloneStores(stores), nil
		}
	}

	stores, err := c.next.ListStores(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, cloneStores(stores), c.ttl)
	c.log.Debug("store list cached",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("stores", len(stores)),
	)
	return stores, nil
}

// Invalidate drops the cached list for one tenant.
func (c *StoreCache) Invalidate(tenantID snowflake.ID) {
	if c.cache == nil {
		return
	}
	c.cache.Delete(storesKeyPrefix + tenantID.String())
}

func cloneStores(stores []tenantdomain.Store) []tenantdomain.Store {
	if stores == nil {
		return nil
	}
	out := make([]tenantdomain.Store, len(stores))
	copy(out, stores)
	return out
}
