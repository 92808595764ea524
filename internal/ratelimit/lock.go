package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

var (
	errLockUnconfigured = errors.New("ratelimit: lock client not configured")
	errLockKey          = errors.New("ratelimit: lock key is empty")
	errLockTTL          = errors.New("ratelimit: lock ttl must be positive")
)

// compareAndDelete removes KEYS[1] only while it still holds ARGV[1], so an
// expired holder cannot free a lock someone else took over.
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker guards one in-flight computation per key. The holder gets an opaque
// token that must be presented to release.
type Locker struct {
	client redis.Cmdable
	token  func() string
}

func NewLocker(client redis.Cmdable) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client, token: uuid.NewString}
}

// TryLock does not wait: ok is false when another holder owns key.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error) {
	switch {
	case l == nil || l.client == nil:
		return "", false, errLockUnconfigured
	case key == "":
		return "", false, errLockKey
	case ttl <= 0:
		return "", false, errLockTTL
	}

	token = l.token()
	ok, err = l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// Release is a no-op for an empty token or an unconfigured locker.
func (l *Locker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil || key == "" || token == "" {
		return nil
	}
	return compareAndDelete.Run(ctx, l.client, []string{key}, token).Err()
}
