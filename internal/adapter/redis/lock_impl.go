package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/user/weather-crawler/internal/repository"
)

const lockKeyPrefix = "weather:ingest:lock:"

// releaseScript deletes the lock only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLockImpl provides a concrete implementation for the RunLock interface using Redis.
type RunLockImpl struct {
	client *redis.Client
}

var _ repository.RunLock = (*RunLockImpl)(nil)

// NewRunLock creates a new instance of RunLockImpl.
func NewRunLock(client *redis.Client) *RunLockImpl {
	return &RunLockImpl{client: client}
}

func (r *RunLockImpl) generateKey(key string) string {
	return fmt.Sprintf("%s%s", lockKeyPrefix, key)
}

// Acquire sets the lock key with SET NX and a lease; the value is a random
// token so that an expired holder cannot release someone else's lock.
func (r *RunLockImpl) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	redisKey := r.generateKey(key)
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, redisKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", redisKey, err)
	}
	if !ok {
		return nil, repository.ErrLockHeld
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, r.client, []string{redisKey}, token).Err(); err != nil {
			return fmt.Errorf("release %s: %w", redisKey, err)
		}
		return nil
	}
	return release, nil
}
