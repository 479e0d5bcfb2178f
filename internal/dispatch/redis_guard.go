package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "pipeline:inflight:"

// releaseScript удаляет ключ, только если он принадлежит этому экземпляру.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard разделяет защиту между несколькими экземплярами сервиса.
// TTL ограничивает время жизни ключа, если экземпляр упал, не сняв его.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
	owner  string
	logger *zap.Logger
}

func NewRedisGuard(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisGuard {
	return &RedisGuard{
		client: client,
		ttl:    ttl,
		owner:  uuid.NewString(),
		logger: logger.Named("RedisGuard"),
	}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, redisKeyPrefix+key, g.owner, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire in-flight key %s: %w", key, err)
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, key string) error {
	deleted, err := releaseScript.Run(ctx, g.client, []string{redisKeyPrefix + key}, g.owner).Int()
	if err != nil {
		return fmt.Errorf("failed to release in-flight key %s: %w", key, err)
	}
	if deleted == 0 {
		g.logger.Warn("In-flight key expired or taken over before release", zap.String("key", key))
	}
	return nil
}
