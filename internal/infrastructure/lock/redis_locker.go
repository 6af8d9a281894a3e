package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultKeyPrefix = "feedlot:lock:"

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker shares locks between instances with SET NX PX. A holder that
// dies loses the lock after ttl.
type RedisLocker struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	retry     time.Duration
	logger    *zap.Logger
}

// RedisLockerConfig holds the lock timings
type RedisLockerConfig struct {
	KeyPrefix string
	TTL       time.Duration
	Retry     time.Duration
}

// NewRedisLocker creates a locker over an existing client
func NewRedisLocker(client *redis.Client, cfg RedisLockerConfig, logger *zap.Logger) *RedisLocker {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.Retry <= 0 {
		cfg.Retry = 50 * time.Millisecond
	}
	return &RedisLocker{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.TTL,
		retry:     cfg.Retry,
		logger:    logger.Named("redis_lock"),
	}
}

// Connect dials Redis and checks the connection
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Lock polls SET NX until the key is acquired or ctx is done
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return l.unlocker(redisKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) unlocker(redisKey, token string) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
			l.logger.Warn("Failed to release lock",
				zap.String("key", redisKey),
				zap.Error(err))
		}
	}
}

var _ shared.Locker = (*RedisLocker)(nil)
