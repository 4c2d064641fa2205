package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Connect returns a client, or nil when Redis is not configured or does not
// answer. The service runs without a cache in that case.
func Connect(ctx context.Context, addr, password string, log zerolog.Logger) *redis.Client {
	if addr == "" {
		log.Info().Msg("no REDIS_URL set, move cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("could not connect to redis, move cache disabled")
		client.Close()
		return nil
	}

	log.Info().Str("addr", addr).Msg("redis connected")
	return client
}

const keyPrefix = "c4:move:"

// MoveCache stores serialized engine answers with a fixed TTL.
type MoveCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewMoveCache(client *redis.Client, ttl time.Duration) *MoveCache {
	return &MoveCache{client: client, ttl: ttl}
}

// Get reports ok=false on a miss.
func (c *MoveCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("move cache get: %w", err)
	}
	return val, true, nil
}

func (c *MoveCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, keyPrefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("move cache set: %w", err)
	}
	return nil
}

func (c *MoveCache) Close() error {
	return c.client.Close()
}
