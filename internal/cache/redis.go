package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"StockScreener/internal/model"

	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const redisKeyPrefix = "screener:bars:"

// RedisConfig configures the Redis cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// TTL bounds how long Redis keeps an entry; freshness is still decided by the reader.
	TTL time.Duration
}

// RedisCache stores series as JSON values with a TTL.
type RedisCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisCache connects and pings the server.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	zap.S().Infof("redis cache connected to %s", cfg.Addr)
	return &RedisCache{client: client, ttl: cfg.TTL}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*model.BarSeries, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	var s model.BarSeries
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return &s, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, s *model.BarSeries) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
