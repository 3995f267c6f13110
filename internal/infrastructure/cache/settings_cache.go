package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tableorder-api/internal/domain/repository"
)

const (
	settingsKey        = "settings:snapshot"
	defaultSettingsTTL = 5 * time.Minute
)

// RedisSettingsCache implements SettingsCache using Redis
type RedisSettingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSettingsCache creates a new Redis-based settings cache
func NewRedisSettingsCache(client *redis.Client, ttl time.Duration) *RedisSettingsCache {
	if ttl <= 0 {
		ttl = defaultSettingsTTL
	}
	return &RedisSettingsCache{client: client, ttl: ttl}
}

func (c *RedisSettingsCache) Get(ctx context.Context) (*entity.SettingsSnapshot, error) {
	data, err := c.client.Get(ctx, settingsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domainRepo.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var snapshot entity.SettingsSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *RedisSettingsCache) Set(ctx context.Context, snapshot *entity.SettingsSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, settingsKey, data, c.ttl).Err()
}

func (c *RedisSettingsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, settingsKey).Err()
}

// NoopSettingsCache never stores anything; every read goes to the database
type NoopSettingsCache struct{}

func (NoopSettingsCache) Get(context.Context) (*entity.SettingsSnapshot, error) {
	return nil, domainRepo.ErrCacheMiss
}

func (NoopSettingsCache) Set(context.Context, *entity.SettingsSnapshot) error { return nil }

func (NoopSettingsCache) Invalidate(context.Context) error { return nil }
