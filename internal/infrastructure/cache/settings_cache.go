package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pressureflow/backend/internal/domain/settings"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	settingsCacheKey   = "pf:settings:snapshot"
	defaultSettingsTTL = 10 * time.Minute
)

// RedisSettingsCache keeps the settings snapshot in Redis so every instance
// sees an update as soon as the writer invalidates it
type RedisSettingsCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSettingsCache creates a settings cache on an existing Redis client
func NewRedisSettingsCache(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisSettingsCache {
	if ttl <= 0 {
		ttl = defaultSettingsTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSettingsCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached snapshot; ok is false on a miss
func (c *RedisSettingsCache) Get(ctx context.Context) (settings.Settings, bool, error) {
	data, err := c.client.Get(ctx, settingsCacheKey).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Settings cache miss")
		return settings.Settings{}, false, nil
	}
	if err != nil {
		return settings.Settings{}, false, fmt.Errorf("failed to get settings from cache: %w", err)
	}

	var s settings.Settings
	if err := json.Unmarshal(data, &s); err != nil {
		c.logger.Warn("Dropping corrupted settings cache entry", zap.Error(err))
		_ = c.client.Del(ctx, settingsCacheKey)
		return settings.Settings{}, false, nil
	}
	return s, true, nil
}

// Set stores the snapshot
func (c *RedisSettingsCache) Set(ctx context.Context, s settings.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := c.client.Set(ctx, settingsCacheKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set settings in cache: %w", err)
	}
	return nil
}

// Invalidate drops the snapshot
func (c *RedisSettingsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, settingsCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate settings cache: %w", err)
	}
	return nil
}

// cacheEntry wraps a cached value with expiration time
type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e *cacheEntry[T]) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// InMemorySettingsCache is the single-instance fallback when Redis is not configured
type InMemorySettingsCache struct {
	mu    sync.RWMutex
	entry *cacheEntry[settings.Settings]
	ttl   time.Duration
	now   func() time.Time
}

// NewInMemorySettingsCache creates an in-process settings cache
func NewInMemorySettingsCache(ttl time.Duration) *InMemorySettingsCache {
	if ttl <= 0 {
		ttl = defaultSettingsTTL
	}
	return &InMemorySettingsCache{ttl: ttl, now: time.Now}
}

// Get returns the cached snapshot; ok is false on a miss or after expiry
func (c *InMemorySettingsCache) Get(_ context.Context) (settings.Settings, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil || c.entry.isExpired(c.now()) {
		return settings.Settings{}, false, nil
	}
	return c.entry.value, true, nil
}

// Set stores the snapshot
func (c *InMemorySettingsCache) Set(_ context.Context, s settings.Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = &cacheEntry[settings.Settings]{value: s, expiresAt: c.now().Add(c.ttl)}
	return nil
}

// Invalidate drops the snapshot
func (c *InMemorySettingsCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
	return nil
}
