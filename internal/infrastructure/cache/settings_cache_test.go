package cache

import (
	"context"
	"testing"
	"time"

	"github.com/pressureflow/backend/internal/domain/settings"
	"github.com/pressureflow/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySettingsCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewInMemorySettingsCache(time.Minute)

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	s := settings.Defaults()
	s.CompanyName = "Schoon & Strak"
	require.NoError(t, c.Set(ctx, s))

	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Schoon & Strak", got.CompanyName)
	assert.Equal(t, "FAC", got.InvoicePrefix)
}

func TestInMemorySettingsCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemorySettingsCache(time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, settings.Defaults()))

	now = now.Add(59 * time.Second)
	_, ok, _ := c.Get(ctx)
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, _ = c.Get(ctx)
	assert.False(t, ok)
}

func TestInMemorySettingsCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewInMemorySettingsCache(0)
	assert.Equal(t, defaultSettingsTTL, c.ttl)

	require.NoError(t, c.Set(ctx, settings.Defaults()))
	require.NoError(t, c.Invalidate(ctx))

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisClient_Disabled(t *testing.T) {
	client, err := NewRedisClient(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}
