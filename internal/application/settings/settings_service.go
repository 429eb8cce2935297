// Package settings serves the company profile with a read-through cache.
package settings

import (
	"context"

	"github.com/pressureflow/backend/internal/domain/settings"
	"go.uber.org/zap"
)

// Cache holds the last settings snapshot read from the database
type Cache interface {
	Get(ctx context.Context) (settings.Settings, bool, error)
	Set(ctx context.Context, s settings.Settings) error
	Invalidate(ctx context.Context) error
}

// SettingsService reads and updates the settings table
type SettingsService struct {
	repo   settings.Repository
	cache  Cache
	logger *zap.Logger
}

// NewSettingsService creates a new SettingsService. cache may be nil.
func NewSettingsService(repo settings.Repository, cache Cache, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, cache: cache, logger: logger}
}

// Current returns the settings with defaults filled in. Cache failures are
// logged and the database is used instead.
func (s *SettingsService) Current(ctx context.Context) (settings.Settings, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("Settings cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	values, err := s.repo.GetAll(ctx)
	if err != nil {
		return settings.Settings{}, err
	}
	current := settings.FromMap(values)

	if s.cache != nil {
		if err := s.cache.Set(ctx, current); err != nil {
			s.logger.Warn("Settings cache write failed", zap.Error(err))
		}
	}
	return current, nil
}

// GetAll returns every known key with its effective value
func (s *SettingsService) GetAll(ctx context.Context) (map[string]string, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return current.ToMap(), nil
}

// Update stores the given keys and returns the new settings
func (s *SettingsService) Update(ctx context.Context, values map[string]string) (map[string]string, error) {
	if err := settings.ValidateUpdate(values); err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, values); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			// a stale snapshot expires with the cache TTL
			s.logger.Error("Settings cache invalidation failed", zap.Error(err))
		}
	}
	s.logger.Info("Settings updated", zap.Int("keys", len(values)))

	return s.GetAll(ctx)
}
