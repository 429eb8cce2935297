package storage

import (
	"context"
	"fmt"

	estimateapp "github.com/pressureflow/backend/internal/application/estimate"
	"github.com/pressureflow/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewPhotoStorage returns the photo store selected by cfg.Driver.
// For the s3 driver the bucket is created when missing.
func NewPhotoStorage(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (estimateapp.PhotoStorage, error) {
	switch cfg.Driver {
	case "", "memory":
		logger.Warn("Using in-memory photo storage, photos are lost on restart")
		return NewMemoryPhotoStorage(""), nil
	case "s3":
		s, err := NewS3PhotoStorage(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Photo storage ready", zap.String("bucket", s.Bucket()), zap.String("endpoint", cfg.Endpoint))
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
