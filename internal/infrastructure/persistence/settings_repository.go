package persistence

import (
	"context"
	"sort"
	"time"

	"github.com/pressureflow/backend/internal/domain/settings"
	"github.com/pressureflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsRepository stores settings as key/value rows
type GormSettingsRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db, now: time.Now}
}

// GetAll returns every stored key and value
func (r *GormSettingsRepository) GetAll(ctx context.Context) (map[string]string, error) {
	var rows []models.SettingModel
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values, nil
}

// Upsert inserts or overwrites the given keys in one transaction
func (r *GormSettingsRepository) Upsert(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := r.now()
	rows := make([]models.SettingModel, len(keys))
	for i, k := range keys {
		rows[i] = models.SettingModel{Key: k, Value: values[k], UpdatedAt: now}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
	})
}

var _ settings.Repository = (*GormSettingsRepository)(nil)
