package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/estimate"
	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/pressureflow/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEstimateRepository implements EstimateRepository using GORM
type GormEstimateRepository struct {
	db *gorm.DB
}

// NewGormEstimateRepository creates a new GormEstimateRepository
func NewGormEstimateRepository(db *gorm.DB) *GormEstimateRepository {
	return &GormEstimateRepository{db: db}
}

// FindByID loads an estimate with its lines and upsells in position order
func (r *GormEstimateRepository) FindByID(ctx context.Context, id uuid.UUID) (*estimate.Estimate, error) {
	return r.findOne(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate is FindByID holding a row lock on the estimate header
func (r *GormEstimateRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*estimate.Estimate, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormEstimateRepository) findOne(query *gorm.DB, id uuid.UUID) (*estimate.Estimate, error) {
	var model models.EstimateModel
	err := query.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Upsells", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists estimate headers without their children, newest first
func (r *GormEstimateRepository) FindAll(ctx context.Context, filter estimate.Filter) ([]estimate.Estimate, error) {
	query := r.db.WithContext(ctx).Model(&models.EstimateModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, EstimateSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	var estimateModels []models.EstimateModel
	if err := query.Find(&estimateModels).Error; err != nil {
		return nil, err
	}
	estimates := make([]estimate.Estimate, len(estimateModels))
	for i := range estimateModels {
		estimates[i] = *estimateModels[i].ToDomain()
	}
	return estimates, nil
}

// Save inserts a new estimate together with its lines and upsells
func (r *GormEstimateRepository) Save(ctx context.Context, est *estimate.Estimate) error {
	model := models.EstimateModelFromDomain(est)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
}

// SaveWithLock updates the header when the stored version still matches and
// increments the estimate's version. Lines and upsells are never rewritten.
func (r *GormEstimateRepository) SaveWithLock(ctx context.Context, est *estimate.Estimate) error {
	result := r.db.WithContext(ctx).
		Model(&models.EstimateModel{}).
		Where("id = ? AND version = ?", est.ID, est.Version).
		Updates(map[string]any{
			"status":         est.Status,
			"subtotal":       est.Subtotal,
			"btw_percentage": est.BTWPercentage,
			"total_incl_btw": est.TotalInclBTW,
			"signature_data": est.SignatureData,
			"notes":          est.Notes,
			"version":        est.Version + 1,
			"updated_at":     est.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	est.IncrementVersion()
	return nil
}

// CountByStatus counts estimates in the given status
func (r *GormEstimateRepository) CountByStatus(ctx context.Context, status estimate.Status) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.EstimateModel{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumTotalsByStatuses sums total_incl_btw for estimates in statuses whose
// updated_at falls in [from, to)
func (r *GormEstimateRepository) SumTotalsByStatuses(ctx context.Context, statuses []estimate.Status, from, to time.Time) (decimal.Decimal, error) {
	if len(statuses) == 0 {
		return decimal.Zero, nil
	}
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.EstimateModel{}).
		Select("COALESCE(SUM(total_incl_btw), 0) AS total").
		Where("status IN ? AND updated_at >= ? AND updated_at < ?", statuses, from, to).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// ExistsByCustomer reports whether any estimate references the customer
func (r *GormEstimateRepository) ExistsByCustomer(ctx context.Context, customerID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.EstimateModel{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormPhotoRepository implements PhotoRepository using GORM
type GormPhotoRepository struct {
	db *gorm.DB
}

// NewGormPhotoRepository creates a new GormPhotoRepository
func NewGormPhotoRepository(db *gorm.DB) *GormPhotoRepository {
	return &GormPhotoRepository{db: db}
}

// FindByID finds photo metadata by ID
func (r *GormPhotoRepository) FindByID(ctx context.Context, id uuid.UUID) (*estimate.Photo, error) {
	var model models.ProjectPhotoModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEstimate returns an estimate's photos, oldest first
func (r *GormPhotoRepository) FindByEstimate(ctx context.Context, estimateID uuid.UUID) ([]estimate.Photo, error) {
	var photoModels []models.ProjectPhotoModel
	if err := r.db.WithContext(ctx).
		Where("estimate_id = ?", estimateID).
		Order("created_at ASC").
		Find(&photoModels).Error; err != nil {
		return nil, err
	}
	photos := make([]estimate.Photo, len(photoModels))
	for i := range photoModels {
		photos[i] = *photoModels[i].ToDomain()
	}
	return photos, nil
}

// Save inserts photo metadata
func (r *GormPhotoRepository) Save(ctx context.Context, photo *estimate.Photo) error {
	return r.db.WithContext(ctx).Create(models.ProjectPhotoModelFromDomain(photo)).Error
}

// Delete removes photo metadata
func (r *GormPhotoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProjectPhotoModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var (
	_ estimate.EstimateRepository = (*GormEstimateRepository)(nil)
	_ estimate.PhotoRepository    = (*GormPhotoRepository)(nil)
)
