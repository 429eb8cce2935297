package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/catalog"
	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/pressureflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormServiceRepository implements ServiceRepository using GORM
type GormServiceRepository struct {
	db *gorm.DB
}

// NewGormServiceRepository creates a new GormServiceRepository
func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

// FindByID finds a service by ID, including deactivated ones
func (r *GormServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	var model models.ServiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds services by a list of IDs
func (r *GormServiceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Service, error) {
	if len(ids) == 0 {
		return []catalog.Service{}, nil
	}
	var serviceModels []models.ServiceModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&serviceModels).Error; err != nil {
		return nil, err
	}
	return toDomainServices(serviceModels), nil
}

// FindAll returns services ordered by name
func (r *GormServiceRepository) FindAll(ctx context.Context, activeOnly bool) ([]catalog.Service, error) {
	query := r.db.WithContext(ctx).Model(&models.ServiceModel{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var serviceModels []models.ServiceModel
	if err := query.Order("name ASC").Find(&serviceModels).Error; err != nil {
		return nil, err
	}
	return toDomainServices(serviceModels), nil
}

// Save creates or updates a service
func (r *GormServiceRepository) Save(ctx context.Context, service *catalog.Service) error {
	return r.db.WithContext(ctx).Save(models.ServiceModelFromDomain(service)).Error
}

func toDomainServices(serviceModels []models.ServiceModel) []catalog.Service {
	services := make([]catalog.Service, len(serviceModels))
	for i := range serviceModels {
		services[i] = *serviceModels[i].ToDomain()
	}
	return services
}

// GormUpsellItemRepository implements UpsellItemRepository using GORM
type GormUpsellItemRepository struct {
	db *gorm.DB
}

// NewGormUpsellItemRepository creates a new GormUpsellItemRepository
func NewGormUpsellItemRepository(db *gorm.DB) *GormUpsellItemRepository {
	return &GormUpsellItemRepository{db: db}
}

// FindByID finds an upsell item by ID
func (r *GormUpsellItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.UpsellItem, error) {
	var model models.UpsellItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns upsell items ordered by name
func (r *GormUpsellItemRepository) FindAll(ctx context.Context, activeOnly bool) ([]catalog.UpsellItem, error) {
	query := r.db.WithContext(ctx).Model(&models.UpsellItemModel{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var itemModels []models.UpsellItemModel
	if err := query.Order("name ASC").Find(&itemModels).Error; err != nil {
		return nil, err
	}
	items := make([]catalog.UpsellItem, len(itemModels))
	for i := range itemModels {
		items[i] = *itemModels[i].ToDomain()
	}
	return items, nil
}

// Save creates or updates an upsell item
func (r *GormUpsellItemRepository) Save(ctx context.Context, item *catalog.UpsellItem) error {
	return r.db.WithContext(ctx).Save(models.UpsellItemModelFromDomain(item)).Error
}

var (
	_ catalog.ServiceRepository    = (*GormServiceRepository)(nil)
	_ catalog.UpsellItemRepository = (*GormUpsellItemRepository)(nil)
)
