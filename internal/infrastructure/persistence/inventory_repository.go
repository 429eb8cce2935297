package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/inventory"
	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/pressureflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryItemRepository implements ItemRepository using GORM
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

// FindByID finds an inventory item by its ID
func (r *GormInventoryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	return r.findOne(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds an inventory item and locks the row until the
// surrounding transaction ends
func (r *GormInventoryItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormInventoryItemRepository) findOne(query *gorm.DB, id uuid.UUID) (*inventory.Item, error) {
	var model models.InventoryItemModel
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every item ordered by name
func (r *GormInventoryItemRepository) FindAll(ctx context.Context) ([]inventory.Item, error) {
	var itemModels []models.InventoryItemModel
	if err := r.db.WithContext(ctx).Order("item_name ASC").Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return toDomainItems(itemModels), nil
}

// FindLowStock returns items at or below their warning threshold
func (r *GormInventoryItemRepository) FindLowStock(ctx context.Context) ([]inventory.Item, error) {
	var itemModels []models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Where("quantity_on_hand <= threshold_warning").
		Order("item_name ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return toDomainItems(itemModels), nil
}

// CountLowStock counts items at or below their warning threshold
func (r *GormInventoryItemRepository) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Where("quantity_on_hand <= threshold_warning").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an inventory item without a version check
func (r *GormInventoryItemRepository) Save(ctx context.Context, item *inventory.Item) error {
	return r.db.WithContext(ctx).Save(models.InventoryItemModelFromDomain(item)).Error
}

// SaveWithLock saves an inventory item with optimistic locking (version check).
// On success the item's version is incremented.
func (r *GormInventoryItemRepository) SaveWithLock(ctx context.Context, item *inventory.Item) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Where("id = ? AND version = ?", item.ID, item.Version).
		Updates(map[string]any{
			"item_name":         item.Name,
			"unit":              item.Unit,
			"quantity_on_hand":  item.QuantityOnHand,
			"threshold_warning": item.ThresholdWarning,
			"notes":             item.Notes,
			"version":           item.Version + 1,
			"updated_at":        item.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	item.IncrementVersion()
	return nil
}

func toDomainItems(itemModels []models.InventoryItemModel) []inventory.Item {
	items := make([]inventory.Item, len(itemModels))
	for i := range itemModels {
		items[i] = *itemModels[i].ToDomain()
	}
	return items
}

// GormInventoryLogRepository implements LogRepository using GORM. Rows are
// only ever inserted.
type GormInventoryLogRepository struct {
	db *gorm.DB
}

// NewGormInventoryLogRepository creates a new GormInventoryLogRepository
func NewGormInventoryLogRepository(db *gorm.DB) *GormInventoryLogRepository {
	return &GormInventoryLogRepository{db: db}
}

// Append inserts a log entry
func (r *GormInventoryLogRepository) Append(ctx context.Context, entry *inventory.LogEntry) error {
	return r.db.WithContext(ctx).Create(models.InventoryLogModelFromDomain(entry)).Error
}

// FindByInventory returns the newest entries for an item first. A
// non-positive limit returns all entries.
func (r *GormInventoryLogRepository) FindByInventory(ctx context.Context, inventoryID uuid.UUID, limit int) ([]inventory.LogEntry, error) {
	query := r.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var logModels []models.InventoryLogModel
	if err := query.Find(&logModels).Error; err != nil {
		return nil, err
	}
	return toDomainLogEntries(logModels), nil
}

// FindByEstimate returns the entries written when an estimate was completed
func (r *GormInventoryLogRepository) FindByEstimate(ctx context.Context, estimateID uuid.UUID) ([]inventory.LogEntry, error) {
	var logModels []models.InventoryLogModel
	if err := r.db.WithContext(ctx).
		Where("estimate_id = ?", estimateID).
		Order("created_at ASC").
		Find(&logModels).Error; err != nil {
		return nil, err
	}
	return toDomainLogEntries(logModels), nil
}

func toDomainLogEntries(logModels []models.InventoryLogModel) []inventory.LogEntry {
	entries := make([]inventory.LogEntry, len(logModels))
	for i := range logModels {
		entries[i] = *logModels[i].ToDomain()
	}
	return entries
}

var (
	_ inventory.ItemRepository = (*GormInventoryItemRepository)(nil)
	_ inventory.LogRepository  = (*GormInventoryLogRepository)(nil)
)
