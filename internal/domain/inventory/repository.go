package inventory

import (
	"context"

	"github.com/google/uuid"
)

// ItemRepository persists inventory items
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	// FindByIDForUpdate reads the item with a row lock inside a transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Item, error)
	// FindAll returns every item ordered by name
	FindAll(ctx context.Context) ([]Item, error)
	// FindLowStock returns items with quantity_on_hand <= threshold_warning
	FindLowStock(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, item *Item) error
	// SaveWithLock updates the item only if its version is unchanged and
	// returns shared.ErrConcurrencyConflict otherwise
	SaveWithLock(ctx context.Context, item *Item) error
}

// LogRepository appends and reads the audit trail
type LogRepository interface {
	Append(ctx context.Context, entry *LogEntry) error
	FindByInventory(ctx context.Context, inventoryID uuid.UUID, limit int) ([]LogEntry, error)
	FindByEstimate(ctx context.Context, estimateID uuid.UUID) ([]LogEntry, error)
}
