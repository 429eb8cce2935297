package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// CreateItemRequest represents a request to create an inventory item
type CreateItemRequest struct {
	Name             string          `json:"item_name" binding:"required,min=1,max=200"`
	Unit             string          `json:"unit" binding:"max=20"`
	QuantityOnHand   decimal.Decimal `json:"quantity_on_hand"`
	ThresholdWarning decimal.Decimal `json:"threshold_warning" binding:"nonneg"`
	Notes            string          `json:"notes" binding:"max=2000"`
}

// UpdateItemRequest represents a request to update an item's descriptive
// fields. Stock levels only change through adjustments.
type UpdateItemRequest struct {
	Name             *string          `json:"item_name" binding:"omitempty,min=1,max=200"`
	Unit             *string          `json:"unit" binding:"omitempty,max=20"`
	ThresholdWarning *decimal.Decimal `json:"threshold_warning" binding:"omitempty,nonneg"`
	Notes            *string          `json:"notes" binding:"omitempty,max=2000"`
}

// AdjustRequest represents a manual signed stock correction
type AdjustRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason" binding:"max=255"`
}

// ItemResponse represents an inventory item in API responses
type ItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"item_name"`
	Unit             string          `json:"unit"`
	QuantityOnHand   decimal.Decimal `json:"quantity_on_hand"`
	ThresholdWarning decimal.Decimal `json:"threshold_warning"`
	LowStock         bool            `json:"low_stock"`
	Notes            string          `json:"notes"`
	Version          int             `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// LogEntryResponse represents one audit record
type LogEntryResponse struct {
	ID           uuid.UUID       `json:"id"`
	InventoryID  uuid.UUID       `json:"inventory_id"`
	EstimateID   *uuid.UUID      `json:"estimate_id,omitempty"`
	ChangeAmount decimal.Decimal `json:"change_amount"`
	Reason       string          `json:"reason"`
	CreatedAt    time.Time       `json:"created_at"`
}

// AdjustResponse reports the delta that was really applied
type AdjustResponse struct {
	Item    ItemResponse      `json:"item"`
	Applied decimal.Decimal   `json:"applied"`
	Entry   *LogEntryResponse `json:"log_entry,omitempty"`
}

// ToItemResponse converts a domain item to its response form
func ToItemResponse(item *inventory.Item) ItemResponse {
	return ItemResponse{
		ID:               item.ID,
		Name:             item.Name,
		Unit:             item.Unit,
		QuantityOnHand:   item.QuantityOnHand,
		ThresholdWarning: item.ThresholdWarning,
		LowStock:         item.IsLowStock(),
		Notes:            item.Notes,
		Version:          item.Version,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
}

// ToItemResponses converts a slice of items
func ToItemResponses(items []inventory.Item) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i := range items {
		out[i] = ToItemResponse(&items[i])
	}
	return out
}

// ToLogEntryResponse converts a log entry
func ToLogEntryResponse(entry *inventory.LogEntry) LogEntryResponse {
	return LogEntryResponse{
		ID:           entry.ID,
		InventoryID:  entry.InventoryID,
		EstimateID:   entry.EstimateID,
		ChangeAmount: entry.ChangeAmount,
		Reason:       entry.Reason,
		CreatedAt:    entry.CreatedAt,
	}
}
