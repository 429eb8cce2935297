package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// InventoryItemModel is the persistence model for the inventory Item aggregate.
type InventoryItemModel struct {
	AggregateModel
	Name             string          `gorm:"column:item_name;type:varchar(200);not null"`
	Unit             string          `gorm:"type:varchar(20);not null;default:'L'"`
	QuantityOnHand   decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	ThresholdWarning decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Notes            string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "inventory"
}

// ToDomain converts the persistence model to a domain Item.
func (m *InventoryItemModel) ToDomain() *inventory.Item {
	return &inventory.Item{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Unit:              m.Unit,
		QuantityOnHand:    m.QuantityOnHand,
		ThresholdWarning:  m.ThresholdWarning,
		Notes:             m.Notes,
	}
}

// InventoryItemModelFromDomain creates a persistence model from a domain Item.
func InventoryItemModelFromDomain(i *inventory.Item) *InventoryItemModel {
	m := &InventoryItemModel{
		Name:             i.Name,
		Unit:             i.Unit,
		QuantityOnHand:   i.QuantityOnHand,
		ThresholdWarning: i.ThresholdWarning,
		Notes:            i.Notes,
	}
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	return m
}

// InventoryLogModel is one row of the append-only stock audit trail.
type InventoryLogModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InventoryID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	EstimateID   *uuid.UUID      `gorm:"type:uuid;index"`
	ChangeAmount decimal.Decimal `gorm:"type:numeric;not null"`
	Reason       string          `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InventoryLogModel) TableName() string {
	return "inventory_log"
}

// ToDomain converts the persistence model to a domain LogEntry.
func (m *InventoryLogModel) ToDomain() *inventory.LogEntry {
	return &inventory.LogEntry{
		ID:           m.ID,
		InventoryID:  m.InventoryID,
		EstimateID:   m.EstimateID,
		ChangeAmount: m.ChangeAmount,
		Reason:       m.Reason,
		CreatedAt:    m.CreatedAt,
	}
}

// InventoryLogModelFromDomain creates a persistence model from a domain LogEntry.
func InventoryLogModelFromDomain(e *inventory.LogEntry) *InventoryLogModel {
	return &InventoryLogModel{
		ID:           e.ID,
		InventoryID:  e.InventoryID,
		EstimateID:   e.EstimateID,
		ChangeAmount: e.ChangeAmount,
		Reason:       e.Reason,
		CreatedAt:    e.CreatedAt,
	}
}
