package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Service is a cleaning service offered per square meter. When it is linked
// to an inventory item, completing a job consumes ChemicalUsageRate units of
// that item per square meter.
type Service struct {
	shared.BaseEntity
	Name              string
	Description       string
	PricePerM2        decimal.Decimal
	LinkedInventoryID *uuid.UUID
	ChemicalUsageRate *decimal.Decimal
	Active            bool
}

// NewService creates an active catalog service
func NewService(name, description string, pricePerM2 decimal.Decimal) (*Service, error) {
	s := &Service{BaseEntity: shared.NewBaseEntity(), Active: true}
	if err := s.Update(name, description, pricePerM2); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces the descriptive fields and price
func (s *Service) Update(name, description string, pricePerM2 decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewValidationError("name is required")
	}
	if pricePerM2.IsNegative() {
		return shared.NewValidationError("price_per_m2 must not be negative")
	}
	s.Name = strings.TrimSpace(name)
	s.Description = description
	s.PricePerM2 = pricePerM2
	s.Touch()
	return nil
}

// LinkInventory sets or clears the consumable used by this service
func (s *Service) LinkInventory(inventoryID *uuid.UUID, usageRate *decimal.Decimal) error {
	if usageRate != nil && usageRate.IsNegative() {
		return shared.NewValidationError("chemical_usage_rate must not be negative")
	}
	s.LinkedInventoryID = inventoryID
	s.ChemicalUsageRate = usageRate
	s.Touch()
	return nil
}

// SetActive toggles whether the service can be picked for new estimates
func (s *Service) SetActive(active bool) {
	s.Active = active
	s.Touch()
}

// ConsumesInventory reports whether completing a job deducts stock
func (s *Service) ConsumesInventory() bool {
	return s.LinkedInventoryID != nil && s.ChemicalUsageRate != nil && s.ChemicalUsageRate.IsPositive()
}

// UsageFor returns the consumable amount needed for an area
func (s *Service) UsageFor(squareMeters decimal.Decimal) decimal.Decimal {
	if !s.ConsumesInventory() {
		return decimal.Zero
	}
	return squareMeters.Mul(*s.ChemicalUsageRate)
}
