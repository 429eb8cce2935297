package catalog

import (
	"strings"

	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// UpsellItem is a flat-price add-on such as impregnation or gutter cleaning
type UpsellItem struct {
	shared.BaseEntity
	Name        string
	Description string
	Price       decimal.Decimal
	Active      bool
}

// NewUpsellItem creates an active upsell item
func NewUpsellItem(name, description string, price decimal.Decimal) (*UpsellItem, error) {
	u := &UpsellItem{BaseEntity: shared.NewBaseEntity(), Active: true}
	if err := u.Update(name, description, price); err != nil {
		return nil, err
	}
	return u, nil
}

// Update replaces the descriptive fields and price
func (u *UpsellItem) Update(name, description string, price decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewValidationError("name is required")
	}
	if price.IsNegative() {
		return shared.NewValidationError("price must not be negative")
	}
	u.Name = strings.TrimSpace(name)
	u.Description = description
	u.Price = price
	u.Touch()
	return nil
}

func (u *UpsellItem) SetActive(active bool) {
	u.Active = active
	u.Touch()
}
