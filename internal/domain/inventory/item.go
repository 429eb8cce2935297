package inventory

import (
	"fmt"
	"strings"

	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Item is a stocked consumable (cleaning agent, impregnation fluid, …).
// QuantityOnHand never drops below zero.
type Item struct {
	shared.BaseAggregateRoot
	Name             string
	Unit             string
	QuantityOnHand   decimal.Decimal
	ThresholdWarning decimal.Decimal
	Notes            string
}

// NewItem creates a new inventory item
func NewItem(name, unit string, quantity, threshold decimal.Decimal) (*Item, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("item_name is required")
	}
	if quantity.IsNegative() {
		return nil, shared.NewValidationError("quantity_on_hand must not be negative")
	}
	if threshold.IsNegative() {
		return nil, shared.NewValidationError("threshold_warning must not be negative")
	}
	if unit == "" {
		unit = "liter"
	}
	return &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Unit:              unit,
		QuantityOnHand:    quantity,
		ThresholdWarning:  threshold,
	}, nil
}

// Deduct removes up to usage from stock and returns the amount actually
// removed. Insufficient stock is not an error: the quantity floors at zero.
func (i *Item) Deduct(usage decimal.Decimal) (decimal.Decimal, error) {
	if usage.IsNegative() {
		return decimal.Zero, shared.NewValidationError("usage must not be negative")
	}
	applied := decimal.Min(usage, i.QuantityOnHand)
	if applied.IsNegative() {
		applied = decimal.Zero
	}
	i.QuantityOnHand = i.QuantityOnHand.Sub(applied)
	i.Touch()
	return applied, nil
}

// Adjust applies a signed amount, clamped so stock stays at or above zero.
// The returned delta is the signed change that was really applied.
func (i *Item) Adjust(amount decimal.Decimal) decimal.Decimal {
	if !amount.IsNegative() {
		i.QuantityOnHand = i.QuantityOnHand.Add(amount)
		i.Touch()
		return amount
	}
	applied, _ := i.Deduct(amount.Neg())
	return applied.Neg()
}

// Update replaces the descriptive fields and thresholds
func (i *Item) Update(name, unit string, threshold decimal.Decimal, notes string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewValidationError("item_name is required")
	}
	if threshold.IsNegative() {
		return shared.NewValidationError("threshold_warning must not be negative")
	}
	i.Name = name
	if unit != "" {
		i.Unit = unit
	}
	i.ThresholdWarning = threshold
	i.Notes = notes
	i.Touch()
	return nil
}

// IsLowStock returns true when stock is at or below the warning threshold
func (i *Item) IsLowStock() bool {
	return i.QuantityOnHand.LessThanOrEqual(i.ThresholdWarning)
}

// String is used in log output
func (i *Item) String() string {
	return fmt.Sprintf("%s (%s %s)", i.Name, i.QuantityOnHand.String(), i.Unit)
}
