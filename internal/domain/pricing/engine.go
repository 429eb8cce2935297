// Package pricing computes estimate totals from area-based lines and flat
// upsells. It is pure: no I/O, no clocks, no rounding.
package pricing

import (
	"fmt"
	"strings"

	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineInput is one area-based work item. A nil Multiplier means 1.0.
type LineInput struct {
	Description  string
	SquareMeters decimal.Decimal
	UnitPrice    decimal.Decimal
	Multiplier   *decimal.Decimal
}

// UpsellInput is a flat-price add-on
type UpsellInput struct {
	Description string
	Price       decimal.Decimal
}

// PricedLine is a LineInput with its resolved multiplier and total attached
type PricedLine struct {
	Description  string
	SquareMeters decimal.Decimal
	UnitPrice    decimal.Decimal
	Multiplier   decimal.Decimal
	LineTotal    decimal.Decimal
}

// Result holds the computed totals. Lines keep input order.
type Result struct {
	Lines     []PricedLine
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// Compute prices every line, sums lines and upsells into the subtotal and
// applies the tax percentage:
//
//	line_total = square_meters × unit_price × multiplier
//	subtotal   = Σ line_total + Σ upsell.price
//	tax        = subtotal × tax_percentage / 100
//	total      = subtotal + tax
func Compute(lines []LineInput, upsells []UpsellInput, taxPercentage decimal.Decimal) (Result, error) {
	if taxPercentage.IsNegative() {
		return Result{}, shared.NewValidationError("btw_percentage must not be negative")
	}

	result := Result{
		Lines:    make([]PricedLine, 0, len(lines)),
		Subtotal: decimal.Zero,
	}

	for i, line := range lines {
		priced, err := priceLine(i, line)
		if err != nil {
			return Result{}, err
		}
		result.Lines = append(result.Lines, priced)
		result.Subtotal = result.Subtotal.Add(priced.LineTotal)
	}

	for i, upsell := range upsells {
		if strings.TrimSpace(upsell.Description) == "" {
			return Result{}, fieldError("upsell", i, "description is required")
		}
		if upsell.Price.IsNegative() {
			return Result{}, fieldError("upsell", i, "price must not be negative")
		}
		result.Subtotal = result.Subtotal.Add(upsell.Price)
	}

	result.TaxAmount, result.Total = applyTax(result.Subtotal, taxPercentage)
	return result, nil
}

// Recompute derives subtotal, tax and total from already persisted line
// totals and upsell prices. Catalog prices are never consulted.
func Recompute(lineTotals, upsellPrices []decimal.Decimal, taxPercentage decimal.Decimal) (subtotal, tax, total decimal.Decimal, err error) {
	if taxPercentage.IsNegative() {
		return decimal.Zero, decimal.Zero, decimal.Zero, shared.NewValidationError("btw_percentage must not be negative")
	}
	subtotal = decimal.Zero
	for _, lt := range lineTotals {
		subtotal = subtotal.Add(lt)
	}
	for _, p := range upsellPrices {
		subtotal = subtotal.Add(p)
	}
	tax, total = applyTax(subtotal, taxPercentage)
	return subtotal, tax, total, nil
}

func priceLine(i int, line LineInput) (PricedLine, error) {
	if strings.TrimSpace(line.Description) == "" {
		return PricedLine{}, fieldError("line", i, "description is required")
	}
	if line.SquareMeters.IsNegative() {
		return PricedLine{}, fieldError("line", i, "square_meters must not be negative")
	}
	if line.UnitPrice.IsNegative() {
		return PricedLine{}, fieldError("line", i, "unit_price must not be negative")
	}

	multiplier := decimal.NewFromInt(1)
	if line.Multiplier != nil {
		multiplier = *line.Multiplier
	}
	if multiplier.IsNegative() {
		return PricedLine{}, fieldError("line", i, "multiplier must not be negative")
	}

	return PricedLine{
		Description:  line.Description,
		SquareMeters: line.SquareMeters,
		UnitPrice:    line.UnitPrice,
		Multiplier:   multiplier,
		LineTotal:    line.SquareMeters.Mul(line.UnitPrice).Mul(multiplier),
	}, nil
}

func applyTax(subtotal, taxPercentage decimal.Decimal) (tax, total decimal.Decimal) {
	// exact division by 100; Div would round at DivisionPrecision
	tax = subtotal.Mul(taxPercentage).Shift(-2)
	return tax, subtotal.Add(tax)
}

func fieldError(kind string, index int, msg string) error {
	return shared.NewValidationError(fmt.Sprintf("%s %d: %s", kind, index+1, msg))
}
