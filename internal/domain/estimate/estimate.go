package estimate

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/pricing"
	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultBTWPercentage is applied when a request leaves the tax rate out
var DefaultBTWPercentage = decimal.NewFromInt(21)

// Line is one billable area-based work item. LineTotal is fixed when the
// estimate is created and never recomputed from catalog data.
type Line struct {
	ID             uuid.UUID
	EstimateID     uuid.UUID
	Position       int
	ServiceID      *uuid.UUID
	Description    string
	SquareMeters   decimal.Decimal
	UnitPrice      decimal.Decimal
	Multiplier     decimal.Decimal
	PollutionLevel PollutionLevel
	LineTotal      decimal.Decimal
	CreatedAt      time.Time
}

// Upsell is a flat-price add-on
type Upsell struct {
	ID           uuid.UUID
	EstimateID   uuid.UUID
	Position     int
	UpsellItemID *uuid.UUID
	Description  string
	Price        decimal.Decimal
	CreatedAt    time.Time
}

// LineDraft is the caller input for one line
type LineDraft struct {
	ServiceID      *uuid.UUID
	Description    string
	SquareMeters   decimal.Decimal
	UnitPrice      decimal.Decimal
	Multiplier     *decimal.Decimal
	PollutionLevel PollutionLevel
}

// UpsellDraft is the caller input for one upsell
type UpsellDraft struct {
	UpsellItemID *uuid.UUID
	Description  string
	Price        decimal.Decimal
}

// Estimate is the aggregate root for a quote that can progress into an invoice
type Estimate struct {
	shared.BaseAggregateRoot
	CustomerID    uuid.UUID
	UserID        uuid.UUID
	Status        Status
	Subtotal      decimal.Decimal
	BTWPercentage decimal.Decimal
	TotalInclBTW  decimal.Decimal
	SignatureData string
	Notes         string
	Lines         []Line
	Upsells       []Upsell
}

// NewEstimate prices the drafts and builds a new estimate. An empty status
// defaults to concept; a nil tax percentage defaults to DefaultBTWPercentage.
func NewEstimate(customerID, userID uuid.UUID, status Status, btwPercentage *decimal.Decimal, notes string, lines []LineDraft, upsells []UpsellDraft) (*Estimate, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer_id is required")
	}
	if status == "" {
		status = StatusConcept
	}
	if !status.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("unknown estimate status %q", status))
	}
	// completion has side effects and can only be reached through the ledger
	if status.IsCompleted() {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("a new estimate cannot start in status %s", status))
	}

	pct := DefaultBTWPercentage
	if btwPercentage != nil {
		pct = *btwPercentage
	}

	lineInputs := make([]pricing.LineInput, len(lines))
	for i, l := range lines {
		lineInputs[i] = pricing.LineInput{
			Description:  l.Description,
			SquareMeters: l.SquareMeters,
			UnitPrice:    l.UnitPrice,
			Multiplier:   l.Multiplier,
		}
	}
	upsellInputs := make([]pricing.UpsellInput, len(upsells))
	for i, u := range upsells {
		upsellInputs[i] = pricing.UpsellInput{Description: u.Description, Price: u.Price}
	}

	priced, err := pricing.Compute(lineInputs, upsellInputs, pct)
	if err != nil {
		return nil, err
	}

	e := &Estimate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		UserID:            userID,
		Status:            status,
		Subtotal:          priced.Subtotal,
		BTWPercentage:     pct,
		TotalInclBTW:      priced.Total,
		Notes:             notes,
		Lines:             make([]Line, len(lines)),
		Upsells:           make([]Upsell, len(upsells)),
	}

	for i, pl := range priced.Lines {
		level := lines[i].PollutionLevel
		if level == "" {
			level = PollutionStandaard
		}
		e.Lines[i] = Line{
			ID:             uuid.New(),
			EstimateID:     e.ID,
			Position:       i,
			ServiceID:      lines[i].ServiceID,
			Description:    pl.Description,
			SquareMeters:   pl.SquareMeters,
			UnitPrice:      pl.UnitPrice,
			Multiplier:     pl.Multiplier,
			PollutionLevel: level,
			LineTotal:      pl.LineTotal,
			CreatedAt:      e.CreatedAt,
		}
	}
	for i, u := range upsells {
		e.Upsells[i] = Upsell{
			ID:           uuid.New(),
			EstimateID:   e.ID,
			Position:     i,
			UpsellItemID: u.UpsellItemID,
			Description:  u.Description,
			Price:        u.Price,
			CreatedAt:    e.CreatedAt,
		}
	}

	return e, nil
}

// TaxAmount returns the BTW portion of the persisted total
func (e *Estimate) TaxAmount() decimal.Decimal {
	return e.TotalInclBTW.Sub(e.Subtotal)
}

// ShortID returns the first 8 characters of the identifier
func (e *Estimate) ShortID() string {
	return ShortID(e.ID)
}

// ShortID returns the first 8 characters of an identifier's canonical form
func ShortID(id uuid.UUID) string {
	return id.String()[:8]
}

// HasSignature returns true when a signature payload is stored
func (e *Estimate) HasSignature() bool {
	return strings.TrimSpace(e.SignatureData) != ""
}

// Sign stores the customer's signature and marks the estimate accepted.
// A concept or offerte moves to akkoord; an akkoord estimate gets its
// signature replaced. Later statuses are rejected.
func (e *Estimate) Sign(signature string) error {
	if strings.TrimSpace(signature) == "" {
		return shared.NewValidationError("signature is required")
	}
	switch {
	case e.Status == StatusAkkoord:
	case e.Status.CanTransitionTo(StatusAkkoord):
		e.Status = StatusAkkoord
	default:
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("cannot sign estimate in %s status", e.Status))
	}
	e.SignatureData = signature
	e.Touch()
	return nil
}

// Complete marks the job as carried out. Inventory deduction is the
// caller's responsibility and must happen in the same unit of work.
func (e *Estimate) Complete() error {
	if !e.Status.CanTransitionTo(StatusVoltooid) {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("cannot complete estimate in %s status", e.Status))
	}
	e.Status = StatusVoltooid
	e.Touch()
	return nil
}

// AdvanceTo moves the estimate forward to target. Entering voltooid is
// refused here because it must go through Complete.
func (e *Estimate) AdvanceTo(target Status) error {
	if !target.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("unknown estimate status %q", target))
	}
	if target == StatusVoltooid {
		return shared.NewDomainError(shared.CodeInvalidState, "use completion to mark a job as voltooid")
	}
	if !e.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("cannot move estimate from %s to %s", e.Status, target))
	}
	e.Status = target
	e.Touch()
	return nil
}

// UpdateNotes replaces the free-text notes
func (e *Estimate) UpdateNotes(notes string) {
	e.Notes = notes
	e.Touch()
}

// ChangeTaxRate applies a new BTW percentage while the estimate is still a
// draft. Totals are recomputed from the persisted line totals.
func (e *Estimate) ChangeTaxRate(pct decimal.Decimal) error {
	if !e.Status.IsDraft() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("cannot change btw_percentage in %s status", e.Status))
	}

	lineTotals := make([]decimal.Decimal, len(e.Lines))
	for i, l := range e.Lines {
		lineTotals[i] = l.LineTotal
	}
	upsellPrices := make([]decimal.Decimal, len(e.Upsells))
	for i, u := range e.Upsells {
		upsellPrices[i] = u.Price
	}

	subtotal, _, total, err := pricing.Recompute(lineTotals, upsellPrices, pct)
	if err != nil {
		return err
	}
	e.BTWPercentage = pct
	e.Subtotal = subtotal
	e.TotalInclBTW = total
	e.Touch()
	return nil
}
