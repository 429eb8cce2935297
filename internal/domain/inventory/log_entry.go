package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultAdjustmentReason is recorded when a manual adjustment has no reason
const DefaultAdjustmentReason = "Handmatige aanpassing"

// LogEntry is an immutable audit record of one stock mutation.
// ChangeAmount is the signed delta that was really applied.
type LogEntry struct {
	ID           uuid.UUID
	InventoryID  uuid.UUID
	EstimateID   *uuid.UUID
	ChangeAmount decimal.Decimal
	Reason       string
	CreatedAt    time.Time
}

// NewLogEntry creates a log entry; a zero change is rejected because only
// real mutations are logged.
func NewLogEntry(inventoryID uuid.UUID, estimateID *uuid.UUID, change decimal.Decimal, reason string) (*LogEntry, error) {
	if inventoryID == uuid.Nil {
		return nil, shared.NewValidationError("inventory_id is required")
	}
	if change.IsZero() {
		return nil, shared.NewValidationError("change_amount must not be zero")
	}
	if strings.TrimSpace(reason) == "" {
		reason = DefaultAdjustmentReason
	}
	return &LogEntry{
		ID:           uuid.New(),
		InventoryID:  inventoryID,
		EstimateID:   estimateID,
		ChangeAmount: change,
		Reason:       reason,
		CreatedAt:    time.Now(),
	}, nil
}

// CompletionReason is the audit text for a deduction caused by a finished job
func CompletionReason(squareMeters decimal.Decimal) string {
	return fmt.Sprintf("Auto-aftrek klus voltooid (%s m²)", squareMeters.String())
}
