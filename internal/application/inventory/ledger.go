package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/catalog"
	"github.com/pressureflow/backend/internal/domain/estimate"
	"github.com/pressureflow/backend/internal/domain/inventory"
	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/pressureflow/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Deduction describes the stock consumed for one estimate line
type Deduction struct {
	LineID        uuid.UUID
	InventoryID   uuid.UUID
	ItemName      string
	Requested     decimal.Decimal
	Applied       decimal.Decimal
	QuantityAfter decimal.Decimal
}

// Clamped reports whether stock ran out before the full usage was taken
func (d Deduction) Clamped() bool {
	return d.Applied.LessThan(d.Requested)
}

// CompletionResult is returned by Ledger.Complete
type CompletionResult struct {
	Estimate *estimate.Estimate
	// AlreadyCompleted is set when the estimate was voltooid or later before
	// the call; nothing was written in that case.
	AlreadyCompleted bool
	Deductions       []Deduction
}

// AdjustmentResult is returned by Ledger.Adjust
type AdjustmentResult struct {
	Item    *inventory.Item
	Applied decimal.Decimal
	Entry   *inventory.LogEntry
}

// Ledger owns every mutation of inventory stock. Each mutation is paired
// with exactly one log entry inside the same transaction.
type Ledger struct {
	txScope         TransactionScope
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewLedger creates a Ledger
func NewLedger(txScope TransactionScope, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{txScope: txScope, logger: logger}
}

// SetBusinessMetrics sets the business metrics instance for recording deductions
func (l *Ledger) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	l.businessMetrics = bm
}

// Complete moves an estimate to voltooid and deducts the consumables its
// lines use. Calling it again for an estimate that is already voltooid or
// further along is a no-op that reports AlreadyCompleted.
//
// Concurrent completions touching the same item are serialized by the row
// lock; a stale version still fails with shared.ErrConcurrencyConflict and
// rolls the whole completion back.
func (l *Ledger) Complete(ctx context.Context, estimateID uuid.UUID) (*CompletionResult, error) {
	var result *CompletionResult

	err := l.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		result = &CompletionResult{}

		est, err := repos.EstimateRepo().FindByIDForUpdate(ctx, estimateID)
		if err != nil {
			return err
		}
		result.Estimate = est

		if est.Status.IsCompleted() {
			result.AlreadyCompleted = true
			return nil
		}
		if err := est.Complete(); err != nil {
			return err
		}

		services, err := linkedServices(ctx, repos, est)
		if err != nil {
			return err
		}

		for _, line := range est.Lines {
			if line.ServiceID == nil {
				continue
			}
			svc, ok := services[*line.ServiceID]
			if !ok || !svc.ConsumesInventory() {
				continue
			}
			d, err := l.deduct(ctx, repos, est.ID, line, svc)
			if err != nil {
				return err
			}
			if d != nil {
				result.Deductions = append(result.Deductions, *d)
			}
		}

		return repos.EstimateRepo().SaveWithLock(ctx, est)
	})
	if err != nil {
		return nil, err
	}

	if result.AlreadyCompleted {
		l.logger.Info("Estimate already completed, skipping deduction",
			zap.String("estimate_id", estimateID.String()),
			zap.String("status", result.Estimate.Status.String()))
		return result, nil
	}

	if l.businessMetrics != nil {
		l.businessMetrics.RecordEstimateCompleted(ctx)
		for _, d := range result.Deductions {
			l.businessMetrics.RecordInventoryDeducted(ctx, d.ItemName, d.Applied)
		}
	}
	l.logger.Info("Estimate completed",
		zap.String("estimate_id", estimateID.String()),
		zap.Int("deductions", len(result.Deductions)))
	return result, nil
}

func linkedServices(ctx context.Context, repos TransactionalRepositories, est *estimate.Estimate) (map[uuid.UUID]*catalog.Service, error) {
	ids := make([]uuid.UUID, 0, len(est.Lines))
	seen := make(map[uuid.UUID]bool)
	for _, line := range est.Lines {
		if line.ServiceID != nil && !seen[*line.ServiceID] {
			seen[*line.ServiceID] = true
			ids = append(ids, *line.ServiceID)
		}
	}
	out := make(map[uuid.UUID]*catalog.Service, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	services, err := repos.ServiceRepo().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range services {
		out[services[i].ID] = &services[i]
	}
	return out, nil
}

func (l *Ledger) deduct(ctx context.Context, repos TransactionalRepositories, estimateID uuid.UUID, line estimate.Line, svc *catalog.Service) (*Deduction, error) {
	usage := svc.UsageFor(line.SquareMeters)

	item, err := repos.InventoryRepo().FindByIDForUpdate(ctx, *svc.LinkedInventoryID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			l.logger.Warn("Linked inventory item not found, skipping deduction",
				zap.String("estimate_id", estimateID.String()),
				zap.String("service_id", svc.ID.String()),
				zap.String("inventory_id", svc.LinkedInventoryID.String()))
			return nil, nil
		}
		return nil, err
	}

	applied, err := item.Deduct(usage)
	if err != nil {
		return nil, err
	}
	d := &Deduction{
		LineID:        line.ID,
		InventoryID:   item.ID,
		ItemName:      item.Name,
		Requested:     usage,
		Applied:       applied,
		QuantityAfter: item.QuantityOnHand,
	}
	if d.Clamped() {
		l.logger.Warn("Insufficient stock, deduction clamped",
			zap.String("estimate_id", estimateID.String()),
			zap.String("inventory_id", item.ID.String()),
			zap.String("requested", usage.String()),
			zap.String("applied", applied.String()))
	}
	// nothing left to take: no mutation, so no log entry either
	if applied.IsZero() {
		return d, nil
	}

	if err := repos.InventoryRepo().SaveWithLock(ctx, item); err != nil {
		return nil, err
	}
	entry, err := inventory.NewLogEntry(item.ID, &estimateID, applied.Neg(), inventory.CompletionReason(line.SquareMeters))
	if err != nil {
		return nil, err
	}
	if err := repos.LogRepo().Append(ctx, entry); err != nil {
		return nil, err
	}
	return d, nil
}

// Adjust applies a signed manual correction to an item. A negative amount
// larger than the stock is clamped at zero; the log records the real delta.
func (l *Ledger) Adjust(ctx context.Context, itemID uuid.UUID, amount decimal.Decimal, reason string) (*AdjustmentResult, error) {
	if amount.IsZero() {
		return nil, shared.NewValidationError("amount must not be zero")
	}

	var result *AdjustmentResult
	err := l.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.InventoryRepo().FindByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		applied := item.Adjust(amount)
		result = &AdjustmentResult{Item: item, Applied: applied}
		if applied.IsZero() {
			return nil
		}

		if err := repos.InventoryRepo().SaveWithLock(ctx, item); err != nil {
			return err
		}
		entry, err := inventory.NewLogEntry(item.ID, nil, applied, reason)
		if err != nil {
			return err
		}
		result.Entry = entry
		return repos.LogRepo().Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Inventory adjusted",
		zap.String("inventory_id", itemID.String()),
		zap.String("requested", amount.String()),
		zap.String("applied", result.Applied.String()))
	return result, nil
}
