package estimate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Filter narrows estimate listings
type Filter struct {
	shared.Filter
	Status     *Status
	CustomerID *uuid.UUID
}

// EstimateRepository persists estimates with their lines and upsells
type EstimateRepository interface {
	// FindByID loads the estimate including lines and upsells in position order
	FindByID(ctx context.Context, id uuid.UUID) (*Estimate, error)
	// FindByIDForUpdate is FindByID with a row lock; only meaningful inside a transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Estimate, error)
	// FindAll lists estimate headers, newest first
	FindAll(ctx context.Context, filter Filter) ([]Estimate, error)
	// Save inserts a new estimate with its lines and upsells
	Save(ctx context.Context, estimate *Estimate) error
	// SaveWithLock updates the header guarded by the version number
	SaveWithLock(ctx context.Context, estimate *Estimate) error
	CountByStatus(ctx context.Context, status Status) (int64, error)
	// SumTotalsByStatuses sums total_incl_btw for estimates updated in [from, to)
	SumTotalsByStatuses(ctx context.Context, statuses []Status, from, to time.Time) (decimal.Decimal, error)
	ExistsByCustomer(ctx context.Context, customerID uuid.UUID) (bool, error)
}

// PhotoRepository persists photo metadata
type PhotoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Photo, error)
	FindByEstimate(ctx context.Context, estimateID uuid.UUID) ([]Photo, error)
	Save(ctx context.Context, photo *Photo) error
	Delete(ctx context.Context, id uuid.UUID) error
}
