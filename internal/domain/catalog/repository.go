package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ServiceRepository persists catalog services
type ServiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Service, error)
	// FindByIDs returns the services found; missing ids are simply absent
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Service, error)
	// FindAll returns services ordered by name
	FindAll(ctx context.Context, activeOnly bool) ([]Service, error)
	Save(ctx context.Context, service *Service) error
}

// UpsellItemRepository persists upsell items
type UpsellItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*UpsellItem, error)
	FindAll(ctx context.Context, activeOnly bool) ([]UpsellItem, error)
	Save(ctx context.Context, item *UpsellItem) error
}
