package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/catalog"
	"github.com/pressureflow/backend/internal/domain/inventory"
	"go.uber.org/zap"
)

// CatalogService manages the services and upsell items offered to customers.
// Deleting either only deactivates it so existing estimate lines keep their
// reference.
type CatalogService struct {
	serviceRepo catalog.ServiceRepository
	upsellRepo  catalog.UpsellItemRepository
	itemRepo    inventory.ItemRepository
	logger      *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	serviceRepo catalog.ServiceRepository,
	upsellRepo catalog.UpsellItemRepository,
	itemRepo inventory.ItemRepository,
	logger *zap.Logger,
) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		serviceRepo: serviceRepo,
		upsellRepo:  upsellRepo,
		itemRepo:    itemRepo,
		logger:      logger,
	}
}

// ListServices returns services ordered by name
func (s *CatalogService) ListServices(ctx context.Context, includeInactive bool) ([]ServiceResponse, error) {
	services, err := s.serviceRepo.FindAll(ctx, !includeInactive)
	if err != nil {
		return nil, err
	}
	return ToServiceResponses(services), nil
}

// GetService returns a service by ID
func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*ServiceResponse, error) {
	svc, err := s.serviceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToServiceResponse(svc)
	return &resp, nil
}

// CreateService creates a new service, optionally linked to a consumable
func (s *CatalogService) CreateService(ctx context.Context, req CreateServiceRequest) (*ServiceResponse, error) {
	svc, err := catalog.NewService(req.Name, req.Description, req.PricePerM2)
	if err != nil {
		return nil, err
	}
	if req.LinkedInventoryID != nil || req.ChemicalUsageRate != nil {
		if err := s.ensureItemExists(ctx, req.LinkedInventoryID); err != nil {
			return nil, err
		}
		if err := svc.LinkInventory(req.LinkedInventoryID, req.ChemicalUsageRate); err != nil {
			return nil, err
		}
	}

	if err := s.serviceRepo.Save(ctx, svc); err != nil {
		return nil, err
	}
	s.logger.Info("Service created", zap.String("service_id", svc.ID.String()), zap.String("name", svc.Name))

	resp := ToServiceResponse(svc)
	return &resp, nil
}

// UpdateService applies a partial update
func (s *CatalogService) UpdateService(ctx context.Context, id uuid.UUID, req UpdateServiceRequest) (*ServiceResponse, error) {
	svc, err := s.serviceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, description, price := svc.Name, svc.Description, svc.PricePerM2
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.PricePerM2 != nil {
		price = *req.PricePerM2
	}
	if err := svc.Update(name, description, price); err != nil {
		return nil, err
	}

	switch {
	case req.UnlinkInventory:
		if err := svc.LinkInventory(nil, nil); err != nil {
			return nil, err
		}
	case req.LinkedInventoryID != nil || req.ChemicalUsageRate != nil:
		link, rate := svc.LinkedInventoryID, svc.ChemicalUsageRate
		if req.LinkedInventoryID != nil {
			if err := s.ensureItemExists(ctx, req.LinkedInventoryID); err != nil {
				return nil, err
			}
			link = req.LinkedInventoryID
		}
		if req.ChemicalUsageRate != nil {
			rate = req.ChemicalUsageRate
		}
		if err := svc.LinkInventory(link, rate); err != nil {
			return nil, err
		}
	}

	if req.Active != nil {
		svc.SetActive(*req.Active)
	}

	if err := s.serviceRepo.Save(ctx, svc); err != nil {
		return nil, err
	}
	resp := ToServiceResponse(svc)
	return &resp, nil
}

// DeleteService deactivates a service
func (s *CatalogService) DeleteService(ctx context.Context, id uuid.UUID) error {
	svc, err := s.serviceRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	svc.SetActive(false)
	if err := s.serviceRepo.Save(ctx, svc); err != nil {
		return err
	}
	s.logger.Info("Service deactivated", zap.String("service_id", id.String()))
	return nil
}

func (s *CatalogService) ensureItemExists(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := s.itemRepo.FindByID(ctx, *id)
	return err
}

// ListUpsells returns upsell items ordered by name
func (s *CatalogService) ListUpsells(ctx context.Context, includeInactive bool) ([]UpsellResponse, error) {
	items, err := s.upsellRepo.FindAll(ctx, !includeInactive)
	if err != nil {
		return nil, err
	}
	return ToUpsellResponses(items), nil
}

// CreateUpsell creates a new upsell item
func (s *CatalogService) CreateUpsell(ctx context.Context, req CreateUpsellRequest) (*UpsellResponse, error) {
	item, err := catalog.NewUpsellItem(req.Name, req.Description, req.Price)
	if err != nil {
		return nil, err
	}
	if err := s.upsellRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	resp := ToUpsellResponse(item)
	return &resp, nil
}

// UpdateUpsell applies a partial update
func (s *CatalogService) UpdateUpsell(ctx context.Context, id uuid.UUID, req UpdateUpsellRequest) (*UpsellResponse, error) {
	item, err := s.upsellRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, description, price := item.Name, item.Description, item.Price
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Price != nil {
		price = *req.Price
	}
	if err := item.Update(name, description, price); err != nil {
		return nil, err
	}
	if req.Active != nil {
		item.SetActive(*req.Active)
	}

	if err := s.upsellRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	resp := ToUpsellResponse(item)
	return &resp, nil
}

// DeleteUpsell deactivates an upsell item
func (s *CatalogService) DeleteUpsell(ctx context.Context, id uuid.UUID) error {
	item, err := s.upsellRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	item.SetActive(false)
	return s.upsellRepo.Save(ctx, item)
}
