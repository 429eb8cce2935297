package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Service DTOs
// =============================================================================

// CreateServiceRequest represents a request to create a catalog service
type CreateServiceRequest struct {
	Name              string           `json:"name" binding:"required,min=1,max=200"`
	Description       string           `json:"description" binding:"max=2000"`
	PricePerM2        decimal.Decimal  `json:"price_per_m2" binding:"nonneg"`
	LinkedInventoryID *uuid.UUID       `json:"linked_inventory_id"`
	ChemicalUsageRate *decimal.Decimal `json:"chemical_usage_rate"`
}

// UpdateServiceRequest represents a partial service update. UnlinkInventory
// clears the consumable link; it wins over LinkedInventoryID.
type UpdateServiceRequest struct {
	Name              *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description       *string          `json:"description" binding:"omitempty,max=2000"`
	PricePerM2        *decimal.Decimal `json:"price_per_m2" binding:"omitempty,nonneg"`
	LinkedInventoryID *uuid.UUID       `json:"linked_inventory_id"`
	ChemicalUsageRate *decimal.Decimal `json:"chemical_usage_rate"`
	UnlinkInventory   bool             `json:"unlink_inventory"`
	Active            *bool            `json:"active"`
}

// ServiceResponse represents a catalog service in API responses
type ServiceResponse struct {
	ID                uuid.UUID        `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	PricePerM2        decimal.Decimal  `json:"price_per_m2"`
	LinkedInventoryID *uuid.UUID       `json:"linked_inventory_id"`
	ChemicalUsageRate *decimal.Decimal `json:"chemical_usage_rate"`
	Active            bool             `json:"active"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// ToServiceResponse converts a domain Service to ServiceResponse
func ToServiceResponse(s *catalog.Service) ServiceResponse {
	return ServiceResponse{
		ID:                s.ID,
		Name:              s.Name,
		Description:       s.Description,
		PricePerM2:        s.PricePerM2,
		LinkedInventoryID: s.LinkedInventoryID,
		ChemicalUsageRate: s.ChemicalUsageRate,
		Active:            s.Active,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

// ToServiceResponses converts a slice of services
func ToServiceResponses(services []catalog.Service) []ServiceResponse {
	responses := make([]ServiceResponse, len(services))
	for i := range services {
		responses[i] = ToServiceResponse(&services[i])
	}
	return responses
}

// =============================================================================
// Upsell DTOs
// =============================================================================

// CreateUpsellRequest represents a request to create an upsell item
type CreateUpsellRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	Price       decimal.Decimal `json:"price" binding:"nonneg"`
}

// UpdateUpsellRequest represents a partial upsell update
type UpdateUpsellRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price" binding:"omitempty,nonneg"`
	Active      *bool            `json:"active"`
}

// UpsellResponse represents an upsell item in API responses
type UpsellResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToUpsellResponse converts a domain UpsellItem to UpsellResponse
func ToUpsellResponse(u *catalog.UpsellItem) UpsellResponse {
	return UpsellResponse{
		ID:          u.ID,
		Name:        u.Name,
		Description: u.Description,
		Price:       u.Price,
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ToUpsellResponses converts a slice of upsell items
func ToUpsellResponses(items []catalog.UpsellItem) []UpsellResponse {
	responses := make([]UpsellResponse, len(items))
	for i := range items {
		responses[i] = ToUpsellResponse(&items[i])
	}
	return responses
}
