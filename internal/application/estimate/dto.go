package estimate

import (
	"time"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/estimate"
	"github.com/pressureflow/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Estimate DTOs
// =============================================================================

// LineRequest is one area-based work item of a create request. When
// unit_price is omitted the linked service's price per m² is used.
type LineRequest struct {
	ServiceID      *uuid.UUID       `json:"service_id"`
	Description    string           `json:"description" binding:"required,max=500"`
	SquareMeters   *decimal.Decimal `json:"square_meters"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	Multiplier     *decimal.Decimal `json:"multiplier"`
	PollutionLevel string           `json:"pollution_level" binding:"omitempty,oneof=standaard zwaar"`
}

// UpsellRequest is one flat-price add-on. When price is omitted the linked
// upsell item's price is used.
type UpsellRequest struct {
	UpsellItemID *uuid.UUID       `json:"upsell_item_id"`
	Description  string           `json:"description" binding:"required,max=500"`
	Price        *decimal.Decimal `json:"price"`
}

// CreateEstimateRequest represents a request to create a new estimate
type CreateEstimateRequest struct {
	CustomerID    uuid.UUID        `json:"customer_id" binding:"required"`
	Status        string           `json:"status" binding:"omitempty,oneof=concept offerte akkoord"`
	BTWPercentage *decimal.Decimal `json:"btw_percentage"`
	Notes         string           `json:"notes" binding:"max=5000"`
	Lines         []LineRequest    `json:"lines" binding:"dive"`
	Upsells       []UpsellRequest  `json:"upsells" binding:"dive"`
}

// UpdateEstimateRequest represents a partial estimate update. Setting status
// to voltooid runs the completion with inventory deduction.
type UpdateEstimateRequest struct {
	Status        *string          `json:"status" binding:"omitempty,oneof=concept offerte akkoord voltooid factuur betaald"`
	BTWPercentage *decimal.Decimal `json:"btw_percentage"`
	Notes         *string          `json:"notes" binding:"omitempty,max=5000"`
}

// SignRequest carries the signature drawn by the customer
type SignRequest struct {
	Signature string `json:"signature" binding:"required"`
}

// EstimateListFilter represents filter options for the estimate list
type EstimateListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=concept offerte akkoord voltooid factuur betaald"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=200"`
}

// LineResponse represents a priced line in API responses
type LineResponse struct {
	ID             uuid.UUID       `json:"id"`
	ServiceID      *uuid.UUID      `json:"service_id,omitempty"`
	Description    string          `json:"description"`
	SquareMeters   decimal.Decimal `json:"square_meters"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Multiplier     decimal.Decimal `json:"multiplier"`
	PollutionLevel string          `json:"pollution_level"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// UpsellResponse represents an upsell in API responses
type UpsellResponse struct {
	ID           uuid.UUID       `json:"id"`
	UpsellItemID *uuid.UUID      `json:"upsell_item_id,omitempty"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
}

// EstimateResponse represents an estimate with its lines and upsells
type EstimateResponse struct {
	ID            uuid.UUID        `json:"id"`
	Number        string           `json:"short_id"`
	CustomerID    uuid.UUID        `json:"customer_id"`
	UserID        uuid.UUID        `json:"user_id"`
	Status        string           `json:"status"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	BTWPercentage decimal.Decimal  `json:"btw_percentage"`
	BTWAmount     decimal.Decimal  `json:"btw_amount"`
	TotalInclBTW  decimal.Decimal  `json:"total_incl_btw"`
	SignatureData string           `json:"signature_data,omitempty"`
	Notes         string           `json:"notes"`
	Lines         []LineResponse   `json:"lines"`
	Upsells       []UpsellResponse `json:"upsells"`
	Version       int              `json:"version"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// CustomerSummary is the customer embedded in estimate responses
type CustomerSummary struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Phone   string    `json:"phone"`
	Email   string    `json:"email"`
}

// EstimateDetailResponse is the full estimate with customer and photo metadata
type EstimateDetailResponse struct {
	EstimateResponse
	Customer *CustomerSummary `json:"customer"`
	Photos   []PhotoResponse  `json:"photos"`
}

// EstimateListResponse is one row of the estimate list
type EstimateListResponse struct {
	ID              uuid.UUID       `json:"id"`
	Number          string          `json:"short_id"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerAddress string          `json:"customer_address"`
	CustomerPhone   string          `json:"customer_phone"`
	Status          string          `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TotalInclBTW    decimal.Decimal `json:"total_incl_btw"`
	HasSignature    bool            `json:"has_signature"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DeductionResponse describes stock consumed by a completion
type DeductionResponse struct {
	InventoryID   uuid.UUID       `json:"inventory_id"`
	ItemName      string          `json:"item_name"`
	Requested     decimal.Decimal `json:"requested"`
	Applied       decimal.Decimal `json:"applied"`
	QuantityAfter decimal.Decimal `json:"quantity_after"`
	Clamped       bool            `json:"clamped"`
}

// CompletionResponse is returned when a job is marked voltooid
type CompletionResponse struct {
	Estimate         EstimateResponse    `json:"estimate"`
	AlreadyCompleted bool                `json:"already_completed"`
	Deductions       []DeductionResponse `json:"deductions"`
}

// =============================================================================
// Photo DTOs
// =============================================================================

// UploadPhotoRequest carries a base64 or data-URL encoded picture
type UploadPhotoRequest struct {
	PhotoData  string     `json:"photo_data" binding:"required"`
	PhotoType  string     `json:"photo_type" binding:"omitempty,oneof=voor na"`
	Caption    string     `json:"caption" binding:"max=500"`
	CustomerID *uuid.UUID `json:"customer_id"`
}

// PhotoResponse represents photo metadata. URL is only filled for single
// photo lookups.
type PhotoResponse struct {
	ID          uuid.UUID  `json:"id"`
	EstimateID  uuid.UUID  `json:"estimate_id"`
	CustomerID  *uuid.UUID `json:"customer_id,omitempty"`
	PhotoType   string     `json:"photo_type"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	Caption     string     `json:"caption"`
	URL         string     `json:"url,omitempty"`
	URLExpires  *time.Time `json:"url_expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// =============================================================================
// Converters
// =============================================================================

// ToEstimateResponse converts a domain Estimate to EstimateResponse
func ToEstimateResponse(e *estimate.Estimate) EstimateResponse {
	resp := EstimateResponse{
		ID:            e.ID,
		Number:        e.ShortID(),
		CustomerID:    e.CustomerID,
		UserID:        e.UserID,
		Status:        e.Status.String(),
		Subtotal:      e.Subtotal,
		BTWPercentage: e.BTWPercentage,
		BTWAmount:     e.TaxAmount(),
		TotalInclBTW:  e.TotalInclBTW,
		SignatureData: e.SignatureData,
		Notes:         e.Notes,
		Lines:         make([]LineResponse, len(e.Lines)),
		Upsells:       make([]UpsellResponse, len(e.Upsells)),
		Version:       e.Version,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
	for i, l := range e.Lines {
		resp.Lines[i] = LineResponse{
			ID:             l.ID,
			ServiceID:      l.ServiceID,
			Description:    l.Description,
			SquareMeters:   l.SquareMeters,
			UnitPrice:      l.UnitPrice,
			Multiplier:     l.Multiplier,
			PollutionLevel: string(l.PollutionLevel),
			LineTotal:      l.LineTotal,
		}
	}
	for i, u := range e.Upsells {
		resp.Upsells[i] = UpsellResponse{
			ID:           u.ID,
			UpsellItemID: u.UpsellItemID,
			Description:  u.Description,
			Price:        u.Price,
		}
	}
	return resp
}

// ToEstimateListResponse converts an estimate header; customer may be nil
func ToEstimateListResponse(e *estimate.Estimate, customer *partner.Customer) EstimateListResponse {
	resp := EstimateListResponse{
		ID:           e.ID,
		Number:       e.ShortID(),
		CustomerID:   e.CustomerID,
		Status:       e.Status.String(),
		Subtotal:     e.Subtotal,
		TotalInclBTW: e.TotalInclBTW,
		HasSignature: e.HasSignature(),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if customer != nil {
		resp.CustomerName = customer.Name
		resp.CustomerAddress = customer.Address
		resp.CustomerPhone = customer.Phone
	}
	return resp
}

// ToCustomerSummary converts a customer, returning nil for nil
func ToCustomerSummary(c *partner.Customer) *CustomerSummary {
	if c == nil {
		return nil
	}
	return &CustomerSummary{
		ID:      c.ID,
		Name:    c.Name,
		Address: c.Address,
		Phone:   c.Phone,
		Email:   c.Email,
	}
}

// ToPhotoResponse converts photo metadata
func ToPhotoResponse(p *estimate.Photo) PhotoResponse {
	return PhotoResponse{
		ID:          p.ID,
		EstimateID:  p.EstimateID,
		CustomerID:  p.CustomerID,
		PhotoType:   string(p.PhotoType),
		ContentType: p.ContentType,
		SizeBytes:   p.SizeBytes,
		Caption:     p.Caption,
		CreatedAt:   p.CreatedAt,
	}
}

// ToPhotoResponses converts a slice of photos
func ToPhotoResponses(photos []estimate.Photo) []PhotoResponse {
	responses := make([]PhotoResponse, len(photos))
	for i := range photos {
		responses[i] = ToPhotoResponse(&photos[i])
	}
	return responses
}
