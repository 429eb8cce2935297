package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/estimate"
	"github.com/pressureflow/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Name             string          `json:"name" binding:"required,min=1,max=200"`
	Address          string          `json:"address" binding:"max=500"`
	Phone            string          `json:"phone" binding:"max=50"`
	Email            string          `json:"email" binding:"omitempty,email,max=200"`
	ParkingSituation string          `json:"parking_situation" binding:"omitempty,oneof=oprit straat betaald geen"`
	WaterTapLocation string          `json:"water_tap_location" binding:"max=200"`
	WaterPressureLPM decimal.Decimal `json:"water_pressure_lpm"`
	Notes            string          `json:"notes" binding:"max=5000"`
}

// UpdateCustomerRequest represents a partial customer update
type UpdateCustomerRequest struct {
	Name             *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Address          *string          `json:"address" binding:"omitempty,max=500"`
	Phone            *string          `json:"phone" binding:"omitempty,max=50"`
	Email            *string          `json:"email" binding:"omitempty,email,max=200"`
	ParkingSituation *string          `json:"parking_situation" binding:"omitempty,oneof=oprit straat betaald geen"`
	WaterTapLocation *string          `json:"water_tap_location" binding:"omitempty,max=200"`
	WaterPressureLPM *decimal.Decimal `json:"water_pressure_lpm"`
	Notes            *string          `json:"notes" binding:"omitempty,max=5000"`
}

// CustomerListFilter represents filter options for the customer list
type CustomerListFilter struct {
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=200"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Address          string          `json:"address"`
	Phone            string          `json:"phone"`
	Email            string          `json:"email"`
	ParkingSituation string          `json:"parking_situation"`
	WaterTapLocation string          `json:"water_tap_location"`
	WaterPressureLPM decimal.Decimal `json:"water_pressure_lpm"`
	Notes            string          `json:"notes"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CustomerEstimate is an estimate header shown on the customer page
type CustomerEstimate struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"short_id"`
	Status       string          `json:"status"`
	TotalInclBTW decimal.Decimal `json:"total_incl_btw"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CustomerDetailResponse is a customer with their estimates, newest first
type CustomerDetailResponse struct {
	CustomerResponse
	Estimates []CustomerEstimate `json:"estimates"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:               c.ID,
		Name:             c.Name,
		Address:          c.Address,
		Phone:            c.Phone,
		Email:            c.Email,
		ParkingSituation: string(c.ParkingSituation),
		WaterTapLocation: c.WaterTapLocation,
		WaterPressureLPM: c.WaterPressureLPM,
		Notes:            c.Notes,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// ToCustomerResponses converts a slice of customers
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses
}

func toCustomerEstimates(estimates []estimate.Estimate) []CustomerEstimate {
	out := make([]CustomerEstimate, len(estimates))
	for i := range estimates {
		e := &estimates[i]
		out[i] = CustomerEstimate{
			ID:           e.ID,
			Number:       e.ShortID(),
			Status:       e.Status.String(),
			TotalInclBTW: e.TotalInclBTW,
			CreatedAt:    e.CreatedAt,
		}
	}
	return out
}
