package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ParkingSituation describes where the crew can park the trailer
type ParkingSituation string

const (
	ParkingDriveway ParkingSituation = "oprit"
	ParkingStreet   ParkingSituation = "straat"
	ParkingPaid     ParkingSituation = "betaald"
	ParkingNone     ParkingSituation = "geen"
)

// IsValid checks the parking situation value
func (p ParkingSituation) IsValid() bool {
	switch p {
	case ParkingDriveway, ParkingStreet, ParkingPaid, ParkingNone:
		return true
	}
	return false
}

// Customer is a client of the business. The site fields (parking, water
// tap, water pressure) are what the crew needs on the day of the job.
type Customer struct {
	shared.BaseEntity
	Name             string
	Address          string
	Phone            string
	Email            string
	ParkingSituation ParkingSituation
	WaterTapLocation string
	WaterPressureLPM decimal.Decimal
	Notes            string
}

// SiteDetails groups the optional fields of a customer
type SiteDetails struct {
	Address          string
	Phone            string
	Email            string
	ParkingSituation ParkingSituation
	WaterTapLocation string
	WaterPressureLPM decimal.Decimal
	Notes            string
}

// NewCustomer creates a customer
func NewCustomer(name string, details SiteDetails) (*Customer, error) {
	c := &Customer{BaseEntity: shared.NewBaseEntity()}
	if err := c.Update(name, details); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces name and site details
func (c *Customer) Update(name string, details SiteDetails) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewValidationError("name is required")
	}
	if details.ParkingSituation == "" {
		details.ParkingSituation = ParkingDriveway
	}
	if !details.ParkingSituation.IsValid() {
		return shared.NewValidationError("parking_situation must be one of oprit, straat, betaald, geen")
	}
	if details.WaterPressureLPM.IsNegative() {
		return shared.NewValidationError("water_pressure_lpm must not be negative")
	}

	c.Name = strings.TrimSpace(name)
	c.Address = strings.TrimSpace(details.Address)
	c.Phone = strings.TrimSpace(details.Phone)
	c.Email = strings.TrimSpace(details.Email)
	c.ParkingSituation = details.ParkingSituation
	c.WaterTapLocation = details.WaterTapLocation
	c.WaterPressureLPM = details.WaterPressureLPM
	c.Notes = details.Notes
	c.Touch()
	return nil
}

// Details returns the current site details, handy for partial updates
func (c *Customer) Details() SiteDetails {
	return SiteDetails{
		Address:          c.Address,
		Phone:            c.Phone,
		Email:            c.Email,
		ParkingSituation: c.ParkingSituation,
		WaterTapLocation: c.WaterTapLocation,
		WaterPressureLPM: c.WaterPressureLPM,
		Notes:            c.Notes,
	}
}

// CustomerRepository persists customers. Filter.Search matches name,
// address and phone.
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	// FindByIDs returns the customers found; missing ids are simply absent
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}
