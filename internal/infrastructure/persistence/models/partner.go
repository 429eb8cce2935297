package models

import (
	"github.com/pressureflow/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	BaseModel
	Name             string                   `gorm:"type:varchar(200);not null;index"`
	Address          string                   `gorm:"type:text"`
	Phone            string                   `gorm:"type:varchar(50);index"`
	Email            string                   `gorm:"type:varchar(200)"`
	ParkingSituation partner.ParkingSituation `gorm:"type:varchar(20)"`
	WaterTapLocation string                   `gorm:"type:text"`
	WaterPressureLPM decimal.Decimal          `gorm:"type:decimal(8,2);not null;default:0"`
	Notes            string                   `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseEntity:       m.BaseModel.ToDomain(),
		Name:             m.Name,
		Address:          m.Address,
		Phone:            m.Phone,
		Email:            m.Email,
		ParkingSituation: m.ParkingSituation,
		WaterTapLocation: m.WaterTapLocation,
		WaterPressureLPM: m.WaterPressureLPM,
		Notes:            m.Notes,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{
		Name:             c.Name,
		Address:          c.Address,
		Phone:            c.Phone,
		Email:            c.Email,
		ParkingSituation: c.ParkingSituation,
		WaterTapLocation: c.WaterTapLocation,
		WaterPressureLPM: c.WaterPressureLPM,
		Notes:            c.Notes,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
