package models

import (
	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ServiceModel is the persistence model for the catalog Service entity.
type ServiceModel struct {
	BaseModel
	Name              string           `gorm:"type:varchar(200);not null"`
	Description       string           `gorm:"type:text"`
	PricePerM2        decimal.Decimal  `gorm:"column:price_per_m2;type:numeric;not null"`
	LinkedInventoryID *uuid.UUID       `gorm:"type:uuid;index"`
	ChemicalUsageRate *decimal.Decimal `gorm:"type:numeric"`
	Active            bool             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ServiceModel) TableName() string {
	return "services"
}

// ToDomain converts the persistence model to a domain Service.
func (m *ServiceModel) ToDomain() *catalog.Service {
	return &catalog.Service{
		BaseEntity:        m.BaseModel.ToDomain(),
		Name:              m.Name,
		Description:       m.Description,
		PricePerM2:        m.PricePerM2,
		LinkedInventoryID: m.LinkedInventoryID,
		ChemicalUsageRate: m.ChemicalUsageRate,
		Active:            m.Active,
	}
}

// ServiceModelFromDomain creates a persistence model from a domain Service.
func ServiceModelFromDomain(s *catalog.Service) *ServiceModel {
	m := &ServiceModel{
		Name:              s.Name,
		Description:       s.Description,
		PricePerM2:        s.PricePerM2,
		LinkedInventoryID: s.LinkedInventoryID,
		ChemicalUsageRate: s.ChemicalUsageRate,
		Active:            s.Active,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// UpsellItemModel is the persistence model for the catalog UpsellItem entity.
type UpsellItemModel struct {
	BaseModel
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:numeric;not null"`
	Active      bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UpsellItemModel) TableName() string {
	return "upsell_items"
}

// ToDomain converts the persistence model to a domain UpsellItem.
func (m *UpsellItemModel) ToDomain() *catalog.UpsellItem {
	return &catalog.UpsellItem{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Active:      m.Active,
	}
}

// UpsellItemModelFromDomain creates a persistence model from a domain UpsellItem.
func UpsellItemModelFromDomain(u *catalog.UpsellItem) *UpsellItemModel {
	m := &UpsellItemModel{
		Name:        u.Name,
		Description: u.Description,
		Price:       u.Price,
		Active:      u.Active,
	}
	m.FromDomainBaseEntity(u.BaseEntity)
	return m
}
