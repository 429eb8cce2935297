package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/estimate"
	"github.com/shopspring/decimal"
)

// EstimateModel is the persistence model for the Estimate aggregate. Lines
// and upsells are child rows created together with the header.
type EstimateModel struct {
	AggregateModel
	CustomerID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	UserID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	Status        estimate.Status       `gorm:"type:varchar(20);not null;default:'concept';index"`
	Subtotal      decimal.Decimal       `gorm:"type:numeric;not null;default:0"`
	BTWPercentage decimal.Decimal       `gorm:"column:btw_percentage;type:numeric;not null;default:21"`
	TotalInclBTW  decimal.Decimal       `gorm:"column:total_incl_btw;type:numeric;not null;default:0"`
	SignatureData string                `gorm:"type:text"`
	Notes         string                `gorm:"type:text"`
	Lines         []EstimateLineModel   `gorm:"foreignKey:EstimateID;constraint:OnDelete:CASCADE"`
	Upsells       []EstimateUpsellModel `gorm:"foreignKey:EstimateID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (EstimateModel) TableName() string {
	return "estimates"
}

// ToDomain converts the persistence model to a domain Estimate, including
// whichever children were preloaded.
func (m *EstimateModel) ToDomain() *estimate.Estimate {
	e := &estimate.Estimate{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CustomerID:        m.CustomerID,
		UserID:            m.UserID,
		Status:            m.Status,
		Subtotal:          m.Subtotal,
		BTWPercentage:     m.BTWPercentage,
		TotalInclBTW:      m.TotalInclBTW,
		SignatureData:     m.SignatureData,
		Notes:             m.Notes,
	}
	if len(m.Lines) > 0 {
		e.Lines = make([]estimate.Line, len(m.Lines))
		for i := range m.Lines {
			e.Lines[i] = m.Lines[i].ToDomain()
		}
	}
	if len(m.Upsells) > 0 {
		e.Upsells = make([]estimate.Upsell, len(m.Upsells))
		for i := range m.Upsells {
			e.Upsells[i] = m.Upsells[i].ToDomain()
		}
	}
	return e
}

// EstimateModelFromDomain creates a persistence model from a domain Estimate.
func EstimateModelFromDomain(e *estimate.Estimate) *EstimateModel {
	m := &EstimateModel{
		CustomerID:    e.CustomerID,
		UserID:        e.UserID,
		Status:        e.Status,
		Subtotal:      e.Subtotal,
		BTWPercentage: e.BTWPercentage,
		TotalInclBTW:  e.TotalInclBTW,
		SignatureData: e.SignatureData,
		Notes:         e.Notes,
	}
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	for _, l := range e.Lines {
		m.Lines = append(m.Lines, EstimateLineModelFromDomain(l))
	}
	for _, u := range e.Upsells {
		m.Upsells = append(m.Upsells, EstimateUpsellModelFromDomain(u))
	}
	return m
}

// EstimateLineModel is a priced service row on an estimate.
type EstimateLineModel struct {
	ID             uuid.UUID               `gorm:"type:uuid;primaryKey"`
	EstimateID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	Position       int                     `gorm:"not null;default:0"`
	ServiceID      *uuid.UUID              `gorm:"type:uuid"`
	Description    string                  `gorm:"type:text;not null"`
	SquareMeters   decimal.Decimal         `gorm:"type:numeric;not null"`
	UnitPrice      decimal.Decimal         `gorm:"type:numeric;not null"`
	Multiplier     decimal.Decimal         `gorm:"type:numeric;not null;default:1"`
	PollutionLevel estimate.PollutionLevel `gorm:"type:varchar(20);not null;default:'standaard'"`
	LineTotal      decimal.Decimal         `gorm:"type:numeric;not null"`
	CreatedAt      time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EstimateLineModel) TableName() string {
	return "estimate_lines"
}

// ToDomain converts the row to a domain Line.
func (m *EstimateLineModel) ToDomain() estimate.Line {
	return estimate.Line{
		ID:             m.ID,
		EstimateID:     m.EstimateID,
		Position:       m.Position,
		ServiceID:      m.ServiceID,
		Description:    m.Description,
		SquareMeters:   m.SquareMeters,
		UnitPrice:      m.UnitPrice,
		Multiplier:     m.Multiplier,
		PollutionLevel: m.PollutionLevel,
		LineTotal:      m.LineTotal,
		CreatedAt:      m.CreatedAt,
	}
}

// EstimateLineModelFromDomain creates a row from a domain Line.
func EstimateLineModelFromDomain(l estimate.Line) EstimateLineModel {
	return EstimateLineModel{
		ID:             l.ID,
		EstimateID:     l.EstimateID,
		Position:       l.Position,
		ServiceID:      l.ServiceID,
		Description:    l.Description,
		SquareMeters:   l.SquareMeters,
		UnitPrice:      l.UnitPrice,
		Multiplier:     l.Multiplier,
		PollutionLevel: l.PollutionLevel,
		LineTotal:      l.LineTotal,
		CreatedAt:      l.CreatedAt,
	}
}

// EstimateUpsellModel is a flat-priced add-on row on an estimate.
type EstimateUpsellModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EstimateID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position     int             `gorm:"not null;default:0"`
	UpsellItemID *uuid.UUID      `gorm:"type:uuid"`
	Description  string          `gorm:"type:text;not null"`
	Price        decimal.Decimal `gorm:"type:numeric;not null"`
	CreatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EstimateUpsellModel) TableName() string {
	return "estimate_upsells"
}

// ToDomain converts the row to a domain Upsell.
func (m *EstimateUpsellModel) ToDomain() estimate.Upsell {
	return estimate.Upsell{
		ID:           m.ID,
		EstimateID:   m.EstimateID,
		Position:     m.Position,
		UpsellItemID: m.UpsellItemID,
		Description:  m.Description,
		Price:        m.Price,
		CreatedAt:    m.CreatedAt,
	}
}

// EstimateUpsellModelFromDomain creates a row from a domain Upsell.
func EstimateUpsellModelFromDomain(u estimate.Upsell) EstimateUpsellModel {
	return EstimateUpsellModel{
		ID:           u.ID,
		EstimateID:   u.EstimateID,
		Position:     u.Position,
		UpsellItemID: u.UpsellItemID,
		Description:  u.Description,
		Price:        u.Price,
		CreatedAt:    u.CreatedAt,
	}
}

// ProjectPhotoModel is the metadata row for a before/after photo. The
// image bytes live in object storage under StorageKey.
type ProjectPhotoModel struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey"`
	EstimateID  uuid.UUID          `gorm:"type:uuid;not null;index"`
	CustomerID  *uuid.UUID         `gorm:"type:uuid"`
	PhotoType   estimate.PhotoType `gorm:"type:varchar(10);not null;default:'voor'"`
	StorageKey  string             `gorm:"type:varchar(500);not null"`
	ContentType string             `gorm:"type:varchar(100);not null"`
	SizeBytes   int64              `gorm:"not null;default:0"`
	Caption     string             `gorm:"type:text"`
	CreatedAt   time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProjectPhotoModel) TableName() string {
	return "project_photos"
}

// ToDomain converts the row to a domain Photo.
func (m *ProjectPhotoModel) ToDomain() *estimate.Photo {
	return &estimate.Photo{
		ID:          m.ID,
		EstimateID:  m.EstimateID,
		CustomerID:  m.CustomerID,
		PhotoType:   m.PhotoType,
		StorageKey:  m.StorageKey,
		ContentType: m.ContentType,
		SizeBytes:   m.SizeBytes,
		Caption:     m.Caption,
		CreatedAt:   m.CreatedAt,
	}
}

// ProjectPhotoModelFromDomain creates a row from a domain Photo.
func ProjectPhotoModelFromDomain(p *estimate.Photo) *ProjectPhotoModel {
	return &ProjectPhotoModel{
		ID:          p.ID,
		EstimateID:  p.EstimateID,
		CustomerID:  p.CustomerID,
		PhotoType:   p.PhotoType,
		StorageKey:  p.StorageKey,
		ContentType: p.ContentType,
		SizeBytes:   p.SizeBytes,
		Caption:     p.Caption,
		CreatedAt:   p.CreatedAt,
	}
}
