package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Material struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string          `json:"name" gorm:"not null"`
	PricePerSqm decimal.Decimal `json:"price_per_sqm" gorm:"type:decimal(15,2);not null"`

	// Used only when the organisation prices materials per slab.
	PricePerSlab decimal.NullDecimal `json:"price_per_slab" gorm:"type:decimal(15,2)"`

	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type EdgeType struct {
	ID       uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Name     string          `json:"name" gorm:"not null"`
	Category string          `json:"category"` // standard, premium, mitred
	BaseRate decimal.Decimal `json:"base_rate" gorm:"type:decimal(15,2);not null"`

	// Thickness-specific rates; base rate applies when absent.
	Rate20mm decimal.NullDecimal `json:"rate_20mm" gorm:"type:decimal(15,2)"`
	Rate40mm decimal.NullDecimal `json:"rate_40mm" gorm:"type:decimal(15,2)"`

	// Billing floors: length in linear metres, charge in currency.
	MinLengthM decimal.NullDecimal `json:"min_length_m" gorm:"type:decimal(15,3)"`
	MinCharge  decimal.NullDecimal `json:"min_charge" gorm:"type:decimal(15,2)"`

	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

func (e *EdgeType) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type CutoutType struct {
	ID        uuid.UUID           `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string              `json:"name" gorm:"not null"`
	Category  string              `json:"category"` // sink, cooktop, powerpoint, drainer
	BaseRate  decimal.Decimal     `json:"base_rate" gorm:"type:decimal(15,2);not null"`
	MinCharge decimal.NullDecimal `json:"min_charge" gorm:"type:decimal(15,2)"`

	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

func (c *CutoutType) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Service kinds and billing units for ServiceRate.
const (
	ServiceCutting      = "cutting"
	ServicePolishing    = "polishing"
	ServiceInstallation = "installation"

	UnitSquareMetre = "sqm"
	UnitLinearMetre = "lm"
	UnitPerPiece    = "piece"
)

type ServiceRate struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Kind string    `json:"kind" gorm:"not null;index"` // cutting, polishing, installation
	Unit string    `json:"unit" gorm:"not null"`       // sqm, lm, piece

	Rate20mm  decimal.Decimal     `json:"rate_20mm" gorm:"type:decimal(15,2);not null"`
	Rate40mm  decimal.Decimal     `json:"rate_40mm" gorm:"type:decimal(15,2);not null"`
	MinCharge decimal.NullDecimal `json:"min_charge" gorm:"type:decimal(15,2)"`

	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

func (s *ServiceRate) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
