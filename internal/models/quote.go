package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Quote struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	QuoteNumber string    `json:"quote_number" gorm:"unique;not null"`
	CustomerID  uuid.UUID `json:"customer_id" gorm:"type:uuid;not null;index"`
	Customer    Customer  `json:"customer" gorm:"foreignKey:CustomerID"`
	Status      string    `json:"status" gorm:"default:'draft'"` // draft, sent, accepted, declined

	// Price book assigned to this quote; falls back to the customer's book.
	PriceBookID *uuid.UUID `json:"price_book_id" gorm:"type:uuid;index"`
	PriceBook   *PriceBook `json:"price_book,omitempty" gorm:"foreignKey:PriceBookID"`

	// Delivery and templating costs are calculated by external collaborators
	// (delivery zones, site measure scheduling); the overrides win when set.
	DeliveryCost           decimal.NullDecimal `json:"delivery_cost" gorm:"type:decimal(15,2)"`
	TemplatingCost         decimal.NullDecimal `json:"templating_cost" gorm:"type:decimal(15,2)"`
	OverrideDeliveryCost   decimal.NullDecimal `json:"override_delivery_cost" gorm:"type:decimal(15,2)"`
	OverrideTemplatingCost decimal.NullDecimal `json:"override_templating_cost" gorm:"type:decimal(15,2)"`
	OverrideSubtotal       decimal.NullDecimal `json:"override_subtotal" gorm:"type:decimal(15,2)"`
	OverrideTotal          decimal.NullDecimal `json:"override_total" gorm:"type:decimal(15,2)"`

	// Cached output of the last calculation. Not a source of truth.
	CalculationJSON string     `json:"-" gorm:"type:jsonb"`
	CalculatedAt    *time.Time `json:"calculated_at"`

	Rooms []Room `json:"rooms" gorm:"foreignKey:QuoteID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// Room groups pieces for display; it carries no pricing logic.
type Room struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	QuoteID   uuid.UUID `json:"quote_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"not null"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	Pieces    []Piece   `json:"pieces" gorm:"foreignKey:RoomID"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type Piece struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	RoomID      uuid.UUID `json:"room_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name"`
	LengthMm    float64   `json:"length_mm" gorm:"not null"`
	WidthMm     float64   `json:"width_mm" gorm:"not null"`
	ThicknessMm float64   `json:"thickness_mm" gorm:"not null"`
	MaterialID  uuid.UUID `json:"material_id" gorm:"type:uuid;not null;index"`

	// Edge profile per side; nil means the side is unfinished.
	EdgeTopID    *uuid.UUID `json:"edge_top_id" gorm:"type:uuid"`
	EdgeBottomID *uuid.UUID `json:"edge_bottom_id" gorm:"type:uuid"`
	EdgeLeftID   *uuid.UUID `json:"edge_left_id" gorm:"type:uuid"`
	EdgeRightID  *uuid.UUID `json:"edge_right_id" gorm:"type:uuid"`

	// Manual material cost for this piece; replaces the calculated cost.
	OverrideCost decimal.NullDecimal `json:"override_cost" gorm:"type:decimal(15,2)"`

	Cutouts []PieceCutout `json:"cutouts" gorm:"foreignKey:PieceID"`

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Piece) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type PieceCutout struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	PieceID      uuid.UUID `json:"piece_id" gorm:"type:uuid;not null;index"`
	CutoutTypeID uuid.UUID `json:"cutout_type_id" gorm:"type:uuid;not null"`
	Quantity     int       `json:"quantity" gorm:"default:1"`
	CreatedAt    time.Time `json:"created_at"`
}

func (pc *PieceCutout) BeforeCreate(tx *gorm.DB) error {
	if pc.ID == uuid.Nil {
		pc.ID = uuid.New()
	}
	return nil
}
