package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Adjustment types and target categories for PricingRule.
const (
	AdjustmentPercentage  = "percentage"
	AdjustmentFixedAmount = "fixed_amount"

	AppliesToMaterials = "materials"
	AppliesToEdges     = "edges"
	AppliesToCutouts   = "cutouts"
	AppliesToAll       = "all"
)

// PricingRule adjusts quote pricing for a scope of customers. Scope is at
// most one of customer, client type, or client tier; all three nil means the
// rule applies to everyone.
type PricingRule struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name string    `json:"name" gorm:"not null"`

	CustomerID   *uuid.UUID `json:"customer_id" gorm:"type:uuid;index"`
	ClientTypeID *uuid.UUID `json:"client_type_id" gorm:"type:uuid;index"`
	ClientTierID *uuid.UUID `json:"client_tier_id" gorm:"type:uuid;index"`

	AdjustmentType  string          `json:"adjustment_type" gorm:"not null"` // percentage, fixed_amount
	AdjustmentValue decimal.Decimal `json:"adjustment_value" gorm:"type:decimal(15,2);not null"`
	AppliesTo       string          `json:"applies_to" gorm:"default:'all'"` // materials, edges, cutouts, all

	// Quote-value window; the rule only applies when the pre-discount
	// subtotal falls inside it.
	MinQuoteValue decimal.NullDecimal `json:"min_quote_value" gorm:"type:decimal(15,2)"`
	MaxQuoteValue decimal.NullDecimal `json:"max_quote_value" gorm:"type:decimal(15,2)"`

	Priority int  `json:"priority" gorm:"default:0"`
	IsActive bool `json:"is_active" gorm:"default:true"`

	RateOverrides []RateOverride `json:"rate_overrides" gorm:"foreignKey:PricingRuleID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

func (r *PricingRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RateOverride replaces a catalog entity's unit rate while its parent rule
// is in effect. Exactly one of the three entity refs is set.
type RateOverride struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	PricingRuleID uuid.UUID `json:"pricing_rule_id" gorm:"type:uuid;not null;index"`

	EdgeTypeID   *uuid.UUID `json:"edge_type_id" gorm:"type:uuid"`
	CutoutTypeID *uuid.UUID `json:"cutout_type_id" gorm:"type:uuid"`
	MaterialID   *uuid.UUID `json:"material_id" gorm:"type:uuid"`

	Rate decimal.Decimal `json:"rate" gorm:"type:decimal(15,2);not null"`

	CreatedAt time.Time `json:"created_at"`
}

func (o *RateOverride) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// PriceBook is a named, ordered bundle of pricing rules assignable to a
// customer or quote.
type PriceBook struct {
	ID       uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Name     string          `json:"name" gorm:"unique;not null"`
	IsActive bool            `json:"is_active" gorm:"default:true"`
	Entries  []PriceBookRule `json:"entries" gorm:"foreignKey:PriceBookID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

func (pb *PriceBook) BeforeCreate(tx *gorm.DB) error {
	if pb.ID == uuid.Nil {
		pb.ID = uuid.New()
	}
	return nil
}

type PriceBookRule struct {
	ID            uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	PriceBookID   uuid.UUID   `json:"price_book_id" gorm:"type:uuid;not null;index"`
	PricingRuleID uuid.UUID   `json:"pricing_rule_id" gorm:"type:uuid;not null"`
	PricingRule   PricingRule `json:"pricing_rule" gorm:"foreignKey:PricingRuleID"`
	SortOrder     int         `json:"sort_order" gorm:"default:0"`
	CreatedAt     time.Time   `json:"created_at"`
}

func (pbr *PriceBookRule) BeforeCreate(tx *gorm.DB) error {
	if pbr.ID == uuid.Nil {
		pbr.ID = uuid.New()
	}
	return nil
}

// OptimizationRun is the recorded output of the external slab nesting
// optimizer. The engine reads the latest run per quote under per-slab
// material pricing; it never writes these rows.
type OptimizationRun struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	QuoteID   uuid.UUID        `json:"quote_id" gorm:"type:uuid;not null;index"`
	Slabs     []SlabAllocation `json:"slabs" gorm:"foreignKey:OptimizationRunID"`
	CreatedAt time.Time        `json:"created_at"`
}

func (or *OptimizationRun) BeforeCreate(tx *gorm.DB) error {
	if or.ID == uuid.Nil {
		or.ID = uuid.New()
	}
	return nil
}

type SlabAllocation struct {
	ID                uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OptimizationRunID uuid.UUID `json:"optimization_run_id" gorm:"type:uuid;not null;index"`
	MaterialID        uuid.UUID `json:"material_id" gorm:"type:uuid;not null"`
	SlabCount         int       `json:"slab_count" gorm:"not null"`
	CreatedAt         time.Time `json:"created_at"`
}

func (sa *SlabAllocation) BeforeCreate(tx *gorm.DB) error {
	if sa.ID == uuid.Nil {
		sa.ID = uuid.New()
	}
	return nil
}
