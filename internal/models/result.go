package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CalculationResult is the full itemized output of one price calculation.
// It is a derived value, serialized to JSON for caching on the quote row and
// for embedding in version snapshots; it is never a source of truth.
type CalculationResult struct {
	QuoteID     uuid.UUID  `json:"quote_id"`
	PriceBookID *uuid.UUID `json:"price_book_id,omitempty"`
	Currency    string     `json:"currency"`

	Materials CategoryBreakdown `json:"materials"`
	Edges     CategoryBreakdown `json:"edges"`
	Cutouts   CategoryBreakdown `json:"cutouts"`
	Services  CategoryBreakdown `json:"services"`

	Delivery   CostLine `json:"delivery"`
	Templating CostLine `json:"templating"`

	Subtotal decimal.Decimal `json:"subtotal"`
	Total    decimal.Decimal `json:"total"`

	AppliedRules []AppliedRule  `json:"applied_rules"`
	Discounts    []DiscountLine `json:"discounts"`
	Warnings     []string       `json:"warnings,omitempty"`

	CalculatedAt time.Time `json:"calculated_at"`
}

// CategoryBreakdown itemizes one cost category. Subtotal is the sum of the
// lines after rate overrides; Total is Subtotal less Discount, never below
// zero.
type CategoryBreakdown struct {
	Lines    []BreakdownLine `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

type BreakdownLine struct {
	TypeID     uuid.UUID       `json:"type_id"`
	Name       string          `json:"name"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit"` // m2, lm, ea, slab
	Rate       decimal.Decimal `json:"rate"`
	Amount     decimal.Decimal `json:"amount"`
	Overridden bool            `json:"overridden,omitempty"` // manual piece override
	RuleRate   bool            `json:"rule_rate,omitempty"`  // rate came from a rule override
}

// CostLine carries an externally calculated cost and its manual override.
// Final is the billed value: override if present, else calculated, else zero.
type CostLine struct {
	Calculated decimal.NullDecimal `json:"calculated"`
	Override   decimal.NullDecimal `json:"override"`
	Final      decimal.Decimal     `json:"final"`
}

type AppliedRule struct {
	RuleID uuid.UUID `json:"rule_id"`
	Name   string    `json:"name"`
	Effect string    `json:"effect"`
}

type DiscountLine struct {
	RuleID   uuid.UUID       `json:"rule_id"`
	RuleName string          `json:"rule_name"`
	Category string          `json:"category"` // materials, edges, cutouts
	Amount   decimal.Decimal `json:"amount"`
}
