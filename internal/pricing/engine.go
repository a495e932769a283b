package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stonequote/internal/logger"
	"stonequote/internal/models"
)

// Engine turns a quote snapshot into an itemized CalculationResult. It is a
// pure function of its input: it holds no mutable state and never writes to
// catalog or rule data, so independent quotes may be calculated concurrently.
type Engine struct {
	log *logger.Logger
}

func NewEngine(baseLog *logger.Logger) *Engine {
	return &Engine{log: baseLog.With("component", "pricing_engine")}
}

// run carries the per-invocation state: the snapshot and the data-gap
// warnings collected along the way (deduplicated across the two calculator
// passes).
type run struct {
	in       *Input
	log      *logger.Logger
	warned   map[string]struct{}
	warnings []string
}

func (r *run) warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if _, dup := r.warned[msg]; dup {
		return
	}
	r.warned[msg] = struct{}{}
	r.warnings = append(r.warnings, msg)
	r.log.Warn("calculation data gap", "detail", msg)
}

// Calculate runs the three-stage pipeline: base totals at catalog rates,
// rule resolution against the pre-discount subtotal, then a recompute with
// resolved rate overrides followed by discount application and assembly.
func (e *Engine) Calculate(in *Input) (*models.CalculationResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	r := &run{
		in:     in,
		log:    e.log.With("quote_id", in.Quote.ID.String()),
		warned: make(map[string]struct{}),
	}
	pieces := in.pieces()

	// Stage 1: base totals. Services are computed once; neither rate
	// overrides nor discounts ever touch them.
	noOverrides := newRateOverrides()
	baseMaterials := r.calculateMaterials(pieces, noOverrides)
	baseEdges := r.calculateEdges(pieces, noOverrides)
	baseCutouts := r.calculateCutouts(pieces, noOverrides)
	services := r.calculateServices(pieces)

	baseSubtotal := baseMaterials.Subtotal.
		Add(baseEdges.Subtotal).
		Add(baseCutouts.Subtotal).
		Add(services.Subtotal)

	// Stage 2: ordered applicable rule list.
	rules, err := r.resolveRules(baseSubtotal)
	if err != nil {
		return nil, err
	}

	// Stage 3: pass A recomputes categories at overridden rates, pass B
	// applies discounts with category exclusivity.
	overrides, effects := r.collectRateOverrides(rules)
	materials := r.calculateMaterials(pieces, overrides)
	edges := r.calculateEdges(pieces, overrides)
	cutouts := r.calculateCutouts(pieces, overrides)

	discounts := r.applyDiscounts(rules, &materials, &edges, &cutouts, effects)

	delivery := costLine(in.Quote.DeliveryCost, in.Quote.OverrideDeliveryCost)
	templating := costLine(in.Quote.TemplatingCost, in.Quote.OverrideTemplatingCost)

	subtotal := materials.Total.
		Add(edges.Total).
		Add(cutouts.Total).
		Add(services.Total).
		Add(delivery.Final).
		Add(templating.Final)

	// Quote-level overrides bypass the category math entirely.
	if in.Quote.OverrideSubtotal.Valid {
		subtotal = in.Quote.OverrideSubtotal.Decimal.Round(2)
	}
	total := subtotal
	if in.Quote.OverrideTotal.Valid {
		total = in.Quote.OverrideTotal.Decimal.Round(2)
	}
	if subtotal.IsNegative() {
		subtotal = decimal.Zero
	}
	if total.IsNegative() {
		total = decimal.Zero
	}

	calculatedAt := in.Now
	if calculatedAt.IsZero() {
		calculatedAt = time.Now().UTC()
	}

	var priceBookID *uuid.UUID
	if in.PriceBook != nil {
		id := in.PriceBook.ID
		priceBookID = &id
	}

	result := &models.CalculationResult{
		QuoteID:      in.Quote.ID,
		PriceBookID:  priceBookID,
		Currency:     in.Settings.Currency,
		Materials:    materials,
		Edges:        edges,
		Cutouts:      cutouts,
		Services:     services,
		Delivery:     delivery,
		Templating:   templating,
		Subtotal:     subtotal,
		Total:        total,
		AppliedRules: appliedRuleLog(rules, effects),
		Discounts:    discounts,
		Warnings:     r.warnings,
		CalculatedAt: calculatedAt,
	}

	r.log.Info("quote calculated",
		"subtotal", subtotal.String(),
		"total", total.String(),
		"rules_applied", len(result.AppliedRules),
		"warnings", len(r.warnings),
	)
	return result, nil
}

func validateInput(in *Input) error {
	if in.Quote == nil {
		return NewValidationError("quote is required")
	}
	for i := range in.Quote.Rooms {
		room := &in.Quote.Rooms[i]
		for j := range room.Pieces {
			p := &room.Pieces[j]
			if p.LengthMm <= 0 || p.WidthMm <= 0 || p.ThicknessMm <= 0 {
				return NewValidationError(
					"piece %q in room %q has non-positive dimensions (%gx%gx%gmm)",
					p.Name, room.Name, p.LengthMm, p.WidthMm, p.ThicknessMm)
			}
		}
	}
	return nil
}

// costLine resolves a delivery/templating cost: manual override if present,
// else the externally calculated cost, else zero.
func costLine(calculated, override decimal.NullDecimal) models.CostLine {
	final := decimal.Zero
	switch {
	case override.Valid:
		final = override.Decimal
	case calculated.Valid:
		final = calculated.Decimal
	}
	return models.CostLine{
		Calculated: calculated,
		Override:   override,
		Final:      final.Round(2),
	}
}

// appliedRuleLog lists, in resolution order, every rule that contributed a
// rate override or a discount, with a human-readable effect string.
func appliedRuleLog(rules []resolvedRule, effects map[uuid.UUID][]string) []models.AppliedRule {
	log := []models.AppliedRule{}
	for _, rr := range rules {
		if eff := effects[rr.rule.ID]; len(eff) > 0 {
			log = append(log, models.AppliedRule{
				RuleID: rr.rule.ID,
				Name:   rr.rule.Name,
				Effect: strings.Join(eff, "; "),
			})
		}
	}
	return log
}
