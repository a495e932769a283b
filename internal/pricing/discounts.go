package pricing

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stonequote/internal/models"
)

// collectRateOverrides walks the ordered rule list and records linked rate
// overrides into per-entity maps. The first rule to override an entity wins;
// later rules for that entity are ignored. Returns the override maps plus
// the per-rule effect strings for the applied-rule log.
func (r *run) collectRateOverrides(rules []resolvedRule) (rateOverrides, map[uuid.UUID][]string) {
	ov := newRateOverrides()
	effects := make(map[uuid.UUID][]string)

	record := func(m map[uuid.UUID]decimal.Decimal, id uuid.UUID, rate decimal.Decimal, rule *models.PricingRule, label, unit string) {
		if _, taken := m[id]; taken {
			return
		}
		m[id] = rate
		effects[rule.ID] = append(effects[rule.ID],
			fmt.Sprintf("%s rate override: %s at %s/%s", label, r.entityName(id), rate.StringFixed(2), unit))
	}

	for _, rr := range rules {
		for i := range rr.rule.RateOverrides {
			o := &rr.rule.RateOverrides[i]
			switch {
			case o.EdgeTypeID != nil:
				record(ov.edges, *o.EdgeTypeID, o.Rate, rr.rule, "edge", "lm")
			case o.CutoutTypeID != nil:
				record(ov.cutouts, *o.CutoutTypeID, o.Rate, rr.rule, "cutout", "ea")
			case o.MaterialID != nil:
				record(ov.materials, *o.MaterialID, o.Rate, rr.rule, "material", "m2")
			}
		}
	}
	return ov, effects
}

func (r *run) entityName(id uuid.UUID) string {
	if et, ok := r.in.EdgeTypes[id]; ok {
		return et.Name
	}
	if ct, ok := r.in.CutoutTypes[id]; ok {
		return ct.Name
	}
	if m, ok := r.in.Materials[id]; ok {
		return m.Name
	}
	return id.String()
}

// applyDiscounts walks the ordered rule list a second time and adjusts the
// three discountable categories. Each category is adjusted at most once: a
// single-category rule is skipped when a higher-priority rule already
// touched its category, and an all-categories rule only affects categories
// still untouched. Totals floor at zero.
func (r *run) applyDiscounts(
	rules []resolvedRule,
	materials, edges, cutouts *models.CategoryBreakdown,
	effects map[uuid.UUID][]string,
) []models.DiscountLine {

	categories := map[string]*models.CategoryBreakdown{
		models.AppliesToMaterials: materials,
		models.AppliesToEdges:     edges,
		models.AppliesToCutouts:   cutouts,
	}
	categoryOrder := []string{models.AppliesToMaterials, models.AppliesToEdges, models.AppliesToCutouts}
	adjusted := make(map[string]bool)
	discounts := []models.DiscountLine{}

	for _, rr := range rules {
		rule := rr.rule

		var targets []string
		if rule.AppliesTo == models.AppliesToAll {
			targets = categoryOrder
		} else if _, ok := categories[rule.AppliesTo]; ok {
			targets = []string{rule.AppliesTo}
		} else {
			continue
		}

		var open []string
		for _, name := range targets {
			if !adjusted[name] {
				open = append(open, name)
			}
		}
		if len(open) == 0 {
			continue
		}

		var touched []string
		switch rule.AdjustmentType {
		case models.AdjustmentPercentage:
			for _, name := range open {
				cat := categories[name]
				saving := cat.Subtotal.Mul(rule.AdjustmentValue).Div(oneHundred).Round(2)
				if applyCategoryDiscount(cat, saving) {
					adjusted[name] = true
					touched = append(touched, name)
					discounts = append(discounts, models.DiscountLine{
						RuleID:   rule.ID,
						RuleName: rule.Name,
						Category: name,
						Amount:   cat.Discount,
					})
				}
			}
			if len(touched) > 0 {
				effects[rule.ID] = append(effects[rule.ID],
					fmt.Sprintf("%s%% off %s", rule.AdjustmentValue.String(), strings.Join(touched, ", ")))
			}

		case models.AdjustmentFixedAmount:
			shares := splitFixedAmount(rule.AdjustmentValue, open, categories)
			for _, name := range open {
				cat := categories[name]
				if applyCategoryDiscount(cat, shares[name]) {
					adjusted[name] = true
					touched = append(touched, name)
					discounts = append(discounts, models.DiscountLine{
						RuleID:   rule.ID,
						RuleName: rule.Name,
						Category: name,
						Amount:   cat.Discount,
					})
				}
			}
			if len(touched) > 0 {
				effects[rule.ID] = append(effects[rule.ID],
					fmt.Sprintf("%s off %s", rule.AdjustmentValue.StringFixed(2), strings.Join(touched, ", ")))
			}
		}
	}
	return discounts
}

// applyCategoryDiscount subtracts a saving from a category, flooring the
// total at zero. The recorded discount is the actual reduction. Returns
// false when nothing changed.
func applyCategoryDiscount(cat *models.CategoryBreakdown, saving decimal.Decimal) bool {
	if saving.LessThanOrEqual(decimal.Zero) || cat.Subtotal.LessThanOrEqual(decimal.Zero) {
		return false
	}
	newTotal := cat.Subtotal.Sub(saving)
	if newTotal.IsNegative() {
		newTotal = decimal.Zero
	}
	cat.Discount = cat.Subtotal.Sub(newTotal)
	cat.Total = newTotal
	return true
}

// splitFixedAmount distributes a fixed-amount discount across the open
// categories proportionally to their share of the combined open subtotal.
// The last nonzero category absorbs rounding so the shares sum exactly.
func splitFixedAmount(amount decimal.Decimal, open []string, categories map[string]*models.CategoryBreakdown) map[string]decimal.Decimal {
	shares := make(map[string]decimal.Decimal, len(open))
	if len(open) == 1 {
		shares[open[0]] = amount
		return shares
	}

	pool := decimal.Zero
	last := -1
	for i, name := range open {
		sub := categories[name].Subtotal
		if sub.GreaterThan(decimal.Zero) {
			pool = pool.Add(sub)
			last = i
		}
	}
	if pool.LessThanOrEqual(decimal.Zero) {
		return shares
	}

	remaining := amount
	for i, name := range open {
		sub := categories[name].Subtotal
		if !sub.GreaterThan(decimal.Zero) {
			continue
		}
		if i == last {
			shares[name] = remaining
			break
		}
		share := amount.Mul(sub).Div(pool).Round(2)
		shares[name] = share
		remaining = remaining.Sub(share)
	}
	return shares
}
