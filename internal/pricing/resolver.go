package pricing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stonequote/internal/models"
)

// ScopeKind enumerates rule scopes so the resolver's matching is exhaustive
// rather than spread over nullable columns.
type ScopeKind int

const (
	ScopeDefault ScopeKind = iota
	ScopeCustomer
	ScopeClientType
	ScopeClientTier
)

type RuleScope struct {
	Kind ScopeKind
	ID   uuid.UUID
}

// scopeOf derives the tagged scope from a rule's nullable columns. At most
// one scope column is set; customer wins if an inconsistent row carries more
// than one.
func scopeOf(rule *models.PricingRule) RuleScope {
	switch {
	case rule.CustomerID != nil:
		return RuleScope{Kind: ScopeCustomer, ID: *rule.CustomerID}
	case rule.ClientTierID != nil:
		return RuleScope{Kind: ScopeClientTier, ID: *rule.ClientTierID}
	case rule.ClientTypeID != nil:
		return RuleScope{Kind: ScopeClientType, ID: *rule.ClientTypeID}
	default:
		return RuleScope{Kind: ScopeDefault}
	}
}

// Effective-priority floors per scope class. A rule's explicit priority is
// only ever raised to its floor, never reduced.
const (
	priorityCustomer   = 1000
	priorityClientType = 500
	priorityVolume     = 250
)

type resolvedRule struct {
	rule      *models.PricingRule
	effective int
}

// resolveRules builds the ordered applicable rule list for one quote:
// candidate selection, price-book merge by rule identity, quote-value
// filtering, and a stable sort by descending effective priority.
func (r *run) resolveRules(baseSubtotal decimal.Decimal) ([]resolvedRule, error) {
	customer := &r.in.Quote.Customer

	// Direct candidates: default scope or a scope matching this customer.
	var candidates []*models.PricingRule
	for i := range r.in.Rules {
		rule := &r.in.Rules[i]
		if !rule.IsActive {
			continue
		}
		if r.scopeMatches(scopeOf(rule), customer) {
			candidates = append(candidates, rule)
		}
	}

	// Price-book rules replace any directly matched rule with the same
	// identity and keep their book's sort order among themselves.
	if r.in.PriceBook != nil {
		entries := make([]models.PriceBookRule, len(r.in.PriceBook.Entries))
		copy(entries, r.in.PriceBook.Entries)
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].SortOrder < entries[j].SortOrder
		})

		inBook := make(map[uuid.UUID]bool, len(entries))
		for i := range entries {
			inBook[entries[i].PricingRuleID] = true
		}
		merged := candidates[:0]
		for _, rule := range candidates {
			if !inBook[rule.ID] {
				merged = append(merged, rule)
			}
		}
		candidates = merged
		for i := range entries {
			if entries[i].PricingRule.IsActive {
				candidates = append(candidates, &entries[i].PricingRule)
			}
		}
	}

	var resolved []resolvedRule
	for _, rule := range candidates {
		inWindow, err := quoteValueInWindow(rule, baseSubtotal)
		if err != nil {
			return nil, err
		}
		if !inWindow {
			continue
		}
		resolved = append(resolved, resolvedRule{
			rule:      rule,
			effective: effectivePriority(rule, customer),
		})
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		return resolved[i].effective > resolved[j].effective
	})
	return resolved, nil
}

func (r *run) scopeMatches(scope RuleScope, customer *models.Customer) bool {
	switch scope.Kind {
	case ScopeDefault:
		return true
	case ScopeCustomer:
		return scope.ID == customer.ID
	case ScopeClientType:
		return customer.ClientTypeID != nil && scope.ID == *customer.ClientTypeID
	case ScopeClientTier:
		return customer.ClientTierID != nil && scope.ID == *customer.ClientTierID
	default:
		return false
	}
}

func quoteValueInWindow(rule *models.PricingRule, subtotal decimal.Decimal) (bool, error) {
	if rule.MinQuoteValue.Valid && rule.MaxQuoteValue.Valid &&
		rule.MinQuoteValue.Decimal.GreaterThan(rule.MaxQuoteValue.Decimal) {
		return false, NewValidationError(
			"pricing rule %q has min quote value %s above max %s",
			rule.Name, rule.MinQuoteValue.Decimal, rule.MaxQuoteValue.Decimal)
	}
	if rule.MinQuoteValue.Valid && subtotal.LessThan(rule.MinQuoteValue.Decimal) {
		return false, nil
	}
	if rule.MaxQuoteValue.Valid && subtotal.GreaterThan(rule.MaxQuoteValue.Decimal) {
		return false, nil
	}
	return true, nil
}

// effectivePriority raises a rule's explicit priority to the floor for its
// scope class: customer-specific highest, then the client tier's own stored
// priority, then client type, then volume-threshold-only rules, then plain
// defaults.
func effectivePriority(rule *models.PricingRule, customer *models.Customer) int {
	floor := 0
	switch scopeOf(rule).Kind {
	case ScopeCustomer:
		floor = priorityCustomer
	case ScopeClientTier:
		if customer.ClientTier != nil {
			floor = customer.ClientTier.Priority
		}
	case ScopeClientType:
		floor = priorityClientType
	case ScopeDefault:
		if rule.MinQuoteValue.Valid || rule.MaxQuoteValue.Valid {
			floor = priorityVolume
		}
	}
	if rule.Priority > floor {
		return rule.Priority
	}
	return floor
}
