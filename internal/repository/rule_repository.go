package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"stonequote/internal/models"
)

type RuleRepository interface {
	// GetCandidateRules returns, in one query, every active rule that could
	// apply to a customer: default-scope rules plus those matching the
	// customer id, client type, or client tier. Rate overrides preloaded.
	GetCandidateRules(customerID uuid.UUID, clientTypeID, clientTierID *uuid.UUID) ([]models.PricingRule, error)
	GetPriceBook(id uuid.UUID) (*models.PriceBook, error)
}

type ruleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) GetCandidateRules(customerID uuid.UUID, clientTypeID, clientTierID *uuid.UUID) ([]models.PricingRule, error) {
	query := r.db.Preload("RateOverrides").Where("is_active = ?", true)

	scope := r.db.
		Where("customer_id IS NULL AND client_type_id IS NULL AND client_tier_id IS NULL").
		Or("customer_id = ?", customerID)
	if clientTypeID != nil {
		scope = scope.Or("client_type_id = ?", *clientTypeID)
	}
	if clientTierID != nil {
		scope = scope.Or("client_tier_id = ?", *clientTierID)
	}

	var rules []models.PricingRule
	err := query.Where(scope).Order("created_at ASC").Find(&rules).Error
	return rules, err
}

func (r *ruleRepository) GetPriceBook(id uuid.UUID) (*models.PriceBook, error) {
	var book models.PriceBook
	err := r.db.
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Entries.PricingRule").
		Preload("Entries.PricingRule.RateOverrides").
		First(&book, "id = ? AND is_active = ?", id, true).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}
