package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stonequote/internal/config"
	"stonequote/internal/logger"
	"stonequote/internal/models"
	"stonequote/internal/pricing"
	"stonequote/internal/redis"
	"stonequote/internal/repository"
)

type QuoteService interface {
	// CalculateQuotePrice runs the engine for a quote. A pinned price book
	// in opts produces a preview: the result is returned but neither cached
	// nor persisted on the quote row.
	CalculateQuotePrice(quoteID string, opts *CalculateOptions) (*models.CalculationResult, error)
	// GetCalculation returns the last stored result: redis cache first,
	// then the quote row's persisted breakdown.
	GetCalculation(quoteID string) (*models.CalculationResult, error)
}

// CalculateOptions pins calculation inputs for preview purposes.
type CalculateOptions struct {
	PriceBookID *uuid.UUID
}

type quoteService struct {
	quoteRepo     repository.QuoteRepository
	catalogRepo   repository.CatalogRepository
	ruleRepo      repository.RuleRepository
	optimizerRepo repository.OptimizerRepository
	cache         *redis.Client
	engine        *pricing.Engine
	cfg           *config.Config
	log           *logger.Logger
}

func NewQuoteService(
	quoteRepo repository.QuoteRepository,
	catalogRepo repository.CatalogRepository,
	ruleRepo repository.RuleRepository,
	optimizerRepo repository.OptimizerRepository,
	cache *redis.Client,
	engine *pricing.Engine,
	cfg *config.Config,
	baseLog *logger.Logger,
) QuoteService {
	return &quoteService{
		quoteRepo:     quoteRepo,
		catalogRepo:   catalogRepo,
		ruleRepo:      ruleRepo,
		optimizerRepo: optimizerRepo,
		cache:         cache,
		engine:        engine,
		cfg:           cfg,
		log:           baseLog.With("service", "QuoteService"),
	}
}

func (s *quoteService) CalculateQuotePrice(quoteID string, opts *CalculateOptions) (*models.CalculationResult, error) {
	id, err := uuid.Parse(quoteID)
	if err != nil {
		return nil, pricing.NewValidationError("invalid quote id %q", quoteID)
	}

	input, err := s.buildInput(id, opts)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Calculate(input)
	if err != nil {
		return nil, err
	}

	preview := opts != nil && opts.PriceBookID != nil
	if preview {
		return result, nil
	}

	if err := s.storeResult(result); err != nil {
		// The calculation itself succeeded; a storage failure only loses
		// the cached copy.
		s.log.Error("failed to store calculation result", "quote_id", quoteID, "error", err)
	}
	return result, nil
}

// buildInput fetches everything the engine needs in one up-front pass so the
// whole calculation runs against a single point-in-time snapshot.
func (s *quoteService) buildInput(id uuid.UUID, opts *CalculateOptions) (*pricing.Input, error) {
	quote, err := s.quoteRepo.GetWithGraph(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pricing.NewNotFoundError("quote", id.String())
		}
		return nil, fmt.Errorf("failed to load quote: %w", err)
	}

	materials, err := s.catalogRepo.GetActiveMaterials()
	if err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}
	edgeTypes, err := s.catalogRepo.GetActiveEdgeTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to load edge types: %w", err)
	}
	cutoutTypes, err := s.catalogRepo.GetActiveCutoutTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to load cutout types: %w", err)
	}
	serviceRates, err := s.catalogRepo.GetActiveServiceRates()
	if err != nil {
		return nil, fmt.Errorf("failed to load service rates: %w", err)
	}

	rules, err := s.ruleRepo.GetCandidateRules(quote.CustomerID, quote.Customer.ClientTypeID, quote.Customer.ClientTierID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing rules: %w", err)
	}

	priceBook, err := s.resolvePriceBook(quote, opts)
	if err != nil {
		return nil, err
	}

	slabCounts := map[uuid.UUID]int{}
	if s.cfg.Pricing.MaterialPricingBasis == config.BasisPerSlab {
		slabCounts, err = s.optimizerRepo.GetLatestSlabCounts(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load slab counts: %w", err)
		}
	}

	materialMap := make(map[uuid.UUID]*models.Material, len(materials))
	for i := range materials {
		materialMap[materials[i].ID] = &materials[i]
	}
	edgeTypeMap := make(map[uuid.UUID]*models.EdgeType, len(edgeTypes))
	for i := range edgeTypes {
		edgeTypeMap[edgeTypes[i].ID] = &edgeTypes[i]
	}
	cutoutTypeMap := make(map[uuid.UUID]*models.CutoutType, len(cutoutTypes))
	for i := range cutoutTypes {
		cutoutTypeMap[cutoutTypes[i].ID] = &cutoutTypes[i]
	}

	return &pricing.Input{
		Quote:        quote,
		Materials:    materialMap,
		EdgeTypes:    edgeTypeMap,
		CutoutTypes:  cutoutTypeMap,
		ServiceRates: serviceRates,
		Rules:        rules,
		PriceBook:    priceBook,
		SlabCounts:   slabCounts,
		Settings:     s.cfg.Pricing,
	}, nil
}

// resolvePriceBook picks the price book in precedence order: pinned preview
// book, then the quote's assignment, then the customer's default.
func (s *quoteService) resolvePriceBook(quote *models.Quote, opts *CalculateOptions) (*models.PriceBook, error) {
	var bookID *uuid.UUID
	switch {
	case opts != nil && opts.PriceBookID != nil:
		bookID = opts.PriceBookID
	case quote.PriceBookID != nil:
		bookID = quote.PriceBookID
	case quote.Customer.PriceBookID != nil:
		bookID = quote.Customer.PriceBookID
	default:
		return nil, nil
	}

	book, err := s.ruleRepo.GetPriceBook(*bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pricing.NewNotFoundError("price book", bookID.String())
		}
		return nil, fmt.Errorf("failed to load price book: %w", err)
	}
	return book, nil
}

func (s *quoteService) storeResult(result *models.CalculationResult) error {
	jsonData, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal calculation result: %w", err)
	}

	quoteID := result.QuoteID.String()
	if err := s.quoteRepo.UpdateCalculation(result.QuoteID, string(jsonData), result.CalculatedAt); err != nil {
		return fmt.Errorf("failed to persist breakdown on quote: %w", err)
	}

	ttl := time.Duration(s.cfg.CacheTTL) * time.Second
	if err := s.cache.SetCalculation(quoteID, result, ttl); err != nil {
		return fmt.Errorf("failed to cache calculation: %w", err)
	}
	return nil
}

func (s *quoteService) GetCalculation(quoteID string) (*models.CalculationResult, error) {
	id, err := uuid.Parse(quoteID)
	if err != nil {
		return nil, pricing.NewValidationError("invalid quote id %q", quoteID)
	}

	cached, err := s.cache.GetCalculation(quoteID)
	if err != nil {
		s.log.Warn("calculation cache read failed", "quote_id", quoteID, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	quote, err := s.quoteRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pricing.NewNotFoundError("quote", quoteID)
		}
		return nil, fmt.Errorf("failed to load quote: %w", err)
	}
	if quote.CalculationJSON == "" {
		return nil, pricing.NewNotFoundError("calculation for quote", quoteID)
	}

	var result models.CalculationResult
	if err := json.Unmarshal([]byte(quote.CalculationJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored breakdown: %w", err)
	}
	return &result, nil
}
