package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stonequote/internal/config"
	"stonequote/internal/logger"
	"stonequote/internal/models"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nd(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func newQuote() *models.Quote {
	customerID := uuid.New()
	return &models.Quote{
		ID:         uuid.New(),
		CustomerID: customerID,
		Customer:   models.Customer{ID: customerID, Name: "Test Customer"},
		Rooms:      []models.Room{{ID: uuid.New(), Name: "Kitchen"}},
	}
}

func newInput(quote *models.Quote) *Input {
	return &Input{
		Quote:       quote,
		Materials:   map[uuid.UUID]*models.Material{},
		EdgeTypes:   map[uuid.UUID]*models.EdgeType{},
		CutoutTypes: map[uuid.UUID]*models.CutoutType{},
		SlabCounts:  map[uuid.UUID]int{},
		Settings: config.PricingSettings{
			MaterialPricingBasis: config.BasisPerSquareMetre,
			Currency:             "USD",
		},
		Now: fixedNow,
	}
}

func addMaterial(in *Input, name, pricePerSqm string) *models.Material {
	m := &models.Material{ID: uuid.New(), Name: name, PricePerSqm: dec(pricePerSqm), IsActive: true}
	in.Materials[m.ID] = m
	return m
}

func addEdgeType(in *Input, name, baseRate string) *models.EdgeType {
	et := &models.EdgeType{ID: uuid.New(), Name: name, BaseRate: dec(baseRate), IsActive: true}
	in.EdgeTypes[et.ID] = et
	return et
}

func addCutoutType(in *Input, name, baseRate string) *models.CutoutType {
	ct := &models.CutoutType{ID: uuid.New(), Name: name, BaseRate: dec(baseRate), IsActive: true}
	in.CutoutTypes[ct.ID] = ct
	return ct
}

// addPiece appends a fully built piece to the quote's first room. Modifiers
// run before the append so returned pointers are never needed.
func addPiece(q *models.Quote, lengthMm, widthMm, thicknessMm float64, materialID uuid.UUID, mods ...func(*models.Piece)) {
	p := models.Piece{
		ID:          uuid.New(),
		RoomID:      q.Rooms[0].ID,
		Name:        "piece",
		LengthMm:    lengthMm,
		WidthMm:     widthMm,
		ThicknessMm: thicknessMm,
		MaterialID:  materialID,
	}
	for _, mod := range mods {
		mod(&p)
	}
	q.Rooms[0].Pieces = append(q.Rooms[0].Pieces, p)
}

func withEdgeTop(id uuid.UUID) func(*models.Piece) {
	return func(p *models.Piece) { p.EdgeTopID = &id }
}

func withEdgeLeft(id uuid.UUID) func(*models.Piece) {
	return func(p *models.Piece) { p.EdgeLeftID = &id }
}

func withCutout(typeID uuid.UUID, qty int) func(*models.Piece) {
	return func(p *models.Piece) {
		p.Cutouts = append(p.Cutouts, models.PieceCutout{ID: uuid.New(), CutoutTypeID: typeID, Quantity: qty})
	}
}

func withOverrideCost(amount string) func(*models.Piece) {
	return func(p *models.Piece) { p.OverrideCost = nd(amount) }
}

func withTier(q *models.Quote, priority int) uuid.UUID {
	tierID := uuid.New()
	q.Customer.ClientTierID = &tierID
	q.Customer.ClientTier = &models.ClientTier{ID: tierID, Name: "tier 1", Priority: priority}
	return tierID
}

func addRule(in *Input, rule models.PricingRule) uuid.UUID {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	rule.IsActive = true
	if rule.AppliesTo == "" {
		rule.AppliesTo = models.AppliesToAll
	}
	in.Rules = append(in.Rules, rule)
	return rule.ID
}

func edgeOverride(edgeTypeID uuid.UUID, rate string) models.RateOverride {
	id := edgeTypeID
	return models.RateOverride{ID: uuid.New(), EdgeTypeID: &id, Rate: dec(rate)}
}

func materialOverride(materialID uuid.UUID, rate string) models.RateOverride {
	id := materialID
	return models.RateOverride{ID: uuid.New(), MaterialID: &id, Rate: dec(rate)}
}

func calculate(t *testing.T, in *Input) *models.CalculationResult {
	t.Helper()
	result, err := NewEngine(logger.NewNop()).Calculate(in)
	require.NoError(t, err)
	return result
}

func assertDec(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, actual.Equal(dec(expected)), "expected %s, got %s", expected, actual)
}
