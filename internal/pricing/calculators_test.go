package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stonequote/internal/config"
	"stonequote/internal/logger"
	"stonequote/internal/models"
)

func newRun(in *Input) *run {
	return &run{in: in, log: logger.NewNop(), warned: map[string]struct{}{}}
}

func TestEdgeThicknessBandSelection(t *testing.T) {
	quote := newQuote()
	in := newInput(quote)
	quartz := addMaterial(in, "Quartz", "100.00")
	edge := addEdgeType(in, "Bullnose", "45.00")
	edge.Rate20mm = nd("40.00")
	edge.Rate40mm = nd("60.00")

	// 1m edges on a 20mm and a 40mm piece aggregate separately per band.
	addPiece(quote, 1000, 500, 20, quartz.ID, withEdgeLeft(edge.ID))
	addPiece(quote, 1000, 500, 40, quartz.ID, withEdgeLeft(edge.ID))

	breakdown := newRun(in).calculateEdges(in.pieces(), newRateOverrides())
	require.Len(t, breakdown.Lines, 2)
	assertDec(t, "40.00", breakdown.Lines[0].Rate)
	assertDec(t, "60.00", breakdown.Lines[1].Rate)
	assertDec(t, "100.00", breakdown.Subtotal)
}

func TestEdgeBandRateFallsBackToBase(t *testing.T) {
	quote := newQuote()
	in := newInput(quote)
	quartz := addMaterial(in, "Quartz", "100.00")
	edge := addEdgeType(in, "Pencil Round", "35.00")
	edge.Rate20mm = nd("30.00")
	// No 40mm rate: thick pieces bill the base rate.

	addPiece(quote, 1000, 500, 40, quartz.ID, withEdgeLeft(edge.ID))

	breakdown := newRun(in).calculateEdges(in.pieces(), newRateOverrides())
	require.Len(t, breakdown.Lines, 1)
	assertDec(t, "35.00", breakdown.Lines[0].Rate)
}

func TestEdgeMinimumLengthClamp(t *testing.T) {
	quote := newQuote()
	in := newInput(quote)
	quartz := addMaterial(in, "Quartz", "100.00")
	edge := addEdgeType(in, "Mitred Waterfall", "100.00")
	edge.MinLengthM = nd("1.000")

	// 0.5lm billed as if it were the 1.0lm minimum.
	addPiece(quote, 500, 300, 20, quartz.ID, withEdgeLeft(edge.ID))

	breakdown := newRun(in).calculateEdges(in.pieces(), newRateOverrides())
	require.Len(t, breakdown.Lines, 1)
	assertDec(t, "1", breakdown.Lines[0].Quantity)
	assertDec(t, "100.00", breakdown.Lines[0].Amount)
}

func TestCutoutAggregationAndMinimumCharge(t *testing.T) {
	quote := newQuote()
	in := newInput(quote)
	quartz := addMaterial(in, "Quartz", "100.00")
	powerpoint := addCutoutType(in, "Powerpoint", "25.00")
	powerpoint.MinCharge = nd("60.00")
	sink := addCutoutType(in, "Undermount Sink", "220.00")

	addPiece(quote, 1000, 500, 20, quartz.ID, withCutout(powerpoint.ID, 1), withCutout(sink.ID, 1))
	addPiece(quote, 1000, 500, 20, quartz.ID, withCutout(powerpoint.ID, 1))

	breakdown := newRun(in).calculateCutouts(in.pieces(), newRateOverrides())
	require.Len(t, breakdown.Lines, 2)

	// Two powerpoints at $25 is $50, floored to the $60 minimum.
	assertDec(t, "2", breakdown.Lines[0].Quantity)
	assertDec(t, "60.00", breakdown.Lines[0].Amount)
	assertDec(t, "220.00", breakdown.Lines[1].Amount)
}

func TestServiceQuantityByUnit(t *testing.T) {
	quote := newQuote()
	in := newInput(quote)
	quartz := addMaterial(in, "Quartz", "100.00")
	pencil := addEdgeType(in, "Pencil Round", "35.00")

	in.ServiceRates = []models.ServiceRate{
		{ID: uuid.New(), Kind: models.ServiceCutting, Unit: models.UnitSquareMetre, Rate20mm: dec("18.00"), Rate40mm: dec("26.00"), IsActive: true},
		{ID: uuid.New(), Kind: models.ServicePolishing, Unit: models.UnitLinearMetre, Rate20mm: dec("12.00"), Rate40mm: dec("16.00"), IsActive: true},
		{ID: uuid.New(), Kind: models.ServiceInstallation, Unit: models.UnitPerPiece, Rate20mm: dec("55.00"), Rate40mm: dec("70.00"), IsActive: true},
	}

	// 2m2 piece with a 2lm polished edge.
	addPiece(quote, 2000, 1000, 20, quartz.ID, withEdgeLeft(pencil.ID))

	breakdown := newRun(in).calculateServices(in.pieces())
	require.Len(t, breakdown.Lines, 3)

	assertDec(t, "36.00", breakdown.Lines[0].Amount) // cutting: 2m2 x 18
	assertDec(t, "24.00", breakdown.Lines[1].Amount) // polishing: 2lm x 12
	assertDec(t, "55.00", breakdown.Lines[2].Amount) // installation: 1 piece
	assertDec(t, "115.00", breakdown.Subtotal)
}

func TestServiceMinimumChargeAndIdleServices(t *testing.T) {
	quote := newQuote()
	in := newInput(quote)
	quartz := addMaterial(in, "Quartz", "100.00")

	in.ServiceRates = []models.ServiceRate{
		{ID: uuid.New(), Kind: models.ServiceCutting, Unit: models.UnitSquareMetre, Rate20mm: dec("18.00"), Rate40mm: dec("26.00"), MinCharge: nd("75.00"), IsActive: true},
		// No edges assigned, so polishing has nothing to drive it and
		// must not bill its minimum charge.
		{ID: uuid.New(), Kind: models.ServicePolishing, Unit: models.UnitLinearMetre, Rate20mm: dec("12.00"), Rate40mm: dec("16.00"), MinCharge: nd("40.00"), IsActive: true},
	}

	// 1m2 x $18 = $18 raw, floored to $75.
	addPiece(quote, 1000, 1000, 20, quartz.ID)

	breakdown := newRun(in).calculateServices(in.pieces())
	require.Len(t, breakdown.Lines, 1)
	assert.Equal(t, models.ServiceCutting, breakdown.Lines[0].Name)
	assertDec(t, "75.00", breakdown.Lines[0].Amount)
}

func TestMaterialPerSlabPricing(t *testing.T) {
	quote := newQuote()
	in := newInput(quote)
	in.Settings.MaterialPricingBasis = config.BasisPerSlab

	quartz := addMaterial(in, "Quartz", "140.00")
	quartz.PricePerSlab = nd("850.00")
	in.SlabCounts[quartz.ID] = 3

	addPiece(quote, 3600, 650, 20, quartz.ID)
	addPiece(quote, 3600, 650, 20, quartz.ID)

	r := newRun(in)
	breakdown := r.calculateMaterials(in.pieces(), newRateOverrides())
	require.Len(t, breakdown.Lines, 1)
	assert.Equal(t, "slab", breakdown.Lines[0].Unit)
	assertDec(t, "3", breakdown.Lines[0].Quantity)
	assertDec(t, "2550.00", breakdown.Subtotal)
	assert.Empty(t, r.warnings)
}

func TestMaterialPerSlabFallsBackWithoutRun(t *testing.T) {
	quote := newQuote()
	in := newInput(quote)
	in.Settings.MaterialPricingBasis = config.BasisPerSlab

	quartz := addMaterial(in, "Quartz", "140.00")
	quartz.PricePerSlab = nd("850.00")

	addPiece(quote, 2000, 1000, 20, quartz.ID)

	r := newRun(in)
	breakdown := r.calculateMaterials(in.pieces(), newRateOverrides())
	require.Len(t, breakdown.Lines, 1)
	assert.Equal(t, "m2", breakdown.Lines[0].Unit)
	assertDec(t, "280.00", breakdown.Subtotal)
	require.Len(t, r.warnings, 1)
	assert.Contains(t, r.warnings[0], "no slab count")
}

func TestMaterialRateOverrideBeatsSlabPricing(t *testing.T) {
	quote := newQuote()
	in := newInput(quote)
	in.Settings.MaterialPricingBasis = config.BasisPerSlab

	quartz := addMaterial(in, "Quartz", "140.00")
	quartz.PricePerSlab = nd("850.00")
	in.SlabCounts[quartz.ID] = 3

	addPiece(quote, 2000, 1000, 20, quartz.ID)

	ov := newRateOverrides()
	ov.materials[quartz.ID] = dec("100.00")

	breakdown := newRun(in).calculateMaterials(in.pieces(), ov)
	require.Len(t, breakdown.Lines, 1)
	assert.Equal(t, "m2", breakdown.Lines[0].Unit)
	assert.True(t, breakdown.Lines[0].RuleRate)
	assertDec(t, "200.00", breakdown.Subtotal)
}

func TestFixedAmountAllDistributesProportionally(t *testing.T) {
	quote := newQuote()
	in := newInput(quote)
	quartz := addMaterial(in, "Quartz", "100.00")
	pencil := addEdgeType(in, "Pencil Round", "50.00")
	sink := addCutoutType(in, "Undermount Sink", "50.00")

	// materials 100, edges 50, cutouts 50.
	addPiece(quote, 1000, 1000, 20, quartz.ID, withEdgeLeft(pencil.ID), withCutout(sink.ID, 1))

	addRule(in, models.PricingRule{
		Name:            "Show special",
		AdjustmentType:  models.AdjustmentFixedAmount,
		AdjustmentValue: dec("40"),
		AppliesTo:       models.AppliesToAll,
	})

	result := calculate(t, in)

	assertDec(t, "20.00", result.Materials.Discount)
	assertDec(t, "10.00", result.Edges.Discount)
	assertDec(t, "10.00", result.Cutouts.Discount)
	assertDec(t, "160.00", result.Total)
}

func TestAllRuleSkipsAlreadyAdjustedCategories(t *testing.T) {
	quote := newQuote()
	in := newInput(quote)
	quartz := addMaterial(in, "Quartz", "100.00")
	pencil := addEdgeType(in, "Pencil Round", "50.00")
	customerID := quote.Customer.ID

	addPiece(quote, 1000, 1000, 20, quartz.ID, withEdgeLeft(pencil.ID))

	// Higher-priority rule takes materials; the blanket rule then only
	// touches edges and cutouts.
	addRule(in, models.PricingRule{
		Name:            "Material deal",
		CustomerID:      &customerID,
		AdjustmentType:  models.AdjustmentPercentage,
		AdjustmentValue: dec("50"),
		AppliesTo:       models.AppliesToMaterials,
	})
	addRule(in, models.PricingRule{
		Name:            "Blanket 10%",
		AdjustmentType:  models.AdjustmentPercentage,
		AdjustmentValue: dec("10"),
		AppliesTo:       models.AppliesToAll,
	})

	result := calculate(t, in)

	assertDec(t, "50.00", result.Materials.Discount) // 50%, not 50%+10%
	assertDec(t, "5.00", result.Edges.Discount)      // 10% of 50
	assertDec(t, "50.00", result.Materials.Total)
	assertDec(t, "45.00", result.Edges.Total)
}

func TestEdgeRateOverrideFirstWins(t *testing.T) {
	quote := newQuote()
	in := newInput(quote)
	quartz := addMaterial(in, "Quartz", "100.00")
	pencil := addEdgeType(in, "Pencil Round", "35.00")
	customerID := quote.Customer.ID

	addPiece(quote, 1000, 1000, 20, quartz.ID, withEdgeLeft(pencil.ID))

	addRule(in, models.PricingRule{
		Name:            "Negotiated edges",
		CustomerID:      &customerID,
		AdjustmentType:  models.AdjustmentPercentage,
		AdjustmentValue: dec("0"),
		AppliesTo:       models.AppliesToEdges,
		RateOverrides:   []models.RateOverride{edgeOverride(pencil.ID, "25.00")},
	})
	addRule(in, models.PricingRule{
		Name:            "Default edge promo",
		AdjustmentType:  models.AdjustmentPercentage,
		AdjustmentValue: dec("0"),
		AppliesTo:       models.AppliesToEdges,
		RateOverrides:   []models.RateOverride{edgeOverride(pencil.ID, "30.00")},
	})

	result := calculate(t, in)

	require.Len(t, result.Edges.Lines, 1)
	assertDec(t, "25.00", result.Edges.Lines[0].Rate)
	assertDec(t, "25.00", result.Edges.Total)
}
