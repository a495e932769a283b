package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stonequote/internal/config"
	"stonequote/internal/models"
)

var (
	mmPerMetre  = decimal.NewFromInt(1000)
	sqmmPerSqm  = decimal.NewFromInt(1_000_000)
	oneHundred  = decimal.NewFromInt(100)
)

// pieceArea returns the face area of a piece in square metres.
func pieceArea(p *models.Piece) decimal.Decimal {
	return decimal.NewFromFloat(p.LengthMm).
		Mul(decimal.NewFromFloat(p.WidthMm)).
		Div(sqmmPerSqm)
}

// thicknessBand maps a piece thickness to the rate band: pieces up to 20mm
// bill the 20mm rate, thicker pieces the 40mm rate.
func thicknessBand(thicknessMm float64) int {
	if thicknessMm <= 20 {
		return 20
	}
	return 40
}

// edgeLinearLength returns the billed linear metres of a piece's assigned
// edges. Top/bottom sides run along the width, left/right along the length;
// an unassigned side contributes nothing. Never the perimeter.
func edgeLinearLength(p *models.Piece) decimal.Decimal {
	widthM := decimal.NewFromFloat(p.WidthMm).Div(mmPerMetre)
	lengthM := decimal.NewFromFloat(p.LengthMm).Div(mmPerMetre)

	total := decimal.Zero
	if p.EdgeTopID != nil {
		total = total.Add(widthM)
	}
	if p.EdgeBottomID != nil {
		total = total.Add(widthM)
	}
	if p.EdgeLeftID != nil {
		total = total.Add(lengthM)
	}
	if p.EdgeRightID != nil {
		total = total.Add(lengthM)
	}
	return total
}

func finishBreakdown(lines []models.BreakdownLine) models.CategoryBreakdown {
	if lines == nil {
		lines = []models.BreakdownLine{}
	}
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Amount)
	}
	return models.CategoryBreakdown{
		Lines:    lines,
		Subtotal: subtotal,
		Discount: decimal.Zero,
		Total:    subtotal,
	}
}

// calculateMaterials bills piece areas against material rates. Pieces with a
// manual override bill their override cost outright and are excluded from
// area aggregation. Under per-slab pricing a material with a slab count from
// the latest optimizer run bills slabCount x pricePerSlab instead; a
// rule-driven rate override puts the material back on per-area billing at
// the overridden rate.
func (r *run) calculateMaterials(pieces []*models.Piece, ov rateOverrides) models.CategoryBreakdown {
	areas := make(map[uuid.UUID]decimal.Decimal)
	var order []uuid.UUID
	var overrideLines []models.BreakdownLine

	for _, p := range pieces {
		if p.OverrideCost.Valid {
			overrideLines = append(overrideLines, models.BreakdownLine{
				TypeID:     p.MaterialID,
				Name:       pieceLabel(p),
				Quantity:   pieceArea(p),
				Unit:       "m2",
				Rate:       decimal.Zero,
				Amount:     p.OverrideCost.Decimal.Round(2),
				Overridden: true,
			})
			continue
		}
		if _, seen := areas[p.MaterialID]; !seen {
			order = append(order, p.MaterialID)
		}
		areas[p.MaterialID] = areas[p.MaterialID].Add(pieceArea(p))
	}

	var lines []models.BreakdownLine
	for _, id := range order {
		area := areas[id]
		mat, ok := r.in.Materials[id]
		if !ok {
			r.warn("material %s not in catalog; billed at zero rate", id)
			lines = append(lines, models.BreakdownLine{
				TypeID:   id,
				Name:     "unknown material",
				Quantity: area,
				Unit:     "m2",
				Rate:     decimal.Zero,
				Amount:   decimal.Zero,
			})
			continue
		}

		overrideRate, hasOverride := ov.materials[id]

		if r.in.Settings.MaterialPricingBasis == config.BasisPerSlab && !hasOverride {
			if count, okCount := r.in.SlabCounts[id]; okCount && mat.PricePerSlab.Valid {
				qty := decimal.NewFromInt(int64(count))
				amount := qty.Mul(mat.PricePerSlab.Decimal).Round(2)
				lines = append(lines, models.BreakdownLine{
					TypeID:   id,
					Name:     mat.Name,
					Quantity: qty,
					Unit:     "slab",
					Rate:     mat.PricePerSlab.Decimal,
					Amount:   amount,
				})
				continue
			}
			if _, okCount := r.in.SlabCounts[id]; !okCount {
				r.warn("no slab count for material %q; falling back to per-area pricing", mat.Name)
			} else {
				r.warn("material %q has no per-slab price; falling back to per-area pricing", mat.Name)
			}
		}

		rate := mat.PricePerSqm
		if hasOverride {
			rate = overrideRate
		}
		lines = append(lines, models.BreakdownLine{
			TypeID:   id,
			Name:     mat.Name,
			Quantity: area,
			Unit:     "m2",
			Rate:     rate,
			Amount:   area.Mul(rate).Round(2),
			RuleRate: hasOverride,
		})
	}

	lines = append(lines, overrideLines...)
	return finishBreakdown(lines)
}

type edgeKey struct {
	id   uuid.UUID
	band int
}

// calculateEdges aggregates assigned edge lengths per (edge type, thickness
// band) across the whole quote, then bills each aggregate with minimum
// length and minimum charge floors.
func (r *run) calculateEdges(pieces []*models.Piece, ov rateOverrides) models.CategoryBreakdown {
	lengths := make(map[edgeKey]decimal.Decimal)
	var order []edgeKey

	add := func(id *uuid.UUID, band int, metres decimal.Decimal) {
		if id == nil {
			return
		}
		key := edgeKey{id: *id, band: band}
		if _, seen := lengths[key]; !seen {
			order = append(order, key)
		}
		lengths[key] = lengths[key].Add(metres)
	}

	for _, p := range pieces {
		band := thicknessBand(p.ThicknessMm)
		widthM := decimal.NewFromFloat(p.WidthMm).Div(mmPerMetre)
		lengthM := decimal.NewFromFloat(p.LengthMm).Div(mmPerMetre)
		add(p.EdgeTopID, band, widthM)
		add(p.EdgeBottomID, band, widthM)
		add(p.EdgeLeftID, band, lengthM)
		add(p.EdgeRightID, band, lengthM)
	}

	var lines []models.BreakdownLine
	for _, key := range order {
		length := lengths[key]
		et, ok := r.in.EdgeTypes[key.id]
		if !ok {
			r.warn("edge type %s not in catalog; billed at zero rate", key.id)
			lines = append(lines, models.BreakdownLine{
				TypeID:   key.id,
				Name:     "unknown edge type",
				Quantity: length,
				Unit:     "lm",
				Rate:     decimal.Zero,
				Amount:   decimal.Zero,
			})
			continue
		}

		rate, fromRule := edgeRate(et, key.band, ov)

		if et.MinLengthM.Valid && length.LessThan(et.MinLengthM.Decimal) {
			length = et.MinLengthM.Decimal
		}
		amount := length.Mul(rate).Round(2)
		if et.MinCharge.Valid && amount.LessThan(et.MinCharge.Decimal) {
			amount = et.MinCharge.Decimal.Round(2)
		}

		lines = append(lines, models.BreakdownLine{
			TypeID:   key.id,
			Name:     et.Name,
			Quantity: length,
			Unit:     "lm",
			Rate:     rate,
			Amount:   amount,
			RuleRate: fromRule,
		})
	}
	return finishBreakdown(lines)
}

// edgeRate picks the unit rate for an edge aggregate: a rule override wins
// outright, then the thickness-band rate, then the base rate.
func edgeRate(et *models.EdgeType, band int, ov rateOverrides) (decimal.Decimal, bool) {
	if rate, ok := ov.edges[et.ID]; ok {
		return rate, true
	}
	if band == 20 && et.Rate20mm.Valid {
		return et.Rate20mm.Decimal, false
	}
	if band == 40 && et.Rate40mm.Valid {
		return et.Rate40mm.Decimal, false
	}
	return et.BaseRate, false
}

// calculateCutouts aggregates cutout quantities per type across the quote.
func (r *run) calculateCutouts(pieces []*models.Piece, ov rateOverrides) models.CategoryBreakdown {
	quantities := make(map[uuid.UUID]int)
	var order []uuid.UUID

	for _, p := range pieces {
		for _, cutout := range p.Cutouts {
			if cutout.Quantity <= 0 {
				continue
			}
			if _, seen := quantities[cutout.CutoutTypeID]; !seen {
				order = append(order, cutout.CutoutTypeID)
			}
			quantities[cutout.CutoutTypeID] += cutout.Quantity
		}
	}

	var lines []models.BreakdownLine
	for _, id := range order {
		qty := decimal.NewFromInt(int64(quantities[id]))
		ct, ok := r.in.CutoutTypes[id]
		if !ok {
			r.warn("cutout type %s not in catalog; billed at zero rate", id)
			lines = append(lines, models.BreakdownLine{
				TypeID:   id,
				Name:     "unknown cutout type",
				Quantity: qty,
				Unit:     "ea",
				Rate:     decimal.Zero,
				Amount:   decimal.Zero,
			})
			continue
		}

		rate := ct.BaseRate
		fromRule := false
		if overrideRate, has := ov.cutouts[id]; has {
			rate = overrideRate
			fromRule = true
		}

		amount := qty.Mul(rate).Round(2)
		if ct.MinCharge.Valid && amount.LessThan(ct.MinCharge.Decimal) {
			amount = ct.MinCharge.Decimal.Round(2)
		}

		lines = append(lines, models.BreakdownLine{
			TypeID:   id,
			Name:     ct.Name,
			Quantity: qty,
			Unit:     "ea",
			Rate:     rate,
			Amount:   amount,
			RuleRate: fromRule,
		})
	}
	return finishBreakdown(lines)
}

// calculateServices bills each service rate over its driving quantity:
// square-metre services over piece areas, linear-metre services over
// assigned edge lengths, per-piece services per piece. Rate overrides and
// discounts never touch services.
func (r *run) calculateServices(pieces []*models.Piece) models.CategoryBreakdown {
	var lines []models.BreakdownLine

	for i := range r.in.ServiceRates {
		sr := &r.in.ServiceRates[i]

		total := decimal.Zero
		totalQty := decimal.Zero
		bandSeen := map[int]bool{}

		for _, p := range pieces {
			qty := serviceQuantity(sr.Unit, p)
			if qty.IsZero() {
				continue
			}
			band := thicknessBand(p.ThicknessMm)
			bandSeen[band] = true
			rate := sr.Rate20mm
			if band == 40 {
				rate = sr.Rate40mm
			}
			total = total.Add(qty.Mul(rate))
			totalQty = totalQty.Add(qty)
		}

		// A service with nothing driving it is simply absent; minimum
		// charges only floor work that exists.
		if totalQty.IsZero() {
			continue
		}

		amount := total.Round(2)
		if sr.MinCharge.Valid && amount.LessThan(sr.MinCharge.Decimal) {
			amount = sr.MinCharge.Decimal.Round(2)
		}

		lines = append(lines, models.BreakdownLine{
			TypeID:   sr.ID,
			Name:     sr.Kind,
			Quantity: totalQty,
			Unit:     sr.Unit,
			Rate:     displayServiceRate(sr, bandSeen),
			Amount:   amount,
		})
	}
	return finishBreakdown(lines)
}

func serviceQuantity(unit string, p *models.Piece) decimal.Decimal {
	switch unit {
	case models.UnitSquareMetre:
		return pieceArea(p)
	case models.UnitLinearMetre:
		return edgeLinearLength(p)
	case models.UnitPerPiece:
		return decimal.NewFromInt(1)
	default:
		return decimal.Zero
	}
}

// displayServiceRate is informational only: when pieces span both thickness
// bands no single unit rate applies, so the line shows zero.
func displayServiceRate(sr *models.ServiceRate, bandSeen map[int]bool) decimal.Decimal {
	if bandSeen[20] && bandSeen[40] {
		return decimal.Zero
	}
	if bandSeen[40] {
		return sr.Rate40mm
	}
	return sr.Rate20mm
}

func pieceLabel(p *models.Piece) string {
	if p.Name != "" {
		return p.Name + " (manual price)"
	}
	return "piece (manual price)"
}
