package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stonequote/internal/config"
	"stonequote/internal/models"
)

// Input is the point-in-time snapshot a calculation runs against. The caller
// fetches everything up front so both calculator passes and both applicator
// passes agree; the engine never queries mid-calculation.
type Input struct {
	Quote *models.Quote

	Materials   map[uuid.UUID]*models.Material
	EdgeTypes   map[uuid.UUID]*models.EdgeType
	CutoutTypes map[uuid.UUID]*models.CutoutType
	ServiceRates []models.ServiceRate

	// Candidate rules: default scope plus those matching the quote's
	// customer, client type, or client tier. Rate overrides preloaded.
	Rules []models.PricingRule

	// Resolved price book (pinned, quote-assigned, or customer default).
	// Nil when none applies.
	PriceBook *models.PriceBook

	// Latest optimizer run's slab counts per material. Empty when no run
	// exists for the quote.
	SlabCounts map[uuid.UUID]int

	Settings config.PricingSettings

	// Timestamp stamped onto the result. The zero value means "now";
	// callers pin it for reproducible output.
	Now time.Time
}

// rateOverrides are the per-entity unit rates resolved from the ordered rule
// list in pass A. A nil lookup means the catalog rate stands.
type rateOverrides struct {
	materials map[uuid.UUID]decimal.Decimal
	edges     map[uuid.UUID]decimal.Decimal
	cutouts   map[uuid.UUID]decimal.Decimal
}

func newRateOverrides() rateOverrides {
	return rateOverrides{
		materials: make(map[uuid.UUID]decimal.Decimal),
		edges:     make(map[uuid.UUID]decimal.Decimal),
		cutouts:   make(map[uuid.UUID]decimal.Decimal),
	}
}

// pieces flattens the quote's rooms into one ordered piece list.
func (in *Input) pieces() []*models.Piece {
	var out []*models.Piece
	for i := range in.Quote.Rooms {
		room := &in.Quote.Rooms[i]
		for j := range room.Pieces {
			out = append(out, &room.Pieces[j])
		}
	}
	return out
}
