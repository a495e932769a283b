package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stonequote/internal/models"
)

// OptimizerRepository reads the output of the external slab nesting
// optimizer. Only the latest run per quote matters for pricing.
type OptimizerRepository interface {
	// GetLatestSlabCounts returns the latest run's slab count per material,
	// or an empty map when no run exists for the quote.
	GetLatestSlabCounts(quoteID uuid.UUID) (map[uuid.UUID]int, error)
}

type optimizerRepository struct {
	db *gorm.DB
}

func NewOptimizerRepository(db *gorm.DB) OptimizerRepository {
	return &optimizerRepository{db: db}
}

func (r *optimizerRepository) GetLatestSlabCounts(quoteID uuid.UUID) (map[uuid.UUID]int, error) {
	var run models.OptimizationRun
	err := r.db.
		Preload("Slabs").
		Where("quote_id = ?", quoteID).
		Order("created_at DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return map[uuid.UUID]int{}, nil
		}
		return nil, err
	}

	counts := make(map[uuid.UUID]int, len(run.Slabs))
	for _, slab := range run.Slabs {
		counts[slab.MaterialID] = slab.SlabCount
	}
	return counts, nil
}
