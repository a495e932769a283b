package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stonequote/internal/models"
)

type QuoteRepository interface {
	GetByID(id uuid.UUID) (*models.Quote, error)
	GetWithGraph(id uuid.UUID) (*models.Quote, error)
	Update(quote *models.Quote) error
	UpdateCalculation(id uuid.UUID, breakdownJSON string, calculatedAt time.Time) error
}

type quoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) GetByID(id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetWithGraph loads a quote with its customer classification, price book,
// and full room/piece/cutout graph in display order.
func (r *quoteRepository) GetWithGraph(id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.
		Preload("Customer").
		Preload("Customer.ClientType").
		Preload("Customer.ClientTier").
		Preload("PriceBook").
		Preload("Rooms", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Preload("Rooms.Pieces", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Preload("Rooms.Pieces.Cutouts").
		First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) Update(quote *models.Quote) error {
	return r.db.Save(quote).Error
}

func (r *quoteRepository) UpdateCalculation(id uuid.UUID, breakdownJSON string, calculatedAt time.Time) error {
	return r.db.Model(&models.Quote{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"calculation_json": breakdownJSON,
			"calculated_at":    calculatedAt,
		}).Error
}
