package repository

import (
	"gorm.io/gorm"

	"stonequote/internal/models"
)

type CatalogRepository interface {
	GetActiveMaterials() ([]models.Material, error)
	GetActiveEdgeTypes() ([]models.EdgeType, error)
	GetActiveCutoutTypes() ([]models.CutoutType, error)
	GetActiveServiceRates() ([]models.ServiceRate, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetActiveMaterials() ([]models.Material, error) {
	var materials []models.Material
	err := r.db.Where("is_active = ?", true).Find(&materials).Error
	return materials, err
}

func (r *catalogRepository) GetActiveEdgeTypes() ([]models.EdgeType, error) {
	var edgeTypes []models.EdgeType
	err := r.db.Where("is_active = ?", true).Find(&edgeTypes).Error
	return edgeTypes, err
}

func (r *catalogRepository) GetActiveCutoutTypes() ([]models.CutoutType, error) {
	var cutoutTypes []models.CutoutType
	err := r.db.Where("is_active = ?", true).Find(&cutoutTypes).Error
	return cutoutTypes, err
}

func (r *catalogRepository) GetActiveServiceRates() ([]models.ServiceRate, error) {
	var serviceRates []models.ServiceRate
	err := r.db.Where("is_active = ?", true).Order("kind ASC").Find(&serviceRates).Error
	return serviceRates, err
}
