package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stonequote/internal/models"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(databaseURL), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ClientType{},
		&models.ClientTier{},
		&models.Customer{},
		&models.Material{},
		&models.EdgeType{},
		&models.CutoutType{},
		&models.ServiceRate{},
		&models.PricingRule{},
		&models.RateOverride{},
		&models.PriceBook{},
		&models.PriceBookRule{},
		&models.Quote{},
		&models.Room{},
		&models.Piece{},
		&models.PieceCutout{},
		&models.OptimizationRun{},
		&models.SlabAllocation{},
	)
}
