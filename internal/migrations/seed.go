package migrations

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stonequote/internal/logger"
	"stonequote/internal/models"
)

// SeedCatalog inserts a starter catalog into an empty database so a fresh
// install can price quotes immediately. Existing catalog data is left alone.
func SeedCatalog(db *gorm.DB, log *logger.Logger) error {
	var count int64
	if err := db.Model(&models.Material{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Info("seeding default catalog")

	materials := []models.Material{
		{Name: "Engineered Quartz 20mm", PricePerSqm: dec("140.00"), PricePerSlab: nullDec("850.00"), IsActive: true},
		{Name: "Granite 30mm", PricePerSqm: dec("220.00"), PricePerSlab: nullDec("1400.00"), IsActive: true},
		{Name: "Porcelain 12mm", PricePerSqm: dec("310.00"), IsActive: true},
	}
	if err := db.Create(&materials).Error; err != nil {
		return err
	}

	edgeTypes := []models.EdgeType{
		{Name: "Pencil Round", Category: "standard", BaseRate: dec("35.00"), IsActive: true},
		{Name: "Bullnose", Category: "standard", BaseRate: dec("45.00"), Rate40mm: nullDec("60.00"), MinCharge: nullDec("50.00"), IsActive: true},
		{Name: "Mitred Waterfall", Category: "mitred", BaseRate: dec("120.00"), MinLengthM: nullDec("1.000"), MinCharge: nullDec("150.00"), IsActive: true},
	}
	if err := db.Create(&edgeTypes).Error; err != nil {
		return err
	}

	cutoutTypes := []models.CutoutType{
		{Name: "Undermount Sink", Category: "sink", BaseRate: dec("220.00"), IsActive: true},
		{Name: "Cooktop", Category: "cooktop", BaseRate: dec("180.00"), IsActive: true},
		{Name: "Powerpoint", Category: "powerpoint", BaseRate: dec("25.00"), MinCharge: nullDec("50.00"), IsActive: true},
	}
	if err := db.Create(&cutoutTypes).Error; err != nil {
		return err
	}

	serviceRates := []models.ServiceRate{
		{Kind: models.ServiceCutting, Unit: models.UnitSquareMetre, Rate20mm: dec("18.00"), Rate40mm: dec("26.00"), IsActive: true},
		{Kind: models.ServicePolishing, Unit: models.UnitLinearMetre, Rate20mm: dec("12.00"), Rate40mm: dec("16.00"), MinCharge: nullDec("40.00"), IsActive: true},
		{Kind: models.ServiceInstallation, Unit: models.UnitSquareMetre, Rate20mm: dec("55.00"), Rate40mm: dec("70.00"), MinCharge: nullDec("200.00"), IsActive: true},
	}
	if err := db.Create(&serviceRates).Error; err != nil {
		return err
	}

	clientTypes := []models.ClientType{
		{Name: "retail"},
		{Name: "trade"},
	}
	if err := db.Create(&clientTypes).Error; err != nil {
		return err
	}

	clientTiers := []models.ClientTier{
		{Name: "tier 1", Priority: 800},
		{Name: "tier 2", Priority: 700},
	}
	if err := db.Create(&clientTiers).Error; err != nil {
		return err
	}

	log.Info("default catalog seeded",
		"materials", len(materials),
		"edge_types", len(edgeTypes),
		"cutout_types", len(cutoutTypes),
		"service_rates", len(serviceRates),
	)
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}
