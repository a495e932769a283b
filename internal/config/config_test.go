package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "dev", cfg.LogMode)
	assert.Equal(t, 1800, cfg.CacheTTL)
	assert.Equal(t, BasisPerSquareMetre, cfg.Pricing.MaterialPricingBasis)
	assert.Equal(t, "USD", cfg.Pricing.Currency)
	assert.Equal(t, 0.0, cfg.Pricing.TaxRate)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CACHE_TTL", "600")
	t.Setenv("MATERIAL_PRICING_BASIS", BasisPerSlab)
	t.Setenv("CURRENCY", "AUD")
	t.Setenv("TAX_RATE", "0.1")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 600, cfg.CacheTTL)
	assert.Equal(t, BasisPerSlab, cfg.Pricing.MaterialPricingBasis)
	assert.Equal(t, "AUD", cfg.Pricing.Currency)
	assert.Equal(t, 0.1, cfg.Pricing.TaxRate)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("TAX_RATE", "ten percent")

	cfg := Load()

	assert.Equal(t, 1800, cfg.CacheTTL)
	assert.Equal(t, 0.0, cfg.Pricing.TaxRate)
}
