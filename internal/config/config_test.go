package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		cfg := Load()
		require.NoError(t, cfg.Validate())
	})

	t.Run("rejects terminal growth at or above discount rate", func(t *testing.T) {
		cfg := Load()
		cfg.Valuation.DCF.TerminalGrowthRate = cfg.Valuation.DCF.DiscountRate
		assert.Error(t, cfg.Validate())

		cfg.Valuation.DCF.TerminalGrowthRate = cfg.Valuation.DCF.DiscountRate + 0.01
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects inverted P/E bounds", func(t *testing.T) {
		cfg := Load()
		cfg.Valuation.Comps.MinPERatio = 50
		cfg.Valuation.Comps.MaxPERatio = 40
		assert.Error(t, cfg.Validate())
	})

	t.Run("normalizes weights that do not sum to one", func(t *testing.T) {
		cfg := Load()
		cfg.Valuation.Weights.DCFWeight = 3
		cfg.Valuation.Weights.CompsWeight = 1
		require.NoError(t, cfg.Validate())
		assert.InDelta(t, 0.75, cfg.Valuation.Weights.DCFWeight, 1e-9)
		assert.InDelta(t, 0.25, cfg.Valuation.Weights.CompsWeight, 1e-9)
	})

	t.Run("rejects non-positive workers", func(t *testing.T) {
		cfg := Load()
		cfg.Engine.MaxWorkers = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestSectorPERatios(t *testing.T) {
	table := SectorPERatios()
	assert.Equal(t, 22.0, table["Technology"])
	assert.Equal(t, 10.0, table["Financial Services"])
	// every aggregation path leans on this entry existing
	assert.Equal(t, 18.0, table["Default"])
}
