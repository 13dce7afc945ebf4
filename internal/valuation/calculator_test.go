package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jdoyle7/stock-valuation-system/internal/config"
	"github.com/jdoyle7/stock-valuation-system/internal/models"
)

func newTestCalculator() *Calculator {
	return New(config.DefaultValuationConfig(), config.SectorPERatios())
}

func record(mutate func(*models.StockRecord)) *models.StockRecord {
	rec := &models.StockRecord{
		Ticker:       "TEST",
		CurrentPrice: 120.0,
		FCFPerShare:  8.0,
		EPS:          5.0,
		BookValue:    20.0,
		Sector:       "Technology",
		GrowthRate:   0.06,
		PERatio:      18.0,
		MarketCap:    50_000_000_000,
	}
	if mutate != nil {
		mutate(rec)
	}
	return rec
}

func TestValuate(t *testing.T) {
	c := newTestCalculator()

	t.Run("fair value never falls below book value", func(t *testing.T) {
		for _, rec := range []*models.StockRecord{
			record(nil),
			record(func(r *models.StockRecord) { r.BookValue = 500.0 }),
			record(func(r *models.StockRecord) { r.FCFPerShare = 0.1; r.EPS = 0.1; r.BookValue = 90.0 }),
		} {
			res := c.Valuate(rec)
			assert.GreaterOrEqual(t, res.FairValue, rec.BookValue, "record %+v", rec)
		}
	})

	t.Run("status follows the price comparison exactly", func(t *testing.T) {
		res := c.Valuate(record(func(r *models.StockRecord) { r.CurrentPrice = 1.0 }))
		assert.Equal(t, models.StatusUnderpriced, res.Status)
		assert.Less(t, res.CurrentPrice, res.FairValue)

		res = c.Valuate(record(func(r *models.StockRecord) { r.CurrentPrice = 100_000.0 }))
		assert.Equal(t, models.StatusOverpriced, res.Status)
		assert.GreaterOrEqual(t, res.CurrentPrice, res.FairValue)
	})

	t.Run("price difference and upside are consistent", func(t *testing.T) {
		res := c.Valuate(record(nil))
		assert.InDelta(t, res.FairValue-res.CurrentPrice, res.PriceDifference, 1e-9)
		assert.InDelta(t, res.PriceDifference/res.CurrentPrice*100, res.UpsidePercentage, 1e-9)
	})

	t.Run("blend weights the two methods 60/40", func(t *testing.T) {
		rec := record(func(r *models.StockRecord) { r.BookValue = 0 })
		res := c.Valuate(rec)
		assert.InDelta(t, 0.6*res.DCFValue+0.4*res.CompsValue, res.FairValue, 1e-9)
	})

	t.Run("synthetic flag is carried through", func(t *testing.T) {
		res := c.Valuate(record(func(r *models.StockRecord) { r.Synthetic = true }))
		assert.True(t, res.Synthetic)
	})
}

func TestDCFValue(t *testing.T) {
	c := newTestCalculator()

	t.Run("matches the hand-computed projection", func(t *testing.T) {
		rec := record(func(r *models.StockRecord) { r.BookValue = 0 })

		var pv, finalFCF float64
		for year := 1; year <= 5; year++ {
			fcf := 8.0 * math.Pow(1.06, float64(year))
			pv += fcf / math.Pow(1.12, float64(year))
			finalFCF = fcf
		}
		terminal := finalFCF * 1.08 / (0.12 - 0.08)
		pv += terminal / math.Pow(1.12, 5)

		assert.InDelta(t, pv, c.dcfValue(rec), 1e-9)
	})

	t.Run("negative FCF falls back and still respects the floor", func(t *testing.T) {
		rec := record(func(r *models.StockRecord) { r.FCFPerShare = -5.0; r.BookValue = 50.0 })
		got := c.dcfValue(rec)
		assert.GreaterOrEqual(t, got, 50.0)
	})

	t.Run("growth above the cap is clamped", func(t *testing.T) {
		capped := c.dcfValue(record(func(r *models.StockRecord) { r.GrowthRate = 0.08; r.BookValue = 0 }))
		wild := c.dcfValue(record(func(r *models.StockRecord) { r.GrowthRate = 0.50; r.BookValue = 0 }))
		assert.InDelta(t, capped, wild, 1e-9)
	})
}

func TestCompsValue(t *testing.T) {
	c := newTestCalculator()

	t.Run("eps times the record P/E", func(t *testing.T) {
		rec := record(func(r *models.StockRecord) { r.BookValue = 0 })
		assert.InDelta(t, 5.0*18.0, c.compsValue(rec), 1e-9)
	})

	t.Run("missing P/E recomputes from the sector table", func(t *testing.T) {
		rec := record(func(r *models.StockRecord) { r.PERatio = 0; r.BookValue = 0 })
		assert.InDelta(t, 5.0*22.0, c.compsValue(rec), 1e-9) // Technology default

		rec.Sector = "No Such Sector"
		assert.InDelta(t, 5.0*18.0, c.compsValue(rec), 1e-9) // Default entry
	})

	t.Run("negative EPS uses the conservative fallback", func(t *testing.T) {
		rec := record(func(r *models.StockRecord) { r.EPS = -3.0; r.BookValue = 0 })
		assert.InDelta(t, 1.0*18.0, c.compsValue(rec), 1e-9)
	})

	t.Run("book value floors the multiple", func(t *testing.T) {
		rec := record(func(r *models.StockRecord) { r.EPS = 0.5; r.BookValue = 60.0 })
		assert.Equal(t, 60.0, c.compsValue(rec))
	})
}
