// Package valuation computes the blended DCF/Comps fair value for a
// normalized stock record. The calculator is pure: given the same record
// and parameters it always produces the same result.
package valuation

import (
	"math"

	"github.com/jdoyle7/stock-valuation-system/internal/config"
	"github.com/jdoyle7/stock-valuation-system/internal/models"
)

// Conservative stand-ins for non-positive fundamentals
const (
	fallbackFCFPerShare = 2.0
	fallbackEPS         = 1.0
)

// Calculator produces ValuationResults from StockRecords
type Calculator struct {
	dcf      models.DCFParameters
	comps    models.CompsParameters
	weights  models.ValuationWeights
	sectorPE map[string]float64
}

// New creates a calculator from an explicit parameter set. sectorPE backs
// the Comps path when a record carries no P/E ratio.
func New(cfg config.ValuationConfig, sectorPE map[string]float64) *Calculator {
	return &Calculator{
		dcf:      cfg.DCF,
		comps:    cfg.Comps,
		weights:  cfg.Weights,
		sectorPE: sectorPE,
	}
}

// Valuate blends the DCF and Comps values, floors the result at book
// value, and classifies the stock against its market price.
func (c *Calculator) Valuate(rec *models.StockRecord) *models.ValuationResult {
	dcfValue := c.dcfValue(rec)
	compsValue := c.compsValue(rec)

	fairValue := dcfValue*c.weights.DCFWeight + compsValue*c.weights.CompsWeight
	fairValue = math.Max(fairValue, rec.BookValue)

	priceDifference := fairValue - rec.CurrentPrice
	upside := 0.0
	if rec.CurrentPrice > 0 {
		upside = priceDifference / rec.CurrentPrice * 100
	}

	status := models.StatusOverpriced
	if rec.CurrentPrice < fairValue {
		status = models.StatusUnderpriced
	}

	return &models.ValuationResult{
		Ticker:           rec.Ticker,
		FairValue:        fairValue,
		CurrentPrice:     rec.CurrentPrice,
		PriceDifference:  priceDifference,
		BookValue:        rec.BookValue,
		Status:           status,
		DCFValue:         dcfValue,
		CompsValue:       compsValue,
		UpsidePercentage: upside,
		Synthetic:        rec.Synthetic,
	}
}

// dcfValue projects free cash flow over the horizon, discounts it, and
// adds the discounted Gordon growth terminal value. The result is floored
// at book value, which is also the answer when the arithmetic degenerates.
func (c *Calculator) dcfValue(rec *models.StockRecord) float64 {
	fcfPerShare := rec.FCFPerShare
	if fcfPerShare <= 0 {
		fcfPerShare = fallbackFCFPerShare
	}
	growthRate := math.Min(rec.GrowthRate, c.dcf.MaxGrowthRate)

	var pvFCF, finalYearFCF float64
	for year := 1; year <= c.dcf.ProjectionYears; year++ {
		fcf := fcfPerShare * math.Pow(1+growthRate, float64(year))
		pvFCF += fcf / math.Pow(1+c.dcf.DiscountRate, float64(year))
		finalYearFCF = fcf
	}

	// Requires DiscountRate > TerminalGrowthRate, enforced by
	// config.Validate; the denominator is never zero here.
	terminalFCF := finalYearFCF * (1 + c.dcf.TerminalGrowthRate)
	terminalValue := terminalFCF / (c.dcf.DiscountRate - c.dcf.TerminalGrowthRate)
	pvTerminal := terminalValue / math.Pow(1+c.dcf.DiscountRate, float64(c.dcf.ProjectionYears))

	dcfValue := pvFCF + pvTerminal
	if math.IsNaN(dcfValue) || math.IsInf(dcfValue, 0) {
		return rec.BookValue
	}
	return math.Max(dcfValue, rec.BookValue)
}

// compsValue applies the record's conservative P/E multiple to earnings,
// falling back to the sector default table when the record carries none.
func (c *Calculator) compsValue(rec *models.StockRecord) float64 {
	peRatio := rec.PERatio
	if peRatio <= 0 {
		if pe, ok := c.sectorPE[rec.Sector]; ok {
			peRatio = pe
		} else {
			peRatio = c.sectorPE["Default"]
		}
	}

	eps := rec.EPS
	if eps <= 0 {
		eps = fallbackEPS
	}

	compsValue := eps * peRatio
	if math.IsNaN(compsValue) || math.IsInf(compsValue, 0) {
		return rec.BookValue
	}
	return math.Max(compsValue, rec.BookValue)
}
