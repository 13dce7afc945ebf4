// Package normalize converts partial, noisy provider snapshots into
// complete StockRecords. Every field has a documented fallback chain and
// normalization itself never fails: a missing or unusable field degrades
// to its fallback, and a missing snapshot degrades to a fixed synthetic
// record.
package normalize

import (
	"context"
	"math"
	"time"

	"github.com/jdoyle7/stock-valuation-system/internal/models"
)

// Fallback constants, applied when the corresponding raw field is missing.
const (
	defaultPrice     = 100.0
	minFCFPerShare   = 2.0
	fcfPriceFraction = 0.05
	minEPS           = 1.0
	epsPriceFraction = 0.03
	minBookValue     = 5.0
	bookPriceFrac    = 0.2
	defaultGrowth    = 0.05
	defaultMarketCap = 1_000_000_000
	defaultSector    = "Default"
)

// Synthetic record values, used when the entire snapshot is unobtainable.
const (
	syntheticPrice     = 150.0
	syntheticFCF       = 8.0
	syntheticEPS       = 4.0
	syntheticBookValue = 25.0
	syntheticSector    = "Technology"
	syntheticGrowth    = 0.06
	syntheticMarketCap = 150_000_000_000
)

// PEEstimator supplies the conservative P/E ratio, the one field the
// normalizer does not resolve locally.
type PEEstimator interface {
	ConservativeEstimate(ctx context.Context, ticker, sector string, marketCap float64) float64
}

// Normalizer builds complete StockRecords from raw snapshots
type Normalizer struct {
	maxGrowthRate float64
	peEstimator   PEEstimator
}

// New creates a Normalizer. maxGrowthRate caps the reported growth field.
func New(maxGrowthRate float64, peEstimator PEEstimator) *Normalizer {
	return &Normalizer{
		maxGrowthRate: maxGrowthRate,
		peEstimator:   peEstimator,
	}
}

// Normalize turns a raw snapshot into a complete StockRecord. A nil
// snapshot yields the synthetic record for the ticker. The caller can
// inspect Origins and Synthetic to tell live data from substitutions.
func (n *Normalizer) Normalize(ctx context.Context, ticker string, snap *models.RawSnapshot) *models.StockRecord {
	if snap == nil {
		return n.syntheticRecord(ctx, ticker)
	}

	rec := &models.StockRecord{
		Ticker:    ticker,
		FetchedAt: time.Now(),
		Origins:   make(map[string]string, 9),
	}

	rec.CurrentPrice = n.resolvePrice(snap, rec.Origins)
	rec.FCFPerShare = n.resolveFCF(snap, rec.CurrentPrice, rec.Origins)
	rec.EPS = n.resolveEPS(snap, rec.CurrentPrice, rec.Origins)
	rec.BookValue = n.resolveBookValue(snap, rec.CurrentPrice, rec.Origins)
	rec.GrowthRate = n.resolveGrowth(snap, rec.Origins)
	rec.Sector = resolveSector(snap, rec.Origins)
	rec.MarketCap = resolveMarketCap(snap, rec.Origins)
	rec.CompanyName = resolveCompanyName(ticker, snap, rec.Origins)
	rec.PERatio = n.peEstimator.ConservativeEstimate(ctx, ticker, rec.Sector, rec.MarketCap)
	rec.Origins["pe_ratio"] = models.OriginDerived

	return rec
}

// resolvePrice prefers a realized close, then provider-reported prices,
// then the fixed default.
func (n *Normalizer) resolvePrice(snap *models.RawSnapshot, origins map[string]string) float64 {
	for _, candidate := range []*float64{snap.QuoteClose, snap.CurrentPrice, snap.RegularMarketPrice, snap.PreviousClose} {
		if candidate != nil && *candidate > 0 {
			origins["current_price"] = models.OriginLive
			return *candidate
		}
	}
	origins["current_price"] = models.OriginFallback
	return defaultPrice
}

// resolveFCF divides free cash flow by shares outstanding when both are
// present and positive; otherwise estimates FCF as a fraction of price.
func (n *Normalizer) resolveFCF(snap *models.RawSnapshot, price float64, origins map[string]string) float64 {
	fcf := firstPresent(snap.FreeCashFlow, snap.OperatingCashFlow)
	if fcf != nil && *fcf > 0 && snap.SharesOutstanding != nil && *snap.SharesOutstanding > 0 {
		origins["fcf_per_share"] = models.OriginDerived
		return *fcf / *snap.SharesOutstanding
	}
	origins["fcf_per_share"] = models.OriginFallback
	return math.Max(minFCFPerShare, price*fcfPriceFraction)
}

func (n *Normalizer) resolveEPS(snap *models.RawSnapshot, price float64, origins map[string]string) float64 {
	if eps := firstPresent(snap.TrailingEPS, snap.ForwardEPS, snap.DilutedEPS); eps != nil {
		origins["eps"] = models.OriginLive
		return *eps
	}
	origins["eps"] = models.OriginFallback
	return math.Max(minEPS, price*epsPriceFraction)
}

func (n *Normalizer) resolveBookValue(snap *models.RawSnapshot, price float64, origins map[string]string) float64 {
	for _, candidate := range []*float64{snap.BookValue, snap.TangibleBookValue} {
		if candidate != nil && *candidate >= 0 {
			origins["book_value"] = models.OriginLive
			return *candidate
		}
	}
	origins["book_value"] = models.OriginFallback
	return math.Max(minBookValue, price*bookPriceFrac)
}

// resolveGrowth caps the absolute reported growth; a missing or zero
// report degrades to the 5% default.
func (n *Normalizer) resolveGrowth(snap *models.RawSnapshot, origins map[string]string) float64 {
	if g := firstPresent(snap.EarningsGrowth, snap.RevenueGrowth); g != nil && *g != 0 {
		origins["growth_rate"] = models.OriginLive
		return math.Min(math.Abs(*g), n.maxGrowthRate)
	}
	origins["growth_rate"] = models.OriginFallback
	return defaultGrowth
}

func resolveSector(snap *models.RawSnapshot, origins map[string]string) string {
	if snap.Sector != nil && *snap.Sector != "" {
		origins["sector"] = models.OriginLive
		return *snap.Sector
	}
	origins["sector"] = models.OriginFallback
	return defaultSector
}

func resolveMarketCap(snap *models.RawSnapshot, origins map[string]string) float64 {
	if snap.MarketCap != nil && *snap.MarketCap > 0 {
		origins["market_cap"] = models.OriginLive
		return *snap.MarketCap
	}
	origins["market_cap"] = models.OriginFallback
	return defaultMarketCap
}

func resolveCompanyName(ticker string, snap *models.RawSnapshot, origins map[string]string) string {
	if snap.CompanyName != nil && *snap.CompanyName != "" {
		origins["company_name"] = models.OriginLive
		return *snap.CompanyName
	}
	origins["company_name"] = models.OriginFallback
	return ticker
}

// syntheticRecord is the fixed stand-in for a ticker whose snapshot could
// not be fetched at all. Callers cannot otherwise distinguish degraded
// from live data, so the Synthetic flag carries that distinction.
func (n *Normalizer) syntheticRecord(ctx context.Context, ticker string) *models.StockRecord {
	rec := &models.StockRecord{
		Ticker:       ticker,
		CompanyName:  ticker,
		CurrentPrice: syntheticPrice,
		FCFPerShare:  syntheticFCF,
		EPS:          syntheticEPS,
		BookValue:    syntheticBookValue,
		Sector:       syntheticSector,
		GrowthRate:   syntheticGrowth,
		MarketCap:    syntheticMarketCap,
		FetchedAt:    time.Now(),
		Synthetic:    true,
		Origins:      map[string]string{},
	}
	rec.PERatio = n.peEstimator.ConservativeEstimate(ctx, ticker, rec.Sector, rec.MarketCap)
	for _, field := range []string{"current_price", "fcf_per_share", "eps", "book_value", "sector", "growth_rate", "market_cap", "company_name"} {
		rec.Origins[field] = models.OriginFallback
	}
	rec.Origins["pe_ratio"] = models.OriginDerived
	return rec
}

func firstPresent(candidates ...*float64) *float64 {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}
