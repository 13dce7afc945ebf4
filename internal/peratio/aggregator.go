package peratio

import (
	"context"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/jdoyle7/stock-valuation-system/internal/cache"
	"github.com/jdoyle7/stock-valuation-system/internal/models"
)

// Source-reported ratios outside this range are treated as unavailable;
// anything beyond it is a fat-finger or broken feed, not a signal.
const (
	rawRatioMin = 0.0
	rawRatioMax = 150.0
)

// Blend weights for three or more surviving ratios. The median carries
// more weight so residual skew cannot drag the estimate.
const (
	medianWeight = 0.6
	meanWeight   = 0.4
)

// Market cap size-adjustment factors applied to the sector default.
const (
	megaCapFloor   = 500_000_000_000
	largeCapFloor  = 100_000_000_000
	smallCapCeil   = 10_000_000_000
	megaCapFactor  = 0.95
	largeCapFactor = 0.98
	smallCapFactor = 0.85
	midCapFactor   = 0.92
)

// Aggregator combines ratios from independent sources into a single
// conservative estimate per ticker.
type Aggregator struct {
	sources  []Source
	store    cache.PEStore
	sectorPE map[string]float64
	params   models.CompsParameters
	log      *logrus.Entry
}

// NewAggregator wires sources and a cache store to the aggregation rules.
// sectorPE must contain a "Default" entry.
func NewAggregator(sources []Source, store cache.PEStore, sectorPE map[string]float64, params models.CompsParameters, log *logrus.Logger) *Aggregator {
	return &Aggregator{
		sources:  sources,
		store:    store,
		sectorPE: sectorPE,
		params:   params,
		log:      log.WithField("component", "pe-aggregator"),
	}
}

// ConservativeEstimate returns the P/E ratio to use for valuation,
// bounded to [MinPERatio, MaxPERatio]. When a multi-source estimate is
// available, the result is the median of that estimate, the sector
// default, and the size-adjusted sector default; otherwise the sector
// path alone serves as the fallback.
func (a *Aggregator) ConservativeEstimate(ctx context.Context, ticker, sector string, marketCap float64) float64 {
	estimates := make([]float64, 0, 3)

	if multiPE, ok := a.multiSourceEstimate(ctx, ticker); ok {
		estimates = append(estimates, multiPE)
	}

	industryPE := a.sectorDefault(sector)
	estimates = append(estimates, industryPE)

	if marketCap > 0 {
		estimates = append(estimates, sizeAdjust(industryPE, marketCap))
	}

	final := medianByIndex(estimates)
	final = a.clamp(final)

	a.log.WithFields(logrus.Fields{
		"ticker":    ticker,
		"sector":    sector,
		"estimates": estimates,
		"final":     final,
	}).Debug("conservative P/E selected")

	return final
}

// multiSourceEstimate queries every configured source, aggregates the
// successes, applies the conservative discount, and caches the result by
// ticker. The second return is false when no source produced a usable
// ratio.
func (a *Aggregator) multiSourceEstimate(ctx context.Context, ticker string) (float64, bool) {
	if cached, ok := a.store.Get(ctx, ticker); ok {
		return cached, true
	}

	var ratios []float64
	for _, src := range a.sources {
		ratio, err := src.FetchPERatio(ctx, ticker)
		if err != nil {
			a.log.WithFields(logrus.Fields{"ticker": ticker, "source": src.Name()}).
				WithError(err).Debug("P/E source unavailable")
			continue
		}
		if ratio <= rawRatioMin || ratio >= rawRatioMax {
			a.log.WithFields(logrus.Fields{"ticker": ticker, "source": src.Name(), "ratio": ratio}).
				Debug("discarding out-of-range P/E")
			continue
		}
		ratios = append(ratios, ratio)
	}

	if len(ratios) == 0 {
		return 0, false
	}

	conservative := a.clamp(a.aggregate(ratios) * a.params.PEConservativeFactor)
	a.store.Set(ctx, ticker, conservative)
	return conservative, true
}

// aggregate blends raw ratios: IQR outlier rejection at three or more
// values, then as-is / mean / median-weighted mean by count. The result
// is deterministic for a fixed input set.
func (a *Aggregator) aggregate(ratios []float64) float64 {
	if len(ratios) >= 3 {
		if filtered := rejectOutliers(ratios); len(filtered) > 0 {
			ratios = filtered
		}
	}

	switch len(ratios) {
	case 1:
		return ratios[0]
	case 2:
		return (ratios[0] + ratios[1]) / 2
	default:
		return medianWeight*median(ratios) + meanWeight*mean(ratios)
	}
}

// rejectOutliers drops values outside [Q1-1.5*IQR, Q3+1.5*IQR]
func rejectOutliers(ratios []float64) []float64 {
	sorted := append([]float64(nil), ratios...)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	filtered := make([]float64, 0, len(ratios))
	for _, r := range ratios {
		if r >= lower && r <= upper {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// quantile interpolates linearly over a sorted slice
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	h := p * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// medianByIndex picks the sorted middle element, rounding up on even
// counts. With two estimates that is the larger one, keeping the plain
// sector default ahead of its size-discounted variant.
func medianByIndex(estimates []float64) float64 {
	sorted := append([]float64(nil), estimates...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

func (a *Aggregator) sectorDefault(sector string) float64 {
	if pe, ok := a.sectorPE[sector]; ok {
		return pe
	}
	return a.sectorPE["Default"]
}

// sizeAdjust discounts the sector default by capitalization tier
func sizeAdjust(industryPE, marketCap float64) float64 {
	switch {
	case marketCap > megaCapFloor:
		return industryPE * megaCapFactor
	case marketCap > largeCapFloor:
		return industryPE * largeCapFactor
	case marketCap < smallCapCeil:
		return industryPE * smallCapFactor
	default:
		return industryPE * midCapFactor
	}
}

func (a *Aggregator) clamp(ratio float64) float64 {
	return math.Max(a.params.MinPERatio, math.Min(ratio, a.params.MaxPERatio))
}
