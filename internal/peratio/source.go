// Package peratio aggregates price-to-earnings estimates from multiple
// independent sources into one conservative figure per ticker.
package peratio

import (
	"context"
	"errors"
)

// ErrUnavailable marks a source that has no usable ratio for a ticker.
// Source failures are recovered locally and never abort aggregation.
var ErrUnavailable = errors.New("pe ratio unavailable")

// Source is one independent P/E provider
type Source interface {
	Name() string
	FetchPERatio(ctx context.Context, ticker string) (float64, error)
}

// StaticSource serves curated P/E ratios for major tickers from a fixed
// table. It acts as the always-on local backup alongside network sources.
type StaticSource struct {
	ratios map[string]float64
}

// NewStaticSource builds a source from a ticker->ratio table. A nil table
// uses the built-in list of major large caps.
func NewStaticSource(ratios map[string]float64) *StaticSource {
	if ratios == nil {
		ratios = defaultPERatios()
	}
	return &StaticSource{ratios: ratios}
}

func (s *StaticSource) Name() string { return "local" }

func (s *StaticSource) FetchPERatio(_ context.Context, ticker string) (float64, error) {
	if ratio, ok := s.ratios[ticker]; ok {
		return ratio, nil
	}
	return 0, ErrUnavailable
}

func defaultPERatios() map[string]float64 {
	return map[string]float64{
		"AAPL": 24.2, "MSFT": 27.3, "GOOGL": 19.4, "AMZN": 38.4, "NVDA": 55.5,
		"META": 20.5, "TSLA": 49.9, "BRK-B": 8.3, "UNH": 15.7, "JNJ": 12.9,
		"JPM": 11.8, "V": 31.2, "PG": 24.6, "HD": 18.9, "MA": 29.7,
		"BAC": 12.4, "ABBV": 13.8, "PFE": 11.5, "KO": 22.8, "AVGO": 25.4,
		"PEP": 23.7, "TMO": 20.9, "COST": 38.2, "WMT": 25.1, "MRK": 14.6,
		"DIS": 32.8, "ACN": 23.4, "VZ": 9.2, "ADBE": 41.7, "NFLX": 28.5,
		"NKE": 26.9, "CRM": 45.3, "DHR": 22.8, "LIN": 19.7, "TXN": 21.3,
		"NEE": 19.8, "ABT": 18.5, "ORCL": 22.1, "PM": 16.4, "RTX": 15.2,
		"QCOM": 14.8, "HON": 21.7, "WFC": 10.9, "UPS": 17.6, "T": 8.7,
		"LOW": 19.4, "SPGI": 34.5, "ELV": 13.2, "SCHW": 18.9, "CAT": 14.7,
	}
}
