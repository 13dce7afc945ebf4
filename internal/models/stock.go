package models

import "time"

// Field origin constants used for per-field provenance tracking.
const (
	OriginLive     = "live"     // taken directly from a provider response
	OriginDerived  = "derived"  // computed from other live fields
	OriginFallback = "fallback" // substituted by a normalization rule
)

// RawSnapshot is the best-effort field bag a market data provider returns
// for one ticker. Any field may be absent; nil means the provider did not
// report a usable value.
type RawSnapshot struct {
	Ticker             string
	QuoteClose         *float64 // realized close from quote/chart data
	CurrentPrice       *float64
	RegularMarketPrice *float64
	PreviousClose      *float64
	FreeCashFlow       *float64
	OperatingCashFlow  *float64
	SharesOutstanding  *float64
	TrailingEPS        *float64
	ForwardEPS         *float64
	DilutedEPS         *float64
	BookValue          *float64
	TangibleBookValue  *float64
	Sector             *string
	EarningsGrowth     *float64
	RevenueGrowth      *float64
	MarketCap          *float64
	CompanyName        *string
}

// StockRecord is a fully normalized per-ticker record. Every field is
// populated and within its documented domain after normalization; the
// record is never mutated once built.
type StockRecord struct {
	Ticker       string    `json:"ticker"`
	CompanyName  string    `json:"company_name"`
	CurrentPrice float64   `json:"current_price"`
	FCFPerShare  float64   `json:"fcf_per_share"`
	EPS          float64   `json:"eps"`
	BookValue    float64   `json:"book_value"`
	Sector       string    `json:"sector"`
	GrowthRate   float64   `json:"growth_rate"`
	PERatio      float64   `json:"pe_ratio"`
	MarketCap    float64   `json:"market_cap"`
	FetchedAt    time.Time `json:"fetched_at"`

	// Origins maps field names to OriginLive/OriginDerived/OriginFallback
	// so callers can tell live data from substituted defaults.
	Origins map[string]string `json:"origins,omitempty"`

	// Synthetic is set when the entire raw snapshot was unobtainable and
	// the whole record was built from fixed defaults.
	Synthetic bool `json:"synthetic,omitempty"`
}

// WatchlistEntry represents a ticker in the valuation universe watchlist
type WatchlistEntry struct {
	Symbol    string    `json:"symbol"`
	Enabled   bool      `json:"enabled"`
	Priority  int       `json:"priority"` // 1=high, 2=medium, 3=low
	Note      string    `json:"note,omitempty"`
	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
