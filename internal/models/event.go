package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event type constants for Kafka payloads
const (
	EventValuationCompleted = "VALUATION_COMPLETED"
	EventRunCompleted       = "RUN_COMPLETED"
	EventWatchlistAdded     = "WATCHLIST_ADDED"
	EventWatchlistRemoved   = "WATCHLIST_REMOVED"
)

// ValuationEvent is published for each valued ticker. Money fields are
// decimals so downstream consumers never see float rounding noise.
type ValuationEvent struct {
	EventType       string          `json:"event_type"`
	Ticker          string          `json:"ticker"`
	FairValue       decimal.Decimal `json:"fair_value"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	PriceDifference decimal.Decimal `json:"price_difference"`
	BookValue       decimal.Decimal `json:"book_value"`
	Status          string          `json:"status"`
	Synthetic       bool            `json:"synthetic,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// RunEvent summarizes a completed batch run
type RunEvent struct {
	EventType        string    `json:"event_type"`
	TickerCount      int       `json:"ticker_count"`
	UnderpricedCount int       `json:"underpriced_count"`
	OverpricedCount  int       `json:"overpriced_count"`
	ErrorCount       int       `json:"error_count"`
	Elapsed          string    `json:"elapsed"`
	Timestamp        time.Time `json:"timestamp"`
}

// WatchlistEvent is consumed from the universe topic to keep the
// watchlist store in sync with upstream tooling.
type WatchlistEvent struct {
	EventType string    `json:"event_type"`
	Symbol    string    `json:"symbol"`
	Priority  int       `json:"priority,omitempty"`
	Note      string    `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
