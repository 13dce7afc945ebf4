// Package marketdata fetches best-effort raw snapshots for tickers. A
// provider returns whatever fields it could obtain; the normalizer owns
// all fallback decisions.
package marketdata

import (
	"context"

	"github.com/jdoyle7/stock-valuation-system/internal/models"
)

// Provider returns a raw field bag for one ticker. An error means the
// snapshot was unobtainable as a whole; callers degrade to synthetic data.
type Provider interface {
	Snapshot(ctx context.Context, ticker string) (*models.RawSnapshot, error)
}
