// Package cache holds conservative P/E estimates between lookups. The
// in-memory store is scoped to a single batch run; the Redis store is an
// optional cross-run backend with an explicit TTL.
package cache

import "context"

// PEStore caches one conservative P/E ratio per ticker
type PEStore interface {
	Get(ctx context.Context, ticker string) (float64, bool)
	Set(ctx context.Context, ticker string, ratio float64)
}
