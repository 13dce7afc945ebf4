package engine

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jdoyle7/stock-valuation-system/internal/models"
)

// Publisher publishes run results to downstream consumers
type Publisher interface {
	PublishValuation(ctx context.Context, result *models.ValuationResult) error
	PublishRunCompleted(ctx context.Context, results []*models.ValuationResult, elapsed time.Duration) error
}

// TickerSource supplies the universe for a run
type TickerSource func(ctx context.Context) []string

// Runner drives valuation runs and keeps the latest results in memory.
// Only one run is in flight at a time; triggers while a run is active
// are rejected.
type Runner struct {
	engine   *Engine
	tickers  TickerSource
	producer Publisher
	log      *logrus.Logger

	mu      sync.Mutex
	running bool
	latest  []*models.ValuationResult
	lastRun time.Time
}

// NewRunner creates a runner. producer may be nil when event
// publishing is disabled.
func NewRunner(engine *Engine, tickers TickerSource, producer Publisher, log *logrus.Logger) *Runner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Runner{
		engine:   engine,
		tickers:  tickers,
		producer: producer,
		log:      log,
	}
}

// RunOnce executes a full valuation run synchronously and returns the
// results in completion order.
func (r *Runner) RunOnce(ctx context.Context) []*models.ValuationResult {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		r.log.Warn("Valuation run already in progress, skipping")
		return nil
	}
	r.running = true
	r.mu.Unlock()

	start := time.Now()
	tickers := r.tickers(ctx)
	results := r.engine.Run(ctx, tickers)
	elapsed := time.Since(start)

	r.publish(ctx, results, elapsed)

	r.mu.Lock()
	r.latest = results
	r.lastRun = time.Now()
	r.running = false
	r.mu.Unlock()

	return results
}

// Trigger starts a run in the background. It reports false when a run
// is already in flight.
func (r *Runner) Trigger(ctx context.Context) bool {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return false
	}
	r.mu.Unlock()

	go r.RunOnce(ctx)
	return true
}

// Latest returns the most recent run's results and completion time.
// Results live in memory only; a restart clears them.
func (r *Runner) Latest() ([]*models.ValuationResult, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest, r.lastRun
}

// Running reports whether a run is currently in flight
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// States exposes per-ticker pipeline states for the active run
func (r *Runner) States() map[string]TickerState {
	return r.engine.States()
}

func (r *Runner) publish(ctx context.Context, results []*models.ValuationResult, elapsed time.Duration) {
	if r.producer == nil {
		return
	}
	for _, result := range results {
		if err := r.producer.PublishValuation(ctx, result); err != nil {
			r.log.WithError(err).WithField("ticker", result.Ticker).Error("Failed to publish valuation event")
		}
	}
	if err := r.producer.PublishRunCompleted(ctx, results, elapsed); err != nil {
		r.log.WithError(err).Error("Failed to publish run summary event")
	}
}
