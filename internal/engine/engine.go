package engine

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jdoyle7/stock-valuation-system/internal/config"
	"github.com/jdoyle7/stock-valuation-system/internal/marketdata"
	"github.com/jdoyle7/stock-valuation-system/internal/models"
	"github.com/jdoyle7/stock-valuation-system/internal/normalize"
	"github.com/jdoyle7/stock-valuation-system/internal/valuation"
)

// TickerState tracks a ticker's progress through the pipeline
type TickerState string

const (
	StatePending     TickerState = "pending"
	StateFetching    TickerState = "fetching"
	StateNormalizing TickerState = "normalizing"
	StateValuating   TickerState = "valuating"
	StateDone        TickerState = "done"
	StateError       TickerState = "error"
)

// Engine runs the full valuation pipeline for batches of tickers.
// A fixed-size worker pool fans the batch out; each ticker's pipeline
// (fetch, normalize, valuate) runs to completion on one worker. A
// failure or timeout on one ticker never aborts the batch: that ticker
// is reported with StatusError and zeroed values, and every other
// ticker is unaffected.
type Engine struct {
	provider      marketdata.Provider
	normalizer    *normalize.Normalizer
	calculator    *valuation.Calculator
	workers       int
	tickerTimeout time.Duration
	batchTimeout  time.Duration
	log           *logrus.Logger

	mu     sync.Mutex
	states map[string]TickerState
}

// New creates an engine with the given collaborators and timing limits
func New(provider marketdata.Provider, normalizer *normalize.Normalizer, calculator *valuation.Calculator, cfg config.EngineConfig, log *logrus.Logger) *Engine {
	workers := cfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		provider:      provider,
		normalizer:    normalizer,
		calculator:    calculator,
		workers:       workers,
		tickerTimeout: cfg.TickerTimeout,
		batchTimeout:  cfg.BatchTimeout,
		log:           log,
		states:        make(map[string]TickerState),
	}
}

// States returns a snapshot of per-ticker pipeline states for the
// current (or most recent) run.
func (e *Engine) States() map[string]TickerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]TickerState, len(e.states))
	for ticker, state := range e.states {
		out[ticker] = state
	}
	return out
}

// Run values every ticker in the batch and returns exactly one result
// per input ticker. Result order follows completion, not input order;
// callers sort for presentation. Tickers still outstanding when the
// batch timeout fires are reported with StatusError.
func (e *Engine) Run(ctx context.Context, tickers []string) []*models.ValuationResult {
	results := make([]*models.ValuationResult, 0, len(tickers))
	if len(tickers) == 0 {
		return results
	}

	e.mu.Lock()
	e.states = make(map[string]TickerState, len(tickers))
	for _, ticker := range tickers {
		e.states[ticker] = StatePending
	}
	e.mu.Unlock()

	batchCtx, cancel := context.WithTimeout(ctx, e.batchTimeout)
	defer cancel()

	workers := e.workers
	if workers > len(tickers) {
		workers = len(tickers)
	}

	jobs := make(chan string)
	out := make(chan *models.ValuationResult, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range jobs {
				out <- e.processTicker(batchCtx, ticker)
			}
		}()
	}

	start := time.Now()
	e.log.WithFields(logrus.Fields{
		"tickers": len(tickers),
		"workers": workers,
	}).Info("Starting valuation run")

dispatch:
	for _, ticker := range tickers {
		select {
		case jobs <- ticker:
		case <-batchCtx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
	close(out)

	dispatched := make(map[string]bool, len(tickers))
	for result := range out {
		dispatched[result.Ticker] = true
		results = append(results, result)
	}
	// Tickers never handed to a worker before the batch timeout
	for _, ticker := range tickers {
		if !dispatched[ticker] {
			results = append(results, e.errorResult(ticker))
		}
	}

	errors := 0
	for _, result := range results {
		if result.Status == models.StatusError {
			errors++
		}
	}
	e.log.WithFields(logrus.Fields{
		"results":  len(results),
		"errors":   errors,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("Valuation run complete")

	return results
}

func (e *Engine) processTicker(ctx context.Context, ticker string) (result *models.ValuationResult) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithFields(logrus.Fields{
				"ticker": ticker,
				"panic":  r,
			}).Error("Valuation pipeline panicked")
			result = e.errorResult(ticker)
		}
	}()

	tickerCtx, cancel := context.WithTimeout(ctx, e.tickerTimeout)
	defer cancel()

	e.setState(ticker, StateFetching)
	snap, err := e.provider.Snapshot(tickerCtx, ticker)
	if err != nil {
		if tickerCtx.Err() != nil {
			e.log.WithField("ticker", ticker).Warn("Ticker timed out during fetch")
			return e.errorResult(ticker)
		}
		// Degraded data: the normalizer builds a synthetic record
		e.log.WithFields(logrus.Fields{
			"ticker": ticker,
			"error":  err,
		}).Warn("Snapshot unobtainable, falling back to synthetic record")
		snap = nil
	}

	e.setState(ticker, StateNormalizing)
	record := e.normalizer.Normalize(tickerCtx, ticker, snap)
	if tickerCtx.Err() != nil {
		e.log.WithField("ticker", ticker).Warn("Ticker timed out during normalization")
		return e.errorResult(ticker)
	}

	e.setState(ticker, StateValuating)
	result = e.calculator.Valuate(record)
	e.setState(ticker, StateDone)
	return result
}

func (e *Engine) setState(ticker string, state TickerState) {
	e.mu.Lock()
	e.states[ticker] = state
	e.mu.Unlock()
	e.log.WithFields(logrus.Fields{
		"ticker": ticker,
		"state":  state,
	}).Debug("Pipeline state change")
}

func (e *Engine) errorResult(ticker string) *models.ValuationResult {
	e.setState(ticker, StateError)
	return &models.ValuationResult{
		Ticker: ticker,
		Status: models.StatusError,
	}
}
