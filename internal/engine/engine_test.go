package engine

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdoyle7/stock-valuation-system/internal/config"
	"github.com/jdoyle7/stock-valuation-system/internal/models"
	"github.com/jdoyle7/stock-valuation-system/internal/normalize"
	"github.com/jdoyle7/stock-valuation-system/internal/valuation"
)

type fixedEstimator struct{ ratio float64 }

func (f fixedEstimator) ConservativeEstimate(_ context.Context, _, _ string, _ float64) float64 {
	return f.ratio
}

// stubProvider serves canned snapshots and injects per-ticker faults
type stubProvider struct {
	panicOn     string
	failOn      string
	blockOn     string
	inFlight    int32
	maxInFlight int32
}

func (s *stubProvider) Snapshot(ctx context.Context, ticker string) (*models.RawSnapshot, error) {
	current := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		max := atomic.LoadInt32(&s.maxInFlight)
		if current <= max || atomic.CompareAndSwapInt32(&s.maxInFlight, max, current) {
			break
		}
	}

	switch ticker {
	case s.panicOn:
		panic("snapshot decoder blew up")
	case s.blockOn:
		<-ctx.Done()
		return nil, ctx.Err()
	case s.failOn:
		return nil, errors.New("all endpoints unreachable")
	}

	price := 120.0
	fcf := 6_000_000_000.0
	shares := 1_000_000_000.0
	eps := 5.5
	book := 30.0
	sector := "Technology"
	growth := 0.06
	cap := 150_000_000_000.0
	return &models.RawSnapshot{
		Ticker:            ticker,
		CurrentPrice:      &price,
		FreeCashFlow:      &fcf,
		SharesOutstanding: &shares,
		TrailingEPS:       &eps,
		BookValue:         &book,
		Sector:            &sector,
		EarningsGrowth:    &growth,
		MarketCap:         &cap,
	}, nil
}

func newTestEngine(provider *stubProvider, engineCfg config.EngineConfig) *Engine {
	cfg := config.DefaultValuationConfig()
	sectorPE := config.SectorPERatios()
	normalizer := normalize.New(cfg.DCF.MaxGrowthRate, fixedEstimator{ratio: 15.0})
	calculator := valuation.New(cfg, sectorPE)
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(provider, normalizer, calculator, engineCfg, log)
}

func defaultEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		MaxWorkers:    4,
		TickerTimeout: 5 * time.Second,
		BatchTimeout:  10 * time.Second,
	}
}

func TestEngineRun(t *testing.T) {
	t.Run("values every ticker in the batch", func(t *testing.T) {
		e := newTestEngine(&stubProvider{}, defaultEngineConfig())

		results := e.Run(context.Background(), []string{"AAPL", "MSFT", "GOOGL"})

		require.Len(t, results, 3)
		for _, result := range results {
			assert.NotEqual(t, models.StatusError, result.Status)
			assert.Greater(t, result.FairValue, 0.0)
			assert.False(t, result.Synthetic)
		}
	})

	t.Run("empty batch yields empty result list", func(t *testing.T) {
		e := newTestEngine(&stubProvider{}, defaultEngineConfig())
		results := e.Run(context.Background(), nil)
		assert.Empty(t, results)
	})

	t.Run("one panicking pipeline does not abort the batch", func(t *testing.T) {
		provider := &stubProvider{panicOn: "NVDA"}
		e := newTestEngine(provider, defaultEngineConfig())
		tickers := []string{"AAPL", "MSFT", "NVDA", "GOOGL", "AMZN"}

		results := e.Run(context.Background(), tickers)

		require.Len(t, results, 5)
		errored := 0
		for _, result := range results {
			if result.Status == models.StatusError {
				errored++
				assert.Equal(t, "NVDA", result.Ticker)
				assert.Zero(t, result.FairValue)
				assert.Zero(t, result.CurrentPrice)
			} else {
				assert.Greater(t, result.FairValue, 0.0)
			}
		}
		assert.Equal(t, 1, errored)
	})

	t.Run("unobtainable snapshot degrades to a synthetic valuation", func(t *testing.T) {
		provider := &stubProvider{failOn: "MSFT"}
		e := newTestEngine(provider, defaultEngineConfig())

		results := e.Run(context.Background(), []string{"AAPL", "MSFT"})

		require.Len(t, results, 2)
		for _, result := range results {
			require.NotEqual(t, models.StatusError, result.Status)
			if result.Ticker == "MSFT" {
				assert.True(t, result.Synthetic)
				assert.Equal(t, 150.0, result.CurrentPrice)
			} else {
				assert.False(t, result.Synthetic)
			}
		}
	})

	t.Run("slow ticker times out with an error result", func(t *testing.T) {
		provider := &stubProvider{blockOn: "SLOW"}
		cfg := defaultEngineConfig()
		cfg.TickerTimeout = 50 * time.Millisecond
		e := newTestEngine(provider, cfg)

		results := e.Run(context.Background(), []string{"AAPL", "SLOW"})

		require.Len(t, results, 2)
		for _, result := range results {
			if result.Ticker == "SLOW" {
				assert.Equal(t, models.StatusError, result.Status)
			} else {
				assert.NotEqual(t, models.StatusError, result.Status)
			}
		}
	})

	t.Run("batch timeout reports undispatched tickers as errors", func(t *testing.T) {
		provider := &stubProvider{blockOn: "SLOW"}
		cfg := config.EngineConfig{
			MaxWorkers:    1,
			TickerTimeout: 5 * time.Second,
			BatchTimeout:  100 * time.Millisecond,
		}
		e := newTestEngine(provider, cfg)
		tickers := []string{"SLOW", "AAPL", "MSFT"}

		results := e.Run(context.Background(), tickers)

		require.Len(t, results, 3)
		seen := make(map[string]string)
		for _, result := range results {
			seen[result.Ticker] = result.Status
		}
		assert.Equal(t, models.StatusError, seen["SLOW"])
		assert.Len(t, seen, 3)
	})

	t.Run("respects the worker limit", func(t *testing.T) {
		provider := &stubProvider{}
		cfg := defaultEngineConfig()
		cfg.MaxWorkers = 2
		e := newTestEngine(provider, cfg)

		tickers := make([]string, 20)
		for i := range tickers {
			tickers[i] = "T" + string(rune('A'+i))
		}
		results := e.Run(context.Background(), tickers)

		require.Len(t, results, 20)
		assert.LessOrEqual(t, atomic.LoadInt32(&provider.maxInFlight), int32(2))
	})

	t.Run("tracks pipeline states through to done", func(t *testing.T) {
		e := newTestEngine(&stubProvider{panicOn: "NVDA"}, defaultEngineConfig())
		e.Run(context.Background(), []string{"AAPL", "NVDA"})

		states := e.States()
		assert.Equal(t, StateDone, states["AAPL"])
		assert.Equal(t, StateError, states["NVDA"])
	})
}
