package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/jdoyle7/stock-valuation-system/internal/api"
	"github.com/jdoyle7/stock-valuation-system/internal/cache"
	"github.com/jdoyle7/stock-valuation-system/internal/config"
	"github.com/jdoyle7/stock-valuation-system/internal/database"
	"github.com/jdoyle7/stock-valuation-system/internal/engine"
	"github.com/jdoyle7/stock-valuation-system/internal/kafka"
	"github.com/jdoyle7/stock-valuation-system/internal/marketdata"
	"github.com/jdoyle7/stock-valuation-system/internal/normalize"
	"github.com/jdoyle7/stock-valuation-system/internal/peratio"
	"github.com/jdoyle7/stock-valuation-system/internal/scheduler"
	"github.com/jdoyle7/stock-valuation-system/internal/universe"
	"github.com/jdoyle7/stock-valuation-system/internal/valuation"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log := newLogger()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Watchlist store is optional; without it the CSV/default universe is used
	var db *database.DB
	if cfg.Universe.UseDatabase {
		var err error
		db, err = database.New(cfg.Database.ConnectionString())
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		if err := db.RunMigrations("db/migrations"); err != nil {
			log.WithError(err).Fatal("Failed to run migrations")
		}
		log.Info("Connected to watchlist database")
	}

	var peStore cache.PEStore
	if cfg.Redis.Enabled {
		redisStore := cache.NewRedisStore(cfg.Redis.Addr, cfg.Redis.TTL, log)
		if err := redisStore.Ping(ctx); err != nil {
			log.WithError(err).Warn("Redis unreachable, using in-memory P/E cache")
			peStore = cache.NewMemoryStore()
		} else {
			defer redisStore.Close()
			peStore = redisStore
			log.WithField("addr", cfg.Redis.Addr).Info("Using Redis P/E cache")
		}
	} else {
		peStore = cache.NewMemoryStore()
	}

	sectorPE := config.SectorPERatios()
	sources := []peratio.Source{
		peratio.NewFinvizSource(),
		peratio.NewYahooSource(),
		peratio.NewStaticSource(nil),
	}
	aggregator := peratio.NewAggregator(sources, peStore, sectorPE, cfg.Valuation.Comps, log)

	normalizer := normalize.New(cfg.Valuation.DCF.MaxGrowthRate, aggregator)
	calculator := valuation.New(cfg.Valuation, sectorPE)
	provider := marketdata.NewYahooProvider(cfg.Engine.TickerTimeout)
	eng := engine.New(provider, normalizer, calculator, cfg.Engine, log)

	tickerSource := func(ctx context.Context) []string {
		if db != nil {
			symbols, err := db.GetEnabledSymbols()
			if err != nil {
				log.WithError(err).Warn("Failed to load watchlist, falling back to file universe")
			} else if len(symbols) > 0 {
				return symbols
			}
		}
		return universe.LoadFromCSV(cfg.Universe.TickerFile, log)
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ValuationTopic)
	defer producer.Close()

	runner := engine.NewRunner(eng, tickerSource, producer, log)

	if db != nil {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.WatchlistTopic, cfg.Kafka.GroupID, db, log)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				log.WithError(err).Error("Watchlist consumer stopped")
			}
		}()
	}

	if cfg.Scheduler.Enabled {
		sched := scheduler.New(runner, cfg.Scheduler.CronSpec, log)
		if err := sched.Start(ctx); err != nil {
			log.WithError(err).Fatal("Failed to start scheduler")
		}
		defer sched.Stop()
	}

	handler := api.NewHandler(runner, watchlistStore(db))
	router := api.SetupRoutes(handler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
}

// watchlistStore keeps a nil *database.DB from becoming a non-nil interface
func watchlistStore(db *database.DB) api.WatchlistStore {
	if db == nil {
		return nil
	}
	return db
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}
	return log
}
