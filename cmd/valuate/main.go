package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/jdoyle7/stock-valuation-system/internal/cache"
	"github.com/jdoyle7/stock-valuation-system/internal/config"
	"github.com/jdoyle7/stock-valuation-system/internal/engine"
	"github.com/jdoyle7/stock-valuation-system/internal/marketdata"
	"github.com/jdoyle7/stock-valuation-system/internal/normalize"
	"github.com/jdoyle7/stock-valuation-system/internal/peratio"
	"github.com/jdoyle7/stock-valuation-system/internal/render"
	"github.com/jdoyle7/stock-valuation-system/internal/universe"
	"github.com/jdoyle7/stock-valuation-system/internal/valuation"
)

func main() {
	testMode := flag.Bool("test", false, "Analyze the small test universe instead of the full list")
	tickerFlag := flag.String("tickers", "", "Comma-separated tickers to analyze (overrides other sources)")
	tickerFile := flag.String("file", "", "CSV file with the ticker universe")
	workers := flag.Int("workers", 0, "Number of parallel workers (0 uses the configured default)")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	onlyUnderpriced := flag.Bool("underpriced", false, "Show only underpriced stocks")
	maxResults := flag.Int("max", 0, "Limit displayed rows (0 shows all)")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	if *workers > 0 {
		cfg.Engine.MaxWorkers = *workers
	}
	if *tickerFile != "" {
		cfg.Universe.TickerFile = *tickerFile
	}

	var tickers []string
	switch {
	case *tickerFlag != "":
		for _, t := range strings.Split(*tickerFlag, ",") {
			if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
				tickers = append(tickers, t)
			}
		}
	case *testMode:
		tickers = universe.TestTickers()
	default:
		tickers = universe.LoadFromCSV(cfg.Universe.TickerFile, log)
	}

	sectorPE := config.SectorPERatios()
	sources := []peratio.Source{
		peratio.NewFinvizSource(),
		peratio.NewYahooSource(),
		peratio.NewStaticSource(nil),
	}
	aggregator := peratio.NewAggregator(sources, cache.NewMemoryStore(), sectorPE, cfg.Valuation.Comps, log)

	normalizer := normalize.New(cfg.Valuation.DCF.MaxGrowthRate, aggregator)
	calculator := valuation.New(cfg.Valuation, sectorPE)
	provider := marketdata.NewYahooProvider(cfg.Engine.TickerTimeout)
	eng := engine.New(provider, normalizer, calculator, cfg.Engine, log)

	results := eng.Run(context.Background(), tickers)

	render.Table(os.Stdout, results, render.Options{
		Colors:          !*noColor,
		OnlyUnderpriced: *onlyUnderpriced,
		MaxResults:      *maxResults,
	})
}
