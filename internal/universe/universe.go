package universe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// defaultTickers is the built-in large-cap universe used whenever no
// other ticker source is available.
var defaultTickers = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "BRK-B",
	"UNH", "JNJ", "JPM", "V", "PG", "HD", "MA", "BAC", "ABBV", "PFE",
	"KO", "AVGO", "PEP", "TMO", "COST", "WMT", "MRK", "DIS", "ACN",
	"VZ", "ADBE", "NFLX", "NKE", "CRM", "DHR", "LIN", "TXN", "NEE",
	"ABT", "ORCL", "PM", "RTX", "QCOM", "HON", "WFC", "UPS", "T",
	"LOW", "SPGI", "ELV", "SCHW", "CAT",
}

// testTickers is the small universe selected by the -test flag
var testTickers = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA",
	"META", "TSLA", "BRK-B", "UNH", "JNJ",
}

// DefaultTickers returns a copy of the built-in universe
func DefaultTickers() []string {
	out := make([]string, len(defaultTickers))
	copy(out, defaultTickers)
	return out
}

// TestTickers returns a copy of the small test universe
func TestTickers() []string {
	out := make([]string, len(testTickers))
	copy(out, testTickers)
	return out
}

// LoadFromCSV reads ticker symbols from the first column of a CSV file
// with a header row. A missing or unreadable file falls back to the
// built-in default universe.
func LoadFromCSV(filename string, log *logrus.Logger) []string {
	if log == nil {
		log = logrus.StandardLogger()
	}

	tickers, err := readCSV(filename)
	if err != nil {
		log.WithFields(logrus.Fields{
			"file":  filename,
			"error": err,
		}).Warn("Could not load tickers from CSV, using defaults")
		return DefaultTickers()
	}
	if len(tickers) == 0 {
		log.WithField("file", filename).Warn("Ticker file is empty, using defaults")
		return DefaultTickers()
	}

	log.WithFields(logrus.Fields{
		"file":    filename,
		"tickers": len(tickers),
	}).Info("Loaded ticker universe")
	return tickers
}

func readCSV(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open ticker file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var tickers []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ticker row: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		ticker := strings.ToUpper(strings.TrimSpace(record[0]))
		if ticker != "" {
			tickers = append(tickers, ticker)
		}
	}
	return tickers, nil
}
