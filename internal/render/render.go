package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jdoyle7/stock-valuation-system/internal/models"
)

// Colors for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

const tableWidth = 92

// statusRank orders result groups for display
func statusRank(status string) int {
	switch status {
	case models.StatusUnderpriced:
		return 0
	case models.StatusOverpriced:
		return 1
	default:
		return 2
	}
}

// Sort orders results for display: underpriced first by descending
// price difference, then overpriced alphabetically, then errors
// alphabetically.
func Sort(results []*models.ValuationResult) {
	sort.SliceStable(results, func(i, j int) bool {
		ri, rj := statusRank(results[i].Status), statusRank(results[j].Status)
		if ri != rj {
			return ri < rj
		}
		if results[i].Status == models.StatusUnderpriced {
			return results[i].PriceDifference > results[j].PriceDifference
		}
		return results[i].Ticker < results[j].Ticker
	})
}

// Options controls table rendering
type Options struct {
	Colors          bool
	OnlyUnderpriced bool
	MaxResults      int
}

// Table writes the valuation results as a formatted table, sorted for
// display, followed by summary statistics.
func Table(w io.Writer, results []*models.ValuationResult, opts Options) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results to display!")
		return
	}

	rows := make([]*models.ValuationResult, len(results))
	copy(rows, results)
	Sort(rows)

	if opts.OnlyUnderpriced {
		rows = filterUnderpriced(rows)
	}
	if opts.MaxResults > 0 && len(rows) > opts.MaxResults {
		rows = rows[:opts.MaxResults]
	}

	writeHeader(w, opts.Colors)
	for _, row := range rows {
		writeRow(w, row, opts.Colors)
	}
	writeSummary(w, results, opts.Colors)
}

func filterUnderpriced(results []*models.ValuationResult) []*models.ValuationResult {
	var filtered []*models.ValuationResult
	for _, result := range results {
		if result.Status == models.StatusUnderpriced {
			filtered = append(filtered, result)
		}
	}
	return filtered
}

func writeHeader(w io.Writer, colors bool) {
	separator := strings.Repeat("=", tableWidth)
	title := fmt.Sprintf("Stock Fair Value Analysis - %s", time.Now().Format("2006-01-02 15:04:05"))

	if colors {
		fmt.Fprintf(w, "%s%s%s%s\n", ColorBold, ColorCyan, separator, ColorReset)
		fmt.Fprintf(w, "%s%s%s%s\n", ColorBold, ColorCyan, title, ColorReset)
		fmt.Fprintf(w, "%s%s%s%s\n", ColorBold, ColorCyan, separator, ColorReset)
	} else {
		fmt.Fprintln(w, separator)
		fmt.Fprintln(w, title)
		fmt.Fprintln(w, separator)
	}

	format := "%-8s %-12s %-14s %-12s %-8s %-12s %-12s %-9s\n"
	columns := []interface{}{"Ticker", "Fair Value", "Current Price", "Difference", "Upside", "Book Value", "Status", "Synthetic"}
	if colors {
		fmt.Fprintf(w, "%s"+format+"%s", append(append([]interface{}{ColorBold}, columns...), ColorReset)...)
	} else {
		fmt.Fprintf(w, format, columns...)
	}
	fmt.Fprintln(w, strings.Repeat("-", tableWidth))
}

func writeRow(w io.Writer, result *models.ValuationResult, colors bool) {
	var color string
	if colors {
		switch result.Status {
		case models.StatusUnderpriced:
			color = ColorGreen
		case models.StatusOverpriced:
			color = ColorRed
		default:
			color = ColorYellow
		}
	}

	reset := ""
	if colors {
		reset = ColorReset
	}

	if result.Status == models.StatusError {
		fmt.Fprintf(w, "%s%-8s %-12s %-14s %-12s %-8s %-12s %-12s %-9s%s\n",
			color, result.Ticker, "-", "-", "-", "-", "-", result.Status, "-", reset)
		return
	}

	synthetic := ""
	if result.Synthetic {
		synthetic = "yes"
	}

	fmt.Fprintf(w, "%s%-8s $%-11.2f $%-13.2f $%-11.2f %6.1f%% $%-11.2f %-12s %-9s%s\n",
		color,
		result.Ticker,
		result.FairValue,
		result.CurrentPrice,
		result.PriceDifference,
		result.UpsidePercentage,
		result.BookValue,
		result.Status,
		synthetic,
		reset)
}

func writeSummary(w io.Writer, results []*models.ValuationResult, colors bool) {
	underpriced := 0
	overpriced := 0
	errored := 0
	totalUpside := 0.0

	for _, result := range results {
		switch result.Status {
		case models.StatusUnderpriced:
			underpriced++
			totalUpside += result.PriceDifference
		case models.StatusOverpriced:
			overpriced++
		default:
			errored++
		}
	}

	avgUpside := 0.0
	if underpriced > 0 {
		avgUpside = totalUpside / float64(underpriced)
	}

	fmt.Fprintln(w, strings.Repeat("=", tableWidth))
	summary := fmt.Sprintf("Analyzed: %d | Underpriced: %d | Overpriced: %d | Errors: %d | Avg upside: $%.2f",
		len(results), underpriced, overpriced, errored, avgUpside)
	if colors {
		fmt.Fprintf(w, "%s%s%s\n", ColorBold, summary, ColorReset)
	} else {
		fmt.Fprintln(w, summary)
	}
}
