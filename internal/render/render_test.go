package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdoyle7/stock-valuation-system/internal/models"
)

func result(ticker, status string, diff float64) *models.ValuationResult {
	return &models.ValuationResult{
		Ticker:          ticker,
		Status:          status,
		PriceDifference: diff,
		FairValue:       100 + diff,
		CurrentPrice:    100,
		BookValue:       30,
	}
}

func TestSort(t *testing.T) {
	results := []*models.ValuationResult{
		result("ZED", models.StatusOverpriced, -12),
		result("AAA", models.StatusError, 0),
		result("BBB", models.StatusUnderpriced, 5),
		result("APL", models.StatusOverpriced, -3),
		result("CCC", models.StatusUnderpriced, 20),
	}

	Sort(results)

	order := make([]string, len(results))
	for i, r := range results {
		order[i] = r.Ticker
	}
	// Underpriced by descending difference, overpriced alphabetical, errors last
	assert.Equal(t, []string{"CCC", "BBB", "APL", "ZED", "AAA"}, order)
}

func TestTable(t *testing.T) {
	t.Run("renders all rows with summary", func(t *testing.T) {
		var buf bytes.Buffer
		Table(&buf, []*models.ValuationResult{
			result("AAPL", models.StatusUnderpriced, 15),
			result("TSLA", models.StatusOverpriced, -40),
			result("FAIL", models.StatusError, 0),
		}, Options{})

		out := buf.String()
		assert.Contains(t, out, "AAPL")
		assert.Contains(t, out, "TSLA")
		assert.Contains(t, out, "FAIL")
		assert.Contains(t, out, "Analyzed: 3 | Underpriced: 1 | Overpriced: 1 | Errors: 1")
		assert.Contains(t, out, "Avg upside: $15.00")
		assert.NotContains(t, out, ColorGreen)
	})

	t.Run("underpriced filter hides other rows but keeps full summary", func(t *testing.T) {
		var buf bytes.Buffer
		Table(&buf, []*models.ValuationResult{
			result("AAPL", models.StatusUnderpriced, 15),
			result("TSLA", models.StatusOverpriced, -40),
		}, Options{OnlyUnderpriced: true})

		out := buf.String()
		assert.Contains(t, out, "AAPL")
		assert.NotContains(t, out, "TSLA")
		assert.Contains(t, out, "Analyzed: 2")
		assert.Contains(t, out, "Overpriced: 1")
	})

	t.Run("max results truncates rows", func(t *testing.T) {
		var buf bytes.Buffer
		Table(&buf, []*models.ValuationResult{
			result("AAA", models.StatusUnderpriced, 30),
			result("BBB", models.StatusUnderpriced, 20),
			result("CCC", models.StatusUnderpriced, 10),
		}, Options{MaxResults: 2})

		out := buf.String()
		assert.Contains(t, out, "AAA")
		assert.Contains(t, out, "BBB")
		require.Equal(t, 1, strings.Count(out, "Analyzed"))
		assert.NotContains(t, out, "CCC")
	})

	t.Run("colors wrap rows when enabled", func(t *testing.T) {
		var buf bytes.Buffer
		Table(&buf, []*models.ValuationResult{
			result("AAPL", models.StatusUnderpriced, 15),
		}, Options{Colors: true})

		assert.Contains(t, buf.String(), ColorGreen)
	})

	t.Run("empty input prints notice", func(t *testing.T) {
		var buf bytes.Buffer
		Table(&buf, nil, Options{})
		assert.Equal(t, "No results to display!\n", buf.String())
	})

	t.Run("does not reorder the caller's slice", func(t *testing.T) {
		results := []*models.ValuationResult{
			result("TSLA", models.StatusOverpriced, -40),
			result("AAPL", models.StatusUnderpriced, 15),
		}
		var buf bytes.Buffer
		Table(&buf, results, Options{})
		assert.Equal(t, "TSLA", results[0].Ticker)
	})
}
