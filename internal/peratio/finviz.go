package peratio

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const finvizBaseURL = "https://finviz.com/quote.ashx"

// FinvizSource scrapes the P/E cell from a ticker's Finviz snapshot
// table. Any transport, parse, or layout failure reads as unavailable.
type FinvizSource struct {
	client  *http.Client
	baseURL string
}

// NewFinvizSource creates a source against the public Finviz site
func NewFinvizSource() *FinvizSource {
	return &FinvizSource{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: finvizBaseURL,
	}
}

func (f *FinvizSource) Name() string { return "finviz" }

func (f *FinvizSource) FetchPERatio(ctx context.Context, ticker string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?t=%s", f.baseURL, ticker), nil)
	if err != nil {
		return 0, ErrUnavailable
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, ErrUnavailable
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, ErrUnavailable
	}

	ratio := 0.0
	doc.Find("table.snapshot-table2 td").EachWithBreak(func(i int, cell *goquery.Selection) bool {
		if strings.TrimSpace(cell.Text()) != "P/E" {
			return true
		}
		value := strings.TrimSpace(cell.Next().Text())
		if parsed, perr := strconv.ParseFloat(value, 64); perr == nil {
			ratio = parsed
		}
		return false
	})

	if ratio <= 0 {
		return 0, ErrUnavailable
	}
	return ratio, nil
}
