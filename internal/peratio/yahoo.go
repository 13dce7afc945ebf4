package peratio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const yahooSummaryURL = "https://query1.finance.yahoo.com/v11/finance/quoteSummary"

// YahooSource reads the trailing P/E from the Yahoo Finance quote
// summary endpoint.
type YahooSource struct {
	client  *http.Client
	baseURL string
}

// NewYahooSource creates a source against the public Yahoo endpoint
func NewYahooSource() *YahooSource {
	return &YahooSource{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: yahooSummaryURL,
	}
}

func (y *YahooSource) Name() string { return "yahoo" }

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				TrailingPE struct {
					Raw float64 `json:"raw"`
				} `json:"trailingPE"`
			} `json:"summaryDetail"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

func (y *YahooSource) FetchPERatio(ctx context.Context, ticker string) (float64, error) {
	url := fmt.Sprintf("%s/%s?modules=summaryDetail", y.baseURL, ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, ErrUnavailable
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		return 0, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, ErrUnavailable
	}

	var summary quoteSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return 0, ErrUnavailable
	}

	if len(summary.QuoteSummary.Result) == 0 {
		return 0, ErrUnavailable
	}
	ratio := summary.QuoteSummary.Result[0].SummaryDetail.TrailingPE.Raw
	if ratio <= 0 {
		return 0, ErrUnavailable
	}
	return ratio, nil
}
