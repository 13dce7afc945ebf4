package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jdoyle7/stock-valuation-system/internal/models"
)

const (
	yahooChartURL   = "https://query1.finance.yahoo.com/v8/finance/chart"
	yahooSummaryURL = "https://query1.finance.yahoo.com/v11/finance/quoteSummary"
)

// YahooProvider assembles a RawSnapshot from the Yahoo Finance chart and
// quote-summary endpoints. Either call may fail independently; the
// snapshot carries whatever was obtained. Only when both fail is the
// snapshot reported as unobtainable.
type YahooProvider struct {
	client     *http.Client
	chartURL   string
	summaryURL string
}

// NewYahooProvider creates a provider against the public Yahoo endpoints
func NewYahooProvider(timeout time.Duration) *YahooProvider {
	return &YahooProvider{
		client:     &http.Client{Timeout: timeout},
		chartURL:   yahooChartURL,
		summaryURL: yahooSummaryURL,
	}
}

// yahooValue is Yahoo's {"raw": n, "fmt": "..."} number wrapper
type yahooValue struct {
	Raw *float64 `json:"raw"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				PreviousClose      *float64 `json:"previousClose"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			DefaultKeyStatistics struct {
				TrailingEps *float64   `json:"trailingEps,omitempty"`
				ForwardEps  *float64   `json:"forwardEps,omitempty"`
				BookValue   yahooValue `json:"bookValue"`
				SharesOut   yahooValue `json:"sharesOutstanding"`
			} `json:"defaultKeyStatistics"`
			SummaryDetail struct {
				MarketCap yahooValue `json:"marketCap"`
			} `json:"summaryDetail"`
			FinancialData struct {
				FreeCashflow      yahooValue `json:"freeCashflow"`
				OperatingCashflow yahooValue `json:"operatingCashflow"`
				EarningsGrowth    yahooValue `json:"earningsGrowth"`
				RevenueGrowth     yahooValue `json:"revenueGrowth"`
			} `json:"financialData"`
			AssetProfile struct {
				Sector *string `json:"sector"`
			} `json:"assetProfile"`
			Price struct {
				LongName *string `json:"longName"`
			} `json:"price"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

// Snapshot fetches price and fundamentals for a ticker
func (p *YahooProvider) Snapshot(ctx context.Context, ticker string) (*models.RawSnapshot, error) {
	snap := &models.RawSnapshot{Ticker: ticker}

	chartErr := p.fillFromChart(ctx, ticker, snap)
	summaryErr := p.fillFromSummary(ctx, ticker, snap)

	if chartErr != nil && summaryErr != nil {
		return nil, fmt.Errorf("snapshot unobtainable for %s: chart: %v; summary: %v", ticker, chartErr, summaryErr)
	}
	return snap, nil
}

func (p *YahooProvider) fillFromChart(ctx context.Context, ticker string, snap *models.RawSnapshot) error {
	var chart chartResponse
	if err := p.getJSON(ctx, fmt.Sprintf("%s/%s?interval=1d&range=1d", p.chartURL, ticker), &chart); err != nil {
		return err
	}
	if len(chart.Chart.Result) == 0 {
		return fmt.Errorf("no chart data for %s", ticker)
	}

	result := chart.Chart.Result[0]
	snap.RegularMarketPrice = result.Meta.RegularMarketPrice
	snap.PreviousClose = result.Meta.PreviousClose
	if len(result.Indicators.Quote) > 0 {
		closes := result.Indicators.Quote[0].Close
		for i := len(closes) - 1; i >= 0; i-- {
			if closes[i] != nil && *closes[i] > 0 {
				snap.QuoteClose = closes[i]
				break
			}
		}
	}
	return nil
}

func (p *YahooProvider) fillFromSummary(ctx context.Context, ticker string, snap *models.RawSnapshot) error {
	url := fmt.Sprintf("%s/%s?modules=defaultKeyStatistics,summaryDetail,financialData,assetProfile,price", p.summaryURL, ticker)
	var summary summaryResponse
	if err := p.getJSON(ctx, url, &summary); err != nil {
		return err
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return fmt.Errorf("no summary data for %s", ticker)
	}

	result := summary.QuoteSummary.Result[0]
	snap.TrailingEPS = result.DefaultKeyStatistics.TrailingEps
	snap.ForwardEPS = result.DefaultKeyStatistics.ForwardEps
	snap.BookValue = result.DefaultKeyStatistics.BookValue.Raw
	snap.SharesOutstanding = result.DefaultKeyStatistics.SharesOut.Raw
	snap.MarketCap = result.SummaryDetail.MarketCap.Raw
	snap.FreeCashFlow = result.FinancialData.FreeCashflow.Raw
	snap.OperatingCashFlow = result.FinancialData.OperatingCashflow.Raw
	snap.EarningsGrowth = result.FinancialData.EarningsGrowth.Raw
	snap.RevenueGrowth = result.FinancialData.RevenueGrowth.Raw
	snap.Sector = result.AssetProfile.Sector
	snap.CompanyName = result.Price.LongName
	return nil
}

func (p *YahooProvider) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
