// Package oracle provides the market price source for the ledger engine.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public Yahoo Finance chart API root.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// YahooClient fetches the latest trade price for a ticker from a Yahoo
// Finance chart endpoint. It implements domain.PriceOracle.
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewYahooClient creates a new quote client.
//
// baseURL is the API root, e.g. "https://query1.finance.yahoo.com"; pass
// DefaultBaseURL unless a proxy or test server is in play.
func NewYahooClient(baseURL string, timeout time.Duration) *YahooClient {
	return &YahooClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// chartResponse mirrors the subset of the chart payload the oracle needs.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				Symbol             string  `json:"symbol"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Quote returns the latest market price for ticker, or an error when the
// endpoint has no data for it.
func (c *YahooClient) Quote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d",
		c.baseURL, url.PathEscape(ticker))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("oracle: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("oracle: fetch quote: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("oracle: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return decimal.Zero, fmt.Errorf("oracle: unexpected status %d for ticker %s", resp.StatusCode, ticker)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return decimal.Zero, fmt.Errorf("oracle: decode response: %w", err)
	}

	if chart.Chart.Error != nil {
		return decimal.Zero, fmt.Errorf("oracle: %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return decimal.Zero, fmt.Errorf("no market data returned for ticker: %s", ticker)
	}

	return decimal.NewFromFloat(chart.Chart.Result[0].Meta.RegularMarketPrice), nil
}
