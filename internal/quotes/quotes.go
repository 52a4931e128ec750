package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const chartURL = "https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=1d&range=5d"

// Client fetches market prices from the Yahoo Finance chart API.
type Client struct {
	httpClient *http.Client
	// symbolSuffix is appended to bare ticker symbols before querying,
	// e.g. ".NS" for NSE listings.
	symbolSuffix string
}

// NewClient creates a quote client. suffix may be empty for symbols that are
// already fully qualified.
func NewClient(suffix string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		symbolSuffix: suffix,
	}
}

// FetchQuote retrieves the latest price for a ticker symbol. The configured
// exchange suffix is appended before querying.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (Quote, error) {
	url := fmt.Sprintf(chartURL, symbol+c.symbolSuffix)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Quote{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to read quote response for %s: %w", symbol, err)
	}

	var response chartResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return Quote{}, fmt.Errorf("failed to decode quote response for %s: %w", symbol, err)
	}
	if response.Chart.Error != nil {
		return Quote{}, fmt.Errorf("quote lookup for %s failed: %s", symbol, response.Chart.Error.Description)
	}
	if len(response.Chart.Result) == 0 {
		return Quote{}, fmt.Errorf("no quote results for %s", symbol)
	}

	return parseQuote(symbol, response)
}

func parseQuote(symbol string, response chartResponse) (Quote, error) {
	meta := response.Chart.Result[0].Meta

	price := meta.RegularMarketPrice
	if price == 0 {
		// Some delisted symbols return chart data without a market price.
		// Fall back to the most recent close.
		closes := lastCloses(response)
		if len(closes) == 0 {
			return Quote{}, fmt.Errorf("no usable price for %s", symbol)
		}
		price = closes[len(closes)-1]
	}

	q := Quote{
		Symbol:       symbol,
		Currency:     meta.Currency,
		CurrentPrice: decimal.NewFromFloat(price),
		FetchedAt:    time.Now().UTC(),
	}

	if meta.PreviousClose > 0 {
		prev := decimal.NewFromFloat(meta.PreviousClose)
		q.PreviousClose = &prev
		if !prev.IsZero() {
			pct := q.CurrentPrice.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(4)
			q.ChangePercent = &pct
		}
	}
	return q, nil
}

func lastCloses(response chartResponse) []float64 {
	result := response.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	var closes []float64
	for _, c := range result.Indicators.Quote[0].Close {
		if c > 0 {
			closes = append(closes, c)
		}
	}
	return closes
}
