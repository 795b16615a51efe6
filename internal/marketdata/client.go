package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Sentinel errors surfaced to the service layer.
var (
	// ErrRateLimited is returned when the upstream reports API credit exhaustion.
	ErrRateLimited = errors.New("market data rate limit exceeded")
	// ErrNoData is returned when the upstream has no values for the request.
	ErrNoData = errors.New("no market data available")
)

const defaultTimeout = 10 * time.Second

// QuoteResponse mirrors the upstream quote payload. Numeric fields arrive as
// strings and are parsed by the caller; Code/Message form the upstream error
// envelope and are zero on success.
type QuoteResponse struct {
	Symbol        string `json:"symbol"`
	Close         string `json:"close"`
	High          string `json:"high"`
	Low           string `json:"low"`
	Volume        string `json:"volume"`
	PercentChange string `json:"percent_change"`
	Code          int    `json:"code"`
	Message       string `json:"message"`
}

// SeriesValue is one candle in an upstream time series, newest first.
type SeriesValue struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume"`
}

// SeriesMeta carries the upstream's echo of the requested symbol/interval.
type SeriesMeta struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
}

// SeriesResponse mirrors the upstream time-series payload.
type SeriesResponse struct {
	Meta    SeriesMeta    `json:"meta"`
	Values  []SeriesValue `json:"values"`
	Code    int           `json:"code"`
	Message string        `json:"message"`
}

// Client is a thin HTTP client for the Twelve Data REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a market data client. baseURL is overridable for tests.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Quote fetches the current snapshot quote for a single symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*QuoteResponse, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("apikey", c.apiKey)

	var quote QuoteResponse
	if err := c.getJSON(ctx, "/quote", q, &quote); err != nil {
		return nil, err
	}
	if quote.Code == http.StatusTooManyRequests {
		return nil, fmt.Errorf("quote %s: %w", symbol, ErrRateLimited)
	}
	if quote.Code != 0 {
		return nil, fmt.Errorf("quote %s: upstream error %d: %s", symbol, quote.Code, quote.Message)
	}
	return &quote, nil
}

// TimeSeries fetches historical candles for a symbol. The upstream returns
// values in descending chronological order.
func (c *Client) TimeSeries(ctx context.Context, symbol, interval string, outputSize int) (*SeriesResponse, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(outputSize))
	q.Set("apikey", c.apiKey)

	var series SeriesResponse
	if err := c.getJSON(ctx, "/time_series", q, &series); err != nil {
		return nil, err
	}
	if series.Code == http.StatusTooManyRequests {
		return nil, fmt.Errorf("time series %s: %w", symbol, ErrRateLimited)
	}
	if series.Code != 0 {
		return nil, fmt.Errorf("time series %s: upstream error %d: %s", symbol, series.Code, series.Message)
	}
	if len(series.Values) == 0 {
		return nil, fmt.Errorf("time series %s: %w", symbol, ErrNoData)
	}
	return &series, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	// The upstream reports errors inside the JSON body with HTTP 200, but a
	// transport-level 429 is still possible behind proxies.
	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request to %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
