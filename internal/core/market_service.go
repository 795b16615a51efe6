package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"forexpro-backend-go/internal/cache"
	"forexpro-backend-go/internal/marketdata"
	"forexpro-backend-go/internal/models"
)

// Errors surfaced by market data operations. Rate-limit and no-data
// conditions from the upstream client pass through as
// marketdata.ErrRateLimited / marketdata.ErrNoData.
var ErrPairRequired = errors.New("currency pair is required")

// DefaultPairs are the major pairs served when a snapshot request names none.
var DefaultPairs = []string{
	"EUR/USD", "GBP/USD", "USD/JPY", "USD/CHF",
	"AUD/USD", "USD/CAD", "NZD/USD", "EUR/GBP",
	"EUR/JPY", "GBP/JPY",
}

const (
	defaultInterval   = "15min"
	defaultOutputSize = 100
)

// MarketDataClient is the upstream capability the service depends on.
type MarketDataClient interface {
	Quote(ctx context.Context, symbol string) (*marketdata.QuoteResponse, error)
	TimeSeries(ctx context.Context, symbol, interval string, outputSize int) (*marketdata.SeriesResponse, error)
}

// marketService implements the MarketService interface.
type marketService struct {
	client   MarketDataClient
	cache    cache.Cache // nil disables snapshot caching
	cacheTTL time.Duration
}

// NewMarketService creates a MarketService. snapshotCache may be nil, in
// which case every snapshot request goes to the upstream.
func NewMarketService(client MarketDataClient, snapshotCache cache.Cache, cacheTTL time.Duration) MarketService {
	return &marketService{
		client:   client,
		cache:    snapshotCache,
		cacheTTL: cacheTTL,
	}
}

// GetSnapshot fetches current quotes for the given pairs concurrently and
// reshapes them into normalized records. Per-pair failures (including rate
// limits) drop that pair rather than failing the batch; output order matches
// input order.
func (s *marketService) GetSnapshot(ctx context.Context, pairs []string) (*models.SnapshotResponse, error) {
	if len(pairs) == 0 {
		pairs = DefaultPairs
	}

	cacheKey := "market:snapshot:" + strings.Join(pairs, ",")
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var resp models.SnapshotResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
		}
	}

	// Results are collected positionally so output order matches input order
	// regardless of which upstream call settles first.
	results := make([]*models.PairQuote, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	for i, pair := range pairs {
		g.Go(func() error {
			quote, err := s.client.Quote(gctx, pair)
			if err != nil {
				// Best-effort batch: a failed or rate-limited pair is simply absent.
				log.Printf("snapshot: dropping %s: %v", pair, err)
				return nil
			}
			results[i] = normalizeQuote(pair, quote)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("snapshot fan-out failed: %w", err)
	}

	resp := &models.SnapshotResponse{Pairs: make([]models.PairQuote, 0, len(pairs))}
	for _, r := range results {
		if r != nil {
			resp.Pairs = append(resp.Pairs, *r)
		}
	}

	if s.cache != nil && len(resp.Pairs) > 0 {
		if encoded, err := json.Marshal(resp); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(encoded), s.cacheTTL); err != nil {
				log.Printf("snapshot: failed to cache result: %v", err)
			}
		}
	}

	return resp, nil
}

// GetTimeSeries fetches historical candles for one pair. The upstream returns
// values newest first; they are reversed to chronological ascending order.
func (s *marketService) GetTimeSeries(ctx context.Context, req models.TimeSeriesRequest) (*models.TimeSeriesResponse, error) {
	if strings.TrimSpace(req.Pair) == "" {
		return nil, ErrPairRequired
	}
	interval := req.Interval
	if interval == "" {
		interval = defaultInterval
	}
	outputSize := req.OutputSize
	if outputSize <= 0 {
		outputSize = defaultOutputSize
	}

	series, err := s.client.TimeSeries(ctx, req.Pair, interval, outputSize)
	if err != nil {
		return nil, err
	}

	data := make([]models.TimeSeriesPoint, 0, len(series.Values))
	for i := len(series.Values) - 1; i >= 0; i-- {
		v := series.Values[i]
		closePrice, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			continue
		}
		volume, _ := strconv.ParseInt(v.Volume, 10, 64)
		data = append(data, models.TimeSeriesPoint{
			Time:   v.Datetime,
			Price:  closePrice,
			Open:   parseFloatOr(v.Open, closePrice),
			High:   parseFloatOr(v.High, closePrice),
			Low:    parseFloatOr(v.Low, closePrice),
			Volume: volume,
		})
	}

	pair := series.Meta.Symbol
	if pair == "" {
		pair = req.Pair
	}
	if series.Meta.Interval != "" {
		interval = series.Meta.Interval
	}

	return &models.TimeSeriesResponse{
		Pair:     pair,
		Interval: interval,
		Data:     data,
	}, nil
}

// normalizeQuote reshapes an upstream quote into a PairQuote, or nil when the
// quote carries no close price.
func normalizeQuote(pair string, quote *marketdata.QuoteResponse) *models.PairQuote {
	if quote == nil || quote.Close == "" {
		return nil
	}
	price, err := strconv.ParseFloat(quote.Close, 64)
	if err != nil {
		return nil
	}
	change := parseFloatOr(quote.PercentChange, 0)

	volume := quote.Volume
	if volume == "" {
		volume = "N/A"
	}

	return &models.PairQuote{
		Pair:      pair,
		Price:     price,
		Change:    change,
		Direction: models.DirectionFromChange(change),
		High:      parseFloatOr(quote.High, price),
		Low:       parseFloatOr(quote.Low, price),
		Volume:    volume,
	}
}

func parseFloatOr(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}
