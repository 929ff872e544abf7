// Package binance fetches spot kline volume from the Binance public API.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "github.com/San4ouzs/Crypto-volume-spike-bot/internal/platform/http"
)

// Client is the Binance market-data client
type Client struct {
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Binance client
type ClientOptions struct {
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewClient creates a new Binance market-data client
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.binance.com"
	}

	return &Client{
		baseURL: opts.BaseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:        opts.RequestTimeout,
			RequestsPerSec: opts.RequestsPerSec,
		}),
		logger: log.With().Str("component", "binance_client").Logger(),
	}
}

// Name returns the stable source identity used in aggregation.
func (c *Client) Name() string { return "binance" }

// WindowVolume returns the base-asset volume traded in the window
// starting at windowStart for the COIN/USDT spot pair.
func (c *Client) WindowVolume(ctx context.Context, symbol string, windowStart time.Time, window time.Duration) (float64, error) {
	url := fmt.Sprintf(
		"%s/api/v3/klines?symbol=%sUSDT&interval=%dm&startTime=%d&limit=1",
		c.baseURL,
		symbol,
		int(window.Minutes()),
		windowStart.UnixMilli(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("binance request failed: %w", err)
	}
	defer resp.Body.Close()

	// Kline rows are heterogeneous arrays:
	// [openTime, open, high, low, close, volume, closeTime, ...]
	var klines [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&klines); err != nil {
		return 0, fmt.Errorf("parsing klines: %w", err)
	}

	for _, k := range klines {
		if len(k) < 6 {
			continue
		}
		var openTime int64
		if err := json.Unmarshal(k[0], &openTime); err != nil {
			continue
		}
		if openTime != windowStart.UnixMilli() {
			continue
		}
		var volStr string
		if err := json.Unmarshal(k[5], &volStr); err != nil {
			return 0, fmt.Errorf("parsing volume: %w", err)
		}
		vol, err := strconv.ParseFloat(volStr, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing volume: %w", err)
		}
		c.logger.Debug().Str("symbol", symbol).Float64("volume", vol).Msg("Fetched window volume")
		return vol, nil
	}

	return 0, fmt.Errorf("no kline for %s at %s", symbol, windowStart.Format(time.RFC3339))
}
