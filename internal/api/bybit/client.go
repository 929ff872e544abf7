// Package bybit fetches spot kline volume from the Bybit public API.
package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "github.com/San4ouzs/Crypto-volume-spike-bot/internal/platform/http"
)

// Client is the Bybit market-data client
type Client struct {
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Bybit client
type ClientOptions struct {
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewClient creates a new Bybit market-data client
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.bybit.com"
	}

	return &Client{
		baseURL: opts.BaseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:        opts.RequestTimeout,
			RequestsPerSec: opts.RequestsPerSec,
		}),
		logger: log.With().Str("component", "bybit_client").Logger(),
	}
}

// klineResponse is the Bybit v5 kline envelope. Each list row is
// [startTime, open, high, low, close, volume, turnover], string-encoded.
type klineResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List [][]string `json:"list"`
	} `json:"result"`
}

// Name returns the stable source identity used in aggregation.
func (c *Client) Name() string { return "bybit" }

// WindowVolume returns the base-asset volume traded in the window
// starting at windowStart for the COINUSDT spot pair.
func (c *Client) WindowVolume(ctx context.Context, symbol string, windowStart time.Time, window time.Duration) (float64, error) {
	url := fmt.Sprintf(
		"%s/v5/market/kline?category=spot&symbol=%sUSDT&interval=%d&start=%d&limit=1",
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
		return 0, fmt.Errorf("bybit request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading response body: %w", err)
	}

	var data klineResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return 0, fmt.Errorf("parsing JSON: %w", err)
	}
	if data.RetCode != 0 {
		return 0, fmt.Errorf("bybit API error %d: %s", data.RetCode, data.RetMsg)
	}

	for _, row := range data.Result.List {
		if len(row) < 6 {
			continue
		}
		ts, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil || ts != windowStart.UnixMilli() {
			continue
		}
		vol, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return 0, fmt.Errorf("parsing volume: %w", err)
		}
		c.logger.Debug().Str("symbol", symbol).Float64("volume", vol).Msg("Fetched window volume")
		return vol, nil
	}

	return 0, fmt.Errorf("no kline for %s at %s", symbol, windowStart.Format(time.RFC3339))
}
