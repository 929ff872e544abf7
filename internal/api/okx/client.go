// Package okx fetches spot candlestick volume from the OKX public API.
package okx

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

// Client is the OKX market-data client
type Client struct {
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new OKX client
type ClientOptions struct {
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewClient creates a new OKX market-data client
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://www.okx.com"
	}

	return &Client{
		baseURL: opts.BaseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:        opts.RequestTimeout,
			RequestsPerSec: opts.RequestsPerSec,
		}),
		logger: log.With().Str("component", "okx_client").Logger(),
	}
}

// candleResponse is the OKX candles envelope. Every candle row is
// [ts, open, high, low, close, vol, volCcy, volCcyQuote, confirm],
// all fields encoded as strings.
type candleResponse struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data [][]string `json:"data"`
}

// Name returns the stable source identity used in aggregation.
func (c *Client) Name() string { return "okx" }

// WindowVolume returns the base-asset volume traded in the window
// starting at windowStart for the COIN-USDT spot instrument.
func (c *Client) WindowVolume(ctx context.Context, symbol string, windowStart time.Time, window time.Duration) (float64, error) {
	// "after" is exclusive and candles come newest-first, so asking
	// for the candle after windowStart+window yields the window itself.
	url := fmt.Sprintf(
		"%s/api/v5/market/candles?instId=%s-USDT&bar=%dm&after=%d&limit=1",
		c.baseURL,
		symbol,
		int(window.Minutes()),
		windowStart.Add(window).UnixMilli(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("okx request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading response body: %w", err)
	}

	var data candleResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return 0, fmt.Errorf("parsing JSON: %w", err)
	}
	if data.Code != "0" {
		return 0, fmt.Errorf("okx API error %s: %s", data.Code, data.Msg)
	}

	for _, row := range data.Data {
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

	return 0, fmt.Errorf("no candle for %s at %s", symbol, windowStart.Format(time.RFC3339))
}
