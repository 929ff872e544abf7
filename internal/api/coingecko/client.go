// Package coingecko resolves the top-N coins by market capitalization.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/models"
	httpclient "github.com/San4ouzs/Crypto-volume-spike-bot/internal/platform/http"
)

// Client is the CoinGecko API client
type Client struct {
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new CoinGecko client
type ClientOptions struct {
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewClient creates a new CoinGecko API client
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.coingecko.com/api/v3"
	}

	return &Client{
		baseURL: opts.BaseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:        opts.RequestTimeout,
			RequestsPerSec: opts.RequestsPerSec,
		}),
		logger: log.With().Str("component", "coingecko_client").Logger(),
	}
}

type marketEntry struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// TopSymbols returns the top-n coins by market cap, ordered descending,
// tickers upper-cased.
func (c *Client) TopSymbols(ctx context.Context, n int) ([]models.Symbol, error) {
	url := fmt.Sprintf(
		"%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=1",
		c.baseURL,
		n,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("coingecko request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var entries []marketEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("empty market list returned")
	}

	symbols := make([]models.Symbol, 0, len(entries))
	for _, e := range entries {
		ticker := strings.ToUpper(strings.TrimSpace(e.Symbol))
		if ticker == "" {
			continue
		}
		name := e.Name
		if name == "" {
			name = ticker
		}
		symbols = append(symbols, models.Symbol{Ticker: ticker, Name: name})
	}

	c.logger.Debug().Int("count", len(symbols)).Msg("Fetched top symbols")
	return symbols, nil
}
