// Package universe tracks the monitored symbol set: the top-N coins by
// market capitalization, replaced wholesale on a slow refresh cycle.
package universe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/models"
)

// Dropper discards per-symbol state when a symbol leaves the universe.
// The baseline store and the cooldown tracker both implement it.
type Dropper interface {
	Drop(symbol string) error
}

// Refresher serves the current universe and replaces it when the
// refresh interval has elapsed.
type Refresher struct {
	mu       sync.Mutex
	provider models.CapProvider
	topN     int
	interval time.Duration
	current  models.Universe
	droppers []Dropper
	logger   zerolog.Logger
}

// New builds a Refresher. The first Current call performs the initial
// fetch.
func New(provider models.CapProvider, topN int, interval time.Duration, droppers ...Dropper) *Refresher {
	return &Refresher{
		provider: provider,
		topN:     topN,
		interval: interval,
		droppers: droppers,
		logger:   log.With().Str("component", "universe").Logger(),
	}
}

// Current returns the monitored universe, refreshing it first when the
// interval has elapsed (or when no universe has been fetched yet).
// When the capitalization provider is unreachable the previous universe
// is retained untouched and the refresh is retried on the next call; an
// error is returned only when there is no universe at all to serve.
func (r *Refresher) Current(ctx context.Context, now time.Time) (models.Universe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	initial := r.current.RefreshedAt.IsZero()
	if !initial && now.Sub(r.current.RefreshedAt) < r.interval {
		return r.current, nil
	}

	symbols, err := r.provider.TopSymbols(ctx, r.topN)
	if err != nil {
		if initial {
			return models.Universe{}, fmt.Errorf("fetching initial universe: %w", err)
		}
		// Keep the stale set; RefreshedAt stays put so the next
		// cycle retries.
		r.logger.Warn().Err(err).Msg("Universe refresh failed, keeping previous set")
		return r.current, nil
	}

	replaced := models.Universe{Symbols: symbols, RefreshedAt: now}
	for _, departed := range r.departedSymbols(replaced) {
		for _, d := range r.droppers {
			if err := d.Drop(departed); err != nil {
				r.logger.Error().Err(err).Str("symbol", departed).Msg("Failed to drop state for departed symbol")
			}
		}
		r.logger.Info().Str("symbol", departed).Msg("Symbol left the universe")
	}

	r.current = replaced
	r.logger.Info().Int("symbols", len(symbols)).Msg("Universe refreshed")
	return r.current, nil
}

// Snapshot returns the universe as of the last refresh without
// triggering one. Used by the /top command.
func (r *Refresher) Snapshot() models.Universe {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Refresher) departedSymbols(next models.Universe) []string {
	var departed []string
	for _, s := range r.current.Symbols {
		if !next.Contains(s.Ticker) {
			departed = append(departed, s.Ticker)
		}
	}
	return departed
}
