// Package monitor drives the poll loop: refresh the universe, fetch and
// aggregate per-symbol volume, grow the baseline, evaluate the signal,
// consult the cooldown and emit alerts.
package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/aggregate"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/baseline"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/cooldown"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/metrics"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/models"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/signal"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/storage"
)

// UniverseProvider serves the monitored symbol set, refreshing it when
// due.
type UniverseProvider interface {
	Current(ctx context.Context, now time.Time) (models.Universe, error)
}

// Options wires the orchestrator's collaborators and tuning.
type Options struct {
	Sources  []models.Source
	Universe UniverseProvider
	Baseline *baseline.Store
	Cooldown *cooldown.Tracker
	Notifier models.Notifier
	Store    storage.Store
	Metrics  *metrics.Recorder

	Window          time.Duration
	Poll            time.Duration
	RequestTimeout  time.Duration
	PctThreshold    float64
	ZScoreThreshold float64
	MaxConcurrency  int

	// Now is the clock source; defaults to time.Now. Injected for
	// tests.
	Now func() time.Time
}

// Monitor owns cycle-to-cycle control flow. One cycle fully completes
// before the next begins.
type Monitor struct {
	opts   Options
	logger zerolog.Logger
}

// New creates a Monitor.
func New(opts Options) *Monitor {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 1
	}
	return &Monitor{
		opts:   opts,
		logger: log.With().Str("component", "monitor").Logger(),
	}
}

// Run executes poll cycles until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.opts.Poll)
	defer ticker.Stop()

	m.RunCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.RunCycle(ctx)
		}
	}
}

// RunCycle performs one poll iteration. Per-symbol failures are
// isolated: they are logged and counted, never propagated.
func (m *Monitor) RunCycle(ctx context.Context) {
	started := m.opts.Now()

	univ, err := m.opts.Universe.Current(ctx, started)
	if err != nil {
		m.logger.Error().Err(err).Msg("No universe available, skipping cycle")
		return
	}

	// Evaluate the last fully closed window; the one in progress has
	// partial volume and would read as a drop.
	windowStart := started.UTC().Truncate(m.opts.Window).Add(-m.opts.Window)

	g := new(errgroup.Group)
	g.SetLimit(m.opts.MaxConcurrency)
	for _, sym := range univ.Symbols {
		sym := sym
		g.Go(func() error {
			m.processSymbol(ctx, sym, windowStart)
			return nil
		})
	}
	_ = g.Wait()

	m.opts.Metrics.CycleDone(time.Since(started))
	m.logger.Debug().
		Int("symbols", len(univ.Symbols)).
		Time("window_start", windowStart).
		Dur("elapsed", time.Since(started)).
		Msg("Cycle complete")
}

func (m *Monitor) processSymbol(ctx context.Context, sym models.Symbol, windowStart time.Time) {
	readings := m.fetchReadings(ctx, sym.Ticker, windowStart)

	agg, err := aggregate.Combine(readings)
	if err != nil {
		if errors.Is(err, aggregate.ErrNoSourceAvailable) {
			m.opts.Metrics.SymbolSkipped("no_source")
			m.logger.Warn().Str("symbol", sym.Ticker).Msg("All sources failed, skipping symbol this cycle")
		} else {
			m.logger.Error().Err(err).Str("symbol", sym.Ticker).Msg("Aggregation failed")
		}
		return
	}

	// The sample is recorded even on cycles that cannot evaluate a
	// signal yet, so the baseline always grows.
	if err := m.opts.Baseline.Record(sym.Ticker, windowStart, agg.Volume); err != nil {
		m.logger.Error().Err(err).Str("symbol", sym.Ticker).Msg("Failed to record sample")
		return
	}

	mean, std, err := m.opts.Baseline.Baseline(sym.Ticker, windowStart)
	if err != nil {
		if errors.Is(err, baseline.ErrNotEnoughData) {
			m.opts.Metrics.SymbolSkipped("not_enough_data")
			m.logger.Debug().Str("symbol", sym.Ticker).Msg("Baseline too short, skipping evaluation")
		} else {
			m.logger.Error().Err(err).Str("symbol", sym.Ticker).Msg("Baseline computation failed")
		}
		return
	}

	verdict := signal.Evaluate(sym.Ticker, windowStart, agg.Volume, mean, std,
		m.opts.PctThreshold, m.opts.ZScoreThreshold)
	if !verdict.Triggered {
		return
	}

	now := m.opts.Now()
	if !m.opts.Cooldown.MayAlert(sym.Ticker, now) {
		m.opts.Metrics.SymbolSkipped("cooldown")
		m.logger.Debug().Str("symbol", sym.Ticker).Msg("Alert suppressed by cooldown")
		return
	}

	// Hand-off to the notifier counts as sent: a delivery failure is
	// logged but never rolls the cooldown back.
	if err := m.opts.Notifier.SendAlert(sym, verdict, agg.Sources); err != nil {
		m.logger.Error().Err(err).Str("symbol", sym.Ticker).Msg("Alert delivery failed")
	}
	if err := m.opts.Cooldown.RecordAlert(sym.Ticker, now); err != nil {
		m.logger.Error().Err(err).Str("symbol", sym.Ticker).Msg("Failed to record alert time")
	}
	if err := m.opts.Store.SaveSpike(models.Spike{
		Timestamp: now,
		Symbol:    sym.Ticker,
		Pct:       verdict.PctChange,
		ZScore:    verdict.ZScore,
		Observed:  verdict.Observed,
		Mean:      verdict.BaselineMean,
		Std:       verdict.BaselineStd,
		Exchanges: agg.Sources,
	}); err != nil {
		m.logger.Error().Err(err).Str("symbol", sym.Ticker).Msg("Failed to record spike history")
	}

	m.opts.Metrics.AlertSent(string(verdict.Reason))
	m.logger.Info().
		Str("symbol", sym.Ticker).
		Str("reason", string(verdict.Reason)).
		Float64("observed", verdict.Observed).
		Float64("mean", mean).
		Float64("std", std).
		Msg("Spike alert delivered")
}

// fetchReadings asks every source for the symbol's window volume. Each
// fetch runs under its own timeout; a failed source yields an errored
// reading that aggregation excludes. No retry within the cycle: the
// next poll is the retry.
func (m *Monitor) fetchReadings(ctx context.Context, ticker string, windowStart time.Time) []models.SourceReading {
	readings := make([]models.SourceReading, 0, len(m.opts.Sources))
	for _, src := range m.opts.Sources {
		fetchCtx, cancel := context.WithTimeout(ctx, m.opts.RequestTimeout)
		vol, err := src.WindowVolume(fetchCtx, ticker, windowStart, m.opts.Window)
		cancel()

		if err != nil {
			m.opts.Metrics.SourceFailed(src.Name())
			m.logger.Debug().Err(err).
				Str("symbol", ticker).
				Str("source", src.Name()).
				Msg("Source unavailable")
		}
		readings = append(readings, models.SourceReading{
			Source: src.Name(),
			Volume: vol,
			Err:    err,
		})
	}
	return readings
}
