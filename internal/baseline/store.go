// Package baseline keeps a bounded rolling history of per-window volume
// samples for every monitored symbol and derives the mean/std baseline
// on demand.
package baseline

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/models"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/storage"
)

// ErrNotEnoughData means the symbol's retained history is too short (or
// too flat) to form a meaningful baseline. Callers skip evaluation for
// the cycle; this is not a failure.
var ErrNotEnoughData = errors.New("not enough baseline data")

// Store owns the per-symbol sample history. The in-memory map is
// authoritative within the process; every mutation is written through
// to durable storage so the history survives restarts.
type Store struct {
	mu         sync.Mutex
	samples    map[string][]models.VolumeSample
	lookback   time.Duration
	minSamples int
	db         storage.Store
	logger     zerolog.Logger
}

// New builds a Store and loads the retained history from db.
func New(db storage.Store, lookback time.Duration, minSamples int) (*Store, error) {
	loaded, err := db.LoadSamples(time.Now().UTC().Add(-lookback))
	if err != nil {
		return nil, fmt.Errorf("loading baseline samples: %w", err)
	}

	return &Store{
		samples:    loaded,
		lookback:   lookback,
		minSamples: minSamples,
		db:         db,
		logger:     log.With().Str("component", "baseline").Logger(),
	}, nil
}

// Record appends one aggregated window volume for a symbol and lazily
// evicts samples that fell out of the lookback horizon. Duplicate
// windows are ignored: a sample is immutable once written.
func (s *Store) Record(symbol string, windowStart time.Time, volume float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.samples[symbol]
	for _, sample := range history {
		if sample.WindowStart.Equal(windowStart) {
			return nil
		}
	}

	sample := models.VolumeSample{Symbol: symbol, WindowStart: windowStart, Volume: volume}
	history = append(history, sample)

	cutoff := windowStart.Add(-s.lookback)
	retained := history[:0]
	evicted := 0
	for _, v := range history {
		if v.WindowStart.Before(cutoff) {
			evicted++
			continue
		}
		retained = append(retained, v)
	}
	s.samples[symbol] = retained

	if err := s.db.SaveSample(sample); err != nil {
		return fmt.Errorf("persisting sample: %w", err)
	}
	if evicted > 0 {
		if err := s.db.DeleteSamplesBefore(symbol, cutoff); err != nil {
			return fmt.Errorf("pruning samples: %w", err)
		}
		s.logger.Debug().Str("symbol", symbol).Int("evicted", evicted).Msg("Pruned expired samples")
	}
	return nil
}

// Baseline computes the mean and sample standard deviation over the
// retained samples strictly preceding the given window, so the window
// under evaluation never feeds its own baseline. Standard deviation
// uses the n-1 denominator.
func (s *Store) Baseline(symbol string, before time.Time) (mean, std float64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var values []float64
	for _, sample := range s.samples[symbol] {
		if sample.WindowStart.Before(before) {
			values = append(values, sample.Volume)
		}
	}

	n := len(values)
	if n < s.minSamples {
		return 0, 0, ErrNotEnoughData
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	// A dead or delisted market reports zero volume everywhere; a
	// baseline of zeros would make any trade at all look like a spike.
	if mean <= 0 {
		return 0, 0, ErrNotEnoughData
	}

	var sqsum float64
	for _, v := range values {
		d := v - mean
		sqsum += d * d
	}
	std = math.Sqrt(sqsum / float64(n-1))

	return mean, std, nil
}

// Len returns the number of retained samples for a symbol.
func (s *Store) Len(symbol string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples[symbol])
}

// Drop discards all history for a symbol that left the universe.
func (s *Store) Drop(symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.samples, symbol)
	if err := s.db.DeleteSamples(symbol); err != nil {
		return fmt.Errorf("dropping samples: %w", err)
	}
	return nil
}
