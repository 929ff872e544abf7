package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/models"
)

// MemoryStore is a non-durable Store kept entirely in process memory.
// Used by tests and by ephemeral runs where persistence is not wanted.
type MemoryStore struct {
	mu      sync.Mutex
	samples map[string][]models.VolumeSample
	alerts  map[string]time.Time
	spikes  []models.Spike
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		samples: make(map[string][]models.VolumeSample),
		alerts:  make(map[string]time.Time),
	}
}

func (s *MemoryStore) SaveSample(sample models.VolumeSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.samples[sample.Symbol] {
		if existing.WindowStart.Equal(sample.WindowStart) {
			return nil
		}
	}
	s.samples[sample.Symbol] = append(s.samples[sample.Symbol], sample)
	return nil
}

func (s *MemoryStore) DeleteSamplesBefore(symbol string, cutoff time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.samples[symbol]
	retained := history[:0]
	for _, v := range history {
		if !v.WindowStart.Before(cutoff) {
			retained = append(retained, v)
		}
	}
	s.samples[symbol] = retained
	return nil
}

func (s *MemoryStore) DeleteSamples(symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.samples, symbol)
	return nil
}

func (s *MemoryStore) LoadSamples(since time.Time) (map[string][]models.VolumeSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]models.VolumeSample)
	for symbol, history := range s.samples {
		for _, v := range history {
			if !v.WindowStart.Before(since) {
				out[symbol] = append(out[symbol], v)
			}
		}
		sort.Slice(out[symbol], func(i, j int) bool {
			return out[symbol][i].WindowStart.Before(out[symbol][j].WindowStart)
		})
	}
	return out, nil
}

func (s *MemoryStore) SaveAlert(symbol string, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[symbol] = ts
	return nil
}

func (s *MemoryStore) DeleteAlert(symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.alerts, symbol)
	return nil
}

func (s *MemoryStore) LoadAlerts() (map[string]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]time.Time, len(s.alerts))
	for k, v := range s.alerts {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) SaveSpike(spike models.Spike) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spikes = append(s.spikes, spike)
	return nil
}

func (s *MemoryStore) RecentSpikes(limit int) ([]models.Spike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Spike, len(s.spikes))
	copy(out, s.spikes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
