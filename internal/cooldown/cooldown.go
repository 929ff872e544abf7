// Package cooldown suppresses repeat alerts for a symbol within a
// configured interval.
package cooldown

import (
	"fmt"
	"sync"
	"time"

	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/storage"
)

// Tracker remembers when each symbol last produced a delivered alert.
// A symbol with no entry, or whose entry is older than the interval,
// may alert; recording an alert resets its clock. Entries are never
// expired actively, a stale one is simply superseded on the next alert.
type Tracker struct {
	mu       sync.Mutex
	last     map[string]time.Time
	interval time.Duration
	db       storage.Store
}

// New builds a Tracker and loads persisted cooldown state, so a restart
// does not re-alert symbols that are still cooling down.
func New(db storage.Store, interval time.Duration) (*Tracker, error) {
	loaded, err := db.LoadAlerts()
	if err != nil {
		return nil, fmt.Errorf("loading cooldown state: %w", err)
	}

	return &Tracker{
		last:     loaded,
		interval: interval,
		db:       db,
	}, nil
}

// MayAlert reports whether an alert for symbol is allowed at now.
// It does not mutate state: only a committed delivery, via RecordAlert,
// starts or resets the cooldown clock.
func (t *Tracker) MayAlert(symbol string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok := t.last[symbol]
	if !ok {
		return true
	}
	return now.Sub(last) >= t.interval
}

// RecordAlert marks a delivered alert at now and persists it.
func (t *Tracker) RecordAlert(symbol string, now time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last[symbol] = now
	if err := t.db.SaveAlert(symbol, now); err != nil {
		return fmt.Errorf("persisting alert time: %w", err)
	}
	return nil
}

// Drop discards cooldown state for a symbol that left the universe.
func (t *Tracker) Drop(symbol string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.last, symbol)
	if err := t.db.DeleteAlert(symbol); err != nil {
		return fmt.Errorf("dropping alert state: %w", err)
	}
	return nil
}
