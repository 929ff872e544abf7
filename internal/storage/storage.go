package storage

import (
	"time"

	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/models"
)

// Store is the durable key-value state behind the baseline store and
// the cooldown tracker. Implementations must provide read-after-write
// consistency within a single process; the storage engine itself is
// interchangeable (SQLite by default, Postgres when DATABASE_URL is
// set).
type Store interface {
	// Volume samples for the rolling baseline. Written only by the
	// baseline store.
	SaveSample(sample models.VolumeSample) error
	DeleteSamplesBefore(symbol string, cutoff time.Time) error
	DeleteSamples(symbol string) error
	LoadSamples(since time.Time) (map[string][]models.VolumeSample, error)

	// Cooldown state. Written only by the cooldown tracker.
	SaveAlert(symbol string, ts time.Time) error
	DeleteAlert(symbol string) error
	LoadAlerts() (map[string]time.Time, error)

	// Delivered alert history for the /status command.
	SaveSpike(spike models.Spike) error
	RecentSpikes(limit int) ([]models.Spike, error)

	Close() error
}
