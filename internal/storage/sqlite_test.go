package storage

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/models"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.sqlite"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteSamplesRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, v := range []float64{100, 200, 300} {
		err := s.SaveSample(models.VolumeSample{
			Symbol:      "BTC",
			WindowStart: base.Add(time.Duration(i) * 5 * time.Minute),
			Volume:      v,
		})
		if err != nil {
			t.Fatalf("SaveSample() error: %v", err)
		}
	}

	loaded, err := s.LoadSamples(base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("LoadSamples() error: %v", err)
	}
	got := loaded["BTC"]
	if len(got) != 3 {
		t.Fatalf("loaded %d samples, want 3", len(got))
	}
	for i, v := range []float64{100, 200, 300} {
		if got[i].Volume != v {
			t.Errorf("sample %d volume = %v, want %v (order by window start)", i, got[i].Volume, v)
		}
	}

	// Samples are immutable: re-writing the same window keeps the
	// original value.
	err = s.SaveSample(models.VolumeSample{Symbol: "BTC", WindowStart: base, Volume: 9999})
	if err != nil {
		t.Fatalf("SaveSample() duplicate error: %v", err)
	}
	loaded, _ = s.LoadSamples(base.Add(-time.Hour))
	if loaded["BTC"][0].Volume != 100 {
		t.Errorf("duplicate window overwrote sample: %v", loaded["BTC"][0].Volume)
	}
}

func TestSQLitePruneAndDelete(t *testing.T) {
	s := newTestSQLite(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		err := s.SaveSample(models.VolumeSample{
			Symbol:      "BTC",
			WindowStart: base.Add(time.Duration(i) * time.Hour),
			Volume:      float64(i),
		})
		if err != nil {
			t.Fatalf("SaveSample() error: %v", err)
		}
	}

	if err := s.DeleteSamplesBefore("BTC", base.Add(2*time.Hour)); err != nil {
		t.Fatalf("DeleteSamplesBefore() error: %v", err)
	}
	loaded, _ := s.LoadSamples(base.Add(-time.Hour))
	if len(loaded["BTC"]) != 2 {
		t.Fatalf("after prune: %d samples, want 2", len(loaded["BTC"]))
	}

	if err := s.DeleteSamples("BTC"); err != nil {
		t.Fatalf("DeleteSamples() error: %v", err)
	}
	loaded, _ = s.LoadSamples(base.Add(-time.Hour))
	if len(loaded["BTC"]) != 0 {
		t.Fatalf("after delete: %d samples, want 0", len(loaded["BTC"]))
	}
}

func TestSQLiteAlertsRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := s.SaveAlert("BTC", t0); err != nil {
		t.Fatalf("SaveAlert() error: %v", err)
	}
	// Upsert replaces the timestamp.
	if err := s.SaveAlert("BTC", t0.Add(time.Hour)); err != nil {
		t.Fatalf("SaveAlert() upsert error: %v", err)
	}

	alerts, err := s.LoadAlerts()
	if err != nil {
		t.Fatalf("LoadAlerts() error: %v", err)
	}
	if got := alerts["BTC"]; !got.Equal(t0.Add(time.Hour)) {
		t.Errorf("alert ts = %v, want %v", got, t0.Add(time.Hour))
	}

	if err := s.DeleteAlert("BTC"); err != nil {
		t.Fatalf("DeleteAlert() error: %v", err)
	}
	alerts, _ = s.LoadAlerts()
	if len(alerts) != 0 {
		t.Errorf("alerts after delete = %v, want empty", alerts)
	}
}

func TestSQLiteSpikeHistory(t *testing.T) {
	s := newTestSQLite(t)
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		err := s.SaveSpike(models.Spike{
			Timestamp: t0.Add(time.Duration(i) * time.Minute),
			Symbol:    "BTC",
			Pct:       float64(100 + i),
			ZScore:    3.5,
			Observed:  5000,
			Mean:      1000,
			Std:       100,
			Exchanges: []string{"binance", "okx"},
		})
		if err != nil {
			t.Fatalf("SaveSpike() error: %v", err)
		}
	}

	spikes, err := s.RecentSpikes(2)
	if err != nil {
		t.Fatalf("RecentSpikes() error: %v", err)
	}
	if len(spikes) != 2 {
		t.Fatalf("RecentSpikes(2) returned %d rows", len(spikes))
	}
	if spikes[0].Pct != 102 || spikes[1].Pct != 101 {
		t.Errorf("spikes not newest-first: %v, %v", spikes[0].Pct, spikes[1].Pct)
	}
	if !reflect.DeepEqual(spikes[0].Exchanges, []string{"binance", "okx"}) {
		t.Errorf("exchanges = %v, want [binance okx]", spikes[0].Exchanges)
	}
}
