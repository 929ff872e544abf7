package cooldown

import (
	"testing"
	"time"

	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/storage"
)

func TestCooldownSuppression(t *testing.T) {
	tr, err := New(storage.NewMemoryStore(), 30*time.Minute)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if !tr.MayAlert("BTC", t0) {
		t.Fatal("MayAlert() = false for a symbol with no history")
	}
	if err := tr.RecordAlert("BTC", t0); err != nil {
		t.Fatalf("RecordAlert() error: %v", err)
	}

	tests := []struct {
		name string
		at   time.Duration
		want bool
	}{
		{"suppressed mid-cooldown", 20 * time.Minute, false},
		{"suppressed one second before boundary", 30*time.Minute - time.Second, false},
		{"allowed at exact boundary", 30 * time.Minute, true},
		{"allowed after boundary", 31 * time.Minute, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.MayAlert("BTC", t0.Add(tt.at)); got != tt.want {
				t.Errorf("MayAlert(t0+%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestRecordAlertResetsClock(t *testing.T) {
	tr, err := New(storage.NewMemoryStore(), 30*time.Minute)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := tr.RecordAlert("BTC", t0); err != nil {
		t.Fatalf("RecordAlert() error: %v", err)
	}

	// Second delivered alert at t0+31m restarts the countdown.
	t1 := t0.Add(31 * time.Minute)
	if !tr.MayAlert("BTC", t1) {
		t.Fatal("MayAlert() = false after cooldown elapsed")
	}
	if err := tr.RecordAlert("BTC", t1); err != nil {
		t.Fatalf("RecordAlert() error: %v", err)
	}

	if tr.MayAlert("BTC", t1.Add(20*time.Minute)) {
		t.Error("MayAlert() = true inside the reset cooldown")
	}
	if !tr.MayAlert("BTC", t1.Add(30*time.Minute)) {
		t.Error("MayAlert() = false after the reset cooldown elapsed")
	}
}

func TestCooldownIsPerSymbol(t *testing.T) {
	tr, err := New(storage.NewMemoryStore(), 30*time.Minute)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := tr.RecordAlert("BTC", t0); err != nil {
		t.Fatalf("RecordAlert() error: %v", err)
	}

	if !tr.MayAlert("ETH", t0.Add(time.Minute)) {
		t.Error("MayAlert(ETH) = false, cooldown must not leak across symbols")
	}
}

func TestCooldownSurvivesRestart(t *testing.T) {
	db := storage.NewMemoryStore()
	tr, err := New(db, 30*time.Minute)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := tr.RecordAlert("BTC", t0); err != nil {
		t.Fatalf("RecordAlert() error: %v", err)
	}

	reopened, err := New(db, 30*time.Minute)
	if err != nil {
		t.Fatalf("New() after restart error: %v", err)
	}
	if reopened.MayAlert("BTC", t0.Add(10*time.Minute)) {
		t.Error("MayAlert() = true after restart inside cooldown")
	}
}

func TestDropForgetsSymbol(t *testing.T) {
	tr, err := New(storage.NewMemoryStore(), 30*time.Minute)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := tr.RecordAlert("BTC", t0); err != nil {
		t.Fatalf("RecordAlert() error: %v", err)
	}
	if err := tr.Drop("BTC"); err != nil {
		t.Fatalf("Drop() error: %v", err)
	}

	if !tr.MayAlert("BTC", t0.Add(time.Minute)) {
		t.Error("MayAlert() = false after Drop")
	}
}
