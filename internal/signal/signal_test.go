package signal

import (
	"testing"
	"time"

	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/models"
)

func TestEvaluate(t *testing.T) {
	windowStart := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		observed      float64
		mean          float64
		std           float64
		pctThreshold  float64
		zThreshold    float64
		wantTriggered bool
		wantReason    models.TriggerReason
	}{
		{
			name:     "both rules fire",
			observed: 3100, mean: 1000, std: 100,
			pctThreshold: 200, zThreshold: 3,
			wantTriggered: true, wantReason: models.ReasonBoth,
		},
		{
			name:     "neither rule fires",
			observed: 1250, mean: 1000, std: 100,
			pctThreshold: 200, zThreshold: 3,
			wantTriggered: false, wantReason: models.ReasonNone,
		},
		{
			name:     "zscore only",
			observed: 1400, mean: 1000, std: 100,
			pctThreshold: 200, zThreshold: 3,
			wantTriggered: true, wantReason: models.ReasonZScore,
		},
		{
			name:     "pct only with wide std",
			observed: 3100, mean: 1000, std: 2000,
			pctThreshold: 200, zThreshold: 3,
			wantTriggered: true, wantReason: models.ReasonPct,
		},
		{
			name:     "zscore at exact threshold fires",
			observed: 1300, mean: 1000, std: 100,
			pctThreshold: 200, zThreshold: 3,
			wantTriggered: true, wantReason: models.ReasonZScore,
		},
		{
			name:     "pct at exact boundary does not fire",
			observed: 3000, mean: 1000, std: 0,
			pctThreshold: 200, zThreshold: 3,
			wantTriggered: false, wantReason: models.ReasonNone,
		},
		{
			name:     "zero std never triggers zscore",
			observed: 1e9, mean: 1000, std: 0,
			pctThreshold: 1e12, zThreshold: 0.1,
			wantTriggered: false, wantReason: models.ReasonNone,
		},
		{
			name:     "zero std still allows pct",
			observed: 3100, mean: 1000, std: 0,
			pctThreshold: 200, zThreshold: 3,
			wantTriggered: true, wantReason: models.ReasonPct,
		},
		{
			name:     "zero mean never triggers pct",
			observed: 500, mean: 0, std: 0,
			pctThreshold: 200, zThreshold: 3,
			wantTriggered: false, wantReason: models.ReasonNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate("BTC", windowStart, tt.observed, tt.mean, tt.std, tt.pctThreshold, tt.zThreshold)
			if v.Triggered != tt.wantTriggered {
				t.Errorf("Evaluate() triggered = %v, want %v", v.Triggered, tt.wantTriggered)
			}
			if v.Reason != tt.wantReason {
				t.Errorf("Evaluate() reason = %v, want %v", v.Reason, tt.wantReason)
			}
			if v.Symbol != "BTC" || !v.WindowStart.Equal(windowStart) {
				t.Errorf("Evaluate() verdict identity = (%s, %s), want (BTC, %s)", v.Symbol, v.WindowStart, windowStart)
			}
		})
	}
}

// The ZSCORE rule must depend only on (observed-mean)/std when std > 0,
// regardless of the PCT outcome.
func TestEvaluateZScoreIndependentOfPct(t *testing.T) {
	windowStart := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		observed, mean, std float64
	}{
		{1500, 1000, 100},
		{1299.99, 1000, 100},
		{1300, 1000, 100},
		{999, 1000, 50},
		{250000, 1000, 100},
	}

	for _, pct := range []float64{0, 50, 1e9} {
		for _, c := range cases {
			v := Evaluate("ETH", windowStart, c.observed, c.mean, c.std, pct, 3)
			z := (c.observed - c.mean) / c.std
			wantZHit := z >= 3
			gotZHit := v.Reason == models.ReasonZScore || v.Reason == models.ReasonBoth
			if gotZHit != wantZHit {
				t.Errorf("observed=%v mean=%v std=%v pct=%v: zscore hit = %v, want %v",
					c.observed, c.mean, c.std, pct, gotZHit, wantZHit)
			}
		}
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	windowStart := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	first := Evaluate("SOL", windowStart, 4321, 1234, 56, 150, 2.5)
	for i := 0; i < 100; i++ {
		again := Evaluate("SOL", windowStart, 4321, 1234, 56, 150, 2.5)
		if again != first {
			t.Fatalf("Evaluate() not deterministic: %+v != %+v", again, first)
		}
	}
}
