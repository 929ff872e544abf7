package aggregate

import (
	"errors"
	"reflect"
	"testing"

	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/models"
)

func TestCombine(t *testing.T) {
	failed := errors.New("timeout")

	tests := []struct {
		name        string
		readings    []models.SourceReading
		wantVolume  float64
		wantSources []string
		wantErr     error
	}{
		{
			name: "one source failed is excluded",
			readings: []models.SourceReading{
				{Source: "binance", Volume: 100},
				{Source: "okx", Err: failed},
				{Source: "bybit", Volume: 50},
			},
			wantVolume:  150,
			wantSources: []string{"binance", "bybit"},
		},
		{
			name: "all sources succeed",
			readings: []models.SourceReading{
				{Source: "binance", Volume: 10},
				{Source: "okx", Volume: 20},
				{Source: "bybit", Volume: 30},
			},
			wantVolume:  60,
			wantSources: []string{"binance", "bybit", "okx"},
		},
		{
			name: "all sources failed",
			readings: []models.SourceReading{
				{Source: "binance", Err: failed},
				{Source: "okx", Err: failed},
			},
			wantErr: ErrNoSourceAvailable,
		},
		{
			name:     "no sources at all",
			readings: nil,
			wantErr:  ErrNoSourceAvailable,
		},
		{
			name: "failed source is not a zero reading",
			readings: []models.SourceReading{
				{Source: "binance", Volume: 100},
				{Source: "okx", Volume: 0, Err: failed},
			},
			wantVolume:  100,
			wantSources: []string{"binance"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Combine(tt.readings)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Combine() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Combine() unexpected error: %v", err)
			}
			if got.Volume != tt.wantVolume {
				t.Errorf("Combine() volume = %v, want %v", got.Volume, tt.wantVolume)
			}
			if !reflect.DeepEqual(got.Sources, tt.wantSources) {
				t.Errorf("Combine() sources = %v, want %v", got.Sources, tt.wantSources)
			}
		})
	}
}
