package models

import (
	"time"
)

// TriggerReason identifies which detection rule fired for a verdict.
type TriggerReason string

const (
	ReasonPct    TriggerReason = "PCT"
	ReasonZScore TriggerReason = "ZSCORE"
	ReasonBoth   TriggerReason = "BOTH"
	ReasonNone   TriggerReason = "NONE"
)

// Symbol is a monitored coin: the base asset ticker plus the display
// name reported by the capitalization provider.
type Symbol struct {
	Ticker string
	Name   string
}

// VolumeSample is one aggregated volume reading for a symbol and a
// fixed-length window. Immutable once recorded.
type VolumeSample struct {
	Symbol      string
	WindowStart time.Time
	Volume      float64
}

// SourceReading is the outcome of asking a single exchange for a
// symbol's window volume. Err set means the source is excluded from
// aggregation, never counted as zero.
type SourceReading struct {
	Source string
	Volume float64
	Err    error
}

// AggregateResult is the combined volume across the sources that
// answered, with the names of the exchanges that contributed.
type AggregateResult struct {
	Volume  float64
	Sources []string
}

// SignalVerdict is the outcome of evaluating one symbol for one window.
type SignalVerdict struct {
	Symbol       string
	WindowStart  time.Time
	Triggered    bool
	Reason       TriggerReason
	Observed     float64
	BaselineMean float64
	BaselineStd  float64
	PctChange    float64
	ZScore       float64
}

// Spike is a delivered alert, kept for the /status command.
type Spike struct {
	Timestamp time.Time
	Symbol    string
	Pct       float64
	ZScore    float64
	Observed  float64
	Mean      float64
	Std       float64
	Exchanges []string
}

// CooldownEntry records when a symbol last produced a delivered alert.
type CooldownEntry struct {
	Symbol    string
	LastAlert time.Time
}

// Universe is the ordered set of symbols currently monitored.
type Universe struct {
	Symbols     []Symbol
	RefreshedAt time.Time
}

// Contains reports whether ticker is part of the universe.
func (u *Universe) Contains(ticker string) bool {
	for _, s := range u.Symbols {
		if s.Ticker == ticker {
			return true
		}
	}
	return false
}
