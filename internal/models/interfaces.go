package models

import (
	"context"
	"time"
)

// Source is one exchange capable of reporting a symbol's traded volume
// for a fixed window. Name must be stable across calls: it is the
// identity used for aggregation bookkeeping and alert text.
type Source interface {
	Name() string
	WindowVolume(ctx context.Context, symbol string, windowStart time.Time, window time.Duration) (float64, error)
}

// CapProvider returns the top-n symbols by market capitalization,
// ordered descending.
type CapProvider interface {
	TopSymbols(ctx context.Context, n int) ([]Symbol, error)
}

// Notifier delivers a spike alert. Delivery is best-effort: the caller
// treats the alert as sent once the call returns, error or not.
type Notifier interface {
	SendAlert(symbol Symbol, verdict SignalVerdict, exchanges []string) error
}
