// Package aggregate combines same-window volume readings for one symbol
// across exchanges into a single value.
package aggregate

import (
	"errors"
	"sort"

	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/models"
)

// ErrNoSourceAvailable means every exchange failed (or did not list the
// symbol) for this window. The caller must skip the symbol for the
// cycle rather than record a zero sample, which would poison the
// baseline and could itself read as a drop signal.
var ErrNoSourceAvailable = errors.New("no source available")

// Combine sums the volumes from every source that returned a reading.
// Failed sources are excluded from the sum, not treated as zero, so the
// aggregate approximates true combined market volume over whichever
// exchanges are up.
func Combine(readings []models.SourceReading) (models.AggregateResult, error) {
	var result models.AggregateResult
	for _, r := range readings {
		if r.Err != nil {
			continue
		}
		result.Volume += r.Volume
		result.Sources = append(result.Sources, r.Source)
	}

	if len(result.Sources) == 0 {
		return models.AggregateResult{}, ErrNoSourceAvailable
	}

	sort.Strings(result.Sources)
	return result, nil
}
