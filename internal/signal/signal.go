// Package signal implements the dual-rule volume spike test.
package signal

import (
	"time"

	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/models"
)

// Evaluate applies the two detection rules to an observed window volume
// against its baseline:
//
//   - PCT fires when observed > mean * (1 + pctThreshold/100)
//   - ZSCORE fires when std > 0 and (observed-mean)/std >= zThreshold
//
// With std == 0 the ZSCORE rule never fires; with mean <= 0 the PCT
// rule never fires (callers normally filter such baselines out before
// evaluation). Pure function: identical inputs always yield the same
// verdict.
func Evaluate(symbol string, windowStart time.Time, observed, mean, std, pctThreshold, zThreshold float64) models.SignalVerdict {
	verdict := models.SignalVerdict{
		Symbol:       symbol,
		WindowStart:  windowStart,
		Reason:       models.ReasonNone,
		Observed:     observed,
		BaselineMean: mean,
		BaselineStd:  std,
	}

	pctHit := false
	if mean > 0 {
		verdict.PctChange = (observed - mean) / mean * 100
		pctHit = observed > mean*(1+pctThreshold/100)
	}

	zHit := false
	if std > 0 {
		verdict.ZScore = (observed - mean) / std
		zHit = verdict.ZScore >= zThreshold
	}

	switch {
	case pctHit && zHit:
		verdict.Reason = models.ReasonBoth
	case pctHit:
		verdict.Reason = models.ReasonPct
	case zHit:
		verdict.Reason = models.ReasonZScore
	}
	verdict.Triggered = pctHit || zHit

	return verdict
}
