// Package signal turns raw data-source readings into bounded scalars and
// combines them into the composite score the decision engine consumes.
package signal

import (
	"errors"
	"math"

	"natgas-trader/internal/types"
)

// ErrInvalidBaseline is returned when a reading's historical average is zero,
// negative, or not finite. Callers substitute a neutral 0.0 signal for that
// source and continue the cycle.
var ErrInvalidBaseline = errors.New("invalid historical baseline")

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NormalizeTemperature maps heating-degree-day demand to [-1, 1]. Colder than
// the historical average (higher HDD) means more heating fuel burned, so the
// signal is positive.
func NormalizeTemperature(r types.TemperatureReading) (types.NormalizedSignal, error) {
	s := types.NormalizedSignal{Kind: types.KindTemperature}
	if !validBaseline(r.HistoricalAvgHDD) {
		return s, ErrInvalidBaseline
	}
	s.Value = clamp((r.ObservedHDD-r.HistoricalAvgHDD)/r.HistoricalAvgHDD, -1, 1)
	return s, nil
}

// NormalizeInventory maps storage levels to [-1, 1]. Storage below the
// historical average means tighter supply, so the signal is positive.
func NormalizeInventory(r types.StorageReading) (types.NormalizedSignal, error) {
	s := types.NormalizedSignal{Kind: types.KindInventory}
	if !validBaseline(r.HistoricalAvgBcf) {
		return s, ErrInvalidBaseline
	}
	s.Value = clamp((r.HistoricalAvgBcf-r.CurrentBcf)/r.HistoricalAvgBcf, -1, 1)
	return s, nil
}

var severityValue = map[types.Severity]float64{
	types.SeverityNone:     0.0,
	types.SeverityAdvisory: 0.25,
	types.SeverityWatch:    0.5,
	types.SeverityWarning:  0.75,
	types.SeveritySevere:   1.0,
}

// NormalizeStorm maps alert severity to a fixed scalar. Storms disrupt
// production and spike demand, so this signal is never bearish.
func NormalizeStorm(r types.StormReading) types.NormalizedSignal {
	return types.NormalizedSignal{Kind: types.KindStorm, Value: severityValue[r.Severity]}
}

// Neutral is the substitute signal for a degraded source.
func Neutral(kind types.SignalKind) types.NormalizedSignal {
	return types.NormalizedSignal{Kind: kind, Value: 0}
}

func validBaseline(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
