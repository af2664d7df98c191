package signal

import "natgas-trader/internal/types"

// Weights are the relative contributions of each source to the composite.
// They are non-negative and need not sum to 1; the composite is the plain
// weighted sum, unnormalized by the weight total.
type Weights struct {
	Temperature float64
	Inventory   float64
	Storm       float64
}

// Aggregate combines three normalized signals into one composite score.
// Pure and deterministic; the result is not clamped, thresholds are
// configured with the weighted-sum range in mind.
func Aggregate(temp, inv, storm types.NormalizedSignal, w Weights) float64 {
	return w.Temperature*temp.Value + w.Inventory*inv.Value + w.Storm*storm.Value
}
