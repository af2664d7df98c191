package signal

import (
	"math"
	"testing"

	"natgas-trader/internal/types"
)

func sig(kind types.SignalKind, v float64) types.NormalizedSignal {
	return types.NormalizedSignal{Kind: kind, Value: v}
}

func TestAggregateWeightedSum(t *testing.T) {
	w := Weights{Temperature: 0.5, Inventory: 0.4, Storm: 0.1}
	got := Aggregate(
		sig(types.KindTemperature, 0.8),
		sig(types.KindInventory, 0.6),
		sig(types.KindStorm, 0.0),
		w,
	)
	if math.Abs(got-0.64) > 1e-9 {
		t.Errorf("expected composite 0.64, got %v", got)
	}
}

func TestAggregateLinearInWeights(t *testing.T) {
	temp := sig(types.KindTemperature, 0.3)
	inv := sig(types.KindInventory, -0.7)
	storm := sig(types.KindStorm, 0.5)

	w := Weights{Temperature: 0.5, Inventory: 0.4, Storm: 0.1}
	base := Aggregate(temp, inv, storm, w)

	for _, k := range []float64{0, 0.5, 2, 10} {
		scaled := Weights{Temperature: w.Temperature * k, Inventory: w.Inventory * k, Storm: w.Storm * k}
		got := Aggregate(temp, inv, storm, scaled)
		if math.Abs(got-base*k) > 1e-9 {
			t.Errorf("k=%v: expected %v, got %v", k, base*k, got)
		}
	}
}

func TestAggregateZeroWeightsCancelSignals(t *testing.T) {
	got := Aggregate(
		sig(types.KindTemperature, 1),
		sig(types.KindInventory, -1),
		sig(types.KindStorm, 1),
		Weights{},
	)
	if got != 0 {
		t.Errorf("expected 0 composite with zero weights, got %v", got)
	}
}
