package engine

import (
	"math"

	"natgas-trader/internal/types"
)

// Thresholds for the hysteresis band. Buy must be >= Sell; that is enforced
// at config load, not re-checked here.
type Thresholds struct {
	Buy  float64
	Sell float64
}

// Decide is the pure transition function of the position state machine.
// It maps a composite score and the currently held position to the intents
// for this cycle. Flips are emitted as a close-then-open pair so both ETFs
// are never held at once.
//
// Scores strictly inside the (Sell, Buy) band always yield Hold, regardless
// of position: the dead zone keeps marginal signals from thrashing.
func Decide(composite float64, pos types.Position, thr Thresholds, bullSym, bearSym string) []types.TradeIntent {
	switch {
	case composite >= thr.Buy:
		return intentsToward(pos, types.LongBull, bullSym, bearSym)
	case composite <= thr.Sell:
		return intentsToward(pos, types.LongBear, bearSym, bullSym)
	default:
		return []types.TradeIntent{{Action: types.ActionHold}}
	}
}

// intentsToward returns the intent sequence moving pos to target, where
// targetSym is the symbol to open and oppositeSym the one to close first.
func intentsToward(pos, target types.Position, targetSym, oppositeSym string) []types.TradeIntent {
	if pos == target {
		return []types.TradeIntent{{Action: types.ActionHold}}
	}
	buy := types.TradeIntent{Action: types.ActionBuy, Symbol: targetSym}
	if pos == types.FlatNone {
		return []types.TradeIntent{buy}
	}
	return []types.TradeIntent{
		{Action: types.ActionSell, Symbol: oppositeSym},
		buy,
	}
}

// Confidence grades how far past its threshold the composite landed,
// capped at 2.0. Hold decisions carry zero confidence.
func Confidence(composite float64, thr Thresholds) float64 {
	switch {
	case composite >= thr.Buy && thr.Buy != 0:
		return math.Min(composite/thr.Buy, 2.0)
	case composite <= thr.Sell && thr.Sell != 0:
		return math.Min(math.Abs(composite)/math.Abs(thr.Sell), 2.0)
	case composite >= thr.Buy || composite <= thr.Sell:
		// Zero threshold crossed; any trigger is full strength.
		return 1.0
	default:
		return 0
	}
}
