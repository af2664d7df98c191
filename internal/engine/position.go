package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"natgas-trader/internal/interfaces"
	"natgas-trader/internal/logger"
	"natgas-trader/internal/types"
)

// ErrInvariantViolation marks a mutual-exclusivity breach: a fill that would
// leave both ETFs held at once. It signals a logic bug, not a market
// condition, and the bot halts rather than trade blindly.
var ErrInvariantViolation = errors.New("position invariant violation")

// PositionState is the single mutable cell of cross-cycle state. It is
// written by at most one cycle at a time and mutated only through Apply,
// after the broker confirms a fill.
type PositionState struct {
	mu      sync.Mutex
	current types.Position
	bullSym string
	bearSym string
}

func NewPositionState(bullSym, bearSym string) *PositionState {
	return &PositionState{bullSym: bullSym, bearSym: bearSym}
}

func (ps *PositionState) Current() types.Position {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.current
}

// Apply commits a confirmed fill and returns the resulting position.
// Opening one side while the other is still held, or closing a side that is
// not held, violates mutual exclusivity and returns ErrInvariantViolation
// with the state unchanged.
func (ps *PositionState) Apply(fill types.ConfirmedFill) (types.Position, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	target, err := ps.transition(fill)
	if err != nil {
		return ps.current, err
	}
	ps.current = target
	return ps.current, nil
}

func (ps *PositionState) transition(fill types.ConfirmedFill) (types.Position, error) {
	held, ok := ps.positionFor(fill.Symbol)
	if !ok {
		return ps.current, fmt.Errorf("%w: fill for unknown symbol %s", ErrInvariantViolation, fill.Symbol)
	}

	switch fill.Side {
	case "BUY":
		if ps.current != types.FlatNone && ps.current != held {
			return ps.current, fmt.Errorf("%w: buy %s while %s is held without an intervening sell",
				ErrInvariantViolation, fill.Symbol, ps.current)
		}
		return held, nil
	case "SELL":
		if ps.current != held {
			return ps.current, fmt.Errorf("%w: sell %s while position is %s",
				ErrInvariantViolation, fill.Symbol, ps.current)
		}
		return types.FlatNone, nil
	default:
		return ps.current, fmt.Errorf("%w: unknown fill side %q", ErrInvariantViolation, fill.Side)
	}
}

func (ps *PositionState) positionFor(symbol string) (types.Position, bool) {
	switch symbol {
	case ps.bullSym:
		return types.LongBull, true
	case ps.bearSym:
		return types.LongBear, true
	default:
		return types.FlatNone, false
	}
}

// Reconcile seeds the cell from brokerage account state at startup. Finding
// both symbols held is an invariant violation and aborts startup.
func (ps *PositionState) Reconcile(ctx context.Context, brk interfaces.Broker) error {
	bull, err := brk.OpenPosition(ctx, ps.bullSym)
	if err != nil {
		return fmt.Errorf("reconcile %s: %w", ps.bullSym, err)
	}
	bear, err := brk.OpenPosition(ctx, ps.bearSym)
	if err != nil {
		return fmt.Errorf("reconcile %s: %w", ps.bearSym, err)
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	switch {
	case bull != nil && bull.Qty > 0 && bear != nil && bear.Qty > 0:
		return fmt.Errorf("%w: brokerage holds both %s and %s", ErrInvariantViolation, ps.bullSym, ps.bearSym)
	case bull != nil && bull.Qty > 0:
		ps.current = types.LongBull
	case bear != nil && bear.Qty > 0:
		ps.current = types.LongBear
	default:
		ps.current = types.FlatNone
	}

	logger.Info(ctx, "Position reconciled from brokerage", "position", ps.current.String())
	return nil
}
