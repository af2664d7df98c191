package interfaces

import (
	"context"

	"natgas-trader/internal/types"
)

type Engine interface {
	RunCycle(ctx context.Context) (*types.CycleResult, error)
}
