package engineobs

import (
	"context"
	"time"

	"natgas-trader/internal/interfaces"
	"natgas-trader/internal/logger"
	"natgas-trader/internal/trace"
	"natgas-trader/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

// Wrap adds logging and tracing around an Engine.
func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{engine: eng}
}

func (oe *observableEngine) RunCycle(ctx context.Context) (*types.CycleResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.RunCycle")
	defer span.End()

	start := time.Now()
	logger.Info(ctx, "Starting trading cycle")

	result, err := oe.engine.RunCycle(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Trading cycle failed", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return result, err
	}

	logger.Info(ctx, "Trading cycle completed",
		"action", result.Action,
		"symbol", result.Symbol,
		"composite", result.Snapshot.Composite,
		"position", result.Position.String(),
		"degraded_sources", len(result.Snapshot.Degraded),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}
