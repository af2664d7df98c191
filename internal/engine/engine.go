package engine

import (
	"context"
	"time"

	"natgas-trader/internal/interfaces"
	"natgas-trader/internal/logger"
	"natgas-trader/internal/metrics"
	"natgas-trader/internal/signal"
	"natgas-trader/internal/store"
	"natgas-trader/internal/tradelog"
	"natgas-trader/internal/types"
)

// Engine runs one decision cycle at a time: fetch the three sources
// concurrently, normalize, aggregate, decide against the current position,
// execute, and commit confirmed fills to position state. Cycles never
// overlap; PositionState is the only state carried between them.
type Engine struct {
	cfg     *store.Config
	weather interfaces.WeatherSource
	storage interfaces.StorageSource
	storm   interfaces.StormSource
	exec    *orderExecutor
	state   *PositionState
}

func New(cfg *store.Config, weather interfaces.WeatherSource, storage interfaces.StorageSource, storm interfaces.StormSource, broker interfaces.Broker, state *PositionState) *Engine {
	return &Engine{
		cfg:     cfg,
		weather: weather,
		storage: storage,
		storm:   storm,
		exec:    newOrderExecutor(broker, cfg.PositionSize),
		state:   state,
	}
}

func (e *Engine) RunCycle(ctx context.Context) (*types.CycleResult, error) {
	start := time.Now()

	snapshot := e.fetchSnapshot(ctx)

	// Cancellation is safe up to here: no order has been submitted and no
	// position mutation has occurred.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	thr := Thresholds{Buy: e.cfg.Thresholds.Buy, Sell: e.cfg.Thresholds.Sell}
	pos := e.state.Current()
	intents := Decide(snapshot.Composite, pos, thr, e.cfg.Symbols.Bull, e.cfg.Symbols.Bear)
	confidence := Confidence(snapshot.Composite, thr)

	result := &types.CycleResult{
		Snapshot:   snapshot,
		Action:     intents[len(intents)-1].Action,
		Symbol:     intents[len(intents)-1].Symbol,
		Confidence: confidence,
		Intents:    intents,
		Position:   pos,
		Reason:     decisionReason(snapshot, thr),
		Time:       start,
	}

	metrics.CompositeScore.Set(snapshot.Composite)
	logger.Signal(ctx, snapshot.Temperature.Value, snapshot.Inventory.Value,
		snapshot.Storm.Value, snapshot.Composite, len(snapshot.Degraded))
	_ = tradelog.AppendSignal(tradelog.SignalEntry{
		Temperature: snapshot.Temperature.Value,
		Inventory:   snapshot.Inventory.Value,
		Storm:       snapshot.Storm.Value,
		Composite:   snapshot.Composite,
		Degraded:    degradedNames(snapshot.Degraded),
	})

	logger.Decision(ctx, string(result.Action), result.Symbol, snapshot.Composite, confidence, result.Reason)

	// The decision record is written before execution so every cycle logs
	// exactly one, even when execution fails afterwards.
	_ = tradelog.AppendDecision(tradelog.DecisionEntry{
		Action:     string(result.Action),
		Symbol:     result.Symbol,
		Composite:  snapshot.Composite,
		Confidence: confidence,
		Position:   pos.String(),
		Reason:     result.Reason,
	})

	orders, fills, execErr := e.exec.execute(ctx, intents, result.Reason, confidence)
	result.Orders = orders

	for _, fill := range fills {
		newPos, err := e.state.Apply(fill)
		if err != nil {
			// A rejected transition is a logic bug; halt rather than
			// keep trading against unknown state.
			metrics.CyclesTotal.WithLabelValues("invariant_violation").Inc()
			return result, err
		}
		result.Position = newPos
	}

	if execErr != nil {
		logger.ErrorWithErr(ctx, "Trade execution failed, position unchanged", execErr,
			"action", result.Action,
			"symbol", result.Symbol,
		)
		metrics.CyclesTotal.WithLabelValues("execution_failed").Inc()
		metrics.CycleDuration.Observe(time.Since(start).Seconds())
		return result, execErr
	}

	metrics.CyclesTotal.WithLabelValues("ok").Inc()
	metrics.CycleDuration.Observe(time.Since(start).Seconds())
	return result, nil
}

// fetchSnapshot issues the three source fetches concurrently, each under its
// own timeout. A slow or failing source degrades to a neutral signal and is
// recorded as a data-quality event; it never blocks or aborts the cycle.
func (e *Engine) fetchSnapshot(ctx context.Context) types.SignalSnapshot {
	timeout := time.Duration(e.cfg.Sources.TimeoutSeconds) * time.Second

	type fetched struct {
		kind   types.SignalKind
		signal types.NormalizedSignal
		err    error
	}
	ch := make(chan fetched, 3)

	go func() {
		fctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		r, err := e.weather.Fetch(fctx)
		if err != nil {
			ch <- fetched{types.KindTemperature, signal.Neutral(types.KindTemperature), err}
			return
		}
		s, err := signal.NormalizeTemperature(r)
		if err != nil {
			s = signal.Neutral(types.KindTemperature)
		}
		ch <- fetched{types.KindTemperature, s, err}
	}()

	go func() {
		fctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		r, err := e.storage.Fetch(fctx)
		if err != nil {
			ch <- fetched{types.KindInventory, signal.Neutral(types.KindInventory), err}
			return
		}
		s, err := signal.NormalizeInventory(r)
		if err != nil {
			s = signal.Neutral(types.KindInventory)
		}
		ch <- fetched{types.KindInventory, s, err}
	}()

	go func() {
		fctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		r, err := e.storm.Fetch(fctx)
		if err != nil {
			ch <- fetched{types.KindStorm, signal.Neutral(types.KindStorm), err}
			return
		}
		ch <- fetched{types.KindStorm, signal.NormalizeStorm(r), nil}
	}()

	snapshot := types.SignalSnapshot{}
	for i := 0; i < 3; i++ {
		f := <-ch
		if f.err != nil {
			snapshot.Degraded = append(snapshot.Degraded, f.kind)
			metrics.SourceFailures.WithLabelValues(string(f.kind)).Inc()
			logger.DataQuality(ctx, string(f.kind), f.err)
		}
		switch f.kind {
		case types.KindTemperature:
			snapshot.Temperature = f.signal
		case types.KindInventory:
			snapshot.Inventory = f.signal
		case types.KindStorm:
			snapshot.Storm = f.signal
		}
	}

	w := signal.Weights{
		Temperature: e.cfg.Weights.Temperature,
		Inventory:   e.cfg.Weights.Inventory,
		Storm:       e.cfg.Weights.Storm,
	}
	snapshot.Composite = signal.Aggregate(snapshot.Temperature, snapshot.Inventory, snapshot.Storm, w)
	return snapshot
}

func decisionReason(s types.SignalSnapshot, thr Thresholds) string {
	switch {
	case s.Composite >= thr.Buy:
		return "composite above buy threshold"
	case s.Composite <= thr.Sell:
		return "composite below sell threshold"
	default:
		return "composite inside dead zone"
	}
}

func degradedNames(kinds []types.SignalKind) []string {
	if len(kinds) == 0 {
		return nil
	}
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
