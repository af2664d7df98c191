package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"natgas-trader/internal/engine"
	"natgas-trader/internal/interfaces"
	"natgas-trader/internal/logger"
	"natgas-trader/internal/report"
	"natgas-trader/internal/status"
	"natgas-trader/internal/trace"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single cycle and exit")
	intervalHours := flag.Int("interval", 0, "hours between cycles (overrides config)")
	flag.Parse()

	if err := initializeSystem(); err != nil {
		os.Exit(1)
	}
	defer func() { _ = trace.Shutdown(context.Background()) }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx, *configPath)
	if err != nil {
		os.Exit(1)
	}
	if *intervalHours > 0 {
		cfg.Schedule.IntervalHours = *intervalHours
	}

	compressOldLogs(ctx)

	brk := initializeBroker(ctx, cfg)
	if err := verifyBroker(ctx, brk); err != nil {
		os.Exit(1)
	}
	weather, storage, storm := initializeSources(ctx, cfg)

	state := engine.NewPositionState(cfg.Symbols.Bull, cfg.Symbols.Bear)
	if err := state.Reconcile(ctx, brk); err != nil {
		logger.ErrorWithErr(ctx, "Position reconciliation failed", err)
		os.Exit(1)
	}

	eng := initializeEngine(cfg, weather, storage, storm, brk, state)
	tracker := status.NewTracker()
	startServers(cfg, tracker)

	if *once {
		if err := runOnce(ctx, eng, tracker); err != nil {
			os.Exit(1)
		}
		return
	}

	runLoop(ctx, cancel, cfg.Schedule.IntervalHours, cfg.Schedule.RetryMinutes, eng, tracker)
}

func runOnce(ctx context.Context, eng interfaces.Engine, tracker *status.Tracker) error {
	result, err := eng.RunCycle(ctx)
	tracker.Record(result)
	_, _ = report.SummarizeToday()
	return err
}

// runLoop runs a cycle immediately and then on the configured interval. A
// failed cycle is retried after the retry delay instead of waiting a full
// interval; an invariant violation halts the bot.
func runLoop(ctx context.Context, cancel context.CancelFunc, intervalHours, retryMinutes int, eng interfaces.Engine, tracker *status.Tracker) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	interval := time.Duration(intervalHours) * time.Hour
	retry := time.Duration(retryMinutes) * time.Minute

	logger.Info(ctx, "Bot started", "interval_hours", intervalHours)

	next := time.After(0)
	for {
		select {
		case <-next:
			result, err := eng.RunCycle(ctx)
			tracker.Record(result)
			switch {
			case errors.Is(err, engine.ErrInvariantViolation):
				logger.ErrorWithErr(ctx, "Halting on position invariant violation", err)
				cancel()
				os.Exit(1)
			case errors.Is(err, context.Canceled):
				return
			case err != nil:
				logger.Warn(ctx, "Cycle failed, will retry", "error", err, "retry_minutes", retryMinutes)
				next = time.After(retry)
			default:
				_, _ = report.SummarizeToday()
				next = time.After(interval)
			}
		case <-sigc:
			logger.Info(ctx, "Shutting down...")
			_, _ = report.SummarizeToday()
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}
