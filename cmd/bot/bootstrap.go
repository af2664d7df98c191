package main

import (
	"context"
	"fmt"
	"os"

	"natgas-trader/internal/broker/alpaca"
	"natgas-trader/internal/broker/brokerobs"
	"natgas-trader/internal/engine"
	"natgas-trader/internal/engine/engineobs"
	"natgas-trader/internal/interfaces"
	"natgas-trader/internal/logger"
	"natgas-trader/internal/metrics"
	"natgas-trader/internal/report"
	"natgas-trader/internal/report/reportobs"
	"natgas-trader/internal/source"
	"natgas-trader/internal/status"
	"natgas-trader/internal/store"
	"natgas-trader/internal/trace"
	"natgas-trader/internal/tradelog"

	"github.com/joho/godotenv"
)

// initializeSystem loads the environment and sets up logging and tracing.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	report.SetDefaultSummarizer(reportobs.Wrap(report.NewSummarizer()))

	return nil
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs gzips tradelog files past the configured retention.
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

func initializeBroker(ctx context.Context, cfg *store.Config) interfaces.Broker {
	brk := alpaca.New(alpaca.Params{
		Mode:      cfg.Mode,
		BaseURL:   cfg.Broker.BaseURL,
		APIKey:    os.Getenv(cfg.Broker.KeyEnv),
		SecretKey: os.Getenv(cfg.Broker.SecretKeyEnv),
	})

	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	} else {
		logger.Info(ctx, "LIVE mode against Alpaca", "base_url", cfg.Broker.BaseURL)
	}

	return brokerobs.Wrap(brk)
}

// verifyBroker checks brokerage connectivity before the first cycle by
// fetching the account.
func verifyBroker(ctx context.Context, brk interfaces.Broker) error {
	acct, err := brk.Account(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Brokerage account check failed", err)
		return err
	}
	logger.Info(ctx, "Brokerage account verified",
		"equity", acct.Equity,
		"buying_power", acct.BuyingPower,
		"cash", acct.Cash)
	return nil
}

func initializeSources(ctx context.Context, cfg *store.Config) (interfaces.WeatherSource, interfaces.StorageSource, interfaces.StormSource) {
	weather := source.NewWeatherClient(source.WeatherParams{
		APIURL:       cfg.Sources.Weather.APIURL,
		Regions:      cfg.Sources.Weather.Regions,
		ForecastDays: cfg.Sources.Weather.ForecastDays,
		BaseTempF:    cfg.Sources.Weather.BaseTempF,
		BaselineHDD:  cfg.Sources.Weather.BaselineHDD,
	})

	eiaKey := os.Getenv(cfg.Sources.EIA.APIKeyEnv)
	if eiaKey == "" {
		logger.Warn(ctx, "EIA API key not set - inventory signal will degrade to neutral",
			"env", cfg.Sources.EIA.APIKeyEnv)
	}
	storage := source.NewEIAClient(cfg.Sources.EIA.APIURL, eiaKey)

	storm := source.NewNOAAClient(cfg.Sources.NOAA.APIURL)

	return weather, storage, storm
}

func initializeEngine(cfg *store.Config, weather interfaces.WeatherSource, storage interfaces.StorageSource, storm interfaces.StormSource, brk interfaces.Broker, state *engine.PositionState) interfaces.Engine {
	eng := engine.New(cfg, weather, storage, storm, brk, state)
	return engineobs.Wrap(eng)
}

// startServers brings up the metrics and status listeners in the background.
func startServers(cfg *store.Config, tracker *status.Tracker) {
	metrics.Serve(cfg.Listen.Metrics)
	status.Serve(cfg.Listen.Status, tracker)
}
