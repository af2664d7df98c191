package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrConfigInvalid is wrapped by every validation failure. Configuration
// problems are fatal at startup; no cycle runs with a bad config.
var ErrConfigInvalid = errors.New("invalid config")

type Config struct {
	Mode string `yaml:"mode"`

	Symbols struct {
		Bull string `yaml:"bull"`
		Bear string `yaml:"bear"`
	} `yaml:"symbols"`

	PositionSize float64 `yaml:"position_size"`

	Thresholds struct {
		Buy  float64 `yaml:"buy"`
		Sell float64 `yaml:"sell"`
	} `yaml:"thresholds"`

	Weights struct {
		Temperature float64 `yaml:"temperature"`
		Inventory   float64 `yaml:"inventory"`
		Storm       float64 `yaml:"storm"`
	} `yaml:"weights"`

	Schedule struct {
		IntervalHours int `yaml:"interval_hours"`
		RetryMinutes  int `yaml:"retry_minutes"`
	} `yaml:"schedule"`

	Sources struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
		Weather        struct {
			APIURL       string   `yaml:"api_url"`
			Regions      []string `yaml:"regions"`
			ForecastDays int      `yaml:"forecast_days"`
			BaseTempF    float64  `yaml:"base_temp_f"`
			BaselineHDD  float64  `yaml:"baseline_hdd"`
		} `yaml:"weather"`
		EIA struct {
			APIURL    string `yaml:"api_url"`
			APIKeyEnv string `yaml:"api_key_env"`
		} `yaml:"eia"`
		NOAA struct {
			APIURL string `yaml:"api_url"`
		} `yaml:"noaa"`
	} `yaml:"sources"`

	Broker struct {
		BaseURL      string `yaml:"base_url"`
		KeyEnv       string `yaml:"key_env"`
		SecretKeyEnv string `yaml:"secret_key_env"`
	} `yaml:"broker"`

	Listen struct {
		Metrics string `yaml:"metrics"`
		Status  string `yaml:"status"`
	} `yaml:"listen"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("%w: mode '%s' must be 'DRY_RUN' or 'LIVE'", ErrConfigInvalid, c.Mode)
	}
	if c.Symbols.Bull == "" || c.Symbols.Bear == "" {
		return fmt.Errorf("%w: both bull and bear symbols must be set", ErrConfigInvalid)
	}
	if c.Symbols.Bull == c.Symbols.Bear {
		return fmt.Errorf("%w: bull and bear symbols must be distinct, both are '%s'", ErrConfigInvalid, c.Symbols.Bull)
	}
	if c.PositionSize <= 0 {
		return fmt.Errorf("%w: position_size must be positive, got %.2f", ErrConfigInvalid, c.PositionSize)
	}
	if c.Thresholds.Buy < c.Thresholds.Sell {
		return fmt.Errorf("%w: thresholds.buy (%.3f) must be >= thresholds.sell (%.3f)",
			ErrConfigInvalid, c.Thresholds.Buy, c.Thresholds.Sell)
	}
	if c.Weights.Temperature < 0 || c.Weights.Inventory < 0 || c.Weights.Storm < 0 {
		return fmt.Errorf("%w: signal weights must be non-negative", ErrConfigInvalid)
	}
	if c.Schedule.IntervalHours <= 0 {
		return fmt.Errorf("%w: schedule.interval_hours must be positive, got %d", ErrConfigInvalid, c.Schedule.IntervalHours)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func applyDefaults(c *Config) {
	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.Symbols.Bull == "" {
		c.Symbols.Bull = "BOIL"
	}
	if c.Symbols.Bear == "" {
		c.Symbols.Bear = "KOLD"
	}
	if c.PositionSize == 0 {
		c.PositionSize = 1000
	}
	if c.Thresholds.Buy == 0 && c.Thresholds.Sell == 0 {
		c.Thresholds.Buy = 0.3
		c.Thresholds.Sell = -0.3
	}
	if c.Schedule.IntervalHours == 0 {
		c.Schedule.IntervalHours = 24
	}
	if c.Schedule.RetryMinutes == 0 {
		c.Schedule.RetryMinutes = 5
	}
	if c.Sources.TimeoutSeconds == 0 {
		c.Sources.TimeoutSeconds = 30
	}
	if c.Sources.Weather.APIURL == "" {
		c.Sources.Weather.APIURL = "https://api.open-meteo.com/v1/forecast"
	}
	if len(c.Sources.Weather.Regions) == 0 {
		// Major gas-heating demand centers: NYC, Chicago, Boston, Philadelphia, Detroit.
		c.Sources.Weather.Regions = []string{
			"40.7128,-74.0060",
			"41.8781,-87.6298",
			"42.3601,-71.0589",
			"39.9526,-75.1652",
			"42.3314,-83.0458",
		}
	}
	if c.Sources.Weather.ForecastDays == 0 {
		c.Sources.Weather.ForecastDays = 7
	}
	if c.Sources.Weather.BaseTempF == 0 {
		c.Sources.Weather.BaseTempF = 65
	}
	if c.Sources.Weather.BaselineHDD == 0 {
		c.Sources.Weather.BaselineHDD = 25
	}
	if c.Sources.EIA.APIURL == "" {
		c.Sources.EIA.APIURL = "https://api.eia.gov/v2/natural-gas/stor/wkly/data/"
	}
	if c.Sources.EIA.APIKeyEnv == "" {
		c.Sources.EIA.APIKeyEnv = "EIA_API_KEY"
	}
	if c.Sources.NOAA.APIURL == "" {
		c.Sources.NOAA.APIURL = "https://api.weather.gov/alerts"
	}
	if c.Broker.BaseURL == "" {
		c.Broker.BaseURL = "https://paper-api.alpaca.markets"
	}
	if c.Broker.KeyEnv == "" {
		c.Broker.KeyEnv = "ALPACA_API_KEY"
	}
	if c.Broker.SecretKeyEnv == "" {
		c.Broker.SecretKeyEnv = "ALPACA_SECRET_KEY"
	}
	if c.Listen.Metrics == "" {
		c.Listen.Metrics = ":9090"
	}
	if c.Listen.Status == "" {
		c.Listen.Status = ":8080"
	}
}
