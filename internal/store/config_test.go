package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "mode: DRY_RUN\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Symbols.Bull != "BOIL" || cfg.Symbols.Bear != "KOLD" {
		t.Errorf("unexpected default symbols: %+v", cfg.Symbols)
	}
	if cfg.Thresholds.Buy != 0.3 || cfg.Thresholds.Sell != -0.3 {
		t.Errorf("unexpected default thresholds: %+v", cfg.Thresholds)
	}
	if cfg.Schedule.IntervalHours != 24 {
		t.Errorf("expected 24h default interval, got %d", cfg.Schedule.IntervalHours)
	}
	if cfg.Sources.TimeoutSeconds != 30 {
		t.Errorf("expected 30s default source timeout, got %d", cfg.Sources.TimeoutSeconds)
	}
	if len(cfg.Sources.Weather.Regions) == 0 {
		t.Error("expected default weather regions")
	}
}

func TestLoadConfigInvalidMode(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "mode: YOLO\n"))
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestValidateThresholdOrdering(t *testing.T) {
	body := `
mode: DRY_RUN
thresholds:
  buy: -0.5
  sell: 0.5
`
	_, err := LoadConfig(writeConfig(t, body))
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("buy < sell must be rejected at load, got %v", err)
	}
}

func TestValidateNegativeWeight(t *testing.T) {
	body := `
mode: DRY_RUN
weights:
  temperature: -0.1
`
	_, err := LoadConfig(writeConfig(t, body))
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("negative weight must be rejected, got %v", err)
	}
}

func TestValidateIdenticalSymbols(t *testing.T) {
	body := `
mode: DRY_RUN
symbols:
  bull: BOIL
  bear: BOIL
`
	_, err := LoadConfig(writeConfig(t, body))
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("identical symbols must be rejected, got %v", err)
	}
}

func TestValidateEqualThresholdsAllowed(t *testing.T) {
	body := `
mode: DRY_RUN
thresholds:
  buy: 0.2
  sell: 0.2
`
	if _, err := LoadConfig(writeConfig(t, body)); err != nil {
		t.Fatalf("equal thresholds should be accepted: %v", err)
	}
}
