package tradelog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func useTempLogDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)
	return dir
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

func TestAppendSignal(t *testing.T) {
	dir := useTempLogDir(t)

	err := AppendSignal(SignalEntry{
		Temperature: 0.8,
		Inventory:   0.6,
		Storm:       0,
		Composite:   0.64,
		Degraded:    []string{"storm"},
	})
	if err != nil {
		t.Fatalf("AppendSignal: %v", err)
	}

	day := time.Now().In(eastern).Format("2006-01-02")
	lines := readLines(t, filepath.Join(dir, "signals", day+".jsonl"))
	if len(lines) != 1 {
		t.Fatalf("expected 1 record, got %d", len(lines))
	}

	var e SignalEntry
	if err := json.Unmarshal([]byte(lines[0]), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Composite != 0.64 {
		t.Errorf("expected composite 0.64, got %v", e.Composite)
	}
	if e.Time == "" {
		t.Error("expected timestamp to be set")
	}
}

func TestAppendDecisionAndTradeSeparateFiles(t *testing.T) {
	dir := useTempLogDir(t)

	if err := AppendDecision(DecisionEntry{Action: "BUY", Symbol: "BOIL", Composite: 0.64}); err != nil {
		t.Fatalf("AppendDecision: %v", err)
	}
	if err := AppendTrade(TradeEntry{Symbol: "BOIL", Side: "BUY", Qty: 20, OrderID: "oid-1"}); err != nil {
		t.Fatalf("AppendTrade: %v", err)
	}

	day := time.Now().In(eastern).Format("2006-01-02")
	if got := len(readLines(t, filepath.Join(dir, "decisions", day+".jsonl"))); got != 1 {
		t.Errorf("expected 1 decision record, got %d", got)
	}
	if got := len(readLines(t, filepath.Join(dir, "trades", day+".jsonl"))); got != 1 {
		t.Errorf("expected 1 trade record, got %d", got)
	}
}

func TestDailyRolloverFollowsDST(t *testing.T) {
	// 04:30 UTC on July 1 is 00:30 EDT (UTC-4); a fixed EST offset would put
	// it at 23:30 the previous day and roll the file a day early.
	summer := time.Date(2026, 7, 1, 4, 30, 0, 0, time.UTC)
	got := categoryFilepath("trades", summer)
	if filepath.Base(got) != "2026-07-01.jsonl" {
		t.Errorf("summer rollover file = %s, want 2026-07-01.jsonl", got)
	}

	// In January Eastern is back on EST (UTC-5).
	winter := time.Date(2026, 1, 15, 4, 30, 0, 0, time.UTC)
	got = categoryFilepath("trades", winter)
	if filepath.Base(got) != "2026-01-14.jsonl" {
		t.Errorf("winter rollover file = %s, want 2026-01-14.jsonl", got)
	}
}

func TestCompressOlderSkipsFreshFiles(t *testing.T) {
	dir := useTempLogDir(t)

	if err := AppendSignal(SignalEntry{Composite: 0.1}); err != nil {
		t.Fatal(err)
	}
	if err := CompressOlder(7); err != nil {
		t.Fatalf("CompressOlder: %v", err)
	}

	day := time.Now().In(eastern).Format("2006-01-02")
	if _, err := os.Stat(filepath.Join(dir, "signals", day+".jsonl")); err != nil {
		t.Errorf("fresh file should not be compressed: %v", err)
	}
}
