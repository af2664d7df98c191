// Package tradelog appends the per-cycle observability records as JSONL to
// daily files under the log directory: one signal snapshot and one decision
// per cycle, one trade per confirmed fill.
package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	// Embedded tzdata so Eastern time resolves on hosts without a zoneinfo db.
	_ "time/tzdata"
)

var mu sync.Mutex

// US equity market timezone; daily files roll over on Eastern dates,
// following DST.
var eastern = loadEastern()

func loadEastern() *time.Location {
	if loc, err := time.LoadLocation("America/New_York"); err == nil {
		return loc
	}
	return time.FixedZone("ET", -5*3600)
}

type SignalEntry struct {
	Time        string   `json:"time"`
	Temperature float64  `json:"temperature_signal"`
	Inventory   float64  `json:"inventory_signal"`
	Storm       float64  `json:"storm_signal"`
	Composite   float64  `json:"composite"`
	Degraded    []string `json:"degraded,omitempty"`
}

type DecisionEntry struct {
	Time       string  `json:"time"`
	Action     string  `json:"action"`
	Symbol     string  `json:"symbol,omitempty"`
	Composite  float64 `json:"composite"`
	Confidence float64 `json:"confidence"`
	Position   string  `json:"position"`
	Reason     string  `json:"reason"`
}

type TradeEntry struct {
	Time       string  `json:"time"`
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	Qty        int     `json:"qty"`
	Price      float64 `json:"price,omitempty"`
	OrderID    string  `json:"order_id"`
	Status     string  `json:"status"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

func logDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func categoryFilepath(category string, t time.Time) string {
	d := t.In(eastern).Format("2006-01-02")
	return filepath.Join(logDir(), category, d+".jsonl")
}

func AppendSignal(e SignalEntry) error {
	e.Time = time.Now().In(eastern).Format("2006-01-02 15:04:05")
	return appendRecord("signals", e)
}

func AppendDecision(e DecisionEntry) error {
	e.Time = time.Now().In(eastern).Format("2006-01-02 15:04:05")
	return appendRecord("decisions", e)
}

func AppendTrade(e TradeEntry) error {
	e.Time = time.Now().In(eastern).Format("2006-01-02 15:04:05")
	return appendRecord("trades", e)
}

func appendRecord(category string, record any) error {
	mu.Lock()
	defer mu.Unlock()

	p := categoryFilepath(category, time.Now())
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(record)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips record files older than retentionDays and removes the
// originals. A non-positive retention disables compression.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(logDir(), func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".jsonl" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			_ = os.Remove(p)
			return nil
		}
		if e3 := gzipFile(p, gz); e3 == nil {
			_ = os.Remove(p)
		}
		return nil
	})
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		return err
	}
	return gw.Close()
}
