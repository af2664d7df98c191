// Package report turns the day's trade log into a per-symbol CSV summary
// with realized PnL for the bull/bear pair.
package report

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	// Embedded tzdata so Eastern time resolves on hosts without a zoneinfo db.
	_ "time/tzdata"

	"natgas-trader/internal/interfaces"
)

// Report dates follow the US equity market calendar, DST included.
var eastern = loadEastern()

func loadEastern() *time.Location {
	if loc, err := time.LoadLocation("America/New_York"); err == nil {
		return loc
	}
	return time.FixedZone("ET", -5*3600)
}

type tradeLine struct {
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	Qty        int     `json:"qty"`
	Price      float64 `json:"price"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

type aggRow struct {
	Symbol    string
	BuyQty    int
	BuyValue  float64
	SellQty   int
	SellValue float64
}

type summarizer struct{}

var defaultSummarizer interfaces.ReportSummarizer = &summarizer{}

func NewSummarizer() interfaces.ReportSummarizer {
	return &summarizer{}
}

// SetDefaultSummarizer swaps the package-level summarizer, typically for an
// observability wrapper.
func SetDefaultSummarizer(s interfaces.ReportSummarizer) {
	defaultSummarizer = s
}

func SummarizeDay(t time.Time) (string, error) { return defaultSummarizer.SummarizeDay(t) }
func SummarizeToday() (string, error)          { return defaultSummarizer.SummarizeToday() }

func logDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func tradesPath(t time.Time) string {
	d := t.In(eastern).Format("2006-01-02")
	return filepath.Join(logDir(), "trades", d+".jsonl")
}

func reportPath(t time.Time) string {
	d := t.In(eastern).Format("2006-01-02")
	return filepath.Join(logDir(), "reports", d+".csv")
}

func (s *summarizer) SummarizeToday() (string, error) {
	return s.SummarizeDay(time.Now().In(eastern))
}

func (s *summarizer) SummarizeDay(t time.Time) (string, error) {
	inPath := tradesPath(t)
	if _, err := os.Stat(inPath); err != nil {
		return "", nil
	}
	f, err := os.Open(inPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	aggs := map[string]*aggRow{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var tl tradeLine
		if err := json.Unmarshal(sc.Bytes(), &tl); err != nil {
			continue
		}
		row := aggs[tl.Symbol]
		if row == nil {
			row = &aggRow{Symbol: tl.Symbol}
			aggs[tl.Symbol] = row
		}
		switch tl.Side {
		case "BUY":
			row.BuyQty += tl.Qty
			row.BuyValue += float64(tl.Qty) * tl.Price
		case "SELL":
			row.SellQty += tl.Qty
			row.SellValue += float64(tl.Qty) * tl.Price
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if len(aggs) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := reportPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write([]string{"symbol", "buy_qty", "buy_avg", "sell_qty", "sell_avg", "realized_pnl", "gross_buy_value", "gross_sell_value"}); err != nil {
		return "", err
	}

	var totalBuy, totalSell, totalPnL float64
	for _, k := range keys {
		r := aggs[k]
		var buyAvg, sellAvg float64
		if r.BuyQty > 0 {
			buyAvg = r.BuyValue / float64(r.BuyQty)
		}
		if r.SellQty > 0 {
			sellAvg = r.SellValue / float64(r.SellQty)
		}
		matched := r.BuyQty
		if r.SellQty < matched {
			matched = r.SellQty
		}
		var pnl float64
		if matched > 0 {
			// Guard the multiply: 0 * (0 - buyAvg) is IEEE -0 and would
			// render as "-0.00".
			pnl = float64(matched) * (sellAvg - buyAvg)
		}
		rec := []string{
			r.Symbol,
			strconv.Itoa(r.BuyQty),
			fmt.Sprintf("%.4f", buyAvg),
			strconv.Itoa(r.SellQty),
			fmt.Sprintf("%.4f", sellAvg),
			fmt.Sprintf("%.2f", pnl),
			fmt.Sprintf("%.2f", r.BuyValue),
			fmt.Sprintf("%.2f", r.SellValue),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
		totalBuy += r.BuyValue
		totalSell += r.SellValue
		totalPnL += pnl
	}
	_ = w.Write([]string{"TOTAL", "", "", "", "", fmt.Sprintf("%.2f", totalPnL), fmt.Sprintf("%.2f", totalBuy), fmt.Sprintf("%.2f", totalSell)})
	return outPath, nil
}
