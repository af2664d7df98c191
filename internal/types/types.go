package types

import "time"

// Severity classifies an active storm alert. Ordered weakest to strongest.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityAdvisory
	SeverityWatch
	SeverityWarning
	SeveritySevere
)

func (s Severity) String() string {
	switch s {
	case SeverityAdvisory:
		return "ADVISORY"
	case SeverityWatch:
		return "WATCH"
	case SeverityWarning:
		return "WARNING"
	case SeveritySevere:
		return "SEVERE"
	default:
		return "NONE"
	}
}

type TemperatureReading struct {
	ObservedHDD      float64
	HistoricalAvgHDD float64
}

type StorageReading struct {
	CurrentBcf       float64
	HistoricalAvgBcf float64
}

type StormReading struct {
	Severity Severity
}

// SignalKind identifies which data source produced a normalized signal.
type SignalKind string

const (
	KindTemperature SignalKind = "temperature"
	KindInventory   SignalKind = "inventory"
	KindStorm       SignalKind = "storm"
)

// NormalizedSignal is a bounded scalar in [-1, 1]. Positive is bullish for
// natural gas (favors the leveraged-up ETF), negative is bearish.
type NormalizedSignal struct {
	Kind  SignalKind `json:"kind"`
	Value float64    `json:"value"`
}

// SignalSnapshot captures everything the decision for one cycle was based on.
type SignalSnapshot struct {
	Temperature NormalizedSignal `json:"temperature"`
	Inventory   NormalizedSignal `json:"inventory"`
	Storm       NormalizedSignal `json:"storm"`
	Composite   float64          `json:"composite"`
	Degraded    []SignalKind     `json:"degraded,omitempty"`
}

// Position is which of the two opposing ETFs is held, if any. Exactly one
// variant holds at any instant; both symbols are never held simultaneously.
type Position int

const (
	FlatNone Position = iota
	LongBull
	LongBear
)

func (p Position) String() string {
	switch p {
	case LongBull:
		return "LONG_BULL"
	case LongBear:
		return "LONG_BEAR"
	default:
		return "FLAT"
	}
}

type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// TradeIntent is produced by the decision engine and consumed by the order
// executor within a single cycle. A position flip is expressed as a Sell
// intent followed by a Buy intent.
type TradeIntent struct {
	Action Action `json:"action"`
	Symbol string `json:"symbol,omitempty"`
	Qty    int    `json:"qty,omitempty"`
}

type OrderReq struct {
	Symbol, Side string
	Qty          int
	Tag          string
}

type OrderResp struct {
	OrderID        string  `json:"order_id"`
	Status         string  `json:"status"`
	FilledQty      int     `json:"filled_qty"`
	FilledAvgPrice float64 `json:"filled_avg_price"`
}

// ConfirmedFill is the executor's report of a completed order, the only
// input that may mutate position state.
type ConfirmedFill struct {
	Symbol string
	Side   string
	Qty    int
}

// CycleResult summarizes one full decision cycle.
type CycleResult struct {
	Snapshot   SignalSnapshot `json:"snapshot"`
	Action     Action         `json:"action"`
	Symbol     string         `json:"symbol,omitempty"`
	Confidence float64        `json:"confidence"`
	Intents    []TradeIntent  `json:"intents"`
	Orders     []OrderResp    `json:"orders"`
	Position   Position       `json:"position"`
	Reason     string         `json:"reason"`
	Time       time.Time      `json:"time"`
}
