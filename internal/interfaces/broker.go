package interfaces

import (
	"context"

	"natgas-trader/internal/types"
)

// Account is the subset of brokerage account state the bot cares about.
type Account struct {
	Equity      float64
	BuyingPower float64
	Cash        float64
}

// OpenPosition describes a currently held lot at the brokerage.
type OpenPosition struct {
	Symbol        string
	Qty           int
	AvgEntryPrice float64
	MarketValue   float64
}

type Broker interface {
	Account(ctx context.Context) (Account, error)
	// OpenPosition returns nil if no position is held in symbol.
	OpenPosition(ctx context.Context, symbol string) (*OpenPosition, error)
	LatestPrice(ctx context.Context, symbol string) (float64, error)
	PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error)
}
