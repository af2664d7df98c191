// Package brokerobs wraps a broker with tracing spans and structured logs.
package brokerobs

import (
	"context"
	"time"

	"natgas-trader/internal/interfaces"
	"natgas-trader/internal/logger"
	"natgas-trader/internal/trace"
	"natgas-trader/internal/types"
)

type observed struct {
	inner interfaces.Broker
}

// Wrap decorates a broker so every call is traced and logged.
func Wrap(b interfaces.Broker) interfaces.Broker {
	return &observed{inner: b}
}

func (o *observed) Account(ctx context.Context) (interfaces.Account, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Account")
	defer span.End()

	acct, err := o.inner.Account(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Account fetch failed", err)
		return acct, err
	}
	logger.Debug(ctx, "Account fetched", "equity", acct.Equity, "buying_power", acct.BuyingPower)
	return acct, nil
}

func (o *observed) OpenPosition(ctx context.Context, symbol string) (*interfaces.OpenPosition, error) {
	ctx, span := trace.StartSpan(ctx, "broker.OpenPosition")
	defer span.End()

	pos, err := o.inner.OpenPosition(ctx, symbol)
	if err != nil {
		logger.ErrorWithErr(ctx, "Position fetch failed", err, "symbol", symbol)
		return nil, err
	}
	if pos == nil {
		logger.Debug(ctx, "No open position", "symbol", symbol)
	} else {
		logger.Debug(ctx, "Open position fetched", "symbol", symbol, "qty", pos.Qty)
	}
	return pos, nil
}

func (o *observed) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "broker.LatestPrice")
	defer span.End()

	price, err := o.inner.LatestPrice(ctx, symbol)
	if err != nil {
		logger.ErrorWithErr(ctx, "Price fetch failed", err, "symbol", symbol)
		return 0, err
	}
	logger.Debug(ctx, "Latest price fetched", "symbol", symbol, "price", price)
	return price, nil
}

func (o *observed) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	ctx, span := trace.StartSpan(ctx, "broker.PlaceOrder")
	defer span.End()

	start := time.Now()
	logger.Info(ctx, "Placing order",
		"symbol", req.Symbol,
		"side", req.Side,
		"qty", req.Qty,
		"tag", req.Tag)

	resp, err := o.inner.PlaceOrder(ctx, req)
	if err != nil {
		logger.ErrorWithErr(ctx, "Order failed", err, "symbol", req.Symbol, "side", req.Side)
		return resp, err
	}
	logger.Info(ctx, "Order confirmed",
		"symbol", req.Symbol,
		"side", req.Side,
		"order_id", resp.OrderID,
		"filled_qty", resp.FilledQty,
		"filled_avg_price", resp.FilledAvgPrice,
		"duration_ms", time.Since(start).Milliseconds())
	return resp, nil
}
