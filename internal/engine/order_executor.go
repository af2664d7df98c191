package engine

import (
	"context"
	"errors"
	"fmt"

	"natgas-trader/internal/interfaces"
	"natgas-trader/internal/logger"
	"natgas-trader/internal/metrics"
	"natgas-trader/internal/tradelog"
	"natgas-trader/internal/types"
)

// ErrExecutionFailed means an order was rejected or never confirmed. The
// cycle ends without a position mutation and the next cycle proceeds
// normally; nothing is retried inside the cycle.
var ErrExecutionFailed = errors.New("trade execution failed")

// orderExecutor turns trade intents into broker orders. It enforces the
// close-then-open atomicity contract: intents run in sequence, and a failed
// leg stops the sequence so a failed Sell never leads to doubled exposure.
type orderExecutor struct {
	broker       interfaces.Broker
	positionSize float64
}

func newOrderExecutor(broker interfaces.Broker, positionSize float64) *orderExecutor {
	return &orderExecutor{broker: broker, positionSize: positionSize}
}

// execute submits the intent sequence and returns the confirmed fills in
// order. On a leg failure it returns the fills confirmed so far together
// with ErrExecutionFailed.
func (oe *orderExecutor) execute(ctx context.Context, intents []types.TradeIntent, reason string, confidence float64) ([]types.OrderResp, []types.ConfirmedFill, error) {
	var orders []types.OrderResp
	var fills []types.ConfirmedFill

	for _, intent := range intents {
		switch intent.Action {
		case types.ActionHold:
			continue
		case types.ActionSell:
			resp, fill, err := oe.closePosition(ctx, intent.Symbol, reason, confidence)
			if err != nil {
				return orders, fills, err
			}
			if resp != nil {
				orders = append(orders, *resp)
			}
			fills = append(fills, fill)
		case types.ActionBuy:
			resp, fill, err := oe.openPosition(ctx, intent.Symbol, reason, confidence)
			if err != nil {
				return orders, fills, err
			}
			orders = append(orders, resp)
			fills = append(fills, fill)
		}
	}
	return orders, fills, nil
}

// closePosition sells the entire brokerage holding in symbol. A holding the
// broker no longer reports counts as already closed and confirms without an
// order.
func (oe *orderExecutor) closePosition(ctx context.Context, symbol, reason string, confidence float64) (*types.OrderResp, types.ConfirmedFill, error) {
	fill := types.ConfirmedFill{Symbol: symbol, Side: "SELL"}

	pos, err := oe.broker.OpenPosition(ctx, symbol)
	if err != nil {
		return nil, fill, fmt.Errorf("%w: lookup %s position: %v", ErrExecutionFailed, symbol, err)
	}
	if pos == nil || pos.Qty <= 0 {
		logger.Warn(ctx, "No brokerage position to close", "symbol", symbol)
		return nil, fill, nil
	}

	resp, err := oe.broker.PlaceOrder(ctx, types.OrderReq{
		Symbol: symbol,
		Side:   "SELL",
		Qty:    pos.Qty,
		Tag:    "FLIP",
	})
	if err != nil {
		return nil, fill, fmt.Errorf("%w: sell %d %s: %v", ErrExecutionFailed, pos.Qty, symbol, err)
	}

	fill.Qty = pos.Qty
	metrics.OrdersTotal.WithLabelValues(symbol, "SELL").Inc()
	_ = tradelog.AppendTrade(tradelog.TradeEntry{
		Symbol:     symbol,
		Side:       "SELL",
		Qty:        pos.Qty,
		OrderID:    resp.OrderID,
		Status:     resp.Status,
		Reason:     reason,
		Confidence: confidence,
	})
	return &resp, fill, nil
}

// openPosition sizes a buy from the configured dollar position size at the
// latest price, minimum one share.
func (oe *orderExecutor) openPosition(ctx context.Context, symbol, reason string, confidence float64) (types.OrderResp, types.ConfirmedFill, error) {
	fill := types.ConfirmedFill{Symbol: symbol, Side: "BUY"}

	price, err := oe.broker.LatestPrice(ctx, symbol)
	if err != nil {
		return types.OrderResp{}, fill, fmt.Errorf("%w: price lookup for %s: %v", ErrExecutionFailed, symbol, err)
	}
	if price <= 0 {
		return types.OrderResp{}, fill, fmt.Errorf("%w: non-positive price %.4f for %s", ErrExecutionFailed, price, symbol)
	}

	qty := int(oe.positionSize / price)
	if qty < 1 {
		qty = 1
	}

	resp, err := oe.broker.PlaceOrder(ctx, types.OrderReq{
		Symbol: symbol,
		Side:   "BUY",
		Qty:    qty,
		Tag:    "SIGNAL",
	})
	if err != nil {
		return types.OrderResp{}, fill, fmt.Errorf("%w: buy %d %s: %v", ErrExecutionFailed, qty, symbol, err)
	}

	fill.Qty = qty
	metrics.OrdersTotal.WithLabelValues(symbol, "BUY").Inc()
	_ = tradelog.AppendTrade(tradelog.TradeEntry{
		Symbol:     symbol,
		Side:       "BUY",
		Qty:        qty,
		Price:      price,
		OrderID:    resp.OrderID,
		Status:     resp.Status,
		Reason:     reason,
		Confidence: confidence,
	})
	return resp, fill, nil
}
