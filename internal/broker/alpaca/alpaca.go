// Package alpaca implements the execution collaborator against the Alpaca
// trading REST API. In DRY_RUN mode orders are simulated locally and no
// request leaves the process.
package alpaca

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"natgas-trader/internal/interfaces"
	"natgas-trader/internal/logger"
	"natgas-trader/internal/types"
)

type Params struct {
	Mode      string // DRY_RUN or LIVE
	BaseURL   string
	APIKey    string
	SecretKey string
}

type Alpaca struct {
	p          Params
	httpClient *http.Client

	// simulated state for DRY_RUN
	simPositions map[string]*interfaces.OpenPosition
}

var _ interfaces.Broker = (*Alpaca)(nil)

func New(p Params) *Alpaca {
	return &Alpaca{
		p:            p,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		simPositions: make(map[string]*interfaces.OpenPosition),
	}
}

// Alpaca serializes most numeric fields as strings.
type accountPayload struct {
	Equity      string `json:"equity"`
	BuyingPower string `json:"buying_power"`
	Cash        string `json:"cash"`
}

type positionPayload struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	AvgEntryPrice string `json:"avg_entry_price"`
	MarketValue   string `json:"market_value"`
}

type orderPayload struct {
	ID             string `json:"id"`
	Symbol         string `json:"symbol"`
	Qty            string `json:"qty"`
	Side           string `json:"side"`
	Status         string `json:"status"`
	FilledQty      string `json:"filled_qty"`
	FilledAvgPrice string `json:"filled_avg_price"`
}

func (a *Alpaca) Account(ctx context.Context) (interfaces.Account, error) {
	if a.p.Mode == "DRY_RUN" {
		return interfaces.Account{Equity: 100000, BuyingPower: 100000, Cash: 100000}, nil
	}

	var payload accountPayload
	if err := a.get(ctx, "/v2/account", &payload); err != nil {
		return interfaces.Account{}, err
	}
	return interfaces.Account{
		Equity:      parseFloat(payload.Equity),
		BuyingPower: parseFloat(payload.BuyingPower),
		Cash:        parseFloat(payload.Cash),
	}, nil
}

func (a *Alpaca) OpenPosition(ctx context.Context, symbol string) (*interfaces.OpenPosition, error) {
	if a.p.Mode == "DRY_RUN" {
		return a.simPositions[symbol], nil
	}

	var payload positionPayload
	err := a.get(ctx, "/v2/positions/"+symbol, &payload)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &interfaces.OpenPosition{
		Symbol:        payload.Symbol,
		Qty:           int(parseFloat(payload.Qty)),
		AvgEntryPrice: parseFloat(payload.AvgEntryPrice),
		MarketValue:   parseFloat(payload.MarketValue),
	}, nil
}

func (a *Alpaca) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	if a.p.Mode == "DRY_RUN" {
		return 40 + rand.Float64()*20, nil
	}

	var bar struct {
		Bar struct {
			Close float64 `json:"c"`
		} `json:"bar"`
	}
	if err := a.get(ctx, "/v2/stocks/"+symbol+"/bars/latest", &bar); err == nil && bar.Bar.Close > 0 {
		return bar.Bar.Close, nil
	}

	// Latest-bar endpoint is not available on all plans; fall back to the
	// latest quote.
	var quote struct {
		Quote struct {
			BidPrice float64 `json:"bp"`
			AskPrice float64 `json:"ap"`
		} `json:"quote"`
	}
	if err := a.get(ctx, "/v2/stocks/"+symbol+"/quotes/latest", &quote); err != nil {
		return 0, fmt.Errorf("no price available for %s: %w", symbol, err)
	}
	if quote.Quote.BidPrice > 0 {
		return quote.Quote.BidPrice, nil
	}
	if quote.Quote.AskPrice > 0 {
		return quote.Quote.AskPrice, nil
	}
	return 0, fmt.Errorf("no price available for %s", symbol)
}

// PlaceOrder submits a market day order and waits for the fill. A nil error
// means the order is confirmed; any rejection or unconfirmed state is an
// error and the caller treats it as no state change.
func (a *Alpaca) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	if a.p.Mode == "DRY_RUN" {
		return a.simulateOrder(ctx, req)
	}

	body := map[string]any{
		"symbol":        req.Symbol,
		"qty":           req.Qty,
		"side":          sideLower(req.Side),
		"type":          "market",
		"time_in_force": "day",
	}

	var placed orderPayload
	if err := a.post(ctx, "/v2/orders", body, &placed); err != nil {
		return types.OrderResp{}, err
	}

	confirmed, err := a.awaitFill(ctx, placed)
	if err != nil {
		return types.OrderResp{}, err
	}

	resp := types.OrderResp{
		OrderID:        confirmed.ID,
		Status:         confirmed.Status,
		FilledQty:      int(parseFloat(confirmed.FilledQty)),
		FilledAvgPrice: parseFloat(confirmed.FilledAvgPrice),
	}
	logger.Trade(ctx, req.Symbol, req.Side, resp.FilledQty, resp.FilledAvgPrice, resp.OrderID)
	return resp, nil
}

// awaitFill polls the order until it fills or a terminal non-fill state is
// reached. Market day orders on liquid ETFs fill within seconds.
func (a *Alpaca) awaitFill(ctx context.Context, placed orderPayload) (orderPayload, error) {
	const attempts = 5
	order := placed

	for i := 0; i < attempts; i++ {
		switch order.Status {
		case "filled":
			return order, nil
		case "canceled", "expired", "rejected", "suspended":
			return order, fmt.Errorf("order %s ended %s without filling", order.ID, order.Status)
		}

		select {
		case <-ctx.Done():
			return order, ctx.Err()
		case <-time.After(2 * time.Second):
		}

		var refreshed orderPayload
		if err := a.get(ctx, "/v2/orders/"+order.ID, &refreshed); err != nil {
			logger.Warn(ctx, "Order status poll failed", "order_id", order.ID, "error", err)
			continue
		}
		order = refreshed
	}

	if order.Status == "filled" {
		return order, nil
	}
	return order, fmt.Errorf("order %s not confirmed filled after %d polls (status %s)", order.ID, attempts, order.Status)
}

func (a *Alpaca) simulateOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	price, _ := a.LatestPrice(ctx, req.Symbol)

	switch req.Side {
	case "BUY":
		a.simPositions[req.Symbol] = &interfaces.OpenPosition{
			Symbol:        req.Symbol,
			Qty:           req.Qty,
			AvgEntryPrice: price,
			MarketValue:   price * float64(req.Qty),
		}
	case "SELL":
		delete(a.simPositions, req.Symbol)
	}

	resp := types.OrderResp{
		OrderID:        fmt.Sprintf("dry-%d", time.Now().UnixNano()),
		Status:         "filled",
		FilledQty:      req.Qty,
		FilledAvgPrice: price,
	}
	logger.Trade(ctx, req.Symbol, req.Side, req.Qty, price, resp.OrderID)
	return resp, nil
}

type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("alpaca API status %d: %s", e.status, e.body)
}

func isNotFound(err error) bool {
	ae, ok := err.(*apiError)
	return ok && ae.status == http.StatusNotFound
}

func (a *Alpaca) get(ctx context.Context, path string, out any) error {
	return a.do(ctx, http.MethodGet, path, nil, out)
}

func (a *Alpaca) post(ctx context.Context, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return a.do(ctx, http.MethodPost, path, bytes.NewReader(b), out)
}

func (a *Alpaca) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, a.p.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("APCA-API-KEY-ID", a.p.APIKey)
	req.Header.Set("APCA-API-SECRET-KEY", a.p.SecretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(data) > 200 {
			data = data[:200]
		}
		return &apiError{status: resp.StatusCode, body: string(data)}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return nil
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func sideLower(side string) string {
	if side == "SELL" {
		return "sell"
	}
	return "buy"
}
