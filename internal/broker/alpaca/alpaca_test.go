package alpaca

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"natgas-trader/internal/types"
)

func newTestClient(url string) *Alpaca {
	return New(Params{Mode: "LIVE", BaseURL: url, APIKey: "key", SecretKey: "secret"})
}

func TestAccountParsesStringNumbers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/account" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("APCA-API-KEY-ID") != "key" {
			t.Error("missing API key header")
		}
		json.NewEncoder(w).Encode(map[string]string{
			"equity":       "25000.50",
			"buying_power": "50000",
			"cash":         "12000.25",
		})
	}))
	defer srv.Close()

	acct, err := newTestClient(srv.URL).Account(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acct.Equity != 25000.50 {
		t.Errorf("equity = %v, want 25000.50", acct.Equity)
	}
	if acct.Cash != 12000.25 {
		t.Errorf("cash = %v, want 12000.25", acct.Cash)
	}
}

func TestOpenPositionNotFoundReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"position does not exist"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	pos, err := newTestClient(srv.URL).OpenPosition(context.Background(), "BOIL")
	if err != nil {
		t.Fatalf("404 should not be an error, got %v", err)
	}
	if pos != nil {
		t.Errorf("expected nil position, got %+v", pos)
	}
}

func TestOpenPositionParsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"symbol":          "KOLD",
			"qty":             "15",
			"avg_entry_price": "42.10",
			"market_value":    "631.50",
		})
	}))
	defer srv.Close()

	pos, err := newTestClient(srv.URL).OpenPosition(context.Background(), "KOLD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos == nil {
		t.Fatal("expected position")
	}
	if pos.Qty != 15 || pos.AvgEntryPrice != 42.10 {
		t.Errorf("got qty=%d price=%v", pos.Qty, pos.AvgEntryPrice)
	}
}

func TestLatestPriceFallsBackToQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/stocks/BOIL/bars/latest":
			http.Error(w, `{"message":"subscription does not permit"}`, http.StatusForbidden)
		case "/v2/stocks/BOIL/quotes/latest":
			json.NewEncoder(w).Encode(map[string]any{
				"quote": map[string]float64{"bp": 55.20, "ap": 55.25},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	price, err := newTestClient(srv.URL).LatestPrice(context.Background(), "BOIL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 55.20 {
		t.Errorf("price = %v, want bid 55.20", price)
	}
}

func TestPlaceOrderConfirmsFill(t *testing.T) {
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v2/orders":
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if body["side"] != "buy" || body["type"] != "market" {
				t.Errorf("unexpected order body %v", body)
			}
			json.NewEncoder(w).Encode(map[string]string{
				"id": "ord-1", "status": "accepted",
			})
		case r.Method == http.MethodGet && r.URL.Path == "/v2/orders/ord-1":
			polls++
			json.NewEncoder(w).Encode(map[string]string{
				"id": "ord-1", "status": "filled",
				"filled_qty": "20", "filled_avg_price": "50.00",
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).PlaceOrder(context.Background(), types.OrderReq{
		Symbol: "BOIL", Side: "BUY", Qty: 20, Tag: "SIGNAL",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.OrderID != "ord-1" || resp.FilledQty != 20 {
		t.Errorf("got %+v", resp)
	}
	if polls == 0 {
		t.Error("expected at least one status poll")
	}
}

func TestPlaceOrderRejectedIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"id": "ord-2", "status": "rejected",
		})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).PlaceOrder(context.Background(), types.OrderReq{
		Symbol: "KOLD", Side: "BUY", Qty: 10,
	})
	if err == nil {
		t.Fatal("rejected order should return an error")
	}
}

func TestDryRunTracksPositions(t *testing.T) {
	a := New(Params{Mode: "DRY_RUN"})
	ctx := context.Background()

	if _, err := a.PlaceOrder(ctx, types.OrderReq{Symbol: "BOIL", Side: "BUY", Qty: 25}); err != nil {
		t.Fatalf("dry-run buy failed: %v", err)
	}
	pos, _ := a.OpenPosition(ctx, "BOIL")
	if pos == nil || pos.Qty != 25 {
		t.Fatalf("expected simulated position of 25, got %+v", pos)
	}

	if _, err := a.PlaceOrder(ctx, types.OrderReq{Symbol: "BOIL", Side: "SELL", Qty: 25}); err != nil {
		t.Fatalf("dry-run sell failed: %v", err)
	}
	pos, _ = a.OpenPosition(ctx, "BOIL")
	if pos != nil {
		t.Errorf("expected position closed, got %+v", pos)
	}
}
