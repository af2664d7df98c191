package source

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEIAFetchMixedValueTypes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") == "" {
			http.Error(w, "missing key", http.StatusForbidden)
			return
		}
		// Values arrive as both numbers and strings in the wild.
		fmt.Fprint(w, `{"response":{"data":[
			{"period":"2026-08-21","value":3000},
			{"period":"2026-08-14","value":"3400"},
			{"period":"2026-08-07","value":3800},
			{"period":"bad-period","value":9999},
			{"period":"2026-07-31","value":"not-a-number"}
		]}}`)
	}))
	defer srv.Close()

	c := NewEIAClient(srv.URL, "test-key")
	r, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.CurrentBcf != 3000 {
		t.Errorf("expected latest point 3000 Bcf, got %v", r.CurrentBcf)
	}
	if math.Abs(r.HistoricalAvgBcf-3400) > 1e-9 {
		t.Errorf("expected average 3400 Bcf, got %v", r.HistoricalAvgBcf)
	}
}

func TestEIAFetchWithoutKey(t *testing.T) {
	c := NewEIAClient("http://unused", "")
	_, err := c.Fetch(context.Background())
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable without API key, got %v", err)
	}
}

func TestEIAFetchInsufficientData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"data":[{"period":"2026-08-21","value":3000}]}}`)
	}))
	defer srv.Close()

	c := NewEIAClient(srv.URL, "test-key")
	_, err := c.Fetch(context.Background())
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable for a single point, got %v", err)
	}
}

func TestEIAFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewEIAClient(srv.URL, "test-key")
	if _, err := c.Fetch(context.Background()); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
