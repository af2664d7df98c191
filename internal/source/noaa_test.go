package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"natgas-trader/internal/types"
)

func noaaServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			http.Error(w, "User-Agent required", http.StatusForbidden)
			return
		}
		fmt.Fprint(w, body)
	}))
}

func TestNOAAFetchNoAlerts(t *testing.T) {
	srv := noaaServer(t, `{"features":[]}`)
	defer srv.Close()

	r, err := NewNOAAClient(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Severity != types.SeverityNone {
		t.Errorf("expected SeverityNone, got %s", r.Severity)
	}
}

func TestNOAAFetchIgnoresIrrelevantEvents(t *testing.T) {
	srv := noaaServer(t, `{"features":[
		{"properties":{"event":"Flood Warning","severity":"Moderate"}},
		{"properties":{"event":"Heat Advisory","severity":"Minor"}}
	]}`)
	defer srv.Close()

	r, err := NewNOAAClient(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Severity != types.SeverityNone {
		t.Errorf("non-storm alerts must not move the signal, got %s", r.Severity)
	}
}

func TestNOAAFetchKeepsStrongestAlert(t *testing.T) {
	srv := noaaServer(t, `{"features":[
		{"properties":{"event":"Winter Storm Watch","severity":"Moderate"}},
		{"properties":{"event":"Blizzard Warning","severity":"Severe"}},
		{"properties":{"event":"Freeze Advisory","severity":"Minor"}}
	]}`)
	defer srv.Close()

	r, err := NewNOAAClient(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Severity != types.SeverityWarning {
		t.Errorf("expected SeverityWarning, got %s", r.Severity)
	}
}

func TestNOAAFetchExtremeIsSevere(t *testing.T) {
	srv := noaaServer(t, `{"features":[
		{"properties":{"event":"Hurricane Warning","severity":"Extreme"}}
	]}`)
	defer srv.Close()

	r, err := NewNOAAClient(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Severity != types.SeveritySevere {
		t.Errorf("expected SeveritySevere, got %s", r.Severity)
	}
}

func TestNOAAFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewNOAAClient(srv.URL).Fetch(context.Background()); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
