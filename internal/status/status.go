// Package status exposes a small HTTP surface for operators: liveness and
// the latest cycle outcome.
package status

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"natgas-trader/internal/logger"
	"natgas-trader/internal/types"
)

// Tracker holds the last completed cycle result for the /status endpoint.
type Tracker struct {
	mu   sync.RWMutex
	last *types.CycleResult
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) Record(result *types.CycleResult) {
	if result == nil {
		return
	}
	t.mu.Lock()
	t.last = result
	t.mu.Unlock()
}

func (t *Tracker) Last() *types.CycleResult {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

type statusResponse struct {
	Position   string        `json:"position"`
	LastCycle  *cyclePayload `json:"last_cycle,omitempty"`
	ServerTime time.Time     `json:"server_time"`
}

type cyclePayload struct {
	Action     string    `json:"action"`
	Symbol     string    `json:"symbol,omitempty"`
	Composite  float64   `json:"composite"`
	Confidence float64   `json:"confidence"`
	Reason     string    `json:"reason"`
	Degraded   []string  `json:"degraded_sources,omitempty"`
	Time       time.Time `json:"time"`
}

func NewRouter(tracker *Tracker) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods("GET")

	r.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		resp := statusResponse{Position: types.FlatNone.String(), ServerTime: time.Now().UTC()}
		if last := tracker.Last(); last != nil {
			resp.Position = last.Position.String()
			degraded := make([]string, 0, len(last.Snapshot.Degraded))
			for _, k := range last.Snapshot.Degraded {
				degraded = append(degraded, string(k))
			}
			resp.LastCycle = &cyclePayload{
				Action:     string(last.Action),
				Symbol:     last.Symbol,
				Composite:  last.Snapshot.Composite,
				Confidence: last.Confidence,
				Reason:     last.Reason,
				Degraded:   degraded,
				Time:       last.Time,
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}).Methods("GET")

	return r
}

// Serve starts the status server in the background.
func Serve(addr string, tracker *Tracker) {
	router := NewRouter(tracker)
	wrapped := handlers.RecoveryHandler()(router)
	go func() {
		ctx := context.Background()
		logger.Info(ctx, "Status server listening", "addr", addr)
		if err := http.ListenAndServe(addr, wrapped); err != nil {
			logger.ErrorWithErr(ctx, "Status server stopped", err)
		}
	}()
}
