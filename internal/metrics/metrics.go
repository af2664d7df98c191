// Package metrics exposes Prometheus counters for the trading cycle.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trader_cycles_total", Help: "Decision cycles run, by outcome"},
		[]string{"outcome"},
	)
	SourceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trader_source_failures_total", Help: "Data source fetches degraded to a neutral signal"},
		[]string{"source"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trader_orders_total", Help: "Orders submitted to the broker"},
		[]string{"symbol", "side"},
	)
	CompositeScore = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "trader_composite_score", Help: "Composite signal score of the last cycle"},
	)
	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trader_cycle_duration_seconds",
			Help:    "Wall-clock duration of a full decision cycle",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(CyclesTotal, SourceFailures, OrdersTotal, CompositeScore, CycleDuration)
}

// Serve starts the metrics endpoint in the background and returns the server
// so the caller can shut it down.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
