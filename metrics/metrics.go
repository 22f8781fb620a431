// Package metrics exposes the node stack's counters to Prometheus for a
// host-side supervisor process running alongside (or in place of, during
// development) the tinygo firmware. Nothing here is imported by the
// firmware build itself.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FrameRingPuts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frame_ring_puts_total",
		Help: "Total frames captured into the frame ring.",
	})
	FrameRingGets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frame_ring_gets_total",
		Help: "Total frames drained from the frame ring by the foreground loop.",
	})
	FrameRingOverflows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frame_ring_overflows_total",
		Help: "Total frames dropped because the ring was full on put.",
	})
	FrameRingHighWater = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "frame_ring_high_water",
		Help: "Largest frame ring occupancy observed since boot.",
	})
	StoreEventCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "store_event_count",
		Help: "Number of event table slots currently indexed.",
	})
	LongMessageCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "long_message_completions_total",
		Help: "Long message receives, by final status.",
	}, []string{"status"})
)

// StartHTTP serves Prometheus metrics at /metrics on addr.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go srv.ListenAndServe()
	return srv
}
