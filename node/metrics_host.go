//go:build !tinygo

package node

import (
	"flimcore/longmessage"
	"flimcore/metrics"
)

// SyncMetrics pushes the frame ring's and store's current counters into the
// process-wide Prometheus registry. Call it periodically from a host-side
// supervisor; the firmware build never links this file. Assumes a single
// Node per process, matching the registry's own process-wide scope.
func (n *Node) SyncMetrics() {
	if n.Ring != nil {
		metrics.FrameRingPuts.Add(float64(n.Ring.Puts()) - lastPuts)
		metrics.FrameRingGets.Add(float64(n.Ring.Gets()) - lastGets)
		metrics.FrameRingOverflows.Add(float64(n.Ring.Overflows()) - lastOverflows)
		metrics.FrameRingHighWater.Set(float64(n.Ring.HighWaterMark()))
		lastPuts = float64(n.Ring.Puts())
		lastGets = float64(n.Ring.Gets())
		lastOverflows = float64(n.Ring.Overflows())
	}
	if n.Store != nil {
		metrics.StoreEventCount.Set(float64(n.Store.NumEvents()))
	}
}

// InstrumentLongMessageHandler wraps handler so every terminal receive
// status is counted in metrics.LongMessageCompletions before the caller's
// own handler runs.
func InstrumentLongMessageHandler(handler longmessage.Handler) longmessage.Handler {
	return func(fragment []byte, streamID uint8, status longmessage.Status) {
		metrics.LongMessageCompletions.WithLabelValues(status.String()).Inc()
		if handler != nil {
			handler(fragment, streamID, status)
		}
	}
}

var (
	lastPuts      float64
	lastGets      float64
	lastOverflows float64
)
