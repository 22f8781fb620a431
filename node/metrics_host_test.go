//go:build !tinygo

package node

import (
	"testing"

	"flimcore/canframe"
	"flimcore/longmessage"
)

func TestSyncMetricsDoesNotPanic(t *testing.T) {
	n, _, _ := newTestNode(t)
	n.Ring.Put(canframe.New(1, false, false, []byte{1}))
	n.SyncMetrics()
	n.Ring.Put(canframe.New(2, false, false, []byte{2}))
	n.SyncMetrics()
}

func TestInstrumentLongMessageHandlerCallsInner(t *testing.T) {
	var gotStatus longmessage.Status
	inner := func(fragment []byte, streamID uint8, status longmessage.Status) {
		gotStatus = status
	}
	wrapped := InstrumentLongMessageHandler(inner)
	wrapped(nil, 1, longmessage.StatusComplete)

	if gotStatus != longmessage.StatusComplete {
		t.Fatalf("inner handler status = %v, want COMPLETE", gotStatus)
	}
}
