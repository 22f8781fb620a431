package framering

import (
	"testing"

	"flimcore/canframe"
	"flimcore/clock"
)

func TestZeroCapacityAcceptsAllCalls(t *testing.T) {
	r := New(clock.New(), 0)
	r.Put(canframe.New(1, false, false, nil))

	if got := r.FreeSlots(); got != 0 {
		t.Fatalf("FreeSlots() = %d, want 0", got)
	}
	if _, ok := r.Get(); ok {
		t.Fatalf("Get() on zero-capacity ring returned a frame")
	}
	if _, ok := r.Peek(); ok {
		t.Fatalf("Peek() on zero-capacity ring returned a frame")
	}
	if got := r.InsertTime(); got != 0 {
		t.Fatalf("InsertTime() = %d, want 0", got)
	}
}

func TestInitialState(t *testing.T) {
	r := New(clock.New(), 10)
	if r.Size() != 0 || !r.Empty() || r.Full() {
		t.Fatalf("fresh ring not empty: size=%d empty=%v full=%v", r.Size(), r.Empty(), r.Full())
	}
}

// TestScenarioA reproduces spec §8 scenario A verbatim: capacity 2, three
// puts, then drain.
func TestScenarioA(t *testing.T) {
	r := New(clock.New(), 2)

	r.Put(canframe.New(1, false, false, nil))
	r.Put(canframe.New(2, false, false, nil))
	r.Put(canframe.New(3, false, false, nil))

	if got := r.Size(); got != 2 {
		t.Fatalf("Size() = %d, want 2", got)
	}
	if got := r.Overflows(); got != 1 {
		t.Fatalf("Overflows() = %d, want 1", got)
	}

	f, ok := r.Peek()
	if !ok || f.ID != 2 {
		t.Fatalf("Peek() = %+v, %v; want id=2", f, ok)
	}

	f, ok = r.Get()
	if !ok || f.ID != 2 {
		t.Fatalf("Get() = %+v, %v; want id=2", f, ok)
	}
	f, ok = r.Get()
	if !ok || f.ID != 3 {
		t.Fatalf("Get() = %+v, %v; want id=3", f, ok)
	}

	if !r.Empty() {
		t.Fatalf("ring not empty after draining")
	}
	if got := r.Puts(); got != 3 {
		t.Fatalf("Puts() = %d, want 3", got)
	}
	if got := r.Gets(); got != 2 {
		t.Fatalf("Gets() = %d, want 2", got)
	}
}

func TestClearResetsPositionNotCounters(t *testing.T) {
	r := New(clock.New(), 4)
	r.Put(canframe.New(1, false, false, nil))
	r.Put(canframe.New(2, false, false, nil))
	r.Clear()

	if !r.Empty() {
		t.Fatalf("ring not empty after Clear")
	}
	if got := r.Puts(); got != 2 {
		t.Fatalf("Clear must not reset lifetime counters: Puts() = %d, want 2", got)
	}
}

func TestHighWaterMarkMonotonic(t *testing.T) {
	r := New(clock.New(), 5)
	for i := uint32(0); i < 3; i++ {
		r.Put(canframe.New(i, false, false, nil))
	}
	if got := r.HighWaterMark(); got != 3 {
		t.Fatalf("HighWaterMark() = %d, want 3", got)
	}
	r.Get()
	r.Get()
	if got := r.HighWaterMark(); got != 3 {
		t.Fatalf("HighWaterMark() dropped after drain: got %d, want 3", got)
	}
}

func TestInsertTimeTracksCaptureStamp(t *testing.T) {
	defer clock.ResetForTest()
	clock.SetForTest(1234)

	c := clock.New()
	r := New(c, 4)
	r.Put(canframe.New(1, false, false, nil))

	if got := r.InsertTime(); got != 1234 {
		t.Fatalf("InsertTime() = %d, want 1234", got)
	}
}
