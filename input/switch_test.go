package input

import (
	"testing"
	"time"

	"flimcore/clock"
)

type fakeGpio struct {
	level bool
}

func (g *fakeGpio) Init(pin uint32) error                   { return nil }
func (g *fakeGpio) SetDir(pin uint32, out bool) error        { return nil }
func (g *fakeGpio) SetPulls(pin uint32, up, down bool) error { return nil }
func (g *fakeGpio) Get(pin uint32) (bool, error)             { return g.level, nil }
func (g *fakeGpio) Put(pin uint32, v bool) error             { return nil }

func TestSwitchInitActiveLow(t *testing.T) {
	defer clock.ResetForTest()
	clock.SetForTest(0)

	gpio := &fakeGpio{level: true}
	sw := New(gpio, clock.New())
	sw.SetPin(1, false)
	sw.Run()

	if !sw.GetState() {
		t.Fatalf("GetState() = false, want true (resting high, active low)")
	}
	if sw.IsPressed() {
		t.Fatalf("IsPressed() = true at rest")
	}
}

func TestSwitchInitActiveHigh(t *testing.T) {
	defer clock.ResetForTest()
	clock.SetForTest(0)

	gpio := &fakeGpio{level: false}
	sw := New(gpio, clock.New())
	sw.SetPin(1, true)
	sw.Run()

	if sw.GetState() {
		t.Fatalf("GetState() = true, want false (resting low, active high)")
	}
	if sw.IsPressed() {
		t.Fatalf("IsPressed() = true at rest")
	}
}

// TestSwitchDebounce reproduces spec §8 scenario F: a 20ms debounce, a press
// held from t=0, checked at t=10 (too soon) and t=20 (debounced).
func TestSwitchDebounce(t *testing.T) {
	defer clock.ResetForTest()
	clock.SetForTest(0)

	gpio := &fakeGpio{level: true}
	c := clock.New()
	sw := New(gpio, c)
	sw.SetPin(1, false)
	sw.SetDebounceDuration(20)
	sw.Run()

	gpio.level = false // press: active-low pulls the pin low

	clock.AdvanceForTest(10 * time.Millisecond)
	sw.Run()
	if sw.IsPressed() {
		t.Fatalf("IsPressed() = true at t=10, debounce not yet elapsed")
	}
	if sw.StateChanged() {
		t.Fatalf("StateChanged() = true at t=10")
	}

	clock.AdvanceForTest(10 * time.Millisecond)
	sw.Run()
	if !sw.IsPressed() {
		t.Fatalf("IsPressed() = false at t=20, want true")
	}
	if !sw.StateChanged() {
		t.Fatalf("StateChanged() = false at t=20, want true")
	}
	if got := sw.CurrentStateDuration(); got != 0 {
		t.Fatalf("CurrentStateDuration() = %d, want 0 immediately after commit", got)
	}

	sw.Run()
	if sw.StateChanged() {
		t.Fatalf("StateChanged() stayed true on the following Run")
	}
}

func TestSwitchHeldAndReleaseDurations(t *testing.T) {
	defer clock.ResetForTest()
	clock.SetForTest(0)

	gpio := &fakeGpio{level: true}
	sw := New(gpio, clock.New())
	sw.SetPin(1, false)
	sw.SetDebounceDuration(20)
	sw.Run()

	gpio.level = false
	clock.AdvanceForTest(20 * time.Millisecond)
	sw.Run() // pressed at t=20

	clock.AdvanceForTest(100 * time.Millisecond)
	sw.Run()
	if got := sw.CurrentStateDuration(); got != 100 {
		t.Fatalf("CurrentStateDuration() = %d, want 100", got)
	}

	gpio.level = true
	clock.AdvanceForTest(20 * time.Millisecond)
	sw.Run() // released at t=140

	if sw.IsPressed() {
		t.Fatalf("IsPressed() = true after release")
	}
	if got := sw.LastStateDuration(); got != 120 {
		t.Fatalf("LastStateDuration() = %d, want 120", got)
	}
	if got := sw.LastStateChangeTime(); got != 140 {
		t.Fatalf("LastStateChangeTime() = %d, want 140", got)
	}
}

func TestSwitchZeroDebounceCommitsImmediately(t *testing.T) {
	defer clock.ResetForTest()
	clock.SetForTest(0)

	gpio := &fakeGpio{level: true}
	sw := New(gpio, clock.New())
	sw.SetPin(1, false)
	sw.SetDebounceDuration(0)
	sw.Run()

	gpio.level = false
	sw.Run()
	if !sw.IsPressed() {
		t.Fatalf("IsPressed() = false with zero debounce, want immediate commit")
	}

	clock.AdvanceForTest(100 * time.Millisecond)
	sw.Run()
	if got := sw.CurrentStateDuration(); got != 100 {
		t.Fatalf("CurrentStateDuration() = %d, want 100", got)
	}

	sw.ResetCurrentDuration()
	clock.AdvanceForTest(200 * time.Millisecond)
	sw.Run()
	if got := sw.CurrentStateDuration(); got != 200 {
		t.Fatalf("CurrentStateDuration() = %d, want 200 after ResetCurrentDuration", got)
	}
}
