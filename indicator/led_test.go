package indicator

import (
	"testing"
	"time"

	"flimcore/clock"
)

type fakeGpio struct {
	pins map[uint32]bool
}

func newFakeGpio() *fakeGpio { return &fakeGpio{pins: make(map[uint32]bool)} }

func (g *fakeGpio) Init(pin uint32) error                   { return nil }
func (g *fakeGpio) SetDir(pin uint32, out bool) error        { return nil }
func (g *fakeGpio) SetPulls(pin uint32, up, down bool) error { return nil }
func (g *fakeGpio) Get(pin uint32) (bool, error)             { return g.pins[pin], nil }
func (g *fakeGpio) Put(pin uint32, v bool) error             { g.pins[pin] = v; return nil }

func newTestLED(t *testing.T) *LED {
	t.Cleanup(clock.ResetForTest)
	clock.SetForTest(0)
	l := New(newFakeGpio(), clock.New())
	l.SetPin(1)
	return l
}

func TestLEDInit(t *testing.T) {
	l := newTestLED(t)
	if l.GetState() {
		t.Fatalf("GetState() = true on init")
	}
}

func TestLEDOnOff(t *testing.T) {
	l := newTestLED(t)
	l.On()
	l.Run()
	if !l.GetState() {
		t.Fatalf("GetState() = false after On")
	}
	l.Off()
	l.Run()
	if l.GetState() {
		t.Fatalf("GetState() = true after Off")
	}
}

func TestLEDToggle(t *testing.T) {
	l := newTestLED(t)
	l.Toggle()
	l.Run()
	if !l.GetState() {
		t.Fatalf("GetState() = false after first Toggle")
	}
	l.Toggle()
	l.Run()
	if l.GetState() {
		t.Fatalf("GetState() = true after second Toggle")
	}
}

func TestLEDPulse(t *testing.T) {
	l := newTestLED(t)
	l.SetShortPulseDuration(100)
	l.SetLongPulseDuration(500)

	l.Pulse(false)
	l.Run()
	if !l.GetState() {
		t.Fatalf("GetState() = false after long Pulse")
	}

	clock.AdvanceForTest(250 * time.Millisecond)
	l.Run()
	if !l.GetState() {
		t.Fatalf("GetState() = false halfway through long pulse")
	}

	clock.AdvanceForTest(250 * time.Millisecond)
	l.Run()
	if l.GetState() {
		t.Fatalf("GetState() = true after long pulse expired")
	}

	l.Pulse(true)
	l.Run()
	if !l.GetState() {
		t.Fatalf("GetState() = false after short Pulse")
	}

	clock.AdvanceForTest(50 * time.Millisecond)
	l.Run()
	if !l.GetState() {
		t.Fatalf("GetState() = false halfway through short pulse")
	}

	clock.AdvanceForTest(50 * time.Millisecond)
	l.Run()
	if l.GetState() {
		t.Fatalf("GetState() = true after short pulse expired")
	}
}

func TestLEDBlink(t *testing.T) {
	l := newTestLED(t)
	l.SetBlinkRate(500)

	l.Blink()
	l.Run()
	if !l.GetState() {
		t.Fatalf("GetState() = false immediately after Blink")
	}

	clock.AdvanceForTest(250 * time.Millisecond)
	l.Run()
	if !l.GetState() {
		t.Fatalf("GetState() = false at half blink rate")
	}

	clock.AdvanceForTest(250 * time.Millisecond)
	l.Run()
	if l.GetState() {
		t.Fatalf("GetState() = true at full blink rate")
	}

	for i := 0; i < 10; i++ {
		clock.AdvanceForTest(500 * time.Millisecond)
		l.Run()
		if !l.GetState() {
			t.Fatalf("iteration %d: GetState() = false, want on", i)
		}
		clock.AdvanceForTest(500 * time.Millisecond)
		l.Run()
		if l.GetState() {
			t.Fatalf("iteration %d: GetState() = true, want off", i)
		}
	}

	l.On()
	l.Run()
	if !l.GetState() {
		t.Fatalf("GetState() = false after cancelling blink with On")
	}
}
