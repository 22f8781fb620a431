// Package input implements a debounced digital input, tracking edges and
// how long the current and previous logical states were held.
package input

import (
	"flimcore/clock"
	"flimcore/hal"
)

const defaultDebounceMs uint32 = 20

// Switch is a single debounced GPIO input. ActiveHigh controls how the raw
// pin level maps to IsPressed: with activeHigh false (the common wiring for
// a switch to ground with an internal pull-up), a low pin level is pressed.
type Switch struct {
	gpio  hal.Gpio
	clock clock.Source

	pin        uint32
	activeHigh bool
	debounceMs uint32

	state   bool
	changed bool

	pending      bool
	pendingRaw   bool
	pendingSince uint32

	lastStableSampleTime uint32

	lastChangeTime       uint32
	lastStateDuration    uint32
	currentDurationStart uint32
}

// New builds a Switch with the library default 20ms debounce. Call SetPin
// before Run.
func New(gpio hal.Gpio, c clock.Source) *Switch {
	return &Switch{gpio: gpio, clock: c, debounceMs: defaultDebounceMs, state: true}
}

// SetPin configures pin as an input, pulled toward its resting level, and
// seeds the switch's state from the pin's current reading.
func (s *Switch) SetPin(pin uint32, activeHigh bool) {
	s.pin = pin
	s.activeHigh = activeHigh
	s.gpio.Init(pin)
	s.gpio.SetDir(pin, false)
	if activeHigh {
		s.gpio.SetPulls(pin, false, true)
	} else {
		s.gpio.SetPulls(pin, true, false)
	}

	raw, _ := s.gpio.Get(pin)
	now := s.clock.NowMillis()
	s.state = raw
	s.pending = false
	s.changed = false
	s.lastChangeTime = now
	s.currentDurationStart = now
	s.lastStableSampleTime = now
}

// SetDebounceDuration sets how long a raw level must hold steady before it
// is accepted as the switch's new state, in milliseconds. 0 disables
// debouncing.
func (s *Switch) SetDebounceDuration(ms uint32) { s.debounceMs = ms }

// Run samples the pin and advances the debounce state machine. Call it
// periodically; StateChanged only reflects the transition (if any) from the
// most recent Run call.
func (s *Switch) Run() {
	raw, _ := s.gpio.Get(s.pin)
	now := s.clock.NowMillis()
	s.changed = false

	if raw == s.state {
		s.pending = false
		s.lastStableSampleTime = now
		return
	}

	// The debounce window is measured from the edge itself, not from the
	// poll that first noticed it: pendingSince seeds from the last sample
	// that still matched the old state, since the edge happened sometime
	// between that sample and this one.
	if !s.pending || s.pendingRaw != raw {
		s.pending = true
		s.pendingRaw = raw
		s.pendingSince = s.lastStableSampleTime
	}

	if now-s.pendingSince >= s.debounceMs {
		s.lastStateDuration = now - s.currentDurationStart
		s.state = raw
		s.lastChangeTime = now
		s.currentDurationStart = now
		s.changed = true
		s.pending = false
	}
}

// GetState returns the debounced raw pin level.
func (s *Switch) GetState() bool { return s.state }

// IsPressed reports whether the debounced state corresponds to a press,
// given the switch's active-high/active-low polarity.
func (s *Switch) IsPressed() bool { return s.state == s.activeHigh }

// StateChanged reports whether the most recent Run call committed a debounced
// transition, and clears that flag, so it returns true at most once per
// transition.
func (s *Switch) StateChanged() bool {
	changed := s.changed
	s.changed = false
	return changed
}

// CurrentStateDuration returns how long, in milliseconds, the switch has
// held its current debounced state.
func (s *Switch) CurrentStateDuration() uint32 {
	return s.clock.NowMillis() - s.currentDurationStart
}

// LastStateDuration returns how long, in milliseconds, the switch held the
// state before its most recent transition, measured from the current-duration
// reference point (the previous transition, or a later ResetCurrentDuration).
func (s *Switch) LastStateDuration() uint32 { return s.lastStateDuration }

// LastStateChangeTime returns the clock time, in milliseconds, of the most
// recent debounced transition.
func (s *Switch) LastStateChangeTime() uint32 { return s.lastChangeTime }

// ResetCurrentDuration restarts CurrentStateDuration's reference point at
// now without altering the recorded state or LastStateChangeTime.
func (s *Switch) ResetCurrentDuration() {
	s.currentDurationStart = s.clock.NowMillis()
}
