// Package indicator implements the CBUS status indicator LED: a simple
// on/off output that can also blink at a fixed rate or flash a single short
// or long pulse, driven by an external tick via Run.
package indicator

import (
	"flimcore/clock"
	"flimcore/hal"
)

// Mode is the LED's current drive mode.
type Mode uint8

const (
	ModeOff Mode = iota
	ModeOn
	ModeBlink
	ModePulse
)

const (
	defaultShortPulseMs uint32 = 100
	defaultLongPulseMs  uint32 = 500
	defaultBlinkRateMs  uint32 = 500
)

// LED drives a single GPIO pin through Off/On/Blink/Pulse. It has no
// concept of the pin's polarity; on means the pin is driven true.
type LED struct {
	gpio  hal.Gpio
	clock clock.Source

	pin  uint32
	mode Mode
	on   bool

	shortPulseMs uint32
	longPulseMs  uint32
	blinkRateMs  uint32

	pulseShort  bool
	pulseStart  uint32
	blinkToggle uint32
}

// New builds an LED with the source library's default pulse and blink
// timings; call SetPin before driving it.
func New(gpio hal.Gpio, c clock.Source) *LED {
	return &LED{
		gpio:         gpio,
		clock:        c,
		shortPulseMs: defaultShortPulseMs,
		longPulseMs:  defaultLongPulseMs,
		blinkRateMs:  defaultBlinkRateMs,
	}
}

// SetPin assigns the GPIO pin the LED drives and configures it as an
// output, starting off.
func (l *LED) SetPin(pin uint32) {
	l.pin = pin
	l.gpio.Init(pin)
	l.gpio.SetDir(pin, true)
	l.setOutput(false)
	l.mode = ModeOff
}

// GetState reports whether the LED is currently driven on.
func (l *LED) GetState() bool { return l.on }

// On drives the LED steady on.
func (l *LED) On() {
	l.mode = ModeOn
	l.setOutput(true)
}

// Off drives the LED steady off.
func (l *LED) Off() {
	l.mode = ModeOff
	l.setOutput(false)
}

// Toggle flips the LED's steady state, cancelling any blink or pulse.
func (l *LED) Toggle() {
	if l.on {
		l.Off()
	} else {
		l.On()
	}
}

// SetShortPulseDuration sets the duration of a short Pulse(true), in
// milliseconds.
func (l *LED) SetShortPulseDuration(ms uint32) { l.shortPulseMs = ms }

// SetLongPulseDuration sets the duration of a long Pulse(false), in
// milliseconds.
func (l *LED) SetLongPulseDuration(ms uint32) { l.longPulseMs = ms }

// SetBlinkRate sets the on/off interval Blink toggles at, in milliseconds.
func (l *LED) SetBlinkRate(ms uint32) { l.blinkRateMs = ms }

// Pulse turns the LED on for one short (short=true) or long (short=false)
// pulse; Run turns it back off once the pulse duration has elapsed.
func (l *LED) Pulse(short bool) {
	l.mode = ModePulse
	l.pulseShort = short
	l.pulseStart = l.clock.NowMillis()
	l.setOutput(true)
}

// Blink starts the LED toggling at BlinkRate, on immediately.
func (l *LED) Blink() {
	l.mode = ModeBlink
	l.blinkToggle = l.clock.NowMillis()
	l.setOutput(true)
}

// Run advances time-based modes; it must be called periodically for Blink
// and Pulse to progress. On/Off/Toggle take effect immediately without Run.
func (l *LED) Run() {
	now := l.clock.NowMillis()
	switch l.mode {
	case ModePulse:
		duration := l.longPulseMs
		if l.pulseShort {
			duration = l.shortPulseMs
		}
		if now-l.pulseStart >= duration {
			l.mode = ModeOff
			l.setOutput(false)
		}
	case ModeBlink:
		if now-l.blinkToggle >= l.blinkRateMs {
			l.blinkToggle = now
			l.setOutput(!l.on)
		}
	}
}

func (l *LED) setOutput(on bool) {
	l.on = on
	l.gpio.Put(l.pin, on)
}
