//go:build tinygo

package hal

import "machine"

// TinygoGpio implements Gpio directly against TinyGo's machine package. It
// tracks each pin's configured direction so Get/Put can be called without
// the caller re-issuing SetDir on every access.
type TinygoGpio struct {
	pins map[uint32]machine.Pin
	out  map[uint32]bool
}

// NewTinygoGpio constructs a driver with no pins configured yet and
// registers it as the process's Gpio driver, so package code elsewhere can
// reach it through hal.MustGpio instead of threading it through every
// constructor.
func NewTinygoGpio() *TinygoGpio {
	d := &TinygoGpio{
		pins: make(map[uint32]machine.Pin),
		out:  make(map[uint32]bool),
	}
	SetGpioDriver(d)
	return d
}

// Init registers pin without changing its direction; SetDir configures it.
func (d *TinygoGpio) Init(pin uint32) error {
	d.pins[pin] = machine.Pin(pin)
	return nil
}

// SetDir configures pin as output or, if out is false, as a floating input.
// Call SetPulls afterwards to attach a pull resistor.
func (d *TinygoGpio) SetDir(pin uint32, out bool) error {
	p := machine.Pin(pin)
	if out {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	} else {
		p.Configure(machine.PinConfig{Mode: machine.PinInput})
	}
	d.pins[pin] = p
	d.out[pin] = out
	return nil
}

// SetPulls reconfigures an input pin's pull resistor. up takes precedence
// over down when both are set; neither set leaves the pin floating.
func (d *TinygoGpio) SetPulls(pin uint32, up, down bool) error {
	p := machine.Pin(pin)
	switch {
	case up:
		p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	case down:
		p.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	default:
		p.Configure(machine.PinConfig{Mode: machine.PinInput})
	}
	d.pins[pin] = p
	return nil
}

// Get reads the current pin level.
func (d *TinygoGpio) Get(pin uint32) (bool, error) {
	p, ok := d.pins[pin]
	if !ok {
		p = machine.Pin(pin)
	}
	return p.Get(), nil
}

// Put drives pin high or low; the pin must already be configured as output.
func (d *TinygoGpio) Put(pin uint32, v bool) error {
	p, ok := d.pins[pin]
	if !ok {
		p = machine.Pin(pin)
		d.pins[pin] = p
	}
	p.Set(v)
	return nil
}
