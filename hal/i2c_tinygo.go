//go:build tinygo

package hal

import (
	"errors"
	"time"

	"machine"
)

// TinygoI2C implements I2cOps against a single machine.I2C bus, the two-wire
// bus Store's EEPROM backend drives.
type TinygoI2C struct {
	bus *machine.I2C
}

// NewTinygoI2C wraps bus (machine.I2C0 or machine.I2C1) and registers the
// result as the process's I2cOps driver, reachable afterwards through
// hal.MustI2c. A nil bus is a wiring mistake, caught here rather than at the
// first Tx.
func NewTinygoI2C(bus *machine.I2C) *TinygoI2C {
	if bus == nil {
		panic("hal: tinygo i2c driver needs a non-nil machine.I2C bus")
	}
	d := &TinygoI2C{bus: bus}
	SetI2cDriver(d)
	return d
}

// Init configures the bus at baud using the board's default SDA/SCL pins.
func (d *TinygoI2C) Init(baud uint32) error {
	return d.bus.Configure(machine.I2CConfig{Frequency: baud})
}

// WriteBlocking writes data to addr. nostop is part of the I2cOps signature
// and is ignored; machine.I2C.Tx always issues a stop.
func (d *TinygoI2C) WriteBlocking(addr uint8, data []byte, nostop bool) (int, error) {
	if err := d.bus.Tx(uint16(addr), data, nil); err != nil {
		return 0, err
	}
	return len(data), nil
}

// ReadBlockingUntil reads len(out) bytes from addr, failing if deadline has
// already passed before the transaction starts.
func (d *TinygoI2C) ReadBlockingUntil(addr uint8, out []byte, deadline time.Time) (int, error) {
	if !deadline.IsZero() && time.Now().After(deadline) {
		return 0, errors.New("hal: i2c read deadline exceeded")
	}
	if err := d.bus.Tx(uint16(addr), nil, out); err != nil {
		return 0, err
	}
	return len(out), nil
}
