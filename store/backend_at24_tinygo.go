//go:build tinygo

package store

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/at24"
)

// AT24Backend backs Store with a real AT24Cxx-family EEPROM chip over I2C,
// using the tinygo-drivers at24 package's byte-addressable ReadAt/WriteAt
// API rather than the raw two-byte-transaction protocol TwoWireBackend
// speaks, since the chip's own driver already handles page boundaries and
// write-cycle timing.
type AT24Backend struct {
	dev  at24.Device
	base int64
}

// NewAT24Backend configures an AT24 device on bus and returns a backend
// whose storage region starts at byte offset base on the chip.
func NewAT24Backend(bus drivers.I2C, addr uint16, base int64) *AT24Backend {
	dev := at24.New(bus)
	dev.Configure(at24.Config{Address: addr})
	return &AT24Backend{dev: dev, base: base}
}

func (b *AT24Backend) ReadByte(offset uint32) byte {
	var buf [1]byte
	b.dev.ReadAt(buf[:], b.base+int64(offset))
	return buf[0]
}

func (b *AT24Backend) WriteByte(offset uint32, v byte) {
	b.dev.WriteAt([]byte{v}, b.base+int64(offset))
}

func (b *AT24Backend) ReadBytes(offset uint32, n int) []byte {
	buf := make([]byte, n)
	b.dev.ReadAt(buf, b.base+int64(offset))
	return buf
}

func (b *AT24Backend) WriteBytes(offset uint32, data []byte) {
	b.dev.WriteAt(data, b.base+int64(offset))
}

// EraseAll writes 0xFF across the region TwoWireBackend.EraseAll covers, for
// parity between backends when a node is reset.
func (b *AT24Backend) EraseAll() {
	blank := make([]byte, EepromRegionSize)
	for i := range blank {
		blank[i] = 0xFF
	}
	b.dev.WriteAt(blank, b.base)
}

// Commit is a no-op: the at24 driver writes through immediately.
func (b *AT24Backend) Commit() {}
