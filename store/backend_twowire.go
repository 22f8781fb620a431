package store

import (
	"time"

	"flimcore/hal"
)

// I2cReadTimeout bounds every readByte's wait for the device to ack.
const I2cReadTimeout = 20 * time.Millisecond

// TwoWireBackend persists bytes to an external EEPROM over the two-wire
// bus. Each WriteByte is a two-byte bus transaction, [offset, value]; each
// ReadByte is a register-address write followed by a one-byte read bounded
// by I2cReadTimeout. There is no RAM shadow: every access is a bus
// transaction, and ReadBytes/WriteBytes issue one such transaction per byte.
type TwoWireBackend struct {
	bus  hal.I2cOps
	addr uint8
	base uint32
}

// NewTwoWireBackend builds a backend talking to the device at addr, with its
// storage region starting at byte offset base within the device. A nil bus
// is a wiring mistake, not a runtime condition a caller can recover from, so
// it panics the same way hal.MustI2c does rather than deferring the failure
// to the first ReadByte/WriteByte call.
func NewTwoWireBackend(bus hal.I2cOps, addr uint8, base uint32) *TwoWireBackend {
	if bus == nil {
		panic("store: two-wire backend needs a configured I2C bus")
	}
	return &TwoWireBackend{bus: bus, addr: addr, base: base}
}

// Probe rewrites byte 0 of the region with its current value, then issues an
// address write and a one-byte read, returning the first bus error from
// those two. Store does not call Probe and never switches to a FlashBackend
// on its own; a failed probe only shows up in this return value.
func (b *TwoWireBackend) Probe() error {
	probeOffset := b.base
	was := b.ReadByte(probeOffset - b.base)
	b.WriteByte(0, was)
	_, err := b.bus.WriteBlocking(b.addr, []byte{byte(probeOffset)}, true)
	if err != nil {
		return err
	}
	out := make([]byte, 1)
	_, err = b.bus.ReadBlockingUntil(b.addr, out, time.Now().Add(I2cReadTimeout))
	return err
}

func (b *TwoWireBackend) ReadByte(offset uint32) byte {
	addr := b.base + offset
	b.bus.WriteBlocking(b.addr, []byte{byte(addr)}, true)
	out := make([]byte, 1)
	b.bus.ReadBlockingUntil(b.addr, out, time.Now().Add(I2cReadTimeout))
	return out[0]
}

func (b *TwoWireBackend) WriteByte(offset uint32, v byte) {
	addr := b.base + offset
	b.bus.WriteBlocking(b.addr, []byte{byte(addr), v}, false)
}

func (b *TwoWireBackend) ReadBytes(offset uint32, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b.ReadByte(offset + uint32(i))
	}
	return out
}

func (b *TwoWireBackend) WriteBytes(offset uint32, data []byte) {
	for i, v := range data {
		b.WriteByte(offset+uint32(i), v)
	}
}

// EraseAll writes 0xFF across the whole device-side region, matching the
// virgin state a flash backend reports.
func (b *TwoWireBackend) EraseAll() {
	zero := make([]byte, EepromRegionSize)
	for i := range zero {
		zero[i] = 0xFF
	}
	b.WriteBytes(0, zero)
}

// Commit is a no-op: every WriteByte already lands on the device.
func (b *TwoWireBackend) Commit() {}

// EepromRegionSize is the byte span EraseAll clears. It is sized generously
// for the NV+event tables this stack uses; callers with a smaller device
// should not call EraseAll.
const EepromRegionSize = 512
