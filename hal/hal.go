// Package hal collects the collaborator interfaces the CBUS node stack
// expects its host firmware to provide: CAN transceiver access, GPIO,
// on-chip flash, and the two-wire (I2C) bus, plus driver-selection slots for
// GPIO and I2C. Build-tagged files add TinyGo bindings for Gpio and I2cOps
// and a Linux SocketCAN CanSender/CanReceiver; no FlashOps implementation
// and no microcontroller CAN driver live in this package.
package hal

import (
	"time"

	"flimcore/canframe"
)

// CanSender is the transmit half of the CAN transceiver collaborator.
// Priority is passed through untouched; CBUS priority encoding into the
// CAN identifier's high bits is the dispatcher's concern, not this stack's.
type CanSender interface {
	Send(f canframe.Frame, priority uint8) bool
}

// CanReceiver is the foreground polling surface layered over a FrameRing by
// the node package; declared here so adapter code can depend on the
// interface without importing framering.
type CanReceiver interface {
	Available() bool
	Next() (canframe.Frame, bool)
}

// Gpio abstracts pin control for Indicator and Input.
type Gpio interface {
	Init(pin uint32) error
	SetDir(pin uint32, out bool) error
	SetPulls(pin uint32, up, down bool) error
	Get(pin uint32) (bool, error)
	Put(pin uint32, v bool) error
}

// FlashOps abstracts the on-chip flash sector used by Store's flash backend.
type FlashOps interface {
	EraseSector(offset uint32, size uint32) error
	Program(offset uint32, data []byte) error
}

// I2cOps abstracts the two-wire bus used by Store's EEPROM backend.
type I2cOps interface {
	Init(baud uint32) error
	WriteBlocking(addr uint8, data []byte, nostop bool) (int, error)
	ReadBlockingUntil(addr uint8, out []byte, deadline time.Time) (int, error)
}

// gpioDriver and i2cDriver are the process-wide slots target-specific
// startup code fills in once, via SetGpioDriver/SetI2cDriver, mirroring how
// the rest of this stack's collaborators are wired everywhere except here:
// a GPIO or I2C bus is genuinely process-global hardware, unlike Store or
// FrameRing which callers construct explicitly per instance.
var (
	gpioDriver Gpio
	i2cDriver  I2cOps
)

// SetGpioDriver registers the concrete Gpio implementation for the current
// target. Call once during startup before anything calls MustGpio.
func SetGpioDriver(d Gpio) { gpioDriver = d }

// MustGpio returns the registered Gpio driver. It panics if startup code
// never called SetGpioDriver: that is a wiring mistake, not a runtime
// condition, and is reported the same way as the teacher's own
// driver-not-configured accessors rather than as an error return.
func MustGpio() Gpio {
	if gpioDriver == nil {
		panic("hal: gpio driver not configured")
	}
	return gpioDriver
}

// SetI2cDriver registers the concrete I2cOps implementation for the current
// target. Call once during startup before anything calls MustI2c.
func SetI2cDriver(d I2cOps) { i2cDriver = d }

// MustI2c returns the registered I2cOps driver, panicking if startup code
// never called SetI2cDriver.
func MustI2c() I2cOps {
	if i2cDriver == nil {
		panic("hal: i2c driver not configured")
	}
	return i2cDriver
}
