//go:build tinygo

package clock

import (
	"runtime/volatile"
	"unsafe"
)

// RP2040/RP2350 Timer peripheral, free-running at 1MHz since reset.
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x08
	timerTIMERAWL = timerBase + 0x0C
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// nowMicros reads the RP2040/RP2350 hardware microsecond timer directly.
// The high word is read before and after the low word to detect a rollover
// of the low word in between; on a mismatch the read is retried.
func nowMicros() uint64 {
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()
		if high1 == high2 {
			return uint64(high1)<<32 | uint64(low)
		}
	}
}
