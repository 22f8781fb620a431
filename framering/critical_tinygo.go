//go:build tinygo

package framering

import "runtime/interrupt"

// criticalState mirrors the interrupt mask saved by enterCritical, restored
// by exitCritical. put() is the only method that needs it: it is the sole
// entry point ever called from the CAN RX ISR.
type criticalState = interrupt.State

func enterCritical() criticalState {
	return interrupt.Disable()
}

func exitCritical(s criticalState) {
	interrupt.Restore(s)
}
