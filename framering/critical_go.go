//go:build !tinygo

package framering

// On the host build there is no real interrupt controller; tests drive put
// and get from the same goroutine, so this is a no-op that only exists to
// keep put()'s critical section symmetric with the tinygo build.
type criticalState = struct{}

func enterCritical() criticalState { return criticalState{} }
func exitCritical(criticalState)   {}
