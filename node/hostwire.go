//go:build linux && !tinygo

package node

import (
	"flimcore/framering"
	"flimcore/hal"
	"flimcore/logging"
)

// DialSocketCANSender opens iface (e.g. "vcan0") and returns it as a
// hal.CanSender for wiring into a host-run Node, logging the outcome.
func DialSocketCANSender(iface string) (hal.CanSender, error) {
	bus, err := hal.DialSocketCAN(iface)
	if err != nil {
		logging.L().Error("socketcan_dial_failed", "iface", iface, "error", err)
		return nil, err
	}
	logging.L().Info("socketcan_dial", "iface", iface)
	return bus, nil
}

// PumpSocketCAN reads frames from bus and feeds them into ring until bus has
// no frame available or its Next reports false, then returns.
// Intended for a host binary running the node stack against a real or
// virtual CAN interface instead of tinygo hardware; callers loop this
// themselves since it makes no blocking assumption about bus.Next.
func PumpSocketCAN(bus *hal.SocketCAN, ring *framering.Ring) {
	for bus.Available() {
		f, ok := bus.Next()
		if !ok {
			return
		}
		ring.Put(f)
	}
}
