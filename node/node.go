// Package node wires the frame ring, store, indicator, input, and
// long-message components into the minimal surface an external CBUS opcode
// dispatcher needs: peek/get on the frame ring, read/write on the store,
// tick on the long-message transport, and tick-plus-query on the indicator
// and input. It owns none of the CBUS opcode semantics itself.
package node

import (
	"flimcore/canframe"
	"flimcore/clock"
	"flimcore/framering"
	"flimcore/hal"
	"flimcore/indicator"
	"flimcore/input"
	"flimcore/store"
)

// LongMessenger is the subset of LongMessage/LongMessageEx that Node needs to
// tick and feed received fragments to, letting a node use either the simplex
// or multiplex transport without Node caring which.
type LongMessenger interface {
	Process() bool
	ProcessReceivedMessageFragment(f canframe.Frame)
	IsSending() bool
}

// ringReceiver adapts framering.Ring's Peek/Get pair to hal.CanReceiver's
// Available/Next, the shape the rest of the stack expects a CAN source to
// have.
type ringReceiver struct {
	ring *framering.Ring
}

func (r ringReceiver) Available() bool             { return r.ring.Available() }
func (r ringReceiver) Next() (canframe.Frame, bool) { return r.ring.Get() }

// resetConfirmState tracks the MERG FLiM enrol UI's reset confirmation
// dance: blink the indicator to prompt, then only commit once the operator
// gives a fresh press on the input switch.
type resetConfirmState uint8

const (
	resetIdle resetConfirmState = iota
	resetPrompting
)

// Node bundles one instance of every C1-C6 component behind the surface an
// opcode dispatcher drives: it does not itself know any CBUS opcode.
type Node struct {
	Clock   clock.Source
	Ring    *framering.Ring
	Store   *store.Store
	LED     *indicator.LED
	Switch  *input.Switch
	LongMsg LongMessenger

	sched      *Scheduler
	resetState resetConfirmState
}

// New builds a Node around already-constructed components. Ring, Store, and
// LongMsg may be nil if the node has no use for that subsystem; LED and
// Switch likewise.
func New(c clock.Source, ring *framering.Ring, st *store.Store, led *indicator.LED, sw *input.Switch, lm LongMessenger) *Node {
	n := &Node{
		Clock:   c,
		Ring:    ring,
		Store:   st,
		LED:     led,
		Switch:  sw,
		LongMsg: lm,
		sched:   NewScheduler(c),
	}
	n.wireScheduler()
	return n
}

// wireScheduler registers the periodic ticks each present component needs,
// so a dispatcher only has to call Poll from its own loop.
func (n *Node) wireScheduler() {
	if n.LED != nil {
		n.sched.Every("indicator", 10, n.LED.Run)
	}
	if n.Switch != nil {
		n.sched.Every("input", 10, n.Switch.Run)
	}
	if n.LongMsg != nil {
		n.sched.Every("longmessage", 5, func() { n.LongMsg.Process() })
	}
	if n.LED != nil && n.Switch != nil && n.Store != nil {
		n.sched.Every("resetconfirm", 10, n.tickResetConfirm)
	}
}

// StartModuleReset arms the FLiM enrol UI's confirm-the-reset step: the
// indicator starts blinking and the reset is not committed to the store
// until the operator gives a fresh press on the input switch, so a stray or
// held button at boot cannot wipe the node's identity and event table by
// itself.
func (n *Node) StartModuleReset() {
	n.resetState = resetPrompting
	n.LED.Blink()
}

// tickResetConfirm commits an armed reset on the next debounced press and
// returns the indicator to OFF; a no-op unless StartModuleReset has been
// called and not yet confirmed.
func (n *Node) tickResetConfirm() {
	if n.resetState != resetPrompting {
		return
	}
	if n.Switch.StateChanged() && n.Switch.IsPressed() {
		n.Store.ResetModule()
		n.Store.ClearResetFlag()
		n.LED.Off()
		n.resetState = resetIdle
	}
}

// Poll drives every registered periodic tick. Call it from the dispatcher's
// foreground loop as often as convenient; components decide internally
// whether enough time has passed to do anything.
func (n *Node) Poll() {
	n.sched.Run()
}

// CanReceiver exposes the consumer side of the frame ring as a
// hal.CanReceiver, for a dispatcher that only knows the interface to drain
// the frames the CAN RX ISR put there.
func (n *Node) CanReceiver() hal.CanReceiver {
	return ringReceiver{ring: n.Ring}
}

// PeekFrame returns the oldest captured frame without consuming it.
func (n *Node) PeekFrame() (canframe.Frame, bool) {
	return n.Ring.Peek()
}

// GetFrame removes and returns the oldest captured frame.
func (n *Node) GetFrame() (canframe.Frame, bool) {
	return n.Ring.Get()
}

// DispatchFrame delivers a received frame to the long-message transport;
// call it for every frame the dispatcher decides is an 0xE9 fragment rather
// than a normal opcode.
func (n *Node) DispatchFrame(f canframe.Frame) {
	if n.LongMsg != nil {
		n.LongMsg.ProcessReceivedMessageFragment(f)
	}
}

// ReadNV reads node variable nv from the store.
func (n *Node) ReadNV(nv uint8) byte { return n.Store.ReadNV(nv) }

// WriteNV writes node variable nv to the store.
func (n *Node) WriteNV(nv uint8, value byte) { n.Store.WriteNV(nv, value) }

// ReadEvent reads event slot idx from the store.
func (n *Node) ReadEvent(idx uint8) store.Event { return n.Store.ReadEvent(idx) }

// WriteEvent writes event slot idx and refreshes its hash index entry.
func (n *Node) WriteEvent(idx uint8, ev store.Event) {
	n.Store.WriteEvent(idx, ev, true)
	n.Store.UpdateEvHashEntry(idx)
}

// FindOrAllocateEvent returns the slot already holding (nn, en), or the
// first free slot if none does; the caller must still call WriteEvent to
// populate a freshly allocated slot.
func (n *Node) FindOrAllocateEvent(nn, en uint16) (idx uint8, existing bool) {
	if found := n.Store.FindExistingEvent(nn, en); found != n.Store.MaxEvents() {
		return found, true
	}
	return n.Store.FindEventSpace(), false
}

// IsPressed reports the input switch's current debounced, polarity-mapped
// state.
func (n *Node) IsPressed() bool { return n.Switch.IsPressed() }

// StateChanged reports whether the input switch committed a debounced
// transition on its most recent tick, and clears that flag.
func (n *Node) StateChanged() bool { return n.Switch.StateChanged() }

// SetIndicator drives the status LED steady on or off.
func (n *Node) SetIndicator(on bool) {
	if on {
		n.LED.On()
	} else {
		n.LED.Off()
	}
}

// FlashIndicator starts the status LED blinking to signal an ongoing
// condition (e.g. FLiM setup mode).
func (n *Node) FlashIndicator() {
	n.LED.Blink()
}

// SendLongMessage starts a long-message send if the transport supports it.
func (n *Node) SendLongMessage(buf []byte, streamID, priority uint8) bool {
	type sender interface {
		SendLongMessage(buf []byte, streamID, priority uint8) bool
	}
	s, ok := n.LongMsg.(sender)
	if !ok {
		return false
	}
	return s.SendLongMessage(buf, streamID, priority)
}
