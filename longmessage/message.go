// Package longmessage implements the stop-and-wait transport for CBUS long
// messages: multi-frame payloads segmented over repeated opcode 0xE9
// frames, with optional CRC-16 integrity checking.
package longmessage

import (
	"flimcore/canframe"
	"flimcore/clock"
	"flimcore/hal"
)

type txState uint8

const (
	txIdle txState = iota
	txHeaderPending
	txSegmentPending
)

// LongMessage is the simplex variant: one transmit slot, and a single
// subscribed receiver using a caller-owned assembly buffer.
type LongMessage struct {
	sender hal.CanSender
	clock  clock.Source

	delayMs   uint32
	timeoutMs uint32
	useCRC    bool

	txState     txState
	txBuf       []byte
	txLen       uint16
	txSent      uint16
	txStreamID  uint8
	txPriority  uint8
	txSeq       uint8
	txCRC       uint16
	txLastEvent uint32
	txReady     bool

	rxStreamIDs []uint8
	rxBuf       []byte
	rxHandler   Handler
	rxActive    bool
	rxStreamID  uint8
	rxExpected  uint16
	rxReceived  uint16
	rxNextSeq   uint8
	rxTruncated bool
	rxLastFrame uint32
	rxCRCExpect uint16
}

// New builds a LongMessage with the library defaults: 4ms inter-frame delay,
// 500ms receive timeout, CRC disabled.
func New(sender hal.CanSender, c clock.Source) *LongMessage {
	return &LongMessage{
		sender:    sender,
		clock:     c,
		delayMs:   defaultDelayMs,
		timeoutMs: defaultTimeoutMs,
	}
}

// SetDelay overrides the inter-frame delay, in milliseconds.
func (m *LongMessage) SetDelay(ms uint32) { m.delayMs = ms }

// SetTimeout overrides the receive timeout, in milliseconds.
func (m *LongMessage) SetTimeout(ms uint32) { m.timeoutMs = ms }

// UseCRC enables or disables sending and checking a CRC-16 in the header.
func (m *LongMessage) UseCRC(use bool) { m.useCRC = use }

// IsSending reports whether a transmission is in progress.
func (m *LongMessage) IsSending() bool { return m.txState != txIdle }

// SendLongMessage starts sending buf under streamID at priority. It fails if
// a send is already in progress or buf is longer than the wire format's
// single-byte length field can carry.
func (m *LongMessage) SendLongMessage(buf []byte, streamID, priority uint8) bool {
	if m.txState != txIdle {
		return false
	}
	if len(buf) > maxMessageLen {
		return false
	}
	m.txBuf = buf
	m.txLen = uint16(len(buf))
	m.txSent = 0
	m.txSeq = 0
	m.txStreamID = streamID
	m.txPriority = priority
	if m.useCRC {
		m.txCRC = crc16(buf)
	}
	m.txState = txHeaderPending
	m.txReady = true
	return true
}

// Process sends at most one frame, respecting delayMs, and ends the active
// receive with TIMEOUT_ERROR once timeoutMs has passed without a fragment. It always returns true for
// the simplex variant; the multiplex variant's Process can fail.
func (m *LongMessage) Process() bool {
	m.tickSend()
	m.tickReceiveTimeout()
	return true
}

func (m *LongMessage) tickSend() {
	if m.txState == txIdle {
		return
	}
	now := m.clock.NowMillis()
	if !m.txReady && now-m.txLastEvent < m.delayMs {
		return
	}
	m.txReady = false
	m.txLastEvent = now

	switch m.txState {
	case txHeaderPending:
		m.sendHeader()
		m.txState = txSegmentPending
	case txSegmentPending:
		m.sendSegment()
		if m.txSent >= m.txLen {
			m.txState = txIdle
		}
	}
}

func (m *LongMessage) sendHeader() {
	data := []byte{opcodeLongMessage, m.txStreamID, 0x00, 0x00, byte(m.txLen)}
	if m.useCRC {
		data = append(data, byte(m.txCRC>>8), byte(m.txCRC))
	}
	m.sender.Send(canframe.New(0, false, false, data), m.txPriority)
}

func (m *LongMessage) sendSegment() {
	m.txSeq++
	remaining := int(m.txLen) - int(m.txSent)
	n := fragmentPayload
	if remaining < n {
		n = remaining
	}
	chunk := m.txBuf[m.txSent : int(m.txSent)+n]
	data := append([]byte{opcodeLongMessage, m.txStreamID, m.txSeq}, chunk...)
	m.sender.Send(canframe.New(0, false, false, data), m.txPriority)
	m.txSent += uint16(n)
}

// Subscribe registers a simplex receiver for the given stream IDs, using
// buf as the assembly buffer shared by all of them (only one stream may be
// in flight at a time).
func (m *LongMessage) Subscribe(streamIDs []uint8, buf []byte, handler Handler) {
	m.rxStreamIDs = streamIDs
	m.rxBuf = buf
	m.rxHandler = handler
}

func (m *LongMessage) subscribed(streamID uint8) bool {
	for _, id := range m.rxStreamIDs {
		if id == streamID {
			return true
		}
	}
	return false
}

// ProcessReceivedMessageFragment feeds one received CAN frame into the
// receive state machine.
func (m *LongMessage) ProcessReceivedMessageFragment(f canframe.Frame) {
	payload := f.Payload()
	if len(payload) < 3 || payload[0] != opcodeLongMessage {
		return
	}
	streamID := payload[1]
	seq := payload[2]
	if !m.subscribed(streamID) {
		return
	}

	if seq == 0 {
		m.openReceive(streamID, payload)
		return
	}

	if !m.rxActive || streamID != m.rxStreamID {
		return
	}
	if seq != m.rxNextSeq {
		m.finishReceive(StatusSequenceError, 0)
		return
	}

	m.copyFragment(payload[3:])
	m.rxNextSeq++
	m.rxLastFrame = m.clock.NowMillis()

	if m.rxReceived >= m.rxExpected {
		m.completeReceive()
	}
}

func (m *LongMessage) openReceive(streamID uint8, payload []byte) {
	m.rxActive = true
	m.rxStreamID = streamID
	m.rxExpected = uint16(payload[4])
	m.rxReceived = 0
	m.rxNextSeq = 1
	m.rxTruncated = uint16(len(m.rxBuf)) < m.rxExpected
	m.rxLastFrame = m.clock.NowMillis()
	if len(payload) >= 7 {
		m.rxCRCExpect = uint16(payload[5])<<8 | uint16(payload[6])
	}
}

func (m *LongMessage) copyFragment(chunk []byte) {
	remainingExpected := int(m.rxExpected) - int(m.rxReceived)
	remainingBuf := len(m.rxBuf) - int(m.rxReceived)
	n := len(chunk)
	if n > remainingExpected {
		n = remainingExpected
	}
	if n > remainingBuf {
		n = remainingBuf
		m.rxTruncated = true
	}
	if n > 0 {
		copy(m.rxBuf[m.rxReceived:], chunk[:n])
	}
	m.rxReceived += uint16(n)
	if len(chunk) > n {
		m.rxTruncated = true
		m.rxReceived += uint16(len(chunk) - n)
		if m.rxReceived > m.rxExpected {
			m.rxReceived = m.rxExpected
		}
	}
}

func (m *LongMessage) completeReceive() {
	status := StatusComplete
	if m.rxTruncated {
		status = StatusTruncated
	} else if m.useCRC {
		n := int(m.rxReceived)
		if n > len(m.rxBuf) {
			n = len(m.rxBuf)
		}
		if crc16(m.rxBuf[:n]) != m.rxCRCExpect {
			status = StatusCRCError
		}
	}
	m.finishReceive(status, m.rxReceived)
}

func (m *LongMessage) finishReceive(status Status, length uint16) {
	handler := m.rxHandler
	streamID := m.rxStreamID
	buf := m.rxBuf
	m.rxActive = false
	if handler != nil {
		n := int(length)
		if n > len(buf) {
			n = len(buf)
		}
		handler(buf[:n], streamID, status)
	}
}

func (m *LongMessage) tickReceiveTimeout() {
	if !m.rxActive {
		return
	}
	if m.clock.NowMillis()-m.rxLastFrame >= m.timeoutMs {
		m.finishReceive(StatusTimeoutError, m.rxReceived)
	}
}
