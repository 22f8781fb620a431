package longmessage

import (
	"flimcore/canframe"
	"flimcore/clock"
	"flimcore/hal"
)

type txContext struct {
	inUse    bool
	state    txState
	buf      []byte
	len      uint16
	sent     uint16
	streamID uint8
	priority uint8
	seq      uint8
	crc      uint16
	lastTick uint32
	ready    bool
}

type rxContext struct {
	active    bool
	streamID  uint8
	buf       []byte
	expected  uint16
	received  uint16
	nextSeq   uint8
	truncated bool
	crcExpect uint16
	lastFrame uint32
}

// LongMessageEx is the multiplex variant: a fixed pool of send contexts and
// a fixed pool of receive contexts, each with its own internally-owned
// buffer, letting several long messages be in flight concurrently.
type LongMessageEx struct {
	sender hal.CanSender
	clock  clock.Source

	delayMs   uint32
	timeoutMs uint32
	useCRC    bool

	allocated bool
	tx        []txContext
	rx        []rxContext
	rrCursor  int

	streamIDs []uint8
	handler   Handler
}

// NewEx builds a LongMessageEx; call AllocateContexts before use.
func NewEx(sender hal.CanSender, c clock.Source) *LongMessageEx {
	return &LongMessageEx{
		sender:    sender,
		clock:     c,
		delayMs:   defaultDelayMs,
		timeoutMs: defaultTimeoutMs,
	}
}

// SetDelay overrides the inter-frame delay, in milliseconds.
func (m *LongMessageEx) SetDelay(ms uint32) { m.delayMs = ms }

// SetTimeout overrides the receive timeout, in milliseconds.
func (m *LongMessageEx) SetTimeout(ms uint32) { m.timeoutMs = ms }

// UseCRC enables or disables sending and checking a CRC-16 in the header.
func (m *LongMessageEx) UseCRC(use bool) { m.useCRC = use }

// AllocateContexts creates numTx send contexts and numRx receive contexts,
// each with an internal buffer of bufferSize bytes.
func (m *LongMessageEx) AllocateContexts(numTx int, bufferSize int, numRx int) {
	m.tx = make([]txContext, numTx)
	for i := range m.tx {
		m.tx[i].buf = make([]byte, bufferSize)
	}
	m.rx = make([]rxContext, numRx)
	for i := range m.rx {
		m.rx[i].buf = make([]byte, bufferSize)
	}
	m.allocated = true
}

// Subscribe registers the stream IDs and handler the receive side accepts.
func (m *LongMessageEx) Subscribe(streamIDs []uint8, handler Handler) {
	m.streamIDs = streamIDs
	m.handler = handler
}

func (m *LongMessageEx) subscribed(streamID uint8) bool {
	for _, id := range m.streamIDs {
		if id == streamID {
			return true
		}
	}
	return false
}

// IsSending reports whether any send context is active.
func (m *LongMessageEx) IsSending() bool {
	for i := range m.tx {
		if m.tx[i].state != txIdle {
			return true
		}
	}
	return false
}

// SendLongMessage finds the first idle context and starts sending buf under
// streamID, unless another context is already busy with that streamID, no
// context is free, buf is longer than a context's buffer or 255 bytes, or
// the pool has not been allocated.
func (m *LongMessageEx) SendLongMessage(buf []byte, streamID, priority uint8) bool {
	if !m.allocated || len(buf) > maxMessageLen {
		return false
	}
	for i := range m.tx {
		if m.tx[i].state != txIdle && m.tx[i].streamID == streamID {
			return false
		}
	}
	for i := range m.tx {
		ctx := &m.tx[i]
		if ctx.state != txIdle {
			continue
		}
		if len(buf) > len(ctx.buf) {
			return false
		}
		copy(ctx.buf, buf)
		ctx.len = uint16(len(buf))
		ctx.sent = 0
		ctx.seq = 0
		ctx.streamID = streamID
		ctx.priority = priority
		if m.useCRC {
			ctx.crc = crc16(buf)
		}
		ctx.state = txHeaderPending
		ctx.ready = true
		return true
	}
	return false
}

// Process services one due send context and checks every receive context
// for timeout, in round-robin order. It returns false only when the
// context pool has not been allocated.
func (m *LongMessageEx) Process() bool {
	if !m.allocated {
		return false
	}
	m.tickOneSend()
	m.tickReceiveTimeouts()
	return true
}

func (m *LongMessageEx) tickOneSend() {
	n := len(m.tx)
	if n == 0 {
		return
	}
	now := m.clock.NowMillis()
	for i := 0; i < n; i++ {
		idx := (m.rrCursor + i) % n
		ctx := &m.tx[idx]
		if ctx.state == txIdle {
			continue
		}
		if !ctx.ready && now-ctx.lastTick < m.delayMs {
			continue
		}
		m.sendFromContext(ctx)
		m.rrCursor = (idx + 1) % n
		return
	}
}

func (m *LongMessageEx) sendFromContext(ctx *txContext) {
	now := m.clock.NowMillis()
	ctx.ready = false
	ctx.lastTick = now

	switch ctx.state {
	case txHeaderPending:
		data := []byte{opcodeLongMessage, ctx.streamID, 0x00, 0x00, byte(ctx.len)}
		if m.useCRC {
			data = append(data, byte(ctx.crc>>8), byte(ctx.crc))
		}
		m.sender.Send(canframe.New(0, false, false, data), ctx.priority)
		ctx.state = txSegmentPending
	case txSegmentPending:
		ctx.seq++
		remaining := int(ctx.len) - int(ctx.sent)
		fn := fragmentPayload
		if remaining < fn {
			fn = remaining
		}
		chunk := ctx.buf[ctx.sent : int(ctx.sent)+fn]
		data := append([]byte{opcodeLongMessage, ctx.streamID, ctx.seq}, chunk...)
		m.sender.Send(canframe.New(0, false, false, data), ctx.priority)
		ctx.sent += uint16(fn)
		if ctx.sent >= ctx.len {
			ctx.state = txIdle
		}
	}
}

// ProcessReceivedMessageFragment feeds one received CAN frame into whichever
// receive context owns its stream, opening a new one on a header fragment
// if a free context is available.
func (m *LongMessageEx) ProcessReceivedMessageFragment(f canframe.Frame) {
	if !m.allocated {
		return
	}
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
		m.openReceiveContext(streamID, payload)
		return
	}

	idx := m.findReceiveContext(streamID)
	if idx < 0 {
		return
	}
	ctx := &m.rx[idx]

	if seq != ctx.nextSeq {
		m.finishReceiveContext(idx, StatusSequenceError, 0)
		return
	}

	m.copyIntoContext(ctx, payload[3:])
	ctx.nextSeq++
	ctx.lastFrame = m.clock.NowMillis()

	if ctx.received >= ctx.expected {
		m.completeReceiveContext(idx)
	}
}

func (m *LongMessageEx) findReceiveContext(streamID uint8) int {
	for i := range m.rx {
		if m.rx[i].active && m.rx[i].streamID == streamID {
			return i
		}
	}
	return -1
}

func (m *LongMessageEx) openReceiveContext(streamID uint8, payload []byte) {
	for i := range m.rx {
		if m.rx[i].active {
			continue
		}
		ctx := &m.rx[i]
		ctx.active = true
		ctx.streamID = streamID
		ctx.expected = uint16(payload[4])
		ctx.received = 0
		ctx.nextSeq = 1
		ctx.truncated = uint16(len(ctx.buf)) < ctx.expected
		ctx.lastFrame = m.clock.NowMillis()
		ctx.crcExpect = 0
		if len(payload) >= 7 {
			ctx.crcExpect = uint16(payload[5])<<8 | uint16(payload[6])
		}
		return
	}
	// Receive pool exhausted: the header is silently dropped.
}

func (m *LongMessageEx) copyIntoContext(ctx *rxContext, chunk []byte) {
	remainingExpected := int(ctx.expected) - int(ctx.received)
	remainingBuf := len(ctx.buf) - int(ctx.received)
	n := len(chunk)
	if n > remainingExpected {
		n = remainingExpected
	}
	if n > remainingBuf {
		n = remainingBuf
		ctx.truncated = true
	}
	if n > 0 {
		copy(ctx.buf[ctx.received:], chunk[:n])
	}
	ctx.received += uint16(n)
	if len(chunk) > n {
		ctx.truncated = true
		leftover := uint16(len(chunk) - n)
		ctx.received += leftover
		if ctx.received > ctx.expected {
			ctx.received = ctx.expected
		}
	}
}

func (m *LongMessageEx) completeReceiveContext(idx int) {
	ctx := &m.rx[idx]
	status := StatusComplete
	if ctx.truncated {
		status = StatusTruncated
	} else if m.useCRC {
		n := int(ctx.received)
		if n > len(ctx.buf) {
			n = len(ctx.buf)
		}
		if crc16(ctx.buf[:n]) != ctx.crcExpect {
			status = StatusCRCError
		}
	}
	m.finishReceiveContext(idx, status, ctx.received)
}

func (m *LongMessageEx) finishReceiveContext(idx int, status Status, length uint16) {
	ctx := &m.rx[idx]
	handler := m.handler
	streamID := ctx.streamID
	buf := ctx.buf
	ctx.active = false
	if handler != nil {
		n := int(length)
		if n > len(buf) {
			n = len(buf)
		}
		handler(buf[:n], streamID, status)
	}
}

func (m *LongMessageEx) tickReceiveTimeouts() {
	now := m.clock.NowMillis()
	for i := range m.rx {
		if !m.rx[i].active {
			continue
		}
		if now-m.rx[i].lastFrame >= m.timeoutMs {
			m.finishReceiveContext(i, StatusTimeoutError, m.rx[i].received)
		}
	}
}
