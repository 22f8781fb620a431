package store

const (
	offsetCANID       = 0
	offsetNodeNumHi   = 1
	offsetNodeNumLo   = 2
	offsetFLiM        = 3
	offsetResetFlag   = 4
	resetFlagMagic    = 0xCA
	minCANID          = 1
	maxCANID          = 99
	emptyEventNumber  = 0xFFFF
	emptyNodeNumber   = 0xFFFF
)

// Layout describes where the node variable block and event table live
// within the backend's address space, and how big each region is. Field
// names mirror the sizing parameters a node sets before calling Begin.
type Layout struct {
	NVsStart      uint32
	NumNVs        uint8
	EventsStart   uint32
	MaxEvents     uint8
	NumEVs        uint8
	BytesPerEvent uint8
}

// Event identifies a learned CBUS event by its originating node and event
// numbers.
type Event struct {
	NodeNumber  uint16
	EventNumber uint16
}

// Store is the node's persisted identity, node-variable block, and event
// table, backed by a Backend and indexed in RAM by a hash table for fast
// event lookup.
type Store struct {
	backend Backend
	layout  Layout

	canID      uint8
	nodeNumber uint16
	flim       bool

	hashTable []uint8
}

// New builds a Store over backend using layout without reading the backend.
// Call Begin to load identity (with defaults for a virgin backend) and
// populate the hash table.
func New(backend Backend, layout Layout) *Store {
	return &Store{
		backend:   backend,
		layout:    layout,
		hashTable: make([]uint8, layout.MaxEvents),
	}
}

// Begin loads identity from the backend, substituting defaults for a virgin
// (erased, all-0xFF) region, then rebuilds the RAM hash table from the
// event table already on the backend.
func (s *Store) Begin() {
	canID := s.backend.ReadByte(offsetCANID)
	if canID == 0xFF {
		canID = minCANID
	}
	s.canID = canID

	hi := s.backend.ReadByte(offsetNodeNumHi)
	lo := s.backend.ReadByte(offsetNodeNumLo)
	nn := uint16(hi)<<8 | uint16(lo)
	if nn == emptyNodeNumber {
		nn = 0
	}
	s.nodeNumber = nn

	flim := s.backend.ReadByte(offsetFLiM)
	s.flim = flim == 1

	for idx := uint8(0); idx < s.layout.MaxEvents; idx++ {
		s.UpdateEvHashEntry(idx)
	}
}

// MaxEvents returns the event table's fixed capacity, and the sentinel value
// FindEventSpace and FindExistingEvent return on a miss.
func (s *Store) MaxEvents() uint8 { return s.layout.MaxEvents }

// GetCANID returns the node's current CAN identifier.
func (s *Store) GetCANID() uint8 { return s.canID }

// SetCANID validates id is within [1, 99] before storing and persisting it.
func (s *Store) SetCANID(id uint8) bool {
	if id < minCANID || id > maxCANID {
		return false
	}
	s.canID = id
	s.backend.WriteByte(offsetCANID, id)
	s.backend.Commit()
	return true
}

// GetNodeNum returns the node's current node number.
func (s *Store) GetNodeNum() uint16 { return s.nodeNumber }

// SetNodeNum stores and persists nn.
func (s *Store) SetNodeNum(nn uint16) {
	s.nodeNumber = nn
	s.backend.WriteByte(offsetNodeNumHi, byte(nn>>8))
	s.backend.WriteByte(offsetNodeNumLo, byte(nn))
	s.backend.Commit()
}

// GetFLiM reports whether the node is in FLiM mode.
func (s *Store) GetFLiM() bool { return s.flim }

// SetFLiM stores and persists the node's FLiM/SLiM mode.
func (s *Store) SetFLiM(flim bool) {
	s.flim = flim
	v := byte(0)
	if flim {
		v = 1
	}
	s.backend.WriteByte(offsetFLiM, v)
	s.backend.Commit()
}

// IsResetFlagSet reports whether the module was left mid-reset by a prior
// run, e.g. power lost between erase and the write of fresh defaults.
func (s *Store) IsResetFlagSet() bool {
	return s.backend.ReadByte(offsetResetFlag) == resetFlagMagic
}

// SetResetFlag marks the module as mid-reset.
func (s *Store) SetResetFlag() {
	s.backend.WriteByte(offsetResetFlag, resetFlagMagic)
	s.backend.Commit()
}

// ClearResetFlag clears the mid-reset marker.
func (s *Store) ClearResetFlag() {
	s.backend.WriteByte(offsetResetFlag, 0)
	s.backend.Commit()
}

// nvOffset returns the byte offset of node variable nv, and whether nv is
// in range.
func (s *Store) nvOffset(nv uint8) (uint32, bool) {
	if nv >= s.layout.NumNVs {
		return 0, false
	}
	return s.layout.NVsStart + uint32(nv), true
}

// ReadNV returns node variable nv, or 0 if nv is out of range.
func (s *Store) ReadNV(nv uint8) byte {
	off, ok := s.nvOffset(nv)
	if !ok {
		return 0
	}
	return s.backend.ReadByte(off)
}

// WriteNV stores node variable nv. Out-of-range nv is silently ignored.
func (s *Store) WriteNV(nv uint8, value byte) {
	off, ok := s.nvOffset(nv)
	if !ok {
		return
	}
	s.backend.WriteByte(off, value)
	s.backend.Commit()
}

// eventOffset returns the byte offset of event slot idx.
func (s *Store) eventOffset(idx uint8) uint32 {
	return s.layout.EventsStart + uint32(idx)*uint32(s.layout.BytesPerEvent)
}

// ReadEvent returns the node and event numbers stored in slot idx.
func (s *Store) ReadEvent(idx uint8) Event {
	off := s.eventOffset(idx)
	b := s.backend.ReadBytes(off, 4)
	return Event{
		NodeNumber:  uint16(b[0])<<8 | uint16(b[1]),
		EventNumber: uint16(b[2])<<8 | uint16(b[3]),
	}
}

// WriteEvent stores ev into slot idx. commit controls whether the backend's
// Commit is called immediately; callers writing a batch of events and their
// EVs can pass false and commit once at the end.
func (s *Store) WriteEvent(idx uint8, ev Event, commit bool) {
	off := s.eventOffset(idx)
	s.backend.WriteBytes(off, []byte{
		byte(ev.NodeNumber >> 8), byte(ev.NodeNumber),
		byte(ev.EventNumber >> 8), byte(ev.EventNumber),
	})
	if commit {
		s.backend.Commit()
	}
}

// WriteEventEV stores value into event slot idx's EV at 1-based index
// evIndex (1..NumEVs). Out-of-range evIndex is silently ignored.
func (s *Store) WriteEventEV(idx uint8, evIndex uint8, value byte) {
	if evIndex < 1 || evIndex > s.layout.NumEVs {
		return
	}
	off := s.eventOffset(idx) + 4 + uint32(evIndex-1)
	s.backend.WriteByte(off, value)
	s.backend.Commit()
}

// GetEventEVval returns event slot idx's EV at 1-based index evIndex, or 0
// if evIndex is out of range.
func (s *Store) GetEventEVval(idx uint8, evIndex uint8) byte {
	if evIndex < 1 || evIndex > s.layout.NumEVs {
		return 0
	}
	off := s.eventOffset(idx) + 4 + uint32(evIndex-1)
	return s.backend.ReadByte(off)
}

// UpdateEvHashEntry recomputes slot idx's hash bucket from whatever event is
// currently stored there. Callers must call this after WriteEvent for the
// slot to become visible to FindExistingEvent and NumEvents.
func (s *Store) UpdateEvHashEntry(idx uint8) {
	if idx >= s.layout.MaxEvents {
		return
	}
	ev := s.ReadEvent(idx)
	if ev.NodeNumber == emptyNodeNumber && ev.EventNumber == emptyEventNumber {
		s.hashTable[idx] = 0
		return
	}
	s.hashTable[idx] = foldHash(ev.NodeNumber, ev.EventNumber)
}

// ClearEvHashTable empties the RAM index without touching the backend.
func (s *Store) ClearEvHashTable() {
	for i := range s.hashTable {
		s.hashTable[i] = 0
	}
}

// NumEvents returns how many event slots are currently indexed.
func (s *Store) NumEvents() uint8 {
	var n uint8
	for _, h := range s.hashTable {
		if h != 0 {
			n++
		}
	}
	return n
}

// FindEventSpace returns the index of the first slot whose stored
// node-number is the empty sentinel 0xFFFF, or MaxEvents if the table is
// full. This reads the slot itself rather than the hash table: a hash of 0
// means "empty" in the hash index, but an occupied slot's header can
// legitimately fold to 0 too (the documented hash-collision-with-empty
// limitation), and unlike FindExistingEvent this lookup has no full-header
// comparison to fall back on, so it must not trust the hash alone.
func (s *Store) FindEventSpace() uint8 {
	for idx := uint8(0); idx < s.layout.MaxEvents; idx++ {
		if s.ReadEvent(idx).NodeNumber == emptyNodeNumber {
			return idx
		}
	}
	return s.layout.MaxEvents
}

// FindExistingEvent returns the slot index holding (nodeNumber, eventNumber),
// or MaxEvents if no slot matches. Hash collisions are resolved by reading
// the candidate slot back and comparing the full event.
func (s *Store) FindExistingEvent(nodeNumber, eventNumber uint16) uint8 {
	target := foldHash(nodeNumber, eventNumber)
	for idx, h := range s.hashTable {
		if h != target {
			continue
		}
		ev := s.ReadEvent(uint8(idx))
		if ev.NodeNumber == nodeNumber && ev.EventNumber == eventNumber {
			return uint8(idx)
		}
	}
	return s.layout.MaxEvents
}

// ResetModule erases the backend, restores identity defaults, and empties
// the RAM hash table. It sets the reset flag as part of the same commit, so
// a power loss mid-reset still leaves IsResetFlagSet true on the next boot;
// callers that drive the confirm UI (see node.Node.StartModuleReset) clear
// the flag once the reset has been acknowledged. It does not itself reboot
// the node.
func (s *Store) ResetModule() {
	s.backend.EraseAll()
	s.SetResetFlag()
	s.backend.Commit()
	s.canID = minCANID
	s.nodeNumber = 0
	s.flim = false
	s.ClearEvHashTable()
}
