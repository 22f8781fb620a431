// Package store implements the node's persisted identity, node variables,
// and event table, the Go counterpart of CBUSConfig. Persistence is
// delegated to a Backend; Store itself only knows byte offsets and the RAM
// hash index used to speed up event lookups.
package store

// Backend is the byte-addressable persistence surface Store writes
// through. Offsets are relative to the start of the backend's storage
// region, not absolute flash or EEPROM addresses.
type Backend interface {
	ReadByte(offset uint32) byte
	WriteByte(offset uint32, v byte)
	ReadBytes(offset uint32, n int) []byte
	WriteBytes(offset uint32, data []byte)
	EraseAll()
	Commit()
}
