// Package frozen implements the read-only, build-time-sealed hash tables that
// back every vocabulary lookup in tokencount: a byte-string->uint32 map and a
// byte-string set, both laid out as a single contiguous byte slice so they can
// be embedded verbatim with go:embed and read without any deserialization
// pass.
//
// Layout (little-endian throughout):
//
//	u32 num_slots | u32 num_entries | u32 string_pool_len | slot[num_slots] | bytes[string_pool_len]
//
// Map slot:  u64 hash | u32 key_offset | u16 key_len | u32 value  (18 bytes)
// Set slot:  u64 hash | u32 key_offset | u16 key_len              (14 bytes)
package frozen

import (
	"encoding/binary"
	"math/bits"
)

const (
	headerLen = 12 // 3 x u32
	mapSlot   = 18
	setSlot   = 14

	fnvOffset = 0xcbf29ce484222325
	fnvPrime  = 0x100000001b3
)

// fnvHash computes FNV-1a over data and forces the result odd so that zero
// remains a unique empty-slot sentinel.
func fnvHash(data []byte) uint64 {
	h := uint64(fnvOffset)
	for _, b := range data {
		h ^= uint64(b)
		h *= fnvPrime
	}
	return h | 1
}

// fnvHashPair hashes the NUL-separated virtual key "left\x00right".
func fnvHashPair(left, right []byte) uint64 {
	h := uint64(fnvOffset)
	for _, b := range left {
		h ^= uint64(b)
		h *= fnvPrime
	}
	h *= fnvPrime // NUL separator contributes byte 0
	for _, b := range right {
		h ^= uint64(b)
		h *= fnvPrime
	}
	return h | 1
}

// fnvHashConcat hashes the concatenation "a"+"b" with no separator.
func fnvHashConcat(a, b []byte) uint64 {
	h := uint64(fnvOffset)
	for _, c := range a {
		h ^= uint64(c)
		h *= fnvPrime
	}
	for _, c := range b {
		h ^= uint64(c)
		h *= fnvPrime
	}
	return h | 1
}

// fastReduce is Lemire's fixed-point range reduction: maps h into [0, n)
// with one 128-bit multiply and a shift, no division.
func fastReduce(h uint64, n uint64) uint64 {
	hi, _ := bits.Mul64(h, n)
	return hi
}

// FNVHash, FNVHashPair, FNVHashConcat and FastReduce are exported for
// internal/builder, which must place keys using the exact same hash and
// probe-start formula that Map/Set use to find them again at read time.
func FNVHash(data []byte) uint64            { return fnvHash(data) }
func FNVHashPair(left, right []byte) uint64 { return fnvHashPair(left, right) }
func FNVHashConcat(a, b []byte) uint64       { return fnvHashConcat(a, b) }
func FastReduce(h uint64, n uint64) uint64  { return fastReduce(h, n) }

func readU16(data []byte, off int) uint16 { return binary.LittleEndian.Uint16(data[off:]) }
func readU32(data []byte, off int) uint32 { return binary.LittleEndian.Uint32(data[off:]) }
func readU64(data []byte, off int) uint64 { return binary.LittleEndian.Uint64(data[off:]) }

// Map is a read-only view over a frozen byte-string -> uint32 table.
type Map struct {
	data []byte
}

// LoadMap wraps a binary blob produced by internal/builder's BuildMap or
// BuildMapFromHashed. The blob is not
// copied; it must outlive the returned Map.
func LoadMap(data []byte) Map {
	return Map{data: data}
}

func (m Map) numSlots() uint64       { return uint64(readU32(m.data, 0)) }
func (m Map) stringPoolOff() int     { return headerLen + int(m.numSlots())*mapSlot }
func (m Map) slotOff(idx uint64) int { return headerLen + int(idx)*mapSlot }

// ByteLen returns the total size in bytes of the table's serialized form,
// i.e. how many leading bytes of a larger buffer this map occupies.
func (m Map) ByteLen() int {
	numSlots := int(readU32(m.data, 0))
	poolLen := int(readU32(m.data, 8))
	return headerLen + numSlots*mapSlot + poolLen
}

// Get looks up key and returns its stored value.
func (m Map) Get(key []byte) (uint32, bool) {
	return m.probe(fnvHash(key), func(stored []byte) bool {
		return len(stored) == len(key) && string(stored) == string(key)
	})
}

// GetPair looks up the NUL-separated virtual key "left\x00right".
func (m Map) GetPair(left, right []byte) (uint32, bool) {
	expectLen := len(left) + 1 + len(right)
	h := fnvHashPair(left, right)
	return m.probe(h, func(stored []byte) bool {
		if len(stored) != expectLen {
			return false
		}
		return string(stored[:len(left)]) == string(left) &&
			stored[len(left)] == 0 &&
			string(stored[len(left)+1:]) == string(right)
	})
}

// GetConcat looks up the concatenation "a"+"b" with no separator.
func (m Map) GetConcat(a, b []byte) (uint32, bool) {
	expectLen := len(a) + len(b)
	h := fnvHashConcat(a, b)
	return m.probe(h, func(stored []byte) bool {
		if len(stored) != expectLen {
			return false
		}
		return string(stored[:len(a)]) == string(a) && string(stored[len(a):]) == string(b)
	})
}

// probe runs the linear-probe search shared by Get/GetPair/GetConcat: it
// only differs in which hash was computed and how the stored key bytes are
// matched against the probed key.
func (m Map) probe(h uint64, match func(stored []byte) bool) (uint32, bool) {
	numSlots := m.numSlots()
	if numSlots == 0 {
		return 0, false
	}
	poolOff := m.stringPoolOff()
	idx := fastReduce(h, numSlots)

	for i := uint64(0); i < numSlots; i++ {
		off := m.slotOff(idx)
		slotHash := readU64(m.data, off)
		if slotHash == 0 {
			return 0, false
		}
		if slotHash == h {
			keyOff := int(readU32(m.data, off+8))
			keyLen := int(readU16(m.data, off+12))
			stored := m.data[poolOff+keyOff : poolOff+keyOff+keyLen]
			if match(stored) {
				return readU32(m.data, off+14), true
			}
		}
		idx++
		if idx == numSlots {
			idx = 0
		}
	}
	// Full-capacity sweep without a zero: degenerate table, treat as miss.
	return 0, false
}

// Set is a read-only view over a frozen byte-string set.
type Set struct {
	data []byte
}

// LoadSet wraps a binary blob produced by BuildSet. The blob is not copied;
// it must outlive the returned Set.
func LoadSet(data []byte) Set {
	return Set{data: data}
}

func (s Set) numSlots() uint64       { return uint64(readU32(s.data, 0)) }
func (s Set) stringPoolOff() int     { return headerLen + int(s.numSlots())*setSlot }
func (s Set) slotOff(idx uint64) int { return headerLen + int(idx)*setSlot }

// ByteLen returns the total size in bytes of the table's serialized form.
func (s Set) ByteLen() int {
	numSlots := int(readU32(s.data, 0))
	poolLen := int(readU32(s.data, 8))
	return headerLen + numSlots*setSlot + poolLen
}

// Contains reports whether key was inserted at build time.
func (s Set) Contains(key []byte) bool {
	numSlots := s.numSlots()
	if numSlots == 0 {
		return false
	}
	poolOff := s.stringPoolOff()
	h := fnvHash(key)
	idx := fastReduce(h, numSlots)

	for i := uint64(0); i < numSlots; i++ {
		off := s.slotOff(idx)
		slotHash := readU64(s.data, off)
		if slotHash == 0 {
			return false
		}
		if slotHash == h {
			keyOff := int(readU32(s.data, off+8))
			keyLen := int(readU16(s.data, off+12))
			stored := s.data[poolOff+keyOff : poolOff+keyOff+keyLen]
			if string(stored) == string(key) {
				return true
			}
		}
		idx++
		if idx == numSlots {
			idx = 0
		}
	}
	return false
}
