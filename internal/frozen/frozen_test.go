package frozen

import (
	"encoding/binary"
	"testing"
)

// buildMap constructs a minimal frozen map blob without going through
// internal/builder, so the table format is exercised independently of the
// builder's own encoding logic.
func buildMap(entries map[string]uint32) []byte {
	type kv struct {
		key []byte
		val uint32
	}
	var kvs []kv
	for k, v := range entries {
		kvs = append(kvs, kv{key: []byte(k), val: v})
	}

	numSlots := nextPow2(max4(len(kvs) * 4 / 3))
	slots := make([]byte, numSlots*mapSlot)
	var pool []byte

	for _, e := range kvs {
		h := fnvHash(e.key)
		idx := fastReduce(h, uint64(numSlots))
		for {
			off := int(idx) * mapSlot
			if binary.LittleEndian.Uint64(slots[off:]) == 0 {
				keyOff := uint32(len(pool))
				pool = append(pool, e.key...)
				binary.LittleEndian.PutUint64(slots[off:], h)
				binary.LittleEndian.PutUint32(slots[off+8:], keyOff)
				binary.LittleEndian.PutUint16(slots[off+12:], uint16(len(e.key)))
				binary.LittleEndian.PutUint32(slots[off+14:], e.val)
				break
			}
			idx++
			if idx == uint64(numSlots) {
				idx = 0
			}
		}
	}

	out := make([]byte, 0, headerLen+len(slots)+len(pool))
	out = appendU32(out, uint32(numSlots))
	out = appendU32(out, uint32(len(kvs)))
	out = appendU32(out, uint32(len(pool)))
	out = append(out, slots...)
	out = append(out, pool...)
	return out
}

func buildSet(keys [][]byte) []byte {
	numSlots := nextPow2(max4(len(keys) * 4 / 3))
	slots := make([]byte, numSlots*setSlot)
	var pool []byte

	for _, k := range keys {
		h := fnvHash(k)
		idx := fastReduce(h, uint64(numSlots))
		for {
			off := int(idx) * setSlot
			if binary.LittleEndian.Uint64(slots[off:]) == 0 {
				keyOff := uint32(len(pool))
				pool = append(pool, k...)
				binary.LittleEndian.PutUint64(slots[off:], h)
				binary.LittleEndian.PutUint32(slots[off+8:], keyOff)
				binary.LittleEndian.PutUint16(slots[off+12:], uint16(len(k)))
				break
			}
			idx++
			if idx == uint64(numSlots) {
				idx = 0
			}
		}
	}

	out := make([]byte, 0, headerLen+len(slots)+len(pool))
	out = appendU32(out, uint32(numSlots))
	out = appendU32(out, uint32(len(keys)))
	out = appendU32(out, uint32(len(pool)))
	out = append(out, slots...)
	out = append(out, pool...)
	return out
}

func max4(n int) int {
	if n < 4 {
		return 4
	}
	return n
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func appendU32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func TestMapGetConcatAndPair(t *testing.T) {
	blob := buildMap(map[string]uint32{
		"abcd": 2, // the bare concatenation; no NUL-separated pair key is inserted
		"ab":   0,
		"cd":   1,
	})
	m := LoadMap(blob)

	if v, ok := m.GetConcat([]byte("ab"), []byte("cd")); !ok || v != 2 {
		t.Fatalf("GetConcat(ab,cd) = (%d,%v), want (2,true)", v, ok)
	}
	if _, ok := m.GetPair([]byte("ab"), []byte("cd")); ok {
		t.Fatalf("GetPair(ab,cd) should miss: no NUL-separated key was inserted")
	}
	if _, ok := m.Get([]byte("ef")); ok {
		t.Fatalf("Get(ef) should miss")
	}
	if v, ok := m.Get([]byte("ab")); !ok || v != 0 {
		t.Fatalf("Get(ab) = (%d,%v), want (0,true)", v, ok)
	}
}

func TestMapRoundTrip(t *testing.T) {
	entries := map[string]uint32{
		"the": 0, "quick": 1, "brown": 2, "fox": 3, "jumps": 4,
		"over": 5, "a": 6, "lazy": 7, "dog": 8,
	}
	blob := buildMap(entries)
	m := LoadMap(blob)

	for k, v := range entries {
		got, ok := m.Get([]byte(k))
		if !ok || got != v {
			t.Fatalf("Get(%q) = (%d,%v), want (%d,true)", k, got, ok, v)
		}
	}
	if _, ok := m.Get([]byte("not-present")); ok {
		t.Fatalf("Get(not-present) should miss")
	}
}

func TestSetContains(t *testing.T) {
	keys := [][]byte{[]byte("foo"), []byte("bar"), []byte("baz")}
	blob := buildSet(keys)
	s := LoadSet(blob)

	for _, k := range keys {
		if !s.Contains(k) {
			t.Fatalf("Contains(%q) = false, want true", k)
		}
	}
	if s.Contains([]byte("quux")) {
		t.Fatalf("Contains(quux) = true, want false")
	}
}

func TestMapByteLenMatchesLayout(t *testing.T) {
	blob := buildMap(map[string]uint32{"x": 1, "y": 2})
	m := LoadMap(blob)
	if got := m.ByteLen(); got != len(blob) {
		t.Fatalf("ByteLen() = %d, want %d", got, len(blob))
	}
}
