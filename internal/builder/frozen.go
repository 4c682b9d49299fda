// Package builder implements the offline artifact pipeline that turns vendor
// tokenizer data (Claude's vocabulary list, an OpenAI .tiktoken rank file, or
// a Hugging Face tokenizer.json) into the read-only binary blobs that
// internal/frozen, internal/datrie, internal/tiktoken and internal/hftok
// load at runtime. It is the Go analogue of the teacher's offline vocab
// loading, generalized from "build one vocab.json into one in-memory map"
// into "build any of several vendor formats into an embeddable blob" per
// cmd/tokencount-gen.
package builder

import (
	"encoding/binary"

	"github.com/tokencount/tokencount/internal/frozen"
)

const (
	mapSlotSize = 18
	setSlotSize = 14
)

// BuildMap serializes entries into a frozen.Map blob. Keys placed here must
// use the exact same hash and probe-start formula frozen.Map.Get uses at
// read time, or lookups will silently miss.
func BuildMap(entries map[string]uint32) []byte {
	keys := make([][]byte, 0, len(entries))
	vals := make([]uint32, 0, len(entries))
	for k, v := range entries {
		keys = append(keys, []byte(k))
		vals = append(vals, v)
	}
	return buildFrozenTable(keys, vals, mapSlotSize)
}

// BuildMapFromHashed serializes entries whose keys are already hashed (e.g.
// a virtual "left\x00right" pair key or a bare concatenation), recording the
// raw bytes passed in as the string-pool entry and hash as given by hashFn.
// This lets callers building pair/concat tables control exactly what bytes
// get hashed without constructing a synthetic Go string first.
func BuildMapFromHashed(keys [][]byte, vals []uint32, hashFn func([]byte) uint64) []byte {
	return buildFrozenTableHashed(keys, vals, mapSlotSize, hashFn)
}

// BuildSet serializes keys into a frozen.Set blob.
func BuildSet(keys [][]byte) []byte {
	return buildFrozenTable(keys, nil, setSlotSize)
}

func buildFrozenTable(keys [][]byte, vals []uint32, slotSize int) []byte {
	return buildFrozenTableHashed(keys, vals, slotSize, frozen.FNVHash)
}

// buildFrozenTableHashed mirrors the teacher's linear-probe insertion loop,
// but computes the initial probe index with the same Lemire fast-range
// reduction frozen.Map/frozen.Set use at read time, so build-time placement
// and read-time lookup agree on where a key lives.
func buildFrozenTableHashed(keys [][]byte, vals []uint32, slotSize int, hashFn func([]byte) uint64) []byte {
	numEntries := len(keys)
	numSlots := nextPow2(max4((numEntries*4 + 2) / 3))

	slots := make([]byte, numSlots*slotSize)
	var pool []byte

	for i, key := range keys {
		h := hashFn(key)
		keyOff := uint32(len(pool))
		keyLen := uint16(len(key))
		pool = append(pool, key...)

		idx := frozen.FastReduce(h, uint64(numSlots))
		for {
			off := int(idx) * slotSize
			if binary.LittleEndian.Uint64(slots[off:off+8]) == 0 {
				binary.LittleEndian.PutUint64(slots[off:off+8], h)
				binary.LittleEndian.PutUint32(slots[off+8:off+12], keyOff)
				binary.LittleEndian.PutUint16(slots[off+12:off+14], keyLen)
				if vals != nil {
					binary.LittleEndian.PutUint32(slots[off+14:off+18], vals[i])
				}
				break
			}
			idx++
			if idx == uint64(numSlots) {
				idx = 0
			}
		}
	}

	out := make([]byte, 0, 12+len(slots)+len(pool))
	out = appendU32(out, uint32(numSlots))
	out = appendU32(out, uint32(numEntries))
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
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}
