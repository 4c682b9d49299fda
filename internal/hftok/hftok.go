// Package hftok implements a Hugging Face-style BPE token counter: a
// normalizer, a pre-tokenizer step sequence, optional byte-fallback initial
// tokenization, and the shared bucket-queued BPE merge core in
// internal/bpemerge, all driven by a single frozen artifact produced by
// internal/builder.BuildHFBlob.
package hftok

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/tokencount/tokencount/internal/bpemerge"
	"github.com/tokencount/tokencount/internal/frozen"
	"github.com/tokencount/tokencount/internal/normalizer"
	"github.com/tokencount/tokencount/internal/pretokenizer"
)

// longChunkThreshold bounds the naive merge loop's effective input size:
// above this many initial tokens, count goes through bpeCountChunked's
// windowed scan instead of running bpeMergeCount over the whole piece at
// once.
const longChunkThreshold = 512

// windowSize is the scan stride bpeCountChunked uses when hunting for a safe
// split boundary in a long run of initial tokens.
const windowSize = 256

// Tokenizer counts tokens against a loaded HF-style tokenizer artifact.
type Tokenizer struct {
	byteFallback    bool
	postAdd         int
	normalizer      normalizer.Normalizer
	preTokenizer    *pretokenizer.Sequence
	vocabCodepoints []uint32
	merges          frozen.Map
	mergeLeft       frozen.Set
	mergeRight      frozen.Set
}

// Load parses a blob produced by internal/builder.BuildHFBlob.
func Load(data []byte) (*Tokenizer, error) {
	if len(data) < 5 {
		return nil, fmt.Errorf("hftok: truncated header")
	}
	byteFallback := data[0] != 0
	postAdd := int(binary.LittleEndian.Uint32(data[1:5]))
	off := 5

	norm, n, err := normalizer.Parse(data[off:])
	if err != nil {
		return nil, fmt.Errorf("hftok: %w", err)
	}
	off += n

	preTok, ptLen, err := pretokenizer.Parse(data[off:])
	if err != nil {
		return nil, fmt.Errorf("hftok: %w", err)
	}
	off += ptLen

	if off+4 > len(data) {
		return nil, fmt.Errorf("hftok: truncated codepoint count")
	}
	cpCount := int(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4
	codepoints := make([]uint32, cpCount)
	for i := 0; i < cpCount; i++ {
		codepoints[i] = binary.LittleEndian.Uint32(data[off : off+4])
		off += 4
	}

	merges := frozen.LoadMap(data[off:])
	off += merges.ByteLen()
	mergeLeft := frozen.LoadSet(data[off:])
	off += mergeLeft.ByteLen()
	mergeRight := frozen.LoadSet(data[off:])

	return &Tokenizer{
		byteFallback:    byteFallback,
		postAdd:         postAdd,
		normalizer:      norm,
		preTokenizer:    preTok,
		vocabCodepoints: codepoints,
		merges:          merges,
		mergeLeft:       mergeLeft,
		mergeRight:      mergeRight,
	}, nil
}

// CountTokens returns the number of tokens text would encode to, including
// any fixed special-token overhead (postAdd) a post-processor contributes.
func (t *Tokenizer) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	normalized := t.normalizer.Apply(text)
	chunks, err := t.preTokenizer.Apply(normalized)
	if err != nil {
		return 0, fmt.Errorf("hftok: pre-tokenize: %w", err)
	}

	total := t.postAdd
	for _, chunk := range chunks {
		if chunk != "" {
			total += t.bpeCount(chunk)
		}
	}
	return total, nil
}

func (t *Tokenizer) bpeCount(chunk string) int {
	initial := t.initialTokens(chunk)
	n := len(initial)
	if n <= 1 {
		return n
	}
	if n > longChunkThreshold {
		return t.bpeCountChunked(initial)
	}
	return t.bpeMergeCount(initial)
}

// initialTokens splits chunk into its starting BPE units: one token per rune
// when byte_fallback is off, or per-rune vocab lookup with "<0xHH>" byte
// tokens for runes absent from the single-character vocabulary when it's on.
func (t *Tokenizer) initialTokens(chunk string) [][]byte {
	var tokens [][]byte
	for _, ch := range chunk {
		if !t.byteFallback {
			tokens = append(tokens, []byte(string(ch)))
			continue
		}
		if t.vocabContainsChar(ch) {
			tokens = append(tokens, []byte(string(ch)))
			continue
		}
		var buf [4]byte
		n := encodeRuneUTF8(buf[:], ch)
		for _, b := range buf[:n] {
			tokens = append(tokens, []byte(fmt.Sprintf("<0x%02X>", b)))
		}
	}
	return tokens
}

func encodeRuneUTF8(buf []byte, r rune) int {
	return copy(buf, string(r))
}

func (t *Tokenizer) vocabContainsChar(ch rune) bool {
	target := uint32(ch)
	idx := sort.Search(len(t.vocabCodepoints), func(i int) bool {
		return t.vocabCodepoints[i] >= target
	})
	return idx < len(t.vocabCodepoints) && t.vocabCodepoints[idx] == target
}

// bpeMergeCount runs the shared merge core over a single pre-tokenized
// chunk's initial tokens, looking ranks up via the pair-keyed frozen map.
func (t *Tokenizer) bpeMergeCount(initial [][]byte) int {
	if len(initial) == 0 {
		return 0
	}
	var buf []byte
	lens := make([]int, len(initial))
	for i, tok := range initial {
		buf = append(buf, tok...)
		lens[i] = len(tok)
	}
	return bpemerge.Count(buf, lens, func(left, right []byte) (uint32, bool) {
		return t.merges.GetPair(left, right)
	})
}

// bpeCountChunked bounds the merge loop's effective input by scanning for a
// "breakable" boundary: a position where the token to its left never starts
// a merge (it's absent from mergeLeft) or the token to its right never ends
// one (absent from mergeRight). Splitting there can't change the result,
// since no merge could ever cross it. Each window ends at the first such
// boundary found in the windowSize positions after start+windowSize, so a
// window holds fewer than 2*windowSize tokens; when no boundary turns up in
// that scan, the rest of the run is merged in one pass, however long.
func (t *Tokenizer) bpeCountChunked(tokens [][]byte) int {
	n := len(tokens)
	total := 0
	start := 0
	i := windowSize
	if n-1 < i {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}

	for i < n {
		scanStart := i
		scanEnd := n
		if i+windowSize < scanEnd {
			scanEnd = i + windowSize
		}
		found := false
		for j := scanStart; j < scanEnd; j++ {
			if j == 0 {
				continue
			}
			if !t.mergeLeft.Contains(tokens[j-1]) || !t.mergeRight.Contains(tokens[j]) {
				total += t.bpeMergeCount(tokens[start:j])
				start = j
				i = j + windowSize
				found = true
				break
			}
		}
		if !found {
			break
		}
	}
	if start < n {
		total += t.bpeMergeCount(tokens[start:])
	}
	return total
}
