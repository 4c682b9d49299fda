package builder

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tokencount/tokencount/internal/frozen"
)

const (
	normNone     = 0
	normReplace  = 1
	normPrepend  = 2
	normNFC      = 3
	normSequence = 4

	stepSplit     = 1
	stepByteLevel = 2
)

// hfTokenizerJSON is the slice of a Hugging Face tokenizer.json this builder
// actually consumes; every other field (added_tokens, decoder, truncation,
// padding) is irrelevant to counting and is left for encoding/json to
// discard.
type hfTokenizerJSON struct {
	Normalizer    json.RawMessage `json:"normalizer"`
	PreTokenizer  json.RawMessage `json:"pre_tokenizer"`
	PostProcessor json.RawMessage `json:"post_processor"`
	Model         struct {
		ByteFallback bool              `json:"byte_fallback"`
		Vocab        map[string]int    `json:"vocab"`
		Merges       []json.RawMessage `json:"merges"`
	} `json:"model"`
}

// BuildHFBlob parses a Hugging Face tokenizer.json document and packs it
// into the binary layout internal/hftok.Load expects:
//
//	u8 byte_fallback | u32 post_add | normalizer | pre_tokenizer |
//	u32 codepoint_count | codepoint[count] (u32 each) |
//	frozen.Map(merges) | frozen.Set(merge_left) | frozen.Set(merge_right)
func BuildHFBlob(data []byte) ([]byte, error) {
	var doc hfTokenizerJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("builder: parse tokenizer.json: %w", err)
	}

	mergeEntries := make(map[string]uint32)
	leftSeen := make(map[string]bool)
	rightSeen := make(map[string]bool)
	var leftKeys, rightKeys [][]byte

	for rank, raw := range doc.Model.Merges {
		a, b, ok := parseMergeEntry(raw)
		if !ok {
			continue
		}
		pairKey := make([]byte, 0, len(a)+1+len(b))
		pairKey = append(pairKey, a...)
		pairKey = append(pairKey, 0)
		pairKey = append(pairKey, b...)
		mergeEntries[string(pairKey)] = uint32(rank)

		if !leftSeen[a] {
			leftSeen[a] = true
			leftKeys = append(leftKeys, []byte(a))
		}
		if !rightSeen[b] {
			rightSeen[b] = true
			rightKeys = append(rightKeys, []byte(b))
		}
	}

	postAdd := countPostSpecialTokens(doc.PostProcessor)

	var codepoints []uint32
	if doc.Model.ByteFallback {
		seen := make(map[uint32]bool)
		for key := range doc.Model.Vocab {
			runes := []rune(key)
			if len(runes) == 1 {
				cp := uint32(runes[0])
				if !seen[cp] {
					seen[cp] = true
					codepoints = append(codepoints, cp)
				}
			}
		}
		sort.Slice(codepoints, func(i, j int) bool { return codepoints[i] < codepoints[j] })
	}

	mergesTable := buildPairMap(mergeEntries)
	leftTable := BuildSet(leftKeys)
	rightTable := BuildSet(rightKeys)

	var blob []byte
	if doc.Model.ByteFallback {
		blob = append(blob, 1)
	} else {
		blob = append(blob, 0)
	}
	blob = appendU32(blob, uint32(postAdd))
	blob = append(blob, serializeNormalizer(doc.Normalizer)...)
	blob = append(blob, serializePreTokenizer(doc.PreTokenizer)...)
	blob = appendU32(blob, uint32(len(codepoints)))
	for _, cp := range codepoints {
		blob = appendU32(blob, cp)
	}
	blob = append(blob, mergesTable...)
	blob = append(blob, leftTable...)
	blob = append(blob, rightTable...)
	return blob, nil
}

// buildPairMap serializes NUL-separated "left\x00right" pair keys into a
// frozen.Map, matching frozen.Map.GetPair's lookup hash exactly.
func buildPairMap(entries map[string]uint32) []byte {
	keys := make([][]byte, 0, len(entries))
	vals := make([]uint32, 0, len(entries))
	for k, v := range entries {
		keys = append(keys, []byte(k))
		vals = append(vals, v)
	}
	return BuildMapFromHashed(keys, vals, pairHash)
}

// pairHash hashes an already-concatenated "left\x00right" key with the same
// FNV-1a accumulation frozen.Map.GetPair uses, so inserting it via the
// generic hashed-key path agrees with the pair-specific lookup path.
func pairHash(key []byte) uint64 {
	return frozen.FNVHash(key)
}

func parseMergeEntry(raw json.RawMessage) (a, b string, ok bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		for i := 0; i < len(s); i++ {
			if s[i] == ' ' {
				return s[:i], s[i+1:], true
			}
		}
		return "", "", false
	}
	var pair [2]string
	if err := json.Unmarshal(raw, &pair); err == nil {
		return pair[0], pair[1], true
	}
	return "", "", false
}

func countPostSpecialTokens(raw json.RawMessage) int {
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	var node struct {
		Type   string `json:"type"`
		Single []struct {
			SpecialToken json.RawMessage `json:"SpecialToken"`
		} `json:"single"`
		Processors []json.RawMessage `json:"processors"`
	}
	if err := json.Unmarshal(raw, &node); err != nil {
		return 0
	}
	switch node.Type {
	case "TemplateProcessing":
		n := 0
		for _, item := range node.Single {
			if len(item.SpecialToken) > 0 {
				n++
			}
		}
		return n
	case "Sequence":
		n := 0
		for _, p := range node.Processors {
			n += countPostSpecialTokens(p)
		}
		return n
	default:
		return 0
	}
}

func serializeNormalizer(raw json.RawMessage) []byte {
	if len(raw) == 0 || string(raw) == "null" {
		return []byte{normNone}
	}
	var node struct {
		Type    string `json:"type"`
		Pattern struct {
			String string `json:"String"`
		} `json:"pattern"`
		Content    string            `json:"content"`
		Prepend    string            `json:"prepend"`
		Normalizers []json.RawMessage `json:"normalizers"`
	}
	if err := json.Unmarshal(raw, &node); err != nil {
		return []byte{normNone}
	}
	switch node.Type {
	case "Replace":
		out := []byte{normReplace}
		out = writeLengthPrefixedStr(out, node.Pattern.String)
		out = writeLengthPrefixedStr(out, node.Content)
		return out
	case "Prepend":
		out := []byte{normPrepend}
		return writeLengthPrefixedStr(out, node.Prepend)
	case "NFC":
		return []byte{normNFC}
	case "Sequence":
		if len(node.Normalizers) == 0 {
			return []byte{normNone}
		}
		out := []byte{normSequence}
		out = appendU32(out, uint32(len(node.Normalizers)))
		for _, n := range node.Normalizers {
			out = append(out, serializeNormalizer(n)...)
		}
		return out
	default:
		return []byte{normNone}
	}
}

func serializePreTokenizer(raw json.RawMessage) []byte {
	if len(raw) == 0 || string(raw) == "null" {
		return appendU32(nil, 0)
	}
	var node struct {
		Type          string            `json:"type"`
		Pretokenizers []json.RawMessage `json:"pretokenizers"`
	}
	if err := json.Unmarshal(raw, &node); err != nil {
		return appendU32(nil, 0)
	}

	var steps []json.RawMessage
	switch node.Type {
	case "Sequence":
		steps = node.Pretokenizers
	case "ByteLevel", "Split":
		steps = []json.RawMessage{raw}
	}

	var validSteps []json.RawMessage
	var validTypes []string
	for _, s := range steps {
		var st struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(s, &st); err != nil {
			continue
		}
		if st.Type == "Split" || st.Type == "ByteLevel" {
			validSteps = append(validSteps, s)
			validTypes = append(validTypes, st.Type)
		}
	}

	out := appendU32(nil, uint32(len(validSteps)))
	for i, s := range validSteps {
		switch validTypes[i] {
		case "Split":
			out = append(out, stepSplit)
			var sp struct {
				Pattern struct {
					Regex string `json:"Regex"`
				} `json:"pattern"`
			}
			_ = json.Unmarshal(s, &sp)
			out = writeLengthPrefixedStr(out, sp.Pattern.Regex)
		case "ByteLevel":
			out = append(out, stepByteLevel)
		}
	}
	return out
}

func writeLengthPrefixedStr(blob []byte, s string) []byte {
	blob = appendU32(blob, uint32(len(s)))
	blob = append(blob, s...)
	return blob
}
