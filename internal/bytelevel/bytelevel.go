// Package bytelevel implements the GPT-2 byte-to-rune mapping used by the
// Hugging Face ByteLevel pre-tokenizer step (internal/pretokenizer; the
// tiktoken counter merges raw bytes directly): every raw byte 0x00-0xFF is
// mapped to a single, displayable Unicode code point so that byte-pair
// merges can run on regular strings instead of raw binary.
//
// Printable ASCII and the Latin-1 supplement map to themselves; the
// remaining 68 control/gap bytes map to U+0100 upward, in ascending byte
// order. This table is identical in every tiktoken and HF tokenizer.json
// that uses a ByteLevel pre-tokenizer, so it is computed once here rather
// than shipped in the offline artifacts.
package bytelevel

// Table is the fixed byte -> rune permutation. Index by raw byte value.
var Table [256]rune

// decodeTable is the inverse of Table, used by Decode.
var decodeTable map[rune]byte

func init() {
	n := rune(0)
	for b := 0; b < 256; b++ {
		switch {
		case b >= 0x21 && b <= 0x7E, b >= 0xA1 && b <= 0xAC, b >= 0xAE && b <= 0xFF:
			Table[b] = rune(b)
		default:
			Table[b] = 0x100 + n
			n++
		}
	}

	decodeTable = make(map[rune]byte, 256)
	for b, r := range Table {
		decodeTable[r] = byte(b)
	}
}

// Encode maps raw bytes into their GPT-2 rune representation.
func Encode(input []byte) []rune {
	out := make([]rune, len(input))
	for i, b := range input {
		out[i] = Table[b]
	}
	return out
}

// EncodeString is Encode with a string result, which is what the
// pre-tokenizer and BPE merge loop actually consume.
func EncodeString(input []byte) string {
	rs := Encode(input)
	return string(rs)
}

// Decode inverts EncodeString/Encode, turning byte-level runes back into
// the raw bytes they stand in for. It returns an error if s contains a rune
// outside the byte-level alphabet.
func Decode(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := decodeTable[r]
		if !ok {
			return nil, &DecodeError{Rune: r}
		}
		out = append(out, b)
	}
	return out, nil
}

// DecodeError reports a rune with no byte-level preimage.
type DecodeError struct {
	Rune rune
}

func (e *DecodeError) Error() string {
	return "bytelevel: rune " + string(e.Rune) + " is not a valid byte-level code point"
}
