// Package pretokenizer implements the pre-tokenization step sequence a
// Hugging Face tokenizer.json can specify: a regex Split step (keeping both
// the matches and the gaps between them, in order) and a ByteLevel step that
// rewrites every chunk through the GPT-2 byte-to-rune table.
package pretokenizer

import (
	"encoding/binary"
	"fmt"

	"github.com/dlclark/regexp2"

	"github.com/tokencount/tokencount/internal/bytelevel"
)

const (
	tagSplit     = 1
	tagByteLevel = 2
)

type step interface {
	apply(chunks []string) ([]string, error)
}

type splitStep struct {
	re *regexp2.Regexp
}

func (s splitStep) apply(chunks []string) ([]string, error) {
	var out []string
	for _, c := range chunks {
		parts, err := splitIsolated(s.re, c)
		if err != nil {
			return nil, err
		}
		out = append(out, parts...)
	}
	return out, nil
}

// splitIsolated returns both the regex matches and the unmatched gaps
// between them, in left-to-right order, so downstream BPE sees the same
// chunking a reference Split pre-tokenizer would.
//
// regexp2 indexes matches by rune position, not byte position, since it
// processes input as a rune slice internally; this function does the same so
// a Match's Index/Length line up with runes, not UTF-8 text directly.
func splitIsolated(re *regexp2.Regexp, text string) ([]string, error) {
	runes := []rune(text)
	var result []string
	lastEnd := 0

	m, err := re.FindStringMatch(text)
	for {
		if err != nil {
			return nil, fmt.Errorf("pretokenizer: regex match: %w", err)
		}
		if m == nil {
			break
		}
		start, length := m.Index, m.Length
		if start > lastEnd {
			result = append(result, string(runes[lastEnd:start]))
		}
		result = append(result, string(runes[start:start+length]))
		lastEnd = start + length
		m, err = re.FindNextMatch(m)
	}
	if lastEnd < len(runes) {
		result = append(result, string(runes[lastEnd:]))
	}
	return result, nil
}

type byteLevelStep struct{}

func (byteLevelStep) apply(chunks []string) ([]string, error) {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = bytelevel.EncodeString([]byte(c))
	}
	return out, nil
}

// Sequence is a parsed pre-tokenizer step chain.
type Sequence struct {
	steps []step
}

// Apply runs every step in order, starting from text as the sole chunk.
// A nil or empty Sequence returns text unchanged as the sole chunk.
func (s *Sequence) Apply(text string) ([]string, error) {
	if s == nil || len(s.steps) == 0 {
		return []string{text}, nil
	}
	chunks := []string{text}
	for _, st := range s.steps {
		next, err := st.apply(chunks)
		if err != nil {
			return nil, err
		}
		chunks = next
	}
	return chunks, nil
}

// Parse reads a pre-tokenizer step sequence serialized by internal/builder:
// u32 step_count, then per step a u8 tag and any tag-specific payload. It
// returns the parsed Sequence and the number of bytes consumed, so callers
// parsing a larger blob (internal/hftok) can keep reading right after it.
func Parse(data []byte) (*Sequence, int, error) {
	if len(data) < 4 {
		return nil, 0, fmt.Errorf("pretokenizer: truncated step count")
	}
	count := int(binary.LittleEndian.Uint32(data[0:4]))
	pos := 4

	steps := make([]step, 0, count)
	for i := 0; i < count; i++ {
		if pos >= len(data) {
			return nil, 0, fmt.Errorf("pretokenizer: truncated step tag")
		}
		tag := data[pos]
		pos++
		switch tag {
		case tagSplit:
			pattern, n, err := readLengthPrefixedStr(data, pos)
			if err != nil {
				return nil, 0, err
			}
			pos += n
			re, err := regexp2.Compile(pattern, regexp2.None)
			if err != nil {
				return nil, 0, fmt.Errorf("pretokenizer: invalid split regex %q: %w", pattern, err)
			}
			steps = append(steps, splitStep{re: re})
		case tagByteLevel:
			steps = append(steps, byteLevelStep{})
		default:
			return nil, 0, fmt.Errorf("pretokenizer: unknown step tag %d", tag)
		}
	}
	return &Sequence{steps: steps}, pos, nil
}

func readLengthPrefixedStr(data []byte, off int) (string, int, error) {
	if off+4 > len(data) {
		return "", 0, fmt.Errorf("pretokenizer: truncated length prefix")
	}
	length := int(binary.LittleEndian.Uint32(data[off : off+4]))
	start := off + 4
	if start+length > len(data) {
		return "", 0, fmt.Errorf("pretokenizer: truncated string")
	}
	return string(data[start : start+length]), 4 + length, nil
}
