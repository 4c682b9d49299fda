// Package normalizer implements the small tagged tree of text transforms a
// Hugging Face tokenizer.json can specify before pre-tokenization: replace a
// literal substring, prepend a fixed prefix, apply Unicode NFC
// normalization, or run a sequence of any of those.
package normalizer

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	tagNone     = 0
	tagReplace  = 1
	tagPrepend  = 2
	tagNFC      = 3
	tagSequence = 4
)

// Normalizer applies a parsed normalizer tree to input text.
type Normalizer interface {
	Apply(text string) string
}

type noneNorm struct{}

func (noneNorm) Apply(text string) string { return text }

type replaceNorm struct{ pattern, content string }

func (r replaceNorm) Apply(text string) string {
	if r.pattern == "" {
		return text
	}
	return strings.ReplaceAll(text, r.pattern, r.content)
}

type prependNorm struct{ prefix string }

func (p prependNorm) Apply(text string) string { return p.prefix + text }

type nfcNorm struct{}

func (nfcNorm) Apply(text string) string { return norm.NFC.String(text) }

type sequenceNorm struct{ steps []Normalizer }

func (s sequenceNorm) Apply(text string) string {
	for _, step := range s.steps {
		text = step.Apply(text)
	}
	return text
}

// Parse reads a normalizer tree serialized by internal/builder starting at
// data[0], returning the parsed Normalizer and the number of bytes consumed.
func Parse(data []byte) (Normalizer, int, error) {
	if len(data) == 0 {
		return nil, 0, fmt.Errorf("normalizer: empty input")
	}
	tag := data[0]
	pos := 1
	switch tag {
	case tagNone:
		return noneNorm{}, 1, nil
	case tagReplace:
		pattern, n1, err := readLengthPrefixedStr(data, pos)
		if err != nil {
			return nil, 0, err
		}
		pos += n1
		content, n2, err := readLengthPrefixedStr(data, pos)
		if err != nil {
			return nil, 0, err
		}
		pos += n2
		return replaceNorm{pattern: pattern, content: content}, pos, nil
	case tagPrepend:
		prefix, n, err := readLengthPrefixedStr(data, pos)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		return prependNorm{prefix: prefix}, pos, nil
	case tagNFC:
		return nfcNorm{}, 1, nil
	case tagSequence:
		count := int(binary.LittleEndian.Uint32(data[pos : pos+4]))
		pos += 4
		steps := make([]Normalizer, 0, count)
		for i := 0; i < count; i++ {
			step, n, err := Parse(data[pos:])
			if err != nil {
				return nil, 0, err
			}
			pos += n
			steps = append(steps, step)
		}
		if len(steps) == 0 {
			return noneNorm{}, pos, nil
		}
		return sequenceNorm{steps: steps}, pos, nil
	default:
		return nil, 0, fmt.Errorf("normalizer: unknown tag %d", tag)
	}
}

func readLengthPrefixedStr(data []byte, off int) (string, int, error) {
	if off+4 > len(data) {
		return "", 0, fmt.Errorf("normalizer: truncated length prefix")
	}
	length := int(binary.LittleEndian.Uint32(data[off : off+4]))
	start := off + 4
	if start+length > len(data) {
		return "", 0, fmt.Errorf("normalizer: truncated string")
	}
	return string(data[start : start+length]), 4 + length, nil
}
