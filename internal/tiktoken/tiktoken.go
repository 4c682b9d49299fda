// Package tiktoken implements an OpenAI tiktoken-compatible byte-level BPE
// counter: regex pre-tokenization followed by a frozen-rank-table merge.
//
// Regex pre-tokenization uses github.com/dlclark/regexp2 rather than the
// standard library's RE2-based regexp, because the published o200k_base
// pattern needs a negative lookahead (`\s+(?!\S)`) that RE2 cannot express.
package tiktoken

import (
	"fmt"

	"github.com/dlclark/regexp2"

	"github.com/tokencount/tokencount/internal/bpemerge"
	"github.com/tokencount/tokencount/internal/frozen"
)

// O200KPattern is the pre-tokenization regex for the o200k_base encoding,
// taken from tiktoken's published encoder data.
const O200KPattern = `[^\r\n\p{L}\p{N}]?[\p{Lu}\p{Lt}\p{Lm}\p{Lo}\p{M}]*[\p{Ll}\p{Lm}\p{Lo}\p{M}]+('s|'S|'t|'T|'re|'rE|'Re|'RE|'ve|'vE|'Ve|'VE|'m|'M|'ll|'lL|'Ll|'LL|'d|'D)?` +
	`|[^\r\n\p{L}\p{N}]?[\p{Lu}\p{Lt}\p{Lm}\p{Lo}\p{M}]+[\p{Ll}\p{Lm}\p{Lo}\p{M}]*('s|'S|'t|'T|'re|'rE|'Re|'RE|'ve|'vE|'Ve|'VE|'m|'M|'ll|'lL|'Ll|'LL|'d|'D)?` +
	`|\p{N}{1,3}` +
	`| ?[^\s\p{L}\p{N}]+[\r\n/]*` +
	`|\s*[\r\n]+` +
	`|\s+(?!\S)` +
	`|\s+`

// Tokenizer counts tokens using a frozen byte-pair rank table embedded at
// build time.
type Tokenizer struct {
	re     *regexp2.Regexp
	merges frozen.Map
}

// New builds a Tokenizer over a frozen map blob mapping adjacent byte-string
// concatenations to merge ranks (see internal/frozen and internal/builder).
func New(data []byte) (*Tokenizer, error) {
	re, err := regexp2.Compile(O200KPattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("tiktoken: compile pre-tokenizer regex: %w", err)
	}
	return &Tokenizer{re: re, merges: frozen.LoadMap(data)}, nil
}

// CountTokens returns the number of tokens text would encode to.
func (t *Tokenizer) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	total := 0
	m, err := t.re.FindStringMatch(text)
	for {
		if err != nil {
			return 0, fmt.Errorf("tiktoken: regex match: %w", err)
		}
		if m == nil {
			break
		}
		total += t.bpeCount([]byte(m.String()))
		m, err = t.re.FindNextMatch(m)
	}
	return total, nil
}

// bpeCount runs byte-level BPE merge counting over a single pre-tokenized
// piece, looking ranks up via the frozen map's concatenation-keyed lookup.
func (t *Tokenizer) bpeCount(piece []byte) int {
	n := len(piece)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return 1
	}

	lens := make([]int, n)
	for i := range lens {
		lens[i] = 1
	}
	return bpemerge.Count(piece, lens, func(left, right []byte) (uint32, bool) {
		return t.merges.GetConcat(left, right)
	})
}
