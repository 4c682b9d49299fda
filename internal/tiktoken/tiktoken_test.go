package tiktoken

import (
	"testing"

	"github.com/tokencount/tokencount/internal/builder"
)

func TestCountTokensEmptyIsZero(t *testing.T) {
	tok, err := New(builder.BuildMap(map[string]uint32{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := tok.CountTokens("")
	if err != nil {
		t.Fatalf("CountTokens: %v", err)
	}
	if got != 0 {
		t.Fatalf("CountTokens(\"\") = %d, want 0", got)
	}
}

func TestCountTokensSingleWordNoMerges(t *testing.T) {
	tok, err := New(builder.BuildMap(map[string]uint32{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// No merge ranks at all: every byte stays its own token.
	got, err := tok.CountTokens("hi")
	if err != nil {
		t.Fatalf("CountTokens: %v", err)
	}
	if got != 2 {
		t.Fatalf("CountTokens(hi) = %d, want 2", got)
	}
}

func TestCountTokensMergesByRank(t *testing.T) {
	ranks := map[string]uint32{"hi": 0}
	tok, err := New(builder.BuildMap(ranks))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := tok.CountTokens("hi")
	if err != nil {
		t.Fatalf("CountTokens: %v", err)
	}
	if got != 1 {
		t.Fatalf("CountTokens(hi) = %d, want 1 (h+i merges)", got)
	}
}

func TestCountTokensSplitsOnWhitespaceIntoSeparatePieces(t *testing.T) {
	// Even with a rank that could merge across the space, the
	// pre-tokenization regex must keep words and the leading-space run as
	// distinct pieces, so no merge ever crosses that boundary.
	ranks := map[string]uint32{"a b": 0}
	tok, err := New(builder.BuildMap(ranks))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := tok.CountTokens("a b")
	if err != nil {
		t.Fatalf("CountTokens: %v", err)
	}
	if got != 3 {
		t.Fatalf("CountTokens(\"a b\") = %d, want 3 (\"a\", \" b\" split by the pre-tokenizer)", got)
	}
}

func TestCountTokensMultipleWords(t *testing.T) {
	tok, err := New(builder.BuildMap(map[string]uint32{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := tok.CountTokens("the quick brown fox")
	if err != nil {
		t.Fatalf("CountTokens: %v", err)
	}
	// No merges at all: one token per byte across every regex piece.
	want := len("the quick brown fox")
	if got != want {
		t.Fatalf("CountTokens = %d, want %d", got, want)
	}
}
