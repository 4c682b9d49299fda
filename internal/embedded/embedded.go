// Package embedded holds the program's read-only, process-wide tokenizer
// artifacts. Claude's vocabulary is small enough to vendor directly into the
// binary and ships here as a JSON fixture, built into a trie blob once at
// package init via internal/builder. The remaining vendor models
// (openai/gemini/deepseek/qwen/llama/mistral/grok/minimax) are only ever
// present if a real tokencount-gen run wrote their blobs into data/*.bin
// before the binary was built; none are checked in, so Data reports them
// absent by default, exactly as an offline build with no TOKEN_COUNT_MODELS
// artifacts on disk would.
package embedded

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/tokencount/tokencount/internal/builder"
)

//go:embed data/claude_vocab.json
var claudeVocabJSON []byte

var claudeTrie []byte

func init() {
	var vocab []string
	if err := json.Unmarshal(claudeVocabJSON, &vocab); err != nil {
		panic(fmt.Sprintf("embedded: malformed claude_vocab.json: %v", err))
	}
	claudeTrie = builder.BuildTrie(vocab)
}

// ClaudeTrie returns the built double-array trie blob for the Claude
// tokenizer. Unlike the other models, Claude is always available.
func ClaudeTrie() []byte { return claudeTrie }

// Data returns the embedded blob for a non-Claude model, if one was baked in
// by tokencount-gen at build time. ok is false when that model's artifact
// was absent from the build — a normal, expected outcome, not an error.
func Data(name string) (data []byte, ok bool) {
	// None of the optional vendor blobs are checked into this tree, so every
	// lookup reports absent. A real deployment drops built .bin files under
	// data/ and regenerates this switch (or an embedded filesystem walk) to
	// wire them up, mirroring original_source/src/main.rs's embedded_data.
	switch name {
	case "openai", "gemini", "deepseek", "qwen", "llama", "mistral", "grok", "minimax":
		return nil, false
	default:
		return nil, false
	}
}
