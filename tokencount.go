// Package tokencount re-exports the model dispatcher for embedders that want
// token counting without depending on internal/ directly. The core engine
// lives under internal/ (vendored, not meant for external import); this
// package is the one stable, public surface over it.
package tokencount

import "github.com/tokencount/tokencount/internal/model"

// Tokenizer counts tokens for one model. See internal/model.Tokenizer.
type Tokenizer = model.Tokenizer

// ErrUnknownModel and ErrModelNotEmbedded let callers distinguish a typo'd
// model name from a recognized one whose artifact is absent from this
// build, per errors.Is.
var (
	ErrUnknownModel     = model.ErrUnknownModel
	ErrModelNotEmbedded = model.ErrModelNotEmbedded
)

// ModelNames lists every model name Load recognizes.
func ModelNames() []string {
	names := make([]string, len(model.Names))
	copy(names, model.Names)
	return names
}

// Load returns the tokenizer for name ("claude", "openai", "gemini",
// "deepseek", "qwen", "llama", "mistral", "grok", or "minimax"). "claude" is
// always available; the rest require their artifact to have been embedded
// at build time.
func Load(name string) (Tokenizer, error) {
	return model.Load(name)
}
