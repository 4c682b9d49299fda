// Package model dispatches a model name to a concrete tokenizer backend
// over this program's embedded artifacts. It is the Go analogue of
// original_source/src/main.rs's Tokenizer enum and load_model/embedded_data
// pair, reshaped into a closed set of concrete counters behind one
// interface instead of a tagged union matched at each call site.
package model

import (
	"errors"
	"fmt"

	"github.com/tokencount/tokencount/internal/datrie"
	"github.com/tokencount/tokencount/internal/embedded"
	"github.com/tokencount/tokencount/internal/hftok"
	"github.com/tokencount/tokencount/internal/tiktoken"
)

// Names lists every model the dispatcher recognizes, in the CLI's preferred
// display order. Claude is always available; the rest require their
// artifact to have been embedded at build time.
var Names = []string{
	"claude", "openai", "gemini", "deepseek", "qwen", "llama", "mistral", "grok", "minimax",
}

// ErrUnknownModel means name isn't one of Names at all.
var ErrUnknownModel = errors.New("model: unknown model")

// ErrModelNotEmbedded means name is recognized but its artifact wasn't
// present when this binary was built.
var ErrModelNotEmbedded = errors.New("model: model not embedded")

// Tokenizer counts tokens for a single model. Every implementation holds
// only immutable references into an embedded blob plus compiled regexes, so
// a Tokenizer is safe for concurrent CountTokens calls from multiple
// goroutines once constructed.
type Tokenizer interface {
	CountTokens(text string) (int, error)
}

// Load returns the tokenizer for name, or an error distinguishing an
// unrecognized model name from a recognized one whose artifact is absent
// from this build.
func Load(name string) (Tokenizer, error) {
	switch name {
	case "claude":
		return claudeTokenizer{trie: datrie.Load(embedded.ClaudeTrie())}, nil
	case "openai":
		data, ok := embedded.Data("openai")
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrModelNotEmbedded, name)
		}
		tok, err := tiktoken.New(data)
		if err != nil {
			return nil, fmt.Errorf("model: loading %s: %w", name, err)
		}
		return tok, nil
	case "gemini", "deepseek", "qwen", "llama", "mistral", "grok", "minimax":
		data, ok := embedded.Data(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrModelNotEmbedded, name)
		}
		tok, err := hftok.Load(data)
		if err != nil {
			return nil, fmt.Errorf("model: loading %s: %w", name, err)
		}
		return tok, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
}

// claudeTokenizer adapts datrie.Trie's error-free CountTokens to the
// Tokenizer interface the other two backends already satisfy natively.
type claudeTokenizer struct {
	trie datrie.Trie
}

func (c claudeTokenizer) CountTokens(text string) (int, error) {
	return c.trie.CountTokens(text), nil
}
