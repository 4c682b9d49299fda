package tokencount

import (
	"errors"
	"testing"
)

func TestLoadClaude(t *testing.T) {
	tok, err := Load("claude")
	if err != nil {
		t.Fatalf("Load(claude): %v", err)
	}
	got, err := tok.CountTokens("Hello, world!")
	if err != nil {
		t.Fatalf("CountTokens: %v", err)
	}
	if got <= 0 {
		t.Fatalf("CountTokens = %d, want > 0", got)
	}
}

func TestLoadUnknownModel(t *testing.T) {
	_, err := Load("totally-made-up")
	if !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("err = %v, want ErrUnknownModel", err)
	}
}

func TestModelNamesIncludesClaude(t *testing.T) {
	names := ModelNames()
	found := false
	for _, n := range names {
		if n == "claude" {
			found = true
		}
	}
	if !found {
		t.Fatalf("ModelNames() = %v, want it to include claude", names)
	}
}
