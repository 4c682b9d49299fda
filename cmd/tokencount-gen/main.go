// Command tokencount-gen is the offline artifact builder: it reads vendor
// tokenizer files from a local directory and writes the frozen/trie blobs
// internal/embedded expects under internal/embedded/data/*.bin, for a later
// `go build` to pick up via go:embed. It is the Go analogue of build.rs
// writing into OUT_DIR for include_bytes!, generalized from a single
// built-time compile hook into its own command since Go has no build script
// equivalent. Takes its raw inputs from the data/ layout cmd/fetch-vendor-data
// populates.
//
// A missing input file is never an error: that model's slot just stays
// absent, matching the "model not embedded" runtime behavior spec'd for the
// dispatcher.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tokencount/tokencount/internal/builder"
)

// hfModels lists the non-tiktoken vendor models tokencount-gen knows how to
// ingest from a tokenizer.json file, keyed by the embedded blob name.
var hfModels = []string{"gemini", "deepseek", "qwen", "llama", "mistral", "grok", "minimax"}

func main() {
	dataDir := "data"
	outDir := filepath.Join("internal", "embedded", "data")
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fail("mkdir %s: %v", outDir, err)
	}

	built := 0
	if n, err := buildTiktoken(dataDir, outDir); err != nil {
		fail("%v", err)
	} else {
		built += n
	}
	for _, model := range hfModels {
		n, err := buildHF(dataDir, outDir, model)
		if err != nil {
			fail("%v", err)
		}
		built += n
	}

	fmt.Printf("tokencount-gen: wrote %d artifact(s) to %s\n", built, outDir)
}

func buildTiktoken(dataDir, outDir string) (int, error) {
	src := filepath.Join(dataDir, "o200k_base.tiktoken")
	data, err := os.ReadFile(src)
	if os.IsNotExist(err) {
		fmt.Printf("-> %s not found, skipping openai\n", src)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", src, err)
	}

	blob, err := builder.BuildTiktokenBlob(data)
	if err != nil {
		return 0, fmt.Errorf("building openai blob from %s: %w", src, err)
	}
	dest := filepath.Join(outDir, "openai.bin")
	if err := os.WriteFile(dest, blob, 0o644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", dest, err)
	}
	fmt.Printf("-> wrote %s (%d bytes)\n", dest, len(blob))
	return 1, nil
}

func buildHF(dataDir, outDir, model string) (int, error) {
	src := filepath.Join(dataDir, model, "tokenizer.json")
	data, err := os.ReadFile(src)
	if os.IsNotExist(err) {
		fmt.Printf("-> %s not found, skipping %s\n", src, model)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", src, err)
	}

	blob, err := builder.BuildHFBlob(data)
	if err != nil {
		return 0, fmt.Errorf("building %s blob from %s: %w", model, src, err)
	}
	dest := filepath.Join(outDir, model+".bin")
	if err := os.WriteFile(dest, blob, 0o644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", dest, err)
	}
	fmt.Printf("-> wrote %s (%d bytes)\n", dest, len(blob))
	return 1, nil
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
