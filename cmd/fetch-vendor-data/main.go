// Command fetch-vendor-data downloads the raw vendor tokenizer artifacts
// that cmd/tokencount-gen turns into embeddable blobs: OpenAI's o200k_base
// rank file and each Hugging-Face-hosted model's tokenizer.json. It writes
// them into the same data/ layout tokencount-gen reads from, so the two
// commands chain directly: fetch-vendor-data then tokencount-gen.
//
// Adapted from the teacher's one-off GPT-2 vocab/merges downloader,
// generalized from a single hardcoded pair of files to the full vendor
// list this spec dispatches over.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// sources maps a destination path under dataDir to the URL to fetch it
// from. Hugging-Face-hosted models share the same tokenizer.json layout;
// OpenAI publishes its merge ranks as a flat .tiktoken file instead.
var sources = map[string]string{
	"o200k_base.tiktoken":       "https://openaipublic.blob.core.windows.net/encodings/o200k_base.tiktoken",
	"gemini/tokenizer.json":     "https://huggingface.co/google/gemma-7b/resolve/main/tokenizer.json",
	"deepseek/tokenizer.json":   "https://huggingface.co/deepseek-ai/DeepSeek-V2/resolve/main/tokenizer.json",
	"qwen/tokenizer.json":       "https://huggingface.co/Qwen/Qwen2-7B/resolve/main/tokenizer.json",
	"llama/tokenizer.json":      "https://huggingface.co/meta-llama/Meta-Llama-3-8B/resolve/main/tokenizer.json",
	"mistral/tokenizer.json":    "https://huggingface.co/mistralai/Mistral-7B-v0.1/resolve/main/tokenizer.json",
	"grok/tokenizer.json":       "https://huggingface.co/xai-org/grok-1/resolve/main/tokenizer.json",
	"minimax/tokenizer.json":    "https://huggingface.co/MiniMaxAI/MiniMax-Text-01/resolve/main/tokenizer.json",
}

func download(url, destPath string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("mkdir for %s: %w", destPath, err)
	}
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	if n == 0 {
		return fmt.Errorf("download %s: got 0 bytes", url)
	}
	return nil
}

func main() {
	dataDir := "data"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	failed := 0
	for rel, url := range sources {
		dest := filepath.Join(dataDir, filepath.FromSlash(rel))
		fmt.Printf("-> downloading %s\n", rel)
		if err := download(url, dest); err != nil {
			fmt.Fprintf(os.Stderr, "error downloading %s: %v\n", rel, err)
			failed++
			continue
		}
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "fetch-vendor-data: %d of %d downloads failed\n", failed, len(sources))
		os.Exit(1)
	}
	fmt.Printf("done. files in %s/, ready for tokencount-gen\n", dataDir)
}
