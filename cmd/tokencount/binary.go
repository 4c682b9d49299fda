package main

import (
	"bytes"
	"os"
)

// isBinary sniffs the first 8KiB of path for a NUL byte. It's a one-line
// heuristic, not something that needs a library: same approach as
// original_source/src/main.rs's is_binary.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 8192)
	n, _ := f.Read(buf)
	return bytes.IndexByte(buf[:n], 0) >= 0
}
