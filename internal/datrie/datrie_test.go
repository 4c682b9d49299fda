package datrie

import (
	"encoding/binary"
	"testing"
)

// buildTrie constructs a double-array trie blob from a vocabulary list using
// the same BFS + find_base packing the offline builder uses, so the array
// format is exercised independently of internal/builder.
func buildTrie(vocab []string) []byte {
	type child struct {
		key   byte
		child int
	}
	children := [][]child{{}}
	terminal := []bool{false}

	for _, token := range vocab {
		cur := 0
		for _, b := range []byte(token) {
			idx := -1
			for _, c := range children[cur] {
				if c.key == b {
					idx = c.child
					break
				}
			}
			if idx < 0 {
				idx = len(children)
				children = append(children, nil)
				terminal = append(terminal, false)
				children[cur] = append(children[cur], child{key: b, child: idx})
			}
			cur = idx
		}
		terminal[cur] = true
	}

	numNodes := len(children)
	initialSize := numNodes + 512
	base := make([]uint32, initialSize)
	check := make([]uint32, initialSize)
	occupied := make([]bool, initialSize)
	for i := range check {
		check[i] = 0xFFFF_FFFF
	}

	daPos := make([]uint32, numNodes)
	daPos[0] = 0
	occupied[0] = true

	queue := []int{0}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		s := int(daPos[node])
		ch := children[node]
		if len(ch) == 0 {
			continue
		}

		keys := make([]byte, len(ch))
		for i, c := range ch {
			keys[i] = c.key
		}
		b := findBase(keys, occupied)

		maxPos := b + 256
		if maxPos >= len(base) {
			newSize := maxPos + 512
			base = growU32(base, newSize)
			newCheck := growU32(check, newSize)
			for i := len(check); i < newSize; i++ {
				newCheck[i] = 0xFFFF_FFFF
			}
			check = newCheck
			newOcc := make([]bool, newSize)
			copy(newOcc, occupied)
			occupied = newOcc
		}

		base[s] = uint32(b)

		for _, c := range ch {
			t := b + int(c.key)
			term := uint32(0)
			if terminal[c.child] {
				term = termBit
			}
			check[t] = uint32(s) | term
			occupied[t] = true
			daPos[c.child] = uint32(t)
			queue = append(queue, c.child)
		}
	}

	actualSize := 0
	for i, o := range occupied {
		if o {
			actualSize = i + 1
		}
	}
	base = base[:actualSize]
	check = check[:actualSize]

	out := make([]byte, 0, 8+actualSize*8)
	out = appendU32(out, uint32(actualSize))
	out = appendU32(out, 0)
	for _, v := range base {
		out = appendU32(out, v)
	}
	for _, v := range check {
		out = appendU32(out, v)
	}
	return out
}

func findBase(keys []byte, occupied []bool) int {
	length := len(occupied)
	firstKey := int(keys[0])
	b := 0
outer:
	for {
		fpos := b + firstKey
		if fpos < length && occupied[fpos] {
			b++
			continue
		}
		for _, k := range keys[1:] {
			pos := b + int(k)
			if pos < length && occupied[pos] {
				b++
				continue outer
			}
		}
		return b
	}
}

func growU32(s []uint32, n int) []uint32 {
	out := make([]uint32, n)
	copy(out, s)
	for i := len(s); i < n; i++ {
		out[i] = 0xFFFF_FFFF
	}
	return out
}

func appendU32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func TestCountTokensEmptyIsZero(t *testing.T) {
	tr := Load(buildTrie([]string{"a", "b"}))
	if got := tr.CountTokens(""); got != 0 {
		t.Fatalf("CountTokens(\"\") = %d, want 0", got)
	}
}

func TestCountTokensGreedyLongestMatch(t *testing.T) {
	tr := Load(buildTrie([]string{"a", "ab", "abc", "b", "c"}))

	cases := []struct {
		in   string
		want int
	}{
		{"abc", 1},    // single longest match
		{"abcabc", 2}, // two greedy "abc" matches
		{"ab", 1},
		{"abd", 2}, // "ab" + fallback single byte 'd' (not in vocab at all)
	}
	for _, c := range cases {
		if got := tr.CountTokens(c.in); got != c.want {
			t.Fatalf("CountTokens(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestCountTokensFallsBackToSingleByte(t *testing.T) {
	tr := Load(buildTrie([]string{"xyz"}))
	// "q" never appears in any vocab entry, nor as a prefix, so each byte of
	// "qqq" must fall back to its own token.
	if got := tr.CountTokens("qqq"); got != 3 {
		t.Fatalf("CountTokens(qqq) = %d, want 3", got)
	}
}

func TestCountTokensNeverExceedsByteLength(t *testing.T) {
	tr := Load(buildTrie([]string{"a", "ab", "abc", "abcd", "abcde"}))
	text := "abcdeabcdeabcde"
	got := tr.CountTokens(text)
	if got == 0 || got > len(text) {
		t.Fatalf("CountTokens(%q) = %d, want in (0, %d]", text, got, len(text))
	}
	// The text is the vocab entry "abcde" repeated thrice, so greedy longest
	// match collapses it to exactly 3 tokens.
	if got != 3 {
		t.Fatalf("CountTokens(%q) = %d, want 3", text, got)
	}
}
