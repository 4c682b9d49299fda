package normalizer

import (
	"encoding/binary"
	"testing"
)

func appendU32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func lenPrefixed(s string) []byte {
	out := appendU32(nil, uint32(len(s)))
	return append(out, s...)
}

func TestParseNone(t *testing.T) {
	n, consumed, err := Parse([]byte{tagNone})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if consumed != 1 {
		t.Fatalf("consumed = %d, want 1", consumed)
	}
	if got := n.Apply("hello"); got != "hello" {
		t.Fatalf("Apply = %q, want %q", got, "hello")
	}
}

func TestParseReplace(t *testing.T) {
	blob := []byte{tagReplace}
	blob = append(blob, lenPrefixed(" ")...)
	blob = append(blob, lenPrefixed("_")...)
	n, _, err := Parse(blob)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := n.Apply("a b c"); got != "a_b_c" {
		t.Fatalf("Apply = %q, want %q", got, "a_b_c")
	}
}

func TestParsePrepend(t *testing.T) {
	blob := []byte{tagPrepend}
	blob = append(blob, lenPrefixed("_")...)
	n, _, err := Parse(blob)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := n.Apply("word"); got != "_word" {
		t.Fatalf("Apply = %q, want %q", got, "_word")
	}
}

func TestParseNFC(t *testing.T) {
	n, _, err := Parse([]byte{tagNFC})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// "e" + combining acute accent should compose into a single precomposed
	// "é" under NFC.
	decomposed := "é"
	got := n.Apply(decomposed)
	want := "é"
	if got != want {
		t.Fatalf("Apply(%q) = %q, want %q", decomposed, got, want)
	}
}

func TestParseSequenceAppliesInOrder(t *testing.T) {
	blob := []byte{tagSequence}
	blob = appendU32(blob, 2)
	blob = append(blob, tagPrepend)
	blob = append(blob, lenPrefixed("<s>")...)
	replaceBlob := []byte{tagReplace}
	replaceBlob = append(replaceBlob, lenPrefixed(" ")...)
	replaceBlob = append(replaceBlob, lenPrefixed("_")...)
	blob = append(blob, replaceBlob...)

	n, _, err := Parse(blob)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := n.Apply("a b"); got != "<s>a_b" {
		t.Fatalf("Apply = %q, want %q", got, "<s>a_b")
	}
}

func TestParseEmptySequenceIsNone(t *testing.T) {
	blob := []byte{tagSequence}
	blob = appendU32(blob, 0)
	n, _, err := Parse(blob)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := n.Apply("same"); got != "same" {
		t.Fatalf("Apply = %q, want %q", got, "same")
	}
}

func TestParseUnknownTag(t *testing.T) {
	if _, _, err := Parse([]byte{0xEE}); err == nil {
		t.Fatalf("expected error for unknown normalizer tag")
	}
}
