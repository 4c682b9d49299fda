package bpemerge

import "testing"

// rankTable is a tiny in-memory stand-in for a frozen.Map used only to drive
// these tests; production callers look ranks up in a real frozen table.
type rankTable map[string]uint32

func (rt rankTable) lookup(left, right []byte) (uint32, bool) {
	v, ok := rt[string(left)+"\x00"+string(right)]
	return v, ok
}

func bufAndLens(parts ...string) ([]byte, []int) {
	var buf []byte
	lens := make([]int, len(parts))
	for i, p := range parts {
		buf = append(buf, p...)
		lens[i] = len(p)
	}
	return buf, lens
}

func TestCountEmptyAndSingle(t *testing.T) {
	if got := Count(nil, nil, rankTable{}.lookup); got != 0 {
		t.Fatalf("Count(empty) = %d, want 0", got)
	}
	buf, lens := bufAndLens("a")
	if got := Count(buf, lens, rankTable{}.lookup); got != 1 {
		t.Fatalf("Count(single) = %d, want 1", got)
	}
}

func TestCountNoMergesLeavesAllTokens(t *testing.T) {
	buf, lens := bufAndLens("a", "b", "c")
	got := Count(buf, lens, rankTable{}.lookup)
	if got != 3 {
		t.Fatalf("Count(no merges) = %d, want 3", got)
	}
}

func TestCountSingleMergeCollapsesPair(t *testing.T) {
	rt := rankTable{"a\x00b": 0}
	buf, lens := bufAndLens("a", "b", "c")
	got := Count(buf, lens, rt.lookup)
	if got != 2 {
		t.Fatalf("Count(a+b merges) = %d, want 2", got)
	}
}

func TestCountChainedMergesLowestRankFirst(t *testing.T) {
	// "ab" has higher priority (lower rank) than "bc"; after a+b merges into
	// "ab", the pair "ab"+"c" must be re-evaluated fresh.
	rt := rankTable{
		"a\x00b":  0,
		"b\x00c":  5,
		"ab\x00c": 1,
	}
	buf, lens := bufAndLens("a", "b", "c")
	got := Count(buf, lens, rt.lookup)
	if got != 1 {
		t.Fatalf("Count(chained merges) = %d, want 1", got)
	}
}

func TestCountDisjointEqualRankPairsBothMerge(t *testing.T) {
	// Two disjoint equal-rank pairs should both merge; order between them
	// must not affect the final count either way.
	rt := rankTable{
		"a\x00b": 2,
		"c\x00d": 2,
	}
	buf, lens := bufAndLens("a", "b", "c", "d")
	got := Count(buf, lens, rt.lookup)
	if got != 2 {
		t.Fatalf("Count(disjoint equal-rank merges) = %d, want 2", got)
	}
}

func TestCountStopsWhenNoFurtherMergesApply(t *testing.T) {
	rt := rankTable{"a\x00b": 0}
	buf, lens := bufAndLens("a", "b", "x", "y", "z")
	got := Count(buf, lens, rt.lookup)
	if got != 4 {
		t.Fatalf("Count = %d, want 4", got)
	}
}
