// Package bpemerge factors out the byte-pair-encoding merge loop shared by
// internal/tiktoken and internal/hftok: both lay their initial tokens out
// contiguously in one byte buffer, then run the identical generation-stamped,
// bucket-queued, doubly-linked-list merge over [start, end) ranges into that
// buffer. They differ only in how a pair's rank is looked up (GetConcat for
// tiktoken's single bytes, GetPair for HF's multi-byte initial tokens) and
// how those initial tokens are produced.
//
// Merging two neighbors is then a zero-copy range extension — no
// reallocation, no string concatenation — matching the scheme both the
// tiktoken and HF reference counters use.
package bpemerge

// Lookup resolves the rank of merging left and right. Lower rank merges
// first. ok is false if the pair never merges.
type Lookup func(left, right []byte) (rank uint32, ok bool)

type part struct {
	start, end int
}

type mergeCand struct {
	rank int
	pos  int
	gen  int
}

// bucketQueue is a rank-bucketed priority queue: BPE ranks are small dense
// integers, so bucketing by rank and scanning forward from the last popped
// bucket beats a generic binary heap.
type bucketQueue struct {
	buckets [][]mergeCand
	current int
}

func newBucketQueue() *bucketQueue {
	return &bucketQueue{buckets: make([][]mergeCand, 0, 256)}
}

func (bq *bucketQueue) push(c mergeCand) {
	if c.rank >= len(bq.buckets) {
		grown := make([][]mergeCand, c.rank+1)
		copy(grown, bq.buckets)
		bq.buckets = grown
	}
	bq.buckets[c.rank] = append(bq.buckets[c.rank], c)
	if c.rank < bq.current {
		bq.current = c.rank
	}
}

func (bq *bucketQueue) pop() (mergeCand, bool) {
	for bq.current < len(bq.buckets) && len(bq.buckets[bq.current]) == 0 {
		bq.current++
	}
	if bq.current >= len(bq.buckets) {
		return mergeCand{}, false
	}
	bucket := bq.buckets[bq.current]
	c := bucket[0]
	bq.buckets[bq.current] = bucket[1:]
	return c, true
}

// Count runs the BPE merge loop over n initial tokens, laid out contiguously
// in buf with lens[i] giving the byte length of token i, and returns the
// number of tokens remaining once no adjacent pair in lookup merges any
// further.
func Count(buf []byte, lens []int, lookup Lookup) int {
	n := len(lens)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return 1
	}

	parts := make([]part, n)
	off := 0
	for i, l := range lens {
		parts[i] = part{start: off, end: off + l}
		off += l
	}

	next := make([]int, n)
	prev := make([]int, n)
	alive := make([]bool, n)
	gen := make([]int, n)
	for i := range next {
		next[i] = i + 1
		prev[i] = i - 1
		alive[i] = true
	}
	next[n-1] = -1
	prev[0] = -1

	q := newBucketQueue()

	pairRank := func(i int) (uint32, bool) {
		j := next[i]
		if j < 0 {
			return 0, false
		}
		return lookup(buf[parts[i].start:parts[i].end], buf[parts[j].start:parts[j].end])
	}

	for i := 0; i < n-1; i++ {
		if rank, ok := pairRank(i); ok {
			q.push(mergeCand{rank: int(rank), pos: i, gen: 0})
		}
	}

	count := n
	for {
		c, ok := q.pop()
		if !ok {
			break
		}
		i := c.pos
		if !alive[i] || gen[i] != c.gen {
			continue
		}
		j := next[i]
		if j < 0 || !alive[j] {
			continue
		}

		currentRank, ok := pairRank(i)
		if !ok || int(currentRank) != c.rank {
			continue
		}

		parts[i].end = parts[j].end
		gen[i]++
		alive[j] = false
		k := next[j]
		next[i] = k
		if k >= 0 {
			prev[k] = i
		}
		count--

		if p := prev[i]; p >= 0 && alive[p] {
			if rank, ok := pairRank(p); ok {
				q.push(mergeCand{rank: int(rank), pos: p, gen: gen[p]})
			}
		}
		if next[i] >= 0 {
			if rank, ok := pairRank(i); ok {
				q.push(mergeCand{rank: int(rank), pos: i, gen: gen[i]})
			}
		}
	}

	return count
}
