package builder

const termBit = 0x8000_0000

// trieChild is one byte-labeled outgoing edge in the build-time children-list
// trie that BuildTrie packs into a flat base/check array pair.
type trieChild struct {
	key   byte
	child int
}

// BuildTrie packs vocab into a double-array trie blob consumable by
// internal/datrie.Load: a BFS insertion order over a conventional
// children-list trie, each node placed in the flat base/check arrays at the
// smallest offset that doesn't collide with an already-placed sibling set.
func BuildTrie(vocab []string) []byte {
	children := [][]trieChild{{}}
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
				children[cur] = append(children[cur], trieChild{key: b, child: idx})
			}
			cur = idx
		}
		terminal[cur] = true
	}

	for _, ch := range children {
		sortChildren(ch)
	}

	numNodes := len(children)
	size := numNodes + 512
	base := make([]uint32, size)
	check := make([]uint32, size)
	occupied := make([]bool, size)
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
			base = growBase(base, newSize)
			check = growCheck(check, newSize)
			occupied = growOccupied(occupied, newSize)
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
	out = appendU32(out, 0) // root
	for _, v := range base {
		out = appendU32(out, v)
	}
	for _, v := range check {
		out = appendU32(out, v)
	}
	return out
}

func sortChildren(ch []trieChild) {
	for i := 1; i < len(ch); i++ {
		for j := i; j > 0 && ch[j-1].key > ch[j].key; j-- {
			ch[j-1], ch[j] = ch[j], ch[j-1]
		}
	}
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

func growBase(s []uint32, n int) []uint32 {
	out := make([]uint32, n)
	copy(out, s)
	return out
}

func growCheck(s []uint32, n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = 0xFFFF_FFFF
	}
	copy(out, s)
	return out
}

func growOccupied(s []bool, n int) []bool {
	out := make([]bool, n)
	copy(out, s)
	return out
}
