package vocab

// Index is an open-addressing hash from word to id. It has no tombstones: after a
// sort or a prune the whole table is rebuilt.
type Index struct {
	slots []int32
}

func newIndex(size int) *Index {
	ix := &Index{slots: make([]int32, size)}
	ix.clear()
	return ix
}

// Hash returns the slot a word starts probing from
func (ix *Index) Hash(word string) uint64 {
	var h uint64
	for i := 0; i < len(word); i++ {
		h = h*257 + uint64(word[i])
	}
	return h % uint64(len(ix.slots))
}

// Size is the number of slots
func (ix *Index) Size() int {
	return len(ix.slots)
}

func (ix *Index) clear() {
	for i := range ix.slots {
		ix.slots[i] = -1
	}
}

func (ix *Index) put(word string, id int) {
	h := ix.Hash(word)
	for ix.slots[h] != -1 {
		h = (h + 1) % uint64(len(ix.slots))
	}
	ix.slots[h] = int32(id)
}

func (ix *Index) find(word string, words []Word) int {
	h := ix.Hash(word)
	for {
		id := ix.slots[h]
		if id == -1 {
			return NotFound
		}
		if words[id].Text == word {
			return int(id)
		}
		h = (h + 1) % uint64(len(ix.slots))
	}
}

func (ix *Index) rebuild(words []Word) {
	ix.clear()
	for i := range words {
		ix.put(words[i].Text, i)
	}
}
