// Package unigram builds the negative sampling table: word ids laid out in
// proportion to count^0.75.
package unigram

import "math"

const (
	DefaultSize = 1e8
	Power       = 0.75
)

// Table maps a random offset to a word id
type Table struct {
	ids []int32
}

// Build fills a table of the given size for n words whose counts come from count(i)
func Build(count func(i int) int64, n, size int) *Table {
	if size <= 0 {
		size = DefaultSize
	}
	t := &Table{ids: make([]int32, size)}
	if n == 0 {
		return t
	}
	var total float64
	for a := 0; a < n; a++ {
		total += math.Pow(float64(count(a)), Power)
	}
	i := 0
	d1 := math.Pow(float64(count(i)), Power) / total
	for a := 0; a < size; a++ {
		t.ids[a] = int32(i)
		if float64(a)/float64(size) > d1 {
			i++
			if i < n {
				d1 += math.Pow(float64(count(i)), Power) / total
			}
		}
		if i >= n {
			i = n - 1
		}
	}
	return t
}

// At returns the id stored at k modulo the table size
func (t *Table) At(k uint64) int32 {
	return t.ids[k%uint64(len(t.ids))]
}

func (t *Table) Len() int {
	return len(t.ids)
}
