// Package eval scores trained embeddings: bilingual lexicon induction, word
// similarity correlation and sememe prediction.
package eval

import (
	"bufio"
	"cmp"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"

	"github.com/thunlp/CLSP/internal/vecio"
)

// Dictionary maps a lowercased source word to its accepted translations
type Dictionary map[string][]string

// ReadDictionary reads "word<TAB>t1/t2/..." lines
func ReadDictionary(r io.Reader) (Dictionary, error) {
	d := make(Dictionary)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		src, tgt, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		d[strings.ToLower(src)] = strings.Split(tgt, "/")
	}
	return d, errors.Wrap(sc.Err(), "read dictionary")
}

// ReadDictionaryFile is ReadDictionary on a file
func ReadDictionaryFile(path string) (Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dictionary %s not found", path)
	}
	defer f.Close()
	return ReadDictionary(f)
}

// Neighbour is a word and its cosine to a query
type Neighbour struct {
	Word string
	Cos  float64
}

// Nearest returns the k rows of v closest to q. Both sides must be normalized.
func Nearest(v *vecio.Vectors, q []float64, k int) []Neighbour {
	all := make([]Neighbour, v.Len())
	for i := range all {
		all[i] = Neighbour{v.Words[i], floats.Dot(q, v.Vec(i))}
	}
	slices.SortStableFunc(all, func(a, b Neighbour) int { return cmp.Compare(b.Cos, a.Cos) })
	if k < len(all) {
		all = all[:k]
	}
	return all
}

// BLIResult is the outcome of a lexicon induction run
type BLIResult struct {
	Tested int
	P1, P5 float64
}

// LexiconInduction translates up to limit dictionary words (all when limit <= 0)
// found in src by nearest neighbour in tgt, in an order shuffled by rng, and
// reports how often a gold translation is first or in the top five.
func LexiconInduction(src, tgt *vecio.Vectors, d Dictionary, limit int, rng *rand.Rand, progress func(BLIResult)) BLIResult {
	words := maps.Keys(d)
	slices.Sort(words)
	rng.Shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })

	var res BLIResult
	var hit1, hit5 int
	for _, w := range words {
		id := src.ID(w)
		if id == -1 {
			continue
		}
		gold := d[w]
		top := Nearest(tgt, src.Vec(id), 5)
		if len(top) > 0 && slices.Contains(gold, top[0].Word) {
			hit1++
		}
		for _, n := range top {
			if slices.Contains(gold, n.Word) {
				hit5++
				break
			}
		}
		res.Tested++
		res.P1 = float64(hit1) / float64(res.Tested)
		res.P5 = float64(hit5) / float64(res.Tested)
		if progress != nil && res.Tested%200 == 0 {
			progress(res)
		}
		if limit > 0 && res.Tested >= limit {
			break
		}
	}
	return res
}
