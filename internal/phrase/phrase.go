// Package phrase joins frequent bigrams of a corpus into single tokens
// ("new york" becomes "new_york"), so a later training pass sees them as words.
package phrase

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/thunlp/CLSP/internal/corpus"
	"github.com/thunlp/CLSP/internal/vocab"
)

// DefaultThreshold is the score a bigram must beat to be joined
const DefaultThreshold = 100

// Model holds the unigram and bigram counts of a corpus
type Model struct {
	Vocab      *vocab.Store
	TrainWords int64
	MinCount   int64
	Threshold  float64
}

func bigram(a, b string) string {
	s := a + "_" + b
	if len(s) >= corpus.MaxString {
		s = s[:corpus.MaxString-1]
	}
	return s
}

// Learn counts the words and in-sentence bigrams of r
func Learn(r io.Reader, indexSize int, minCount int64, threshold float64, progress func(tokens int64)) (*Model, error) {
	m := &Model{Vocab: vocab.NewStore(indexSize), MinCount: minCount, Threshold: threshold}
	m.Vocab.Reset()
	br := bufio.NewReader(r)
	last := ""
	for {
		w, err := corpus.ReadWord(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "learn phrases")
		}
		if w == corpus.Sentinel {
			last = ""
			continue
		}
		m.TrainWords++
		if progress != nil && m.TrainWords%100000 == 0 {
			progress(m.TrainWords)
		}
		m.Vocab.Add(w)
		if last != "" {
			m.Vocab.Add(bigram(last, w))
		}
		last = w
	}
	m.Vocab.Finalize(minCount)
	return m, nil
}

// LearnFile is Learn on a file
func LearnFile(path string, indexSize int, minCount int64, threshold float64, progress func(tokens int64)) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "training data file %s not found", path)
	}
	defer f.Close()
	m, err := Learn(f, indexSize, minCount, threshold, progress)
	return m, errors.Wrap(err, path)
}

func (m *Model) count(w string) (int64, bool) {
	id := m.Vocab.Lookup(w)
	if id == vocab.NotFound {
		return 0, false
	}
	return m.Vocab.Count(id), true
}

// Join rewrites r to w, one output line per input line, gluing a word to the
// one before it with '_' when the bigram scores above the threshold. A word
// that was glued cannot start another phrase. It returns the number of words
// written.
func (m *Model) Join(r io.Reader, w io.Writer) (int64, error) {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	var pa, pb, pab, n int64
	var word string
	lastKnown := false
	for {
		last := word
		var err error
		word, err = corpus.ReadWord(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, errors.Wrap(err, "join phrases")
		}
		if word == corpus.Sentinel {
			bw.WriteByte('\n')
			continue
		}
		n++
		oov := !lastKnown
		c, known := m.count(word)
		if known {
			pb = c
		} else {
			oov = true
		}
		lastKnown = known
		if c, ok := m.count(bigram(last, word)); ok {
			pab = c
		} else {
			oov = true
		}
		if pa < m.MinCount || pb < m.MinCount {
			oov = true
		}
		score := 0.
		if !oov {
			score = float64(pab-m.MinCount) / float64(pa) / float64(pb) * float64(m.TrainWords)
		}
		if score > m.Threshold {
			bw.WriteByte('_')
			pb = 0
		} else {
			bw.WriteByte(' ')
		}
		bw.WriteString(word)
		pa = pb
	}
	return n, errors.Wrap(bw.Flush(), "join phrases")
}

// JoinFiles is Join from the file at in to a new file at out
func (m *Model) JoinFiles(in, out string) (int64, error) {
	f, err := os.Open(in)
	if err != nil {
		return 0, errors.Wrapf(err, "training data file %s not found", in)
	}
	defer f.Close()
	o, err := os.Create(out)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot create %s", out)
	}
	n, err := m.Join(f, o)
	if cerr := o.Close(); err == nil {
		err = cerr
	}
	return n, err
}
