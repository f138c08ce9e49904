// Package vocab holds the per-language vocabulary: an id-ordered word list with
// counts, and the hash index that maps words back to ids.
package vocab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/thunlp/CLSP/internal/corpus"
)

const (
	// NotFound is what Lookup returns for an unknown word
	NotFound = -1
	// DefaultIndexSize allows 30 * 0.7 = 21M words in the vocabulary
	DefaultIndexSize = 30000000
	// pruneLoad triggers Prune while learning from a corpus
	pruneLoad = 0.7
	// growLoad triggers an index resize on Insert
	growLoad = 0.9
)

// Word is a vocabulary entry; its id is its position in the store
type Word struct {
	Text  string
	Count int64
}

type byCount []Word

func (me byCount) Len() int           { return len(me) }
func (me byCount) Less(i, j int) bool { return me[i].Count > me[j].Count }
func (me byCount) Swap(i, j int)      { me[i], me[j] = me[j], me[i] }

// Store is one language's vocabulary. It is built single-threaded and is
// read-only once training starts.
type Store struct {
	words      []Word
	index      *Index
	minReduce  int64
	trainWords int64
	fileSize   int64
}

// NewStore returns an empty store; the sentinel is added by Learn or ReadVocab
func NewStore(indexSize int) *Store {
	if indexSize <= 0 {
		indexSize = DefaultIndexSize
	}
	return &Store{
		index:     newIndex(indexSize),
		minReduce: 1,
	}
}

// Lookup returns the id of word or NotFound. Words are compared after
// truncation to MaxString-1 bytes, as Insert stores them.
func (s *Store) Lookup(word string) int {
	return s.index.find(clip(word), s.words)
}

// Insert appends word with count 0 and returns its id
func (s *Store) Insert(word string) int {
	word = clip(word)
	if float64(len(s.words)+1) > float64(s.index.Size())*growLoad {
		s.index = newIndex(s.index.Size() * 2)
		s.index.rebuild(s.words)
	}
	s.words = append(s.words, Word{Text: word})
	id := len(s.words) - 1
	s.index.put(word, id)
	return id
}

// Prune removes every entry but the sentinel with a count <= the current
// threshold, then raises the threshold for the next call
func (s *Store) Prune() {
	kept := s.words[:0]
	for i, w := range s.words {
		if i == 0 || w.Count > s.minReduce {
			kept = append(kept, w)
		}
	}
	clearTail(s.words, len(kept))
	s.words = kept
	s.index.rebuild(s.words)
	s.minReduce++
}

// Finalize sorts by descending count with the sentinel pinned at id 0, drops
// entries under minCount and recomputes TrainWords. Ids are stable afterwards.
func (s *Store) Finalize(minCount int64) {
	if len(s.words) > 1 {
		sort.Stable(byCount(s.words[1:]))
	}
	kept := s.words[:0]
	s.trainWords = 0
	for i, w := range s.words {
		if i != 0 && w.Count < minCount {
			continue
		}
		kept = append(kept, w)
		s.trainWords += w.Count
	}
	clearTail(s.words, len(kept))
	s.words = kept
	s.index.rebuild(s.words)
}

func clip(word string) string {
	if len(word) >= corpus.MaxString {
		return word[:corpus.MaxString-1]
	}
	return word
}

func clearTail(w []Word, from int) {
	for i := from; i < len(w); i++ {
		w[i] = Word{}
	}
}

func (s *Store) Len() int           { return len(s.words) }
func (s *Store) Word(id int) string { return s.words[id].Text }
func (s *Store) Count(id int) int64 { return s.words[id].Count }

// TrainWords is the total count of the finalized vocabulary
func (s *Store) TrainWords() int64 { return s.trainWords }

// FileSize is the number of corpus bytes the vocabulary was learned from
func (s *Store) FileSize() int64 { return s.fileSize }

// SetFileSize records the corpus size when the vocabulary comes from a file
func (s *Store) SetFileSize(n int64) { s.fileSize = n }

// MinReduce is the current prune threshold
func (s *Store) MinReduce() int64 { return s.minReduce }

// Learn counts the tokens of r. When earlyStop > 0 only the first earlyStop
// tokens are counted. It returns the number of tokens read and the number of
// bytes consumed. The caller finalizes.
func (s *Store) Learn(r io.Reader, earlyStop int64, progress func(tokens int64)) (int64, int64, error) {
	cr := &countingReader{r: r}
	br := bufio.NewReader(cr)
	s.Reset()

	var tokens int64
	for {
		w, err := corpus.ReadWord(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return tokens, cr.n - int64(br.Buffered()), errors.Wrap(err, "learn vocabulary")
		}
		tokens++
		if earlyStop > 0 && tokens > earlyStop {
			break
		}
		if progress != nil && tokens%100000 == 0 {
			progress(tokens)
		}
		s.Add(w)
	}
	return tokens, cr.n - int64(br.Buffered()), nil
}

// Reset empties the store down to the sentinel
func (s *Store) Reset() {
	s.words = s.words[:0]
	s.index.clear()
	s.Insert(corpus.Sentinel)
}

// Add counts one occurrence of word, inserting it when new. It prunes rare
// words once the index passes its load limit, so ids are not stable until
// Finalize.
func (s *Store) Add(word string) {
	id := s.Lookup(word)
	if id == NotFound {
		id = s.Insert(word)
	}
	s.words[id].Count++
	if float64(len(s.words)) > float64(s.index.Size())*pruneLoad {
		s.Prune()
	}
}

// LearnFile learns from the corpus at path and records how many bytes were read
func (s *Store) LearnFile(path string, earlyStop int64, progress func(tokens int64)) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "training data file %s not found", path)
	}
	defer f.Close()
	tokens, consumed, err := s.Learn(f, earlyStop, progress)
	if err != nil {
		return tokens, errors.Wrap(err, path)
	}
	s.fileSize = consumed
	return tokens, nil
}

// ReadVocab loads "word count" lines. The sentinel always takes id 0; a "</s>"
// line only sets its count. The caller finalizes.
func (s *Store) ReadVocab(r io.Reader) error {
	sc := bufio.NewScanner(r)
	s.Reset()
	line := 0
	for sc.Scan() {
		line++
		f := strings.Fields(sc.Text())
		if len(f) == 0 {
			continue
		}
		if len(f) != 2 {
			return errors.Errorf("line %d: want \"word count\", got %q", line, sc.Text())
		}
		c, err := strconv.ParseInt(f[1], 10, 64)
		if err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
		id := s.Lookup(f[0])
		if id == NotFound {
			id = s.Insert(f[0])
		}
		s.words[id].Count += c
	}
	return errors.Wrap(sc.Err(), "read vocabulary")
}

// ReadVocabFile is ReadVocab on a file
func (s *Store) ReadVocabFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "vocabulary file %s not found", path)
	}
	defer f.Close()
	return errors.Wrap(s.ReadVocab(f), path)
}

// SaveVocab writes "word count" lines in id order
func (s *Store) SaveVocab(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, x := range s.words {
		if _, err := fmt.Fprintf(bw, "%s %d\n", x.Text, x.Count); err != nil {
			return errors.Wrap(err, "save vocabulary")
		}
	}
	return errors.Wrap(bw.Flush(), "save vocabulary")
}

// SaveVocabFile is SaveVocab on a new file
func (s *Store) SaveVocabFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %s", path)
	}
	if err := s.SaveVocab(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
