package corpus

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Lookup resolves a word to its vocabulary id, or -1
type Lookup interface {
	Lookup(word string) int
}

// SentenceReader streams sentences of vocabulary ids out of one shard of a corpus file.
// The shard starts at a byte offset and is read cyclically: Rewind goes back to that offset.
type SentenceReader struct {
	f     *os.File
	br    *bufio.Reader
	vocab Lookup
	start int64
	eof   bool
}

// OpenShard opens path and seeks to start
func OpenShard(path string, start int64, v Lookup) (*SentenceReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "training data file %s not found", path)
	}
	s := &SentenceReader{f: f, vocab: v, start: start}
	if err := s.Rewind(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// Rewind returns to the beginning of the shard
func (s *SentenceReader) Rewind() error {
	if _, err := s.f.Seek(s.start, io.SeekStart); err != nil {
		return errors.Wrapf(err, "seek to %d in %s", s.start, s.f.Name())
	}
	if s.br == nil {
		s.br = bufio.NewReader(s.f)
	} else {
		s.br.Reset(s.f)
	}
	s.eof = false
	return nil
}

// Next reads one sentence into buf[:0]. Unknown words are dropped; keep, when not nil,
// may discard known words (subsampling). Reading stops at the sentinel, at EOF, or
// after MaxSentenceLength kept words.
func (s *SentenceReader) Next(buf []int32, keep func(id int32) bool) ([]int32, error) {
	sen := buf[:0]
	for {
		w, err := ReadWord(s.br)
		if err == io.EOF {
			s.eof = true
			return sen, nil
		}
		if err != nil {
			return sen, errors.Wrap(err, "read sentence")
		}
		id := s.vocab.Lookup(w)
		if id == -1 {
			continue
		}
		if id == 0 {
			return sen, nil
		}
		if keep != nil && !keep(int32(id)) {
			continue
		}
		sen = append(sen, int32(id))
		if len(sen) >= MaxSentenceLength {
			return sen, nil
		}
	}
}

// EOF reports whether the last Next hit the end of the file
func (s *SentenceReader) EOF() bool {
	return s.eof
}

func (s *SentenceReader) Close() error {
	return s.f.Close()
}
