// Package lexicon loads the seed bilingual dictionary as pairs of vocabulary ids.
package lexicon

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/thunlp/CLSP/internal/corpus"
	"github.com/thunlp/CLSP/internal/msg"
)

// Vocab is the part of a vocabulary the lexicon needs
type Vocab interface {
	Lookup(word string) int
	Len() int
}

// Pair is a source id and a target id known to be translations
type Pair struct {
	Src, Tgt int32
}

// Lexicon is the ordered pair list plus per-language membership. The first pair
// is always the sentinel pair (0,0), so id 0 is a member on both sides.
type Lexicon struct {
	Pairs []Pair
	InSrc []bool
	InTgt []bool
}

func newLexicon(srcLen, tgtLen int) *Lexicon {
	lx := &Lexicon{
		InSrc: make([]bool, srcLen),
		InTgt: make([]bool, tgtLen),
	}
	lx.add(0, 0)
	return lx
}

func (lx *Lexicon) add(s, t int) {
	lx.Pairs = append(lx.Pairs, Pair{Src: int32(s), Tgt: int32(t)})
	lx.InSrc[s] = true
	lx.InTgt[t] = true
}

func (lx *Lexicon) Len() int {
	return len(lx.Pairs)
}

// Load reads the two word lists in lockstep until the shorter one ends. A pair with a
// word missing from either vocabulary is skipped.
func Load(src, tgt io.Reader, sv, tv Vocab, m *msg.MessageMaker) (*Lexicon, error) {
	if m == nil {
		m = msg.Discard()
	}
	lx := newLexicon(sv.Len(), tv.Len())
	b0 := bufio.NewReader(src)
	b1 := bufio.NewReader(tgt)
	skipped := 0
	for {
		w0, err0 := corpus.ReadWordNoEOL(b0)
		w1, err1 := corpus.ReadWordNoEOL(b1)
		if err0 == io.EOF || err1 == io.EOF {
			break
		}
		if err0 != nil {
			return nil, errors.Wrap(err0, "read source lexicon")
		}
		if err1 != nil {
			return nil, errors.Wrap(err1, "read target lexicon")
		}
		i0, i1 := sv.Lookup(w0), tv.Lookup(w1)
		if i0 == -1 || i1 == -1 {
			skipped++
			m.Emit(m.Sprintf("lexicon pair skipped: %s %s", w0, w1), msg.MSGPEEK)
			continue
		}
		lx.add(i0, i1)
	}
	m.Emit(m.Sprintf("Lexicon size (including %s): %d; %d pairs skipped", corpus.Sentinel, lx.Len(), skipped), msg.MSGNOTE)
	return lx, nil
}

// LoadFiles opens both lexicon files and calls Load
func LoadFiles(srcPath, tgtPath string, sv, tv Vocab, m *msg.MessageMaker) (*Lexicon, error) {
	f0, err := os.Open(srcPath)
	if err != nil {
		return nil, errors.Wrapf(err, "lexicon file %s not found", srcPath)
	}
	defer f0.Close()
	f1, err := os.Open(tgtPath)
	if err != nil {
		return nil, errors.Wrapf(err, "lexicon file %s not found", tgtPath)
	}
	defer f1.Close()
	return Load(f0, f1, sv, tv, m)
}
