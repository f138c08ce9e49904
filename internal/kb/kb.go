// Package kb reads the sememe inventory and the HowNet word-to-sememe annotations.
package kb

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/thunlp/CLSP/internal/corpus"
	"github.com/thunlp/CLSP/internal/msg"
)

// Entry is one HowNet word and the ids of its sememes
type Entry struct {
	Word    string
	Sememes []int32
}

// KB is the sememe list and the HowNet entries; both are read-only after loading
type KB struct {
	Sememes []string
	HowNet  []Entry

	sememeIDs map[string]int32
	entryIDs  map[string]int32
}

// ReadSememes builds a KB holding the sememe inventory of r, one token per sememe
func ReadSememes(r io.Reader) (*KB, error) {
	k := &KB{
		sememeIDs: make(map[string]int32),
		entryIDs:  make(map[string]int32),
	}
	br := bufio.NewReader(r)
	for {
		w, err := corpus.ReadWordNoEOL(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read sememes")
		}
		if _, dup := k.sememeIDs[w]; !dup {
			k.sememeIDs[w] = int32(len(k.Sememes))
		}
		k.Sememes = append(k.Sememes, w)
	}
	return k, nil
}

// SememeID returns the id of a sememe or -1
func (k *KB) SememeID(s string) int {
	if id, ok := k.sememeIDs[s]; ok {
		return int(id)
	}
	return -1
}

// EntryID returns the HowNet entry of a word or -1
func (k *KB) EntryID(w string) int {
	if id, ok := k.entryIDs[w]; ok {
		return int(id)
	}
	return -1
}

// ReadHowNet reads entries of a head word followed by its sememes up to the end
// of the line. The head may sit on a line of its own, in which case the sememes
// are the next line. Sememes missing from the inventory are ignored; a word
// listed twice keeps its first entry for lookups.
func (k *KB) ReadHowNet(r io.Reader, m *msg.MessageMaker) error {
	if m == nil {
		m = msg.Discard()
	}
	br := bufio.NewReader(r)
	unknown := 0
	for {
		head, err := corpus.ReadWordNoEOL(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "read hownet")
		}
		if head == corpus.Sentinel {
			continue
		}
		e := Entry{Word: head}
		for {
			w, err := corpus.ReadWord(br)
			if err == io.EOF || w == corpus.Sentinel {
				break
			}
			if err != nil {
				return errors.Wrapf(err, "read hownet entry %s", head)
			}
			if id := k.SememeID(w); id != -1 {
				e.Sememes = append(e.Sememes, int32(id))
			} else {
				unknown++
			}
		}
		if _, dup := k.entryIDs[head]; !dup {
			k.entryIDs[head] = int32(len(k.HowNet))
		}
		m.Emit(m.Sprintf("hownet: %s has %d sememes", head, len(e.Sememes)), msg.MSGTMI)
		k.HowNet = append(k.HowNet, e)
	}
	m.Emit(m.Sprintf("HowNet: %d entries over %d sememes; %d unknown sememe tokens ignored",
		len(k.HowNet), len(k.Sememes), unknown), msg.MSGNOTE)
	return nil
}

// Words is the part of a vocabulary Link needs
type Words interface {
	Word(id int) string
	Len() int
}

// Link maps every id of v to its HowNet entry, or -1
func (k *KB) Link(v Words) []int32 {
	link := make([]int32, v.Len())
	for i := range link {
		link[i] = int32(k.EntryID(v.Word(i)))
	}
	return link
}

// Load reads the sememe file then the HowNet file
func Load(sememePath, hownetPath string, m *msg.MessageMaker) (*KB, error) {
	f, err := os.Open(sememePath)
	if err != nil {
		return nil, errors.Wrapf(err, "sememe file %s not found", sememePath)
	}
	defer f.Close()
	k, err := ReadSememes(f)
	if err != nil {
		return nil, errors.Wrap(err, sememePath)
	}
	h, err := os.Open(hownetPath)
	if err != nil {
		return nil, errors.Wrapf(err, "hownet file %s not found", hownetPath)
	}
	defer h.Close()
	if err := k.ReadHowNet(h, m); err != nil {
		return nil, errors.Wrap(err, hownetPath)
	}
	return k, nil
}
