// Package train runs the joint training: monolingual skip-gram or CBOW for both
// languages, with lexicon, sememe and matching aligners writing to the same
// matrices until the monolingual goroutines finish.
package train

import (
	"sync/atomic"
	"time"

	"github.com/thunlp/CLSP/internal/config"
	"github.com/thunlp/CLSP/internal/embed"
	"github.com/thunlp/CLSP/internal/kb"
	"github.com/thunlp/CLSP/internal/lexicon"
	"github.com/thunlp/CLSP/internal/msg"
	"github.com/thunlp/CLSP/internal/unigram"
	"github.com/thunlp/CLSP/internal/vecio"
	"github.com/thunlp/CLSP/internal/vocab"
)

const (
	Source = 0
	Target = 1
)

// Task is what one monolingual goroutine trains: a language and a shard of its corpus
type Task struct {
	Lang  int
	Shard int
}

// Lang is everything one language owns
type Lang struct {
	Name   string
	Corpus string
	Output string
	Vocab  *vocab.Store
	Emb    *embed.Store
	Table  *unigram.Table

	updates atomic.Int64
	epoch   atomic.Int64
	dumps   atomic.Int64
}

// Updates is how many centre words the language has trained this epoch
func (l *Lang) Updates() int64 { return l.updates.Load() }

// Stats counts aligner activity over the whole run
type Stats struct {
	LexiconSteps atomic.Int64
	SememeSteps  atomic.Int64
	Matches      atomic.Int64
	IdleShards   atomic.Int64
}

// Trainer is the shared state of a training run
type Trainer struct {
	Cfg     *config.Config
	Msg     *msg.MessageMaker
	Langs   [2]*Lang
	Lex     *lexicon.Lexicon
	KB      *kb.KB
	Link    []int32
	Sem     *embed.SememeStore
	Engine  *embed.Engine
	Barrier Barrier
	Stats   Stats

	maxTrainWords int64
	epochWords    int64
	dumpEvery     int64
	words         atomic.Int64
	start         time.Time
}

// langView dumps a language as in+out per word
type langView struct {
	l *Lang
}

func (v langView) Len() int           { return v.l.Vocab.Len() }
func (v langView) Dim() int           { return v.l.Emb.Dim }
func (v langView) Label(i int) string { return v.l.Vocab.Word(i) }
func (v langView) Row(i int, dst []float64) []float64 {
	return v.l.Emb.Sum(i, dst)
}

// sememeView dumps vec1+vec2 per sememe
type sememeView struct {
	k *kb.KB
	s *embed.SememeStore
}

func (v sememeView) Len() int           { return len(v.k.Sememes) }
func (v sememeView) Dim() int           { return v.s.Dim }
func (v sememeView) Label(i int) string { return v.k.Sememes[i] }
func (v sememeView) Row(i int, dst []float64) []float64 {
	return v.s.Sum(i, dst)
}

// dump writes the current vectors of a language to its output pattern
func (t *Trainer) dump(lang int) error {
	l := t.Langs[lang]
	name := vecio.DumpPath(l.Output, int(l.dumps.Add(1)-1))
	t.Msg.Emit(t.Msg.Sprintf("Saving model to file: %s", name), msg.MSGNOTE)
	return vecio.WriteFile(name, langView{l})
}

func (t *Trainer) dumpSememes() error {
	t.Msg.Emit(t.Msg.Sprintf("Saving sememe embeddings to file: %s", t.Cfg.SaveSememe), msg.MSGNOTE)
	return vecio.WriteFile(t.Cfg.SaveSememe, sememeView{t.KB, t.Sem})
}
