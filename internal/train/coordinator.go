package train

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/cpu"
	"golang.org/x/sync/errgroup"

	"github.com/thunlp/CLSP/internal/config"
	"github.com/thunlp/CLSP/internal/embed"
	"github.com/thunlp/CLSP/internal/kb"
	"github.com/thunlp/CLSP/internal/lexicon"
	"github.com/thunlp/CLSP/internal/msg"
	"github.com/thunlp/CLSP/internal/unigram"
	"github.com/thunlp/CLSP/internal/vecio"
	"github.com/thunlp/CLSP/internal/vocab"
)

// Setup builds everything a run needs. With LearnVocabAndQuit set it stops
// after the vocabularies and the lexicon, and the returned Trainer only serves
// to report them.
func Setup(cfg *config.Config, m *msg.MessageMaker) (*Trainer, error) {
	if m == nil {
		m = msg.Discard()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	previous := start

	t := &Trainer{Cfg: cfg, Msg: m}
	files := [2]struct{ corpus, output, read, save, name string }{
		{cfg.MonoTrain1, cfg.Output1, cfg.ReadVocab1, cfg.SaveVocab1, "L1"},
		{cfg.MonoTrain2, cfg.Output2, cfg.ReadVocab2, cfg.SaveVocab2, "L2"},
	}
	for i, f := range files {
		v, err := buildVocab(cfg, f.corpus, f.read, m)
		if err != nil {
			return nil, err
		}
		m.Emit(m.Sprintf("%s vocab size: %d", f.name, v.Len()), msg.MSGNOTE)
		m.Emit(m.Sprintf("%s words in train file: %d", f.name, v.TrainWords()), msg.MSGNOTE)
		if f.save != "" {
			if err := v.SaveVocabFile(f.save); err != nil {
				return nil, err
			}
		}
		if v.Len() < 2 || v.TrainWords() == 0 {
			return nil, errors.Errorf("%s: no word survives min-count %d", f.corpus, cfg.MinCount)
		}
		t.Langs[i] = &Lang{Name: f.name, Corpus: f.corpus, Output: f.output, Vocab: v}
	}
	m.Timer("A", "vocabularies", start, previous)
	previous = time.Now()

	var err error
	sv, tv := t.Langs[Source].Vocab, t.Langs[Target].Vocab
	if t.Lex, err = lexicon.LoadFiles(cfg.Lexicon1, cfg.Lexicon2, sv, tv, m); err != nil {
		return nil, err
	}
	if cfg.LearnVocabAndQuit {
		return t, nil
	}

	for _, p := range []string{vecio.DumpPath(cfg.Output1, 0), vecio.DumpPath(cfg.Output2, 0), cfg.SaveSememe} {
		if err := checkDir(p); err != nil {
			return nil, err
		}
	}

	if t.KB, err = kb.Load(cfg.Sememe, cfg.HowNet, m); err != nil {
		return nil, err
	}
	t.Link = t.KB.Link(tv)
	m.Timer("B", "lexicon and knowledge base", start, previous)
	previous = time.Now()

	fp := embed.Footprint{
		VocabSizes: []int{sv.Len(), tv.Len()},
		Dim:        cfg.Size,
		Sememes:    len(t.KB.Sememes),
		Entries:    len(t.KB.HowNet),
		TableSize:  cfg.TableSize,
	}
	avail, err := embed.CheckMemory(fp)
	if err != nil {
		return nil, err
	}
	m.Emit(m.Sprintf("allocating %d of %d available bytes", fp.Bytes(), avail), msg.MSGFYI)
	if cores, err := cpu.Counts(true); err == nil && cores < cfg.Threads {
		m.Emit(m.Sprintf("%d threads requested per family on %d cores", cfg.Threads, cores), msg.MSGWARN)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	for _, l := range t.Langs {
		if l.Emb, err = embed.NewStore(l.Vocab.Len(), cfg.Size, rng); err != nil {
			return nil, err
		}
		l.Table = unigram.Build(l.Vocab.Count, l.Vocab.Len(), cfg.TableSize)
		if l.TrainWords() > t.maxTrainWords {
			t.maxTrainWords = l.TrainWords()
		}
	}
	if t.Sem, err = embed.NewSememeStore(len(t.KB.Sememes), len(t.KB.HowNet), cfg.Size, rng); err != nil {
		return nil, err
	}
	t.Engine = embed.NewEngine(cfg.Alpha, cfg.AdaGrad, m)

	t.epochWords = cfg.EpochWords(t.maxTrainWords)
	t.dumpEvery = cfg.DumpEvery
	if t.dumpEvery < 0 {
		t.dumpEvery = t.maxTrainWords / -t.dumpEvery
	}
	m.Timer("C", "parameters", start, previous)
	return t, nil
}

// TrainWords is the token count of the language's vocabulary
func (l *Lang) TrainWords() int64 { return l.Vocab.TrainWords() }

func buildVocab(cfg *config.Config, corpusPath, readPath string, m *msg.MessageMaker) (*vocab.Store, error) {
	v := vocab.NewStore(cfg.VocabHashSize)
	if readPath != "" {
		if err := v.ReadVocabFile(readPath); err != nil {
			return nil, err
		}
		fi, err := os.Stat(corpusPath)
		if err != nil {
			return nil, errors.Wrapf(err, "training data file %s not found", corpusPath)
		}
		v.SetFileSize(fi.Size())
	} else {
		progress := func(n int64) {
			if m.Enabled(msg.MSGTMI) {
				m.Emit(m.Sprintf("%s: %dK tokens", corpusPath, n/1000), msg.MSGTMI)
			}
		}
		if _, err := v.LearnFile(corpusPath, cfg.EarlyStop, progress); err != nil {
			return nil, err
		}
	}
	v.Finalize(cfg.MinCount)
	return v, nil
}

func checkDir(path string) error {
	dir := filepath.Dir(path)
	fi, err := os.Stat(dir)
	if err != nil {
		return errors.Wrapf(err, "output directory of %s", path)
	}
	if !fi.IsDir() {
		return errors.Errorf("output directory of %s is not a directory", path)
	}
	return nil
}

// Run trains every epoch. ctx is checked between epochs only; a running epoch
// always completes.
func (t *Trainer) Run(ctx context.Context) error {
	if t.Cfg.LearnVocabAndQuit {
		t.Msg.Emit("vocabularies learned; quitting", msg.MSGNOTE)
		return nil
	}
	epochs := t.Cfg.Epochs
	for e := 0; e < epochs; e++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "stopped before epoch %d", e+1)
		}
		if err := t.epoch(e); err != nil {
			return err
		}
	}
	t.Msg.Emit(t.Msg.Sprintf("lexicon steps: %d  sememe steps: %d  matches: %d  NaN steps: %d",
		t.Stats.LexiconSteps.Load(), t.Stats.SememeSteps.Load(), t.Stats.Matches.Load(), t.Engine.NaNs()), msg.MSGNOTE)
	return nil
}

func (t *Trainer) epoch(e int) error {
	cfg := t.Cfg
	epochs := cfg.Epochs
	t.Engine.Alpha = cfg.Alpha * float64(epochs-e) / float64(epochs)
	t.Barrier.Reset()
	t.words.Store(0)
	for _, l := range t.Langs {
		l.updates.Store(0)
	}
	t.start = time.Now()
	t.Msg.Emit(t.Msg.Sprintf("epoch %d of %d, alpha %f", e+1, epochs, t.Engine.Alpha), msg.MSGNOTE)

	// every aligner is running before the first monolingual goroutine starts
	var mono, align errgroup.Group
	var ready sync.WaitGroup
	aligner := func(f func()) {
		ready.Add(1)
		align.Go(func() error {
			ready.Done()
			f()
			return nil
		})
	}
	for shard := 0; shard < cfg.Threads; shard++ {
		s := shard
		aligner(func() { t.lexicon(s) })
		aligner(func() { t.sememe(s) })
		aligner(func() { t.matching(T2S, s) })
		aligner(func() { t.matching(S2T, s) })
	}
	ready.Wait()
	for lang := range t.Langs {
		for shard := 0; shard < cfg.Threads; shard++ {
			task := Task{Lang: lang, Shard: shard}
			mono.Go(func() error { return t.mono(task) })
		}
	}

	err := mono.Wait()
	t.Barrier.Release()
	_ = align.Wait()
	if err != nil {
		return err
	}
	t.Msg.Timer("E", t.Msg.Sprintf("epoch %d: L1 %d updates, L2 %d updates", e+1,
		t.Langs[Source].Updates(), t.Langs[Target].Updates()), t.start, t.start)

	for lang := range t.Langs {
		if err := t.dump(lang); err != nil {
			return err
		}
	}
	return t.dumpSememes()
}
