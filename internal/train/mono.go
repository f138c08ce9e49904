package train

import (
	"runtime"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/thunlp/CLSP/internal/corpus"
	"github.com/thunlp/CLSP/internal/msg"
)

// maxIdleRewinds stops a shard that keeps rewinding without training a word
const maxIdleRewinds = 3

// mono trains one shard of one language until the language has done its share
// of the epoch's updates, or the early stop point is reached
func (t *Trainer) mono(task Task) error {
	l := t.Langs[task.Lang]
	v := l.Vocab
	threads := int64(t.Cfg.Threads)
	start := v.FileSize() / threads * int64(task.Shard)

	rd, err := corpus.OpenShard(l.Corpus, start, v)
	if err != nil {
		return err
	}
	defer rd.Close()

	dim := t.Cfg.Size
	neu1 := make([]float64, dim)
	neu1e := make([]float64, dim)
	delta := make([]float64, dim)
	sen := make([]int32, 0, corpus.MaxSentenceLength)
	r := lcg(task.Shard)

	keep := func(int32) bool { return true }
	if t.Cfg.Sample > 0 {
		tw := v.TrainWords()
		keep = func(id int32) bool {
			th := SubsampleThreshold(v.Count(int(id)), t.Cfg.Sample, tw)
			return float64(r.next()&0xFFFF)/65536 <= th
		}
	}

	var wordCount, lastWordCount, trained int64
	var idle int
	limit := t.epochWords / 2
	perShard := v.TrainWords() / threads
	pos := 0

	for {
		if wordCount-lastWordCount > 10000 {
			t.words.Add(wordCount - lastWordCount)
			lastWordCount = wordCount
			t.progress()
		}
		if len(sen) == 0 {
			// yield between sentences so the aligners get the CPU when
			// goroutines outnumber cores
			runtime.Gosched()
			if sen, err = rd.Next(sen, keep); err != nil {
				return errors.Wrapf(err, "%s shard %d", l.Corpus, task.Shard)
			}
			wordCount += int64(len(sen))
			pos = 0
		}
		if l.updates.Load() > limit {
			break
		}
		if rd.EOF() || wordCount > perShard {
			t.words.Add(wordCount - lastWordCount)
			if trained == 0 {
				idle++
				if idle >= maxIdleRewinds {
					t.Stats.IdleShards.Add(1)
					t.Msg.Emit(t.Msg.Sprintf("%s shard %d yields no trainable words; stopping it", l.Name, task.Shard), msg.MSGWARN)
					break
				}
			} else {
				idle = 0
			}
			trained, wordCount, lastWordCount = 0, 0, 0
			sen = sen[:0]
			if err := rd.Rewind(); err != nil {
				return err
			}
			continue
		}
		if t.Cfg.EarlyStop > 0 && t.words.Load() > t.Cfg.EarlyStop {
			t.Msg.Emit(t.Msg.Sprintf("EARLY STOP point reached (%s shard %d)", l.Name, task.Shard), msg.MSGFYI)
			break
		}
		if len(sen) == 0 {
			continue
		}

		if t.Cfg.CBOW {
			t.cbow(task.Lang, sen, pos, &r, neu1, neu1e, delta)
		} else {
			t.skipGram(task.Lang, sen, pos, &r, neu1e, delta)
		}
		trained++
		u := l.updates.Add(1)
		if u%t.maxTrainWords == 0 {
			l.epoch.Add(1)
		}
		if t.dumpEvery > 0 && u%t.dumpEvery == 0 {
			if err := t.dump(task.Lang); err != nil {
				return err
			}
		}
		pos++
		if pos >= len(sen) {
			sen = sen[:0]
		}
	}
	return nil
}

// negative draws the target of sample d: the centre word for d == 0, else a
// table draw. ok is false when a draw hits the centre word.
func (t *Trainer) negative(lang int, d int, word int32, r *lcg) (target int32, label float64, ok bool) {
	if d == 0 {
		return word, 1, true
	}
	l := t.Langs[lang]
	next := r.next()
	target = l.Table.At(next >> 16)
	if target == 0 {
		target = int32(next%uint64(l.Vocab.Len()-1)) + 1
	}
	if target == word {
		return 0, 0, false
	}
	return target, 0, true
}

func (t *Trainer) skipGram(lang int, sen []int32, pos int, r *lcg, neu1e, delta []float64) {
	emb := t.Langs[lang].Emb
	dim, window := emb.Dim, t.Cfg.Window
	word := sen[pos]
	b := int(r.next() % uint64(window))
	for a := b; a < window*2+1-b; a++ {
		if a == window {
			continue
		}
		c := pos - window + a
		if c < 0 || c >= len(sen) {
			continue
		}
		l1 := emb.Offset(int(sen[c]))
		in := emb.In[l1 : l1+dim]
		for i := range neu1e {
			neu1e[i] = 0
		}
		for d := 0; d < t.Cfg.Negative+1; d++ {
			target, label, ok := t.negative(lang, d, word, r)
			if !ok {
				continue
			}
			l2 := emb.Offset(int(target))
			out := emb.Out[l2 : l2+dim]
			g := gradient(floats.Dot(in, out), label)
			floats.AddScaled(neu1e, g, out)
			floats.ScaleTo(delta, g, in)
			t.Engine.Update(emb.Out, emb.OutGrad, l2, delta, 1)
		}
		t.Engine.Update(emb.In, emb.InGrad, l1, neu1e, 1)
	}
}

func (t *Trainer) cbow(lang int, sen []int32, pos int, r *lcg, neu1, neu1e, delta []float64) {
	emb := t.Langs[lang].Emb
	dim, window := emb.Dim, t.Cfg.Window
	word := sen[pos]
	b := int(r.next() % uint64(window))
	for i := range neu1 {
		neu1[i] = 0
		neu1e[i] = 0
	}
	cw := 0
	for a := b; a < window*2+1-b; a++ {
		if a == window {
			continue
		}
		c := pos - window + a
		if c < 0 || c >= len(sen) {
			continue
		}
		l1 := emb.Offset(int(sen[c]))
		floats.Add(neu1, emb.In[l1:l1+dim])
		cw++
	}
	if cw == 0 {
		return
	}
	floats.Scale(1/float64(cw), neu1)
	for d := 0; d < t.Cfg.Negative+1; d++ {
		target, label, ok := t.negative(lang, d, word, r)
		if !ok {
			continue
		}
		l2 := emb.Offset(int(target))
		out := emb.Out[l2 : l2+dim]
		g := gradient(floats.Dot(neu1, out), label)
		floats.AddScaled(neu1e, g, out)
		floats.ScaleTo(delta, g, neu1)
		t.Engine.Update(emb.Out, emb.OutGrad, l2, delta, 1)
	}
	for a := b; a < window*2+1-b; a++ {
		if a == window {
			continue
		}
		c := pos - window + a
		if c < 0 || c >= len(sen) {
			continue
		}
		t.Engine.Update(emb.In, emb.InGrad, emb.Offset(int(sen[c])), neu1e, 1)
	}
}

// progress logs the state of the epoch at debug level
func (t *Trainer) progress() {
	if !t.Msg.Enabled(msg.MSGPEEK) {
		return
	}
	done := t.words.Load()
	secs := time.Since(t.start).Seconds() + 1e-9
	t.Msg.Emit(t.Msg.Sprintf("Alpha: %f  Progress: %.2f%%  (epoch %d) Updates (L1: %.2fM, L2: %.2fM) Words/sec: %.2fK",
		t.Engine.Alpha,
		float64(done)/float64(t.epochWords+1)*100,
		t.Langs[Source].epoch.Load(),
		float64(t.Langs[Source].Updates())/1e6,
		float64(t.Langs[Target].Updates())/1e6,
		float64(done)/secs/1000), msg.MSGPEEK)
}
