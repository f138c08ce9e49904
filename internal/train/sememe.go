package train

import (
	"math/rand"
	"runtime"
)

// sememeKeep is the chance a sememe the word does not carry is trained as a negative
const sememeKeep = 0.005

// sememe cycles over its slice of the target vocabulary until the barrier is
// released, fitting in+out of every HowNet word to its sememes. Like the lexicon
// aligner it visits a word before it first checks the barrier.
func (t *Trainer) sememe(shard int) {
	tl := t.Langs[Target]
	lo, hi := span(tl.Vocab.Len(), t.Cfg.Threads, shard)
	if lo >= hi || t.Sem.Sememes() == 0 {
		return
	}
	rng := rand.New(rand.NewSource(t.Cfg.Seed + int64(shard) + 1))
	var steps int64
	for w := lo; ; {
		if h := t.Link[w]; h != -1 {
			steps += t.fitSememes(w, int(h), rng)
		}
		if w++; w >= hi {
			w = lo
			runtime.Gosched()
		}
		if t.Barrier.Released() {
			break
		}
	}
	t.Stats.SememeSteps.Add(steps)
}

// fitSememes trains word w against every sememe it carries and a random few it
// does not, returning the number of updates
func (t *Trainer) fitSememes(w, h int, rng *rand.Rand) int64 {
	var steps int64
	entry := t.KB.HowNet[h]
	for a := 0; a < t.Sem.Sememes(); a++ {
		member := 0.0
		for _, s := range entry.Sememes {
			if int(s) == a {
				member = 1
				break
			}
		}
		if member == 0 && rng.Float64() > sememeKeep {
			continue
		}
		t.SememeUpdate(w, h, a, member)
		steps++
	}
	return steps
}

// SememeUpdate does one step of the word-sememe fit for target word w with HowNet
// entry h and sememe a; member is 1 when the word carries the sememe, else 0
func (t *Trainer) SememeUpdate(w, h, a int, member float64) {
	emb := t.Langs[Target].Emb
	sem := t.Sem
	e := t.Engine
	alpha := e.Alpha
	dim := emb.Dim
	l0, l1 := emb.Offset(w), a*dim

	delta := 0.0
	for c := 0; c < dim; c++ {
		delta += (emb.In[l0+c] + emb.Out[l0+c]) * (sem.Vec1[l1+c] + sem.Vec2[l1+c]) / 2
	}
	delta += sem.WordBias[h] + sem.SemeBias[a] - member

	for c := 0; c < dim; c++ {
		g := delta * 2 * (emb.In[l0+c] + emb.Out[l0+c]) / 2
		sem.Vec1[l1+c] -= e.ClipStep(alpha * g / sem.Ada1[l1+c])
		sem.Vec2[l1+c] -= e.ClipStep(alpha * g / sem.Ada2[l1+c])
		sem.Ada1[l1+c] += e.ClipStep(g * g)
		sem.Ada2[l1+c] += e.ClipStep(g * g)
	}

	sem.WordBias[h] -= e.ClipStep(2 * delta * alpha / sem.WordBiasAda[h])
	sem.WordBiasAda[h] += e.ClipStep(4 * delta * delta)
	sem.SemeBias[a] -= e.ClipStep(2 * delta * alpha / sem.SemeBiasAda[a])
	sem.SemeBiasAda[a] += e.ClipStep(4 * delta * delta)

	lambda := t.Cfg.SememeLambda
	for c := 0; c < dim; c++ {
		g := delta * 2 * (sem.Vec1[l1+c] + sem.Vec2[l1+c]) / 2
		emb.In[l0+c] -= e.ClipStep(alpha * g * lambda)
		emb.Out[l0+c] -= e.ClipStep(alpha * g * lambda)
	}
}
