package train

import (
	"runtime"

	"github.com/thunlp/CLSP/internal/embed"
)

// lexiconYield is how many pair updates an aligner does between yields
const lexiconYield = 64

// LexiconUpdate pulls source row s and target row g together, input vectors
// first, then output vectors
func LexiconUpdate(e *embed.Engine, src, tgt *embed.Store, s, g int, lambda float64, delta []float64) {
	dim := src.Dim
	l1, l2 := src.Offset(s), tgt.Offset(g)
	for c := 0; c < dim; c++ {
		delta[c] = src.In[l1+c] - tgt.In[l2+c]
	}
	e.Update(src.In, src.InGrad, l1, delta, -lambda)
	e.Update(tgt.In, tgt.InGrad, l2, delta, lambda)
	for c := 0; c < dim; c++ {
		delta[c] = src.Out[l1+c] - tgt.Out[l2+c]
	}
	e.Update(src.Out, src.OutGrad, l1, delta, -lambda)
	e.Update(tgt.Out, tgt.OutGrad, l2, delta, lambda)
}

// lexicon cycles over its slice of the seed pairs until the barrier is released.
// A pair is updated before the barrier is first checked, so every started
// aligner does at least one step.
func (t *Trainer) lexicon(shard int) {
	lo, hi := span(t.Lex.Len(), t.Cfg.Threads, shard)
	if lo >= hi {
		return
	}
	src, tgt := t.Langs[Source].Emb, t.Langs[Target].Emb
	delta := make([]float64, t.Cfg.Size)
	var steps int64
	for e := lo; ; {
		p := t.Lex.Pairs[e]
		LexiconUpdate(t.Engine, src, tgt, int(p.Src), int(p.Tgt), t.Cfg.LexiconLambda, delta)
		if steps++; steps%lexiconYield == 0 {
			runtime.Gosched()
		}
		if e++; e >= hi {
			e = lo
		}
		if t.Barrier.Released() {
			break
		}
	}
	t.Stats.LexiconSteps.Add(steps)
}
