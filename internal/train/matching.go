package train

import (
	"math"
	"runtime"

	"gonum.org/v1/gonum/floats"

	"github.com/thunlp/CLSP/internal/embed"
	"github.com/thunlp/CLSP/internal/msg"
)

// Direction says which language a matching goroutine walks
type Direction int

const (
	S2T Direction = iota
	T2S
)

func (d Direction) String() string {
	if d == S2T {
		return "source - target"
	}
	return "target - source"
}

// MatchUpdate pulls source row s and target row g together using one delta,
// the difference of their in+out sums, for all four vectors
func MatchUpdate(e *embed.Engine, src, tgt *embed.Store, s, g int, weight float64, delta []float64) {
	dim := src.Dim
	l1, l2 := src.Offset(s), tgt.Offset(g)
	for c := 0; c < dim; c++ {
		delta[c] = src.In[l1+c] + src.Out[l1+c] - tgt.In[l2+c] - tgt.Out[l2+c]
	}
	e.Update(src.In, src.InGrad, l1, delta, -weight)
	e.Update(tgt.In, tgt.InGrad, l2, delta, weight)
	e.Update(src.Out, src.OutGrad, l1, delta, -weight)
	e.Update(tgt.Out, tgt.OutGrad, l2, delta, weight)
}

// nearest finds the row of other, skipping id 0 and members of skip, whose
// in+out sum has the highest cosine with own; best is -1 when nothing qualifies
func nearest(own []float64, other *embed.Store, skip []bool, buf []float64) (best int, cos float64) {
	best, cos = -1, -1
	on := floats.Norm(own, 2)
	if on == 0 {
		return -1, cos
	}
	for j := 1; j < other.Words; j++ {
		if skip[j] {
			continue
		}
		cand := other.Sum(j, buf)
		cn := floats.Norm(cand, 2)
		if cn == 0 {
			continue
		}
		c := floats.Dot(own, cand) / (on * cn)
		if c > cos && !math.IsNaN(c) {
			best, cos = j, c
		}
	}
	return best, cos
}

// matching cycles over its slice of one vocabulary until the barrier is
// released; every word outside the lexicon is pulled toward its nearest
// non-lexicon neighbour in the other language when their cosine passes the threshold
func (t *Trainer) matching(dir Direction, shard int) {
	ownLang, otherLang := Source, Target
	ownSkip, otherSkip := t.Lex.InSrc, t.Lex.InTgt
	if dir == T2S {
		ownLang, otherLang = Target, Source
		ownSkip, otherSkip = t.Lex.InTgt, t.Lex.InSrc
	}
	own, other := t.Langs[ownLang], t.Langs[otherLang]
	lo, hi := span(own.Vocab.Len(), t.Cfg.Threads, shard)
	if lo >= hi {
		return
	}
	dim := t.Cfg.Size
	sum := make([]float64, dim)
	buf := make([]float64, dim)
	delta := make([]float64, dim)
	trainWords := float64(own.Vocab.TrainWords())
	var matches int64

	for w := lo; ; {
		if !ownSkip[w] {
			best, cos := nearest(own.Emb.Sum(w, sum), other.Emb, otherSkip, buf)
			if best != -1 && cos > t.Cfg.Threshold {
				if t.Msg.Enabled(msg.MSGTMI) {
					t.Msg.Emit(t.Msg.Sprintf("%s - cos_sim: %s %s %f", dir, own.Vocab.Word(w), other.Vocab.Word(best), cos), msg.MSGTMI)
				}
				weight := t.Cfg.MatchingLambda * float64(own.Vocab.Count(w)) / trainWords
				s, g := w, best
				if dir == T2S {
					s, g = best, w
				}
				for m := 0; m < t.Cfg.MstepIterations; m++ {
					MatchUpdate(t.Engine, t.Langs[Source].Emb, t.Langs[Target].Emb, s, g, weight, delta)
				}
				matches++
			}
			runtime.Gosched()
		}
		if w++; w >= hi {
			w = lo
			runtime.Gosched()
		}
		if t.Barrier.Released() {
			break
		}
	}
	t.Stats.Matches.Add(matches)
}
