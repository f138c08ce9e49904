package eval

import (
	"bufio"
	"cmp"
	"io"
	"math"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"

	"github.com/thunlp/CLSP/internal/vecio"
)

const (
	// DefaultK is how many source neighbours vote for a target word's sememes
	DefaultK = 100
	// DefaultDecay weighs the vote of the neighbour at rank r by Decay^r
	DefaultDecay = 0.8
	// DefaultSelect is the score a sememe needs to count as predicted for F1
	DefaultSelect = 0.5
)

// ReadSememeList reads "en|zh" lines; the whole line names the sememe
func ReadSememeList(r io.Reader) (map[string]bool, error) {
	known := make(map[string]bool)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !strings.Contains(line, "|") {
			return nil, errors.Errorf("sememe %q is not \"en|zh\"", line)
		}
		known[line] = true
	}
	return known, errors.Wrap(sc.Err(), "read sememe list")
}

// ReadHowNet reads "word<TAB>{a,b};{c}" lines, keeping sememes in known. Words
// left with no sememe are dropped.
func ReadHowNet(r io.Reader, known map[string]bool) (map[string][]string, error) {
	h := make(map[string][]string)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		word, senses, ok := strings.Cut(strings.TrimSpace(sc.Text()), "\t")
		if !ok {
			continue
		}
		set := make(map[string]bool)
		for _, sense := range strings.Split(senses, ";") {
			for _, s := range strings.Split(strings.Trim(sense, "{}"), ",") {
				if known[s] {
					set[s] = true
				}
			}
		}
		if len(set) > 0 {
			ss := maps.Keys(set)
			slices.Sort(ss)
			h[word] = ss
		}
	}
	return h, errors.Wrap(sc.Err(), "read hownet")
}

func openWith[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, errors.Wrapf(err, "%s not found", path)
	}
	defer f.Close()
	v, err := read(f)
	return v, errors.Wrap(err, path)
}

// ReadSememeListFile is ReadSememeList on a file
func ReadSememeListFile(path string) (map[string]bool, error) {
	return openWith(path, ReadSememeList)
}

// ReadHowNetFile is ReadHowNet on a file
func ReadHowNetFile(path string, known map[string]bool) (map[string][]string, error) {
	return openWith(path, func(r io.Reader) (map[string][]string, error) { return ReadHowNet(r, known) })
}

// Scored is a sememe and its collaborative filtering score
type Scored struct {
	Sememe string
	Score  float64
}

// Predictor ranks sememes for target words from the sememes of their nearest
// source words
type Predictor struct {
	Source *vecio.Vectors
	HowNet map[string][]string
	K      int
	Decay  float64
	Select float64
}

// Predict scores every sememe of the K source words nearest to q; the neighbour
// at rank r (from 1) adds cos*Decay^r to each of its sememes
func (p *Predictor) Predict(q []float64) ([]Neighbour, []Scored) {
	near := Nearest(p.Source, q, p.K)
	score := make(map[string]float64)
	for i, n := range near {
		w := n.Cos * math.Pow(p.Decay, float64(i+1))
		for _, s := range p.HowNet[n.Word] {
			score[s] += w
		}
	}
	ranked := make([]Scored, 0, len(score))
	for s, v := range score {
		ranked = append(ranked, Scored{s, v})
	}
	slices.SortFunc(ranked, func(a, b Scored) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Sememe, b.Sememe)
	})
	return near, ranked
}

// Selected is every sememe scoring above Select, or the best one when none does
func (p *Predictor) Selected(ranked []Scored) []string {
	var out []string
	for _, s := range ranked {
		if s.Score > p.Select {
			out = append(out, s.Sememe)
		}
	}
	if len(out) == 0 && len(ranked) > 0 {
		out = []string{ranked[0].Sememe}
	}
	return out
}

// AveragePrecision of the ranked prediction against the gold sememes
func AveragePrecision(gold []string, ranked []Scored) float64 {
	ap, hit := 0., 0
	for i, s := range ranked {
		if slices.Contains(gold, s.Sememe) {
			hit++
			ap += float64(hit) / float64(i+1)
		}
	}
	if hit == 0 {
		return 0
	}
	return ap / float64(hit)
}

// F1 of the selected sememes against the gold ones
func F1(gold, selected []string) float64 {
	tp := 0
	for _, s := range selected {
		if slices.Contains(gold, s) {
			tp++
		}
	}
	if tp == 0 {
		return 0
	}
	precision := float64(tp) / float64(len(selected))
	recall := float64(tp) / float64(len(gold))
	return 2 * precision * recall / (precision + recall)
}

// WordResult is the prediction for one target word
type WordResult struct {
	Word       string
	Neighbours []Neighbour
	Ranked     []Scored
	AP, F1     float64
}

// PredictionResult is the mean AP and F1 over the tested words
type PredictionResult struct {
	MAP, MeanF1 float64
	Words       []WordResult
}

// Evaluate predicts sememes for each target word in words that has a vector in
// tgt and a gold entry in gold
func (p *Predictor) Evaluate(tgt *vecio.Vectors, gold map[string][]string, words []string) PredictionResult {
	var res PredictionResult
	var aps, f1s []float64
	for _, w := range words {
		id := tgt.ID(w)
		g := gold[w]
		if id == -1 || len(g) == 0 {
			continue
		}
		near, ranked := p.Predict(tgt.Vec(id))
		wr := WordResult{
			Word:       w,
			Neighbours: near,
			Ranked:     ranked,
			AP:         AveragePrecision(g, ranked),
			F1:         F1(g, p.Selected(ranked)),
		}
		res.Words = append(res.Words, wr)
		aps = append(aps, wr.AP)
		f1s = append(f1s, wr.F1)
	}
	if len(aps) > 0 {
		res.MAP = stat.Mean(aps, nil)
		res.MeanF1 = stat.Mean(f1s, nil)
	}
	return res
}
