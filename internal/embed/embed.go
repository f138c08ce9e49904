// Package embed holds the shared parameter matrices and the per-parameter
// update rule every trainer writes through.
//
// The matrices are written by many goroutines at once without locks. Rows may
// see torn or lost updates; training tolerates this. Do not run the engine under
// the race detector.
package embed

import (
	"math/rand"

	"github.com/pkg/errors"
)

// Store is one language's parameters: input vectors, output vectors and the
// AdaGrad accumulators of each, flat with a row per vocabulary id
type Store struct {
	Dim     int
	Words   int
	In      []float64
	Out     []float64
	InGrad  []float64
	OutGrad []float64
}

// NewStore allocates vocabSize rows of dim floats. In is uniform in
// [-0.5/dim, 0.5/dim); Out and the accumulators start at zero.
func NewStore(vocabSize, dim int, rng *rand.Rand) (*Store, error) {
	if vocabSize <= 0 || dim <= 0 {
		return nil, errors.Errorf("cannot allocate %d x %d embeddings", vocabSize, dim)
	}
	n := vocabSize * dim
	s := &Store{
		Dim:     dim,
		Words:   vocabSize,
		In:      make([]float64, n),
		Out:     make([]float64, n),
		InGrad:  make([]float64, n),
		OutGrad: make([]float64, n),
	}
	for i := range s.In {
		s.In[i] = (rng.Float64() - 0.5) / float64(dim)
	}
	return s, nil
}

// Offset is where row id starts
func (s *Store) Offset(id int) int {
	return id * s.Dim
}

// Sum writes In+Out of row id into dst and returns it
func (s *Store) Sum(id int, dst []float64) []float64 {
	o := s.Offset(id)
	for c := 0; c < s.Dim; c++ {
		dst[c] = s.In[o+c] + s.Out[o+c]
	}
	return dst
}

// SememeStore holds two vectors per sememe, a bias per HowNet entry and per sememe,
// and an accumulator for each of them
type SememeStore struct {
	Dim         int
	Vec1, Vec2  []float64
	Ada1, Ada2  []float64
	WordBias    []float64
	WordBiasAda []float64
	SemeBias    []float64
	SemeBiasAda []float64
}

// NewSememeStore draws every value uniform in [-0.5/dim, 0.5/dim) and sets every
// accumulator to 1
func NewSememeStore(sememes, entries, dim int, rng *rand.Rand) (*SememeStore, error) {
	if sememes < 0 || entries < 0 || dim <= 0 {
		return nil, errors.Errorf("cannot allocate %d sememes x %d dims", sememes, dim)
	}
	s := &SememeStore{
		Dim:         dim,
		Vec1:        make([]float64, sememes*dim),
		Vec2:        make([]float64, sememes*dim),
		Ada1:        make([]float64, sememes*dim),
		Ada2:        make([]float64, sememes*dim),
		WordBias:    make([]float64, entries),
		WordBiasAda: make([]float64, entries),
		SemeBias:    make([]float64, sememes),
		SemeBiasAda: make([]float64, sememes),
	}
	u := func() float64 { return (rng.Float64() - 0.5) / float64(dim) }
	for a := range s.WordBias {
		s.WordBias[a] = u()
		s.WordBiasAda[a] = 1
	}
	for a := range s.SemeBias {
		s.SemeBias[a] = u()
		s.SemeBiasAda[a] = 1
		for b := 0; b < dim; b++ {
			s.Vec1[a*dim+b] = u()
			s.Vec2[a*dim+b] = u()
			s.Ada1[a*dim+b] = 1
			s.Ada2[a*dim+b] = 1
		}
	}
	return s, nil
}

// Sememes is the number of sememe rows
func (s *SememeStore) Sememes() int {
	return len(s.SemeBias)
}

// Sum writes Vec1+Vec2 of sememe a into dst and returns it
func (s *SememeStore) Sum(a int, dst []float64) []float64 {
	o := a * s.Dim
	for c := 0; c < s.Dim; c++ {
		dst[c] = s.Vec1[o+c] + s.Vec2[o+c]
	}
	return dst
}
