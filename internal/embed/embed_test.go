package embed

import (
	"math"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thunlp/CLSP/internal/msg"
)

func TestNewStoreInit(t *testing.T) {
	s, err := NewStore(50, 10, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, s.In, 500)
	for i := range s.In {
		assert.GreaterOrEqual(t, s.In[i], -0.05)
		assert.Less(t, s.In[i], 0.05)
		assert.Zero(t, s.Out[i])
		assert.Zero(t, s.InGrad[i])
		assert.Zero(t, s.OutGrad[i])
	}
	assert.Equal(t, 30, s.Offset(3))

	_, err = NewStore(0, 10, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestNewSememeStoreInit(t *testing.T) {
	s, err := NewSememeStore(3, 4, 5, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 3, s.Sememes())
	assert.Len(t, s.WordBias, 4)
	for _, a := range [][]float64{s.Ada1, s.Ada2, s.WordBiasAda, s.SemeBiasAda} {
		for _, x := range a {
			assert.Equal(t, 1.0, x)
		}
	}
	for _, x := range s.Vec1 {
		assert.Less(t, math.Abs(x), 0.1+1e-12)
	}
}

func TestAdaGradFirstStep(t *testing.T) {
	e := NewEngine(0.025, true, nil)
	vec := []float64{0, 0, 0}
	acc := []float64{0, 0, 0}

	e.Update(vec, acc, 0, []float64{0.5, -2, 0}, 1)
	// the first adaptive step is alpha*sign(g)
	assert.InDelta(t, 0.025, vec[0], 1e-12)
	assert.InDelta(t, -0.025, vec[1], 1e-12)
	assert.Zero(t, vec[2])
	assert.InDelta(t, 0.25, acc[0], 1e-12)
	assert.InDelta(t, 4, acc[1], 1e-12)

	e.Update(vec, acc, 0, []float64{0.5, 0, 0}, -1)
	want := 0.025 - 0.025/math.Sqrt(0.5)*0.5
	assert.InDelta(t, want, vec[0], 1e-12)
}

func TestPlainSGDStep(t *testing.T) {
	e := NewEngine(0.5, false, nil)
	vec := []float64{1, 1}
	e.Update(vec, nil, 0, []float64{0.1, -0.1}, 0.5)
	assert.InDelta(t, 1.025, vec[0], 1e-12)
	assert.InDelta(t, 0.975, vec[1], 1e-12)
}

func TestUpdateClipsEveryStep(t *testing.T) {
	e := NewEngine(10, false, nil)
	vec := make([]float64, 6)
	e.Update(vec, nil, 2, []float64{1, -1, 0.001, 1000}, 3)
	assert.Equal(t, []float64{0, 0, DefaultClip, -DefaultClip}, vec[:4])
	assert.InDelta(t, 0.03, vec[4], 1e-12)
	assert.Equal(t, DefaultClip, vec[5])

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		before := r.Float64()
		v := []float64{before}
		acc := []float64{r.Float64()}
		e.Adaptive = i%2 == 0
		e.Update(v, acc, 0, []float64{r.NormFloat64() * 100}, r.NormFloat64()*10)
		assert.LessOrEqual(t, math.Abs(v[0]-before), DefaultClip+1e-12)
	}
}

func TestNaNStepIsCountedAndLoggedOnce(t *testing.T) {
	m := msg.Discard()
	hook := test.NewLocal(m.Log)
	e := NewEngine(0.1, false, m)
	vec := []float64{0, 0}
	e.Update(vec, nil, 0, []float64{math.NaN(), math.NaN()}, 1)

	assert.EqualValues(t, 2, e.NaNs())
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.True(t, math.IsNaN(vec[0]))
}

func TestClipTo(t *testing.T) {
	assert.Equal(t, 0.1, ClipTo(3, 0.1))
	assert.Equal(t, -0.1, ClipTo(-3, 0.1))
	assert.Equal(t, 0.05, ClipTo(0.05, 0.1))
	assert.Equal(t, 3.0, ClipTo(3, 0))
}

func TestFootprint(t *testing.T) {
	f := Footprint{VocabSizes: []int{10, 20}, Dim: 4, Sememes: 2, Entries: 3, TableSize: 100}
	assert.EqualValues(t, 32*40+400+32*80+400+32*8+16*5, f.Bytes())
	_, err := CheckMemory(Footprint{VocabSizes: []int{1}, Dim: 1})
	assert.NoError(t, err)
}
