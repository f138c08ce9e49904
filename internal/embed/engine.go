package embed

import (
	"math"
	"sync/atomic"

	"github.com/thunlp/CLSP/internal/msg"
)

const (
	DefaultClip    = 0.1
	DefaultEpsilon = 1e-6
)

// Engine applies one gradient step to a row. Alpha is set by the coordinator
// before an epoch's goroutines start and is only read while they run.
type Engine struct {
	Alpha    float64
	Adaptive bool
	Clip     float64
	Epsilon  float64
	Msg      *msg.MessageMaker

	nans atomic.Int64
}

// NewEngine returns an AdaGrad engine (when adaptive) with the default clip and epsilon
func NewEngine(alpha float64, adaptive bool, m *msg.MessageMaker) *Engine {
	if m == nil {
		m = msg.Discard()
	}
	return &Engine{
		Alpha:    alpha,
		Adaptive: adaptive,
		Clip:     DefaultClip,
		Epsilon:  DefaultEpsilon,
		Msg:      m,
	}
}

// Update adds the clipped, weighted step for grad to vec[off:off+len(grad)].
// With Adaptive set, acc accumulates the squared gradients and scales the rate.
// Concurrent calls on the same range race; see the package doc.
func (e *Engine) Update(vec, acc []float64, off int, grad []float64, weight float64) {
	for a, g := range grad {
		var step float64
		if e.Adaptive {
			acc[off+a] += g * g
			step = e.Alpha / math.Max(e.Epsilon, math.Sqrt(acc[off+a])) * g
		} else {
			step = e.Alpha * g
		}
		if step != step {
			if e.nans.Add(1) == 1 {
				e.Msg.Emit("update step is NaN", msg.MSGWARN)
			}
		}
		step *= weight
		vec[off+a] += ClipTo(step, e.Clip)
	}
}

// NaNs is how many NaN steps Update has seen
func (e *Engine) NaNs() int64 {
	return e.nans.Load()
}

// ClipStep bounds a step by the engine's clip value
func (e *Engine) ClipStep(step float64) float64 {
	return ClipTo(step, e.Clip)
}

// ClipTo bounds step to [-c, c]; c <= 0 disables clipping
func ClipTo(step, c float64) float64 {
	if c <= 0 {
		return step
	}
	if step > c {
		return c
	}
	if step < -c {
		return -c
	}
	return step
}
