package train

import "math"

const (
	expTableSize = 1000
	maxExp       = 6.
)

// sigmoidTable holds σ(x) for x in [-maxExp, maxExp) in expTableSize steps
var sigmoidTable = func() []float64 {
	t := make([]float64, expTableSize+1)
	for i := 0; i < expTableSize; i++ {
		e := math.Exp((float64(i)/float64(expTableSize)*2 - 1) * maxExp)
		t[i] = e / (e + 1)
	}
	return t
}()

// gradient is label - σ(f), saturating outside [-maxExp, maxExp)
func gradient(f float64, label float64) float64 {
	switch {
	case f >= maxExp:
		return label - 1
	case f < -maxExp:
		return label
	default:
		return label - sigmoidTable[int((f+maxExp)/maxExp/2*expTableSize)]
	}
}

// lcg is the linear congruential generator each training goroutine owns
type lcg uint64

func (r *lcg) next() uint64 {
	*r = *r*25214903917 + 11
	return uint64(*r)
}

// SubsampleThreshold is the keep probability of a word seen count times among
// trainWords when the sampling rate is sample; values above 1 mean always keep
func SubsampleThreshold(count int64, sample float64, trainWords int64) float64 {
	st := sample * float64(trainWords)
	c := float64(count)
	return (math.Sqrt(c/st) + 1) * st / c
}

// span is the half-open slice of n items goroutine i of t owns; the last one
// takes the remainder
func span(n, t, i int) (int, int) {
	lo := n / t * i
	hi := n / t * (i + 1)
	if i == t-1 {
		hi = n
	}
	return lo, hi
}
