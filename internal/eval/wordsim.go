package eval

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/thunlp/CLSP/internal/vecio"
)

// SimResult is the Pearson correlation between human scores and cosines over
// the pairs whose words both have vectors
type SimResult struct {
	Score   float64
	Tested  int
	Skipped int
}

// WordSim reads "w1 w2 score" lines from r and correlates them with the cosine
// of the normalized vectors in v
func WordSim(v *vecio.Vectors, r io.Reader) (SimResult, error) {
	var res SimResult
	var gold, pred []float64
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		f := strings.Fields(sc.Text())
		if len(f) == 0 {
			continue
		}
		if len(f) != 3 {
			return res, errors.Errorf("line %d: want \"word word score\", got %q", line, sc.Text())
		}
		s, err := strconv.ParseFloat(f[2], 64)
		if err != nil {
			return res, errors.Wrapf(err, "line %d", line)
		}
		a, b := v.ID(f[0]), v.ID(f[1])
		if a == -1 || b == -1 {
			res.Skipped++
			continue
		}
		gold = append(gold, s)
		pred = append(pred, floats.Dot(v.Vec(a), v.Vec(b)))
		res.Tested++
	}
	if err := sc.Err(); err != nil {
		return res, errors.Wrap(err, "read word similarity pairs")
	}
	if res.Tested < 2 {
		return res, errors.Errorf("%d testable pairs, need at least 2", res.Tested)
	}
	res.Score = stat.Correlation(gold, pred, nil)
	return res, nil
}

// WordSimFile is WordSim on a file
func WordSimFile(v *vecio.Vectors, path string) (SimResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return SimResult{}, errors.Wrapf(err, "word similarity file %s not found", path)
	}
	defer f.Close()
	res, err := WordSim(v, f)
	return res, errors.Wrap(err, path)
}
