// Package vecio writes and reads text embedding dumps: a "<n> <dim>" header, then
// one "word v0 v1 ... " line per row.
package vecio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Source is anything that can be dumped row by row
type Source interface {
	Len() int
	Dim() int
	Label(i int) string
	Row(i int, dst []float64) []float64
}

// Write dumps every row of src with "%f " per component
func Write(w io.Writer, src Source) error {
	bw := bufio.NewWriter(w)
	n, dim := src.Len(), src.Dim()
	fmt.Fprintf(bw, "%d %d\n", n, dim)
	row := make([]float64, dim)
	for i := 0; i < n; i++ {
		bw.WriteString(src.Label(i))
		bw.WriteByte(' ')
		for _, x := range src.Row(i, row) {
			bw.WriteString(strconv.FormatFloat(x, 'f', 6, 64))
			bw.WriteByte(' ')
		}
		if err := bw.WriteByte('\n'); err != nil {
			return errors.Wrap(err, "write vectors")
		}
	}
	return errors.Wrap(bw.Flush(), "write vectors")
}

// WriteFile is Write on a new file
func WriteFile(path string, src Source) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %s", path)
	}
	if err := Write(f, src); err != nil {
		f.Close()
		return errors.Wrap(err, path)
	}
	return errors.Wrap(f.Close(), path)
}

// DumpPath fills a printf verb in pattern with the dump index; a pattern with
// no '%' is used as is
func DumpPath(pattern string, idx int) string {
	if !strings.Contains(pattern, "%") {
		return pattern
	}
	return fmt.Sprintf(pattern, idx)
}

// Vectors is a dump read back into memory
type Vectors struct {
	Dim   int
	Words []string
	Data  []float64
	index map[string]int
}

// Read parses a dump. Lines that do not carry exactly dim values (the header,
// truncated rows) are skipped. A word seen twice keeps its first row.
func Read(r io.Reader) (*Vectors, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<20), 1<<26)
	v := &Vectors{index: make(map[string]int)}
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, errors.Wrap(err, "read vectors")
		}
		return nil, errors.New("empty vector file")
	}
	head := strings.Fields(sc.Text())
	if len(head) != 2 {
		return nil, errors.Errorf("bad header %q", sc.Text())
	}
	dim, err := strconv.Atoi(head[1])
	if err != nil || dim <= 0 {
		return nil, errors.Errorf("bad dimension in header %q", sc.Text())
	}
	v.Dim = dim
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) != dim+1 {
			continue
		}
		if _, dup := v.index[f[0]]; dup {
			continue
		}
		row := make([]float64, dim)
		ok := true
		for c := 0; c < dim; c++ {
			if row[c], err = strconv.ParseFloat(f[c+1], 64); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		v.index[f[0]] = len(v.Words)
		v.Words = append(v.Words, f[0])
		v.Data = append(v.Data, row...)
	}
	return v, errors.Wrap(sc.Err(), "read vectors")
}

// ReadFile is Read on a file
func ReadFile(path string) (*Vectors, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "vector file %s not found", path)
	}
	defer f.Close()
	v, err := Read(f)
	return v, errors.Wrap(err, path)
}

func (v *Vectors) Len() int { return len(v.Words) }

// Vec is row i, sharing storage with v
func (v *Vectors) Vec(i int) []float64 {
	return v.Data[i*v.Dim : (i+1)*v.Dim]
}

// ID returns the row of word or -1
func (v *Vectors) ID(word string) int {
	if i, ok := v.index[word]; ok {
		return i
	}
	return -1
}

// Normalize scales every row to unit length and drops zero rows
func (v *Vectors) Normalize() {
	words := v.Words[:0]
	data := v.Data[:0]
	v.index = make(map[string]int, len(v.Words))
	for i, w := range v.Words {
		row := v.Data[i*v.Dim : (i+1)*v.Dim]
		n := floats.Norm(row, 2)
		if n == 0 {
			continue
		}
		floats.Scale(1/n, row)
		v.index[w] = len(words)
		words = append(words, w)
		data = append(data, row...)
	}
	v.Words = words
	v.Data = data
}

// Subset copies the rows whose word passes keep
func (v *Vectors) Subset(keep func(word string) bool) *Vectors {
	s := &Vectors{Dim: v.Dim, index: make(map[string]int)}
	for i, w := range v.Words {
		if !keep(w) {
			continue
		}
		s.index[w] = len(s.Words)
		s.Words = append(s.Words, w)
		s.Data = append(s.Data, v.Vec(i)...)
	}
	return s
}
