package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/e-gun/wego/pkg/embedding"
	"github.com/e-gun/wego/pkg/search"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/thunlp/CLSP/internal/eval"
	"github.com/thunlp/CLSP/internal/msg"
	"github.com/thunlp/CLSP/internal/vecio"
)

const N int = 40 // number of closest words that will be shown

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		msg.New("distance", 0, nil).Fatal(err)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:           "distance <FILE>",
		Short:         "Interactive nearest neighbours over a text vector dump",
		Long:          "FILE contains word projections as written by clsp: a \"count dim\" header, then one word and its vector per line",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := vecio.ReadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "words: %d\nsize: %d\n", v.Len(), v.Dim)
			v.Normalize()
			s, err := newSearcher(v)
			if err != nil {
				return err
			}
			return loop(in, out, v, s, n)
		},
	}
	cmd.Flags().IntVarP(&n, "n", "n", N, "number of closest words that will be shown")
	return cmd
}

// newSearcher hands v to wego, which reads rows without the header line
func newSearcher(v *vecio.Vectors) (*search.Searcher, error) {
	var buf bytes.Buffer
	for i, w := range v.Words {
		buf.WriteString(w)
		for _, x := range v.Vec(i) {
			buf.WriteByte(' ')
			buf.WriteString(strconv.FormatFloat(x, 'f', 6, 64))
		}
		buf.WriteByte('\n')
	}
	embs, err := embedding.Load(&buf)
	if err != nil {
		return nil, errors.Wrap(err, "load embeddings")
	}
	s, err := search.New(embs...)
	return s, errors.Wrap(err, "build searcher")
}

func loop(in io.Reader, out io.Writer, v *vecio.Vectors, s *search.Searcher, n int) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "Enter word or sentence (EXIT to break): ")
		if !scanner.Scan() {
			break
		}
		st := strings.Fields(scanner.Text())
		if len(st) == 1 && st[0] == "EXIT" {
			break
		}
		if len(st) == 0 {
			continue
		}
		ids := make([]int, 0, len(st))
		for _, w := range st {
			id := v.ID(w)
			fmt.Fprintf(out, "\nWord: %s  Position in vocabulary: %d\n", w, id)
			if id == -1 {
				fmt.Fprintf(out, "Out of dictionary word!\n")
				break
			}
			ids = append(ids, id)
		}
		if len(ids) < len(st) {
			continue
		}
		fmt.Fprintf(out, "\n                                              Word       Cosine distance\n------------------------------------------------------------------------\n")
		if len(ids) == 1 {
			neighbors, err := s.SearchInternal(st[0], n)
			if err != nil {
				return errors.Wrapf(err, "search %s", st[0])
			}
			for _, nb := range neighbors {
				fmt.Fprintf(out, "%50s\t\t%f\n", nb.Word, nb.Similarity)
			}
			continue
		}
		// sentences: the normalized sum of their words, themselves excluded
		q := make([]float64, v.Dim)
		for _, id := range ids {
			floats.Add(q, v.Vec(id))
		}
		if norm := floats.Norm(q, 2); norm > 0 {
			floats.Scale(1/norm, q)
		}
		shown := 0
		for _, nb := range eval.Nearest(v, q, n+len(ids)) {
			if shown == n {
				break
			}
			if contains(st, nb.Word) {
				continue
			}
			fmt.Fprintf(out, "%50s\t\t%f\n", nb.Word, nb.Cos)
			shown++
		}
	}
	return scanner.Err()
}

func contains(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}
