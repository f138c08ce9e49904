package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/thunlp/CLSP/internal/eval"
	"github.com/thunlp/CLSP/internal/msg"
	"github.com/thunlp/CLSP/internal/vecio"
)

type options struct {
	dict   string
	max    int
	seed   int64
	srcSim []string
	tgtSim []string
	debug  int
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		msg.New("compute-accuracy", 0, nil).Fatal(err)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "compute-accuracy <SOURCE VECTORS> <TARGET VECTORS>",
		Short: "Bilingual lexicon induction and word similarity scores of a pair of vector dumps",
		Long: "Precision@1 and @5 of translating dictionary words from the source space into the target space,\n" +
			"and the Pearson correlation of cosines with human similarity scores in each language",
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, out, o, args[0], args[1])
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.dict, "dict", "", "dictionary, one \"source<TAB>t1/t2/...\" per line")
	f.IntVar(&o.max, "max", 0, "test at most this many dictionary words (0 = all)")
	f.Int64Var(&o.seed, "seed", 1, "seed for the order of the tested words")
	f.StringSliceVar(&o.srcSim, "wordsim-source", nil, "source language \"w1 w2 score\" files")
	f.StringSliceVar(&o.tgtSim, "wordsim-target", nil, "target language \"w1 w2 score\" files")
	f.IntVar(&o.debug, "debug", 1, "debug mode: 0 warnings, 1 info, 2 debug")
	return cmd
}

func run(cmd *cobra.Command, out io.Writer, o options, srcPath, tgtPath string) error {
	m := msg.New("compute-accuracy", o.debug, cmd.ErrOrStderr())
	start := time.Now()
	src, err := load(srcPath)
	if err != nil {
		return err
	}
	tgt, err := load(tgtPath)
	if err != nil {
		return err
	}
	m.Timer("A", m.Sprintf("read %d source and %d target vectors", src.Len(), tgt.Len()), start, start)

	sims := []struct {
		v     *vecio.Vectors
		files []string
		name  string
	}{{src, o.srcSim, "Source"}, {tgt, o.tgtSim, "Target"}}
	for _, s := range sims {
		if len(s.files) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s WordSim Results:\n", s.name)
		for _, f := range s.files {
			r, err := eval.WordSimFile(s.v, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: Score: %f Tested Word Pairs: %d Skipped Word Pairs: %d\n",
				filepath.Base(f), r.Score, r.Tested, r.Skipped)
		}
	}

	if o.dict == "" {
		return nil
	}
	d, err := eval.ReadDictionaryFile(o.dict)
	if err != nil {
		return err
	}
	m.Emit(m.Sprintf("Dictionary Reading Complete and the number of source words is: %d", len(d)), msg.MSGNOTE)
	previous := time.Now()
	progress := func(r eval.BLIResult) {
		m.Emit(m.Sprintf("Have tested %d words, the P@1 is %f, the P@5 is %f", r.Tested, r.P1, r.P5), msg.MSGFYI)
	}
	r := eval.LexiconInduction(src, tgt, d, o.max, rand.New(rand.NewSource(o.seed)), progress)
	m.Timer("B", "lexicon induction", start, previous)
	fmt.Fprintf(out, "Bilingual Lexicon Induction Results:\n")
	fmt.Fprintf(out, "Test Words: %d P@1: %f P@5: %f\n", r.Tested, r.P1, r.P5)
	return nil
}

func load(path string) (*vecio.Vectors, error) {
	v, err := vecio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v.Normalize()
	return v, nil
}
