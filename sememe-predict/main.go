package main

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"

	"github.com/thunlp/CLSP/internal/eval"
	"github.com/thunlp/CLSP/internal/msg"
	"github.com/thunlp/CLSP/internal/vecio"
	"github.com/thunlp/CLSP/internal/vocab"
)

type options struct {
	sememes   string
	srcHowNet string
	tgtHowNet string
	tgtVocab  string
	results   string
	mode      int
	test      int
	k         int
	decay     float64
	sel       float64
	seed      int64
	debug     int
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		msg.New("sememe-predict", 0, nil).Fatal(err)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "sememe-predict <SOURCE VECTORS> <TARGET VECTORS>",
		Short: "Predict sememes of target words from the sememes of their nearest source words",
		Long: "Every target word with a gold HowNet entry is scored against the K nearest source words that\n" +
			"have one; the neighbour at rank r votes cos*decay^r for each of its sememes. Prints MAP and mean F1.",
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, out, o, args[0], args[1])
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.sememes, "sememes", "", "sememe list, one \"en|zh\" per line")
	f.StringVar(&o.srcHowNet, "hownet-source", "", "source language HowNet, \"word<TAB>{a,b};{c}\" per line")
	f.StringVar(&o.tgtHowNet, "hownet-target", "", "target language HowNet, same format")
	f.StringVar(&o.tgtVocab, "vocab-target", "", "target vocabulary (\"word count\" lines) for the frequency column")
	f.StringVar(&o.results, "results", "", "write per-word results to this file")
	f.IntVar(&o.mode, "mode", 1, "results detail: 1 scores per word, 2 also neighbours and sememe scores")
	f.IntVar(&o.test, "test", 0, "test at most this many target words (0 = all)")
	f.IntVar(&o.k, "k", eval.DefaultK, "nearest source words voting for each target word")
	f.Float64Var(&o.decay, "decay", eval.DefaultDecay, "rank decay of a neighbour's vote")
	f.Float64Var(&o.sel, "select", eval.DefaultSelect, "score a sememe needs to be selected for F1")
	f.Int64Var(&o.seed, "seed", 1, "seed for the choice of tested words")
	f.IntVar(&o.debug, "debug", 1, "debug mode: 0 warnings, 1 info, 2 debug")
	for _, req := range []string{"sememes", "hownet-source", "hownet-target"} {
		_ = cmd.MarkFlagRequired(req)
	}
	return cmd
}

func run(cmd *cobra.Command, out io.Writer, o options, srcPath, tgtPath string) error {
	m := msg.New("sememe-predict", o.debug, cmd.ErrOrStderr())
	start := time.Now()
	known, err := eval.ReadSememeListFile(o.sememes)
	if err != nil {
		return err
	}
	srcHowNet, err := eval.ReadHowNetFile(o.srcHowNet, known)
	if err != nil {
		return err
	}
	tgtHowNet, err := eval.ReadHowNetFile(o.tgtHowNet, known)
	if err != nil {
		return err
	}
	m.Emit(m.Sprintf("%d sememes; HowNet: %d source and %d target words", len(known), len(srcHowNet), len(tgtHowNet)), msg.MSGNOTE)

	src, err := vecio.ReadFile(srcPath)
	if err != nil {
		return err
	}
	src = src.Subset(func(w string) bool { return srcHowNet[w] != nil })
	src.Normalize()
	tgt, err := vecio.ReadFile(tgtPath)
	if err != nil {
		return err
	}
	tgt = tgt.Subset(func(w string) bool { return tgtHowNet[w] != nil })
	tgt.Normalize()
	m.Timer("A", m.Sprintf("%d source and %d target words with vectors and sememes", src.Len(), tgt.Len()), start, start)

	var freq *vocab.Store
	if o.tgtVocab != "" {
		freq = vocab.NewStore(vocab.DefaultIndexSize / 100)
		if err := freq.ReadVocabFile(o.tgtVocab); err != nil {
			return err
		}
	}

	words := slices.Clone(tgt.Words)
	slices.Sort(words)
	rand.New(rand.NewSource(o.seed)).Shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })
	if o.test > 0 && o.test < len(words) {
		words = words[:o.test]
	}

	previous := time.Now()
	p := &eval.Predictor{Source: src, HowNet: srcHowNet, K: o.k, Decay: o.decay, Select: o.sel}
	res := p.Evaluate(tgt, tgtHowNet, words)
	m.Timer("B", m.Sprintf("predicted sememes for %d words", len(res.Words)), start, previous)

	fmt.Fprintf(out, "mAP: %f\n", res.MAP)
	fmt.Fprintf(out, "mean F1: %f\n", res.MeanF1)
	if o.results == "" {
		return nil
	}
	return writeResults(o.results, o.mode, res, freq)
}

func writeResults(path string, mode int, res eval.PredictionResult, freq *vocab.Store) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %s", path)
	}
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "Word\tFrequency\tAP\tF1\n")
	for _, r := range res.Words {
		count := "-"
		if freq != nil {
			if id := freq.Lookup(r.Word); id != vocab.NotFound {
				count = fmt.Sprint(freq.Count(id))
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\n", r.Word, count, r.AP, r.F1)
		if mode > 1 {
			near := make([]string, len(r.Neighbours))
			for i, n := range r.Neighbours {
				near[i] = fmt.Sprintf("%s:%.4f", n.Word, n.Cos)
			}
			fmt.Fprintf(w, "\tNearest Source Words: %s\n", strings.Join(near, " "))
			ranked := make([]string, len(r.Ranked))
			for i, s := range r.Ranked {
				ranked[i] = fmt.Sprintf("%s:%.4f", s.Sememe, s.Score)
			}
			fmt.Fprintf(w, "\tSememes and Scores: %s\n", strings.Join(ranked, " "))
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrap(err, path)
	}
	return f.Close()
}

