package main

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/thunlp/CLSP/internal/msg"
	"github.com/thunlp/CLSP/internal/phrase"
	"github.com/thunlp/CLSP/internal/vocab"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		msg.New("word2phrase", 0, nil).Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	var train, output string
	var minCount int64
	var threshold float64
	var debug, hashSize int
	cmd := &cobra.Command{
		Use:           "word2phrase",
		Short:         "Join frequent bigrams of a corpus into phrases",
		Example:       "word2phrase --train text.txt --output phrases.txt --threshold 100 --debug 2",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if train == "" || output == "" {
				return errors.New("both --train and --output are required")
			}
			m := msg.New("word2phrase", debug, cmd.ErrOrStderr())
			start := time.Now()
			m.Emit(m.Sprintf("Starting training using file %s", train), msg.MSGNOTE)
			progress := func(n int64) {
				m.Emit(m.Sprintf("Words processed: %dK", n/1000), msg.MSGPEEK)
			}
			model, err := phrase.LearnFile(train, hashSize, minCount, threshold, progress)
			if err != nil {
				return err
			}
			m.Emit(m.Sprintf("Vocab size (unigrams + bigrams): %d", model.Vocab.Len()), msg.MSGNOTE)
			m.Emit(m.Sprintf("Words in train file: %d", model.TrainWords), msg.MSGNOTE)
			m.Timer("A", "vocabulary", start, start)
			previous := time.Now()
			n, err := model.JoinFiles(train, output)
			if err != nil {
				return err
			}
			m.Timer("B", m.Sprintf("%d words written to %s", n, output), start, previous)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&train, "train", "", "use text data from this file to train the model")
	f.StringVar(&output, "output", "", "save the resulting phrases to this file")
	f.Int64Var(&minCount, "min-count", 5, "discard words that appear less than this many times")
	f.Float64Var(&threshold, "threshold", phrase.DefaultThreshold, "threshold for forming the phrases (higher means less phrases)")
	f.IntVar(&debug, "debug", 2, "debug mode: 0 warnings, 1 info, 2 debug")
	f.IntVar(&hashSize, "vocab-hash-size", vocab.DefaultIndexSize, "slots in the vocabulary hash index")
	return cmd
}
