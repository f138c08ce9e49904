package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/thunlp/CLSP/internal/config"
	"github.com/thunlp/CLSP/internal/msg"
	"github.com/thunlp/CLSP/internal/train"
)

const example = `clsp train --mono-train1 en.txt --mono-train2 zh.txt --lexicon1 lex.en --lexicon2 lex.zh \
    --sememe sememes.txt --hownet hownet.txt --output1 word-vec.en --output2 word-vec.zh \
    --save-sememe sememe-vec --size 200 --window 5 --negative 5 --threads 12 --epochs 3`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		msg.New("clsp", 0, nil).Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "clsp",
		Short:         "Cross-lingual word and sememe embeddings",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newTrainCmd("train", "Train both languages jointly with the lexicon, sememe and matching terms", false))
	root.AddCommand(newTrainCmd("vocab", "Learn and save both vocabularies, then exit", true))
	return root
}

func newTrainCmd(use, short string, vocabOnly bool) *cobra.Command {
	var file, prof string
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Example: example,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), file)
			if err != nil {
				return err
			}
			if vocabOnly {
				cfg.LearnVocabAndQuit = true
			}
			stop, err := startProfile(prof)
			if err != nil {
				return err
			}
			defer stop()
			return run(cmd, cfg)
		},
	}
	cmd.Flags().StringVar(&file, "config", "", "read options from this json, yaml or toml file")
	cmd.Flags().StringVar(&prof, "profile", "", "write a cpu or mem profile to the working directory")
	config.AddFlags(cmd.Flags())
	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	m := msg.New("clsp", cfg.Debug, cmd.ErrOrStderr())
	m.Emit(m.Sprintf("run %s", m.RunID), msg.MSGFYI)
	tr, err := train.Setup(cfg, m)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return tr.Run(ctx)
}

func startProfile(kind string) (func(), error) {
	dir, err := filepath.Abs(".")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "":
		return func() {}, nil
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.NoShutdownHook).Stop, nil
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath(dir), profile.NoShutdownHook).Stop, nil
	}
	return nil, errors.Errorf("unknown profile %q: want cpu or mem", kind)
}
