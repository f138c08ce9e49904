package train

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thunlp/CLSP/internal/config"
	"github.com/thunlp/CLSP/internal/msg"
	"github.com/thunlp/CLSP/internal/vecio"
)

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// fixture writes two parallel toy corpora (e<i> in L1, z<i> in L2), a four pair
// lexicon plus one pair unknown to both vocabularies, and a small HowNet over
// target words outside the lexicon
func fixture(t *testing.T) *config.Config {
	dir := t.TempDir()
	rng := rand.New(rand.NewSource(42))
	var l1, l2 strings.Builder
	for s := 0; s < 300; s++ {
		for w := 0; w < 8; w++ {
			i := rng.Intn(30)
			if w > 0 {
				l1.WriteByte(' ')
				l2.WriteByte(' ')
			}
			fmt.Fprintf(&l1, "e%d", i)
			fmt.Fprintf(&l2, "z%d", i)
		}
		l1.WriteByte('\n')
		l2.WriteByte('\n')
	}
	p := func(name string) string { return filepath.Join(dir, name) }
	writeFile(t, p("l1.txt"), l1.String())
	writeFile(t, p("l2.txt"), l2.String())
	writeFile(t, p("lex1.txt"), "e1\ne2\ne3\ne4\nunknown\n")
	writeFile(t, p("lex2.txt"), "z1\nz2\nz3\nz4\nz5\n")
	writeFile(t, p("sememes.txt"), "s0\ns1\ns2\ns3\ns4\n")
	writeFile(t, p("hownet.txt"), "z10 s0 s1\nz11 s1 s2\nz12 s3 s4 s9\n")

	cfg := config.Default()
	cfg.MonoTrain1, cfg.MonoTrain2 = p("l1.txt"), p("l2.txt")
	cfg.Lexicon1, cfg.Lexicon2 = p("lex1.txt"), p("lex2.txt")
	cfg.Output1, cfg.Output2 = p("l1.%d.vec"), p("l2.%d.vec")
	cfg.Sememe, cfg.HowNet, cfg.SaveSememe = p("sememes.txt"), p("hownet.txt"), p("sememes.vec")
	cfg.Size = 16
	cfg.Window = 3
	cfg.Negative = 3
	cfg.Threads = 2
	cfg.Epochs = 1
	cfg.MinCount = 1
	cfg.AdaGrad = true
	cfg.VocabHashSize = 1024
	cfg.TableSize = 10000
	return cfg
}

func header(t *testing.T, path string) string {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	line, err := bufio.NewReader(f).ReadString('\n')
	require.NoError(t, err)
	return strings.TrimSpace(line)
}

func trainEndToEnd(t *testing.T) {
	cfg := fixture(t)
	m := msg.New("clsp", 2, nil)
	hook := test.NewLocal(m.Log)

	tr, err := Setup(cfg, m)
	require.NoError(t, err)
	require.Equal(t, 31, tr.Langs[Source].Vocab.Len())
	require.Equal(t, 5, tr.Lex.Len())
	require.Len(t, tr.KB.HowNet, 3)

	type pair struct{ s, g int }
	var pairs []pair
	var before []float64
	for i := 1; i <= 4; i++ {
		p := pair{
			tr.Langs[Source].Vocab.Lookup(fmt.Sprintf("e%d", i)),
			tr.Langs[Target].Vocab.Lookup(fmt.Sprintf("z%d", i)),
		}
		pairs = append(pairs, p)
		before = append(before, pairDistance(tr, p.s, p.g))
	}

	require.NoError(t, tr.Run(context.Background()))

	for i, p := range pairs {
		assert.Less(t, pairDistance(tr, p.s, p.g), before[i], "pair e%d z%d", i+1, i+1)
	}
	assert.Positive(t, tr.Stats.LexiconSteps.Load())
	assert.Positive(t, tr.Stats.SememeSteps.Load())
	assert.Positive(t, tr.Langs[Source].Updates())
	assert.Positive(t, tr.Langs[Target].Updates())
	assert.Zero(t, tr.Engine.NaNs())

	assert.Equal(t, "31 16", header(t, vecio.DumpPath(cfg.Output1, 0)))
	assert.Equal(t, "31 16", header(t, vecio.DumpPath(cfg.Output2, 0)))
	assert.NoFileExists(t, vecio.DumpPath(cfg.Output1, 1))
	v, err := vecio.ReadFile(cfg.SaveSememe)
	require.NoError(t, err)
	assert.Equal(t, []string{"s0", "s1", "s2", "s3", "s4"}, v.Words)

	for _, e := range hook.AllEntries() {
		assert.Greater(t, e.Level, logrus.ErrorLevel, e.Message)
	}
}

func TestTrainEndToEnd(t *testing.T) {
	trainEndToEnd(t)
}

func TestTrainEndToEndOnOneProc(t *testing.T) {
	defer runtime.GOMAXPROCS(runtime.GOMAXPROCS(1))
	trainEndToEnd(t)
}

func TestTrainCBOWWithPeriodicDumps(t *testing.T) {
	cfg := fixture(t)
	cfg.CBOW = true
	cfg.DumpEvery = -2
	tr, err := Setup(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, tr.Run(context.Background()))

	// dumps at half and all of the 2700 update budget, then the epoch dump
	for _, out := range []string{cfg.Output1, cfg.Output2} {
		for i := 0; i < 3; i++ {
			assert.Equal(t, "31 16", header(t, vecio.DumpPath(out, i)))
		}
		assert.NoFileExists(t, vecio.DumpPath(out, 3))
	}
	assert.Positive(t, tr.Stats.LexiconSteps.Load())
	assert.Zero(t, tr.Engine.NaNs())
}

func TestPositiveDumpEvery(t *testing.T) {
	cfg := fixture(t)
	cfg.DumpEvery = 1000
	tr, err := Setup(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, tr.Run(context.Background()))

	// 2700 updates per language: dumps at 1000 and 2000, then the epoch dump
	for _, out := range []string{cfg.Output1, cfg.Output2} {
		for i := 0; i < 3; i++ {
			assert.FileExists(t, vecio.DumpPath(out, i))
		}
		assert.NoFileExists(t, vecio.DumpPath(out, 3))
	}
}

func TestLearnVocabAndQuit(t *testing.T) {
	cfg := fixture(t)
	cfg.LearnVocabAndQuit = true
	cfg.SaveVocab1 = filepath.Join(filepath.Dir(cfg.MonoTrain1), "v1.txt")

	tr, err := Setup(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, tr.Run(context.Background()))

	assert.Nil(t, tr.Langs[Source].Emb)
	assert.FileExists(t, cfg.SaveVocab1)
	_, err = os.Stat(vecio.DumpPath(cfg.Output1, 0))
	assert.True(t, os.IsNotExist(err))
}

func TestSetupRejectsMissingOutputDir(t *testing.T) {
	cfg := fixture(t)
	cfg.Output2 = filepath.Join(t.TempDir(), "missing", "l2.vec")
	_, err := Setup(cfg, nil)
	assert.ErrorContains(t, err, "output directory")
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	cfg := fixture(t)
	tr, err := Setup(cfg, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tr.Run(ctx), context.Canceled)
}
