package train

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/thunlp/CLSP/internal/config"
	"github.com/thunlp/CLSP/internal/embed"
	"github.com/thunlp/CLSP/internal/kb"
	"github.com/thunlp/CLSP/internal/lexicon"
	"github.com/thunlp/CLSP/internal/msg"
	"github.com/thunlp/CLSP/internal/vocab"
)

func readVocab(t *testing.T, lines string) *vocab.Store {
	v := vocab.NewStore(64)
	require.NoError(t, v.ReadVocab(strings.NewReader(lines)))
	v.Finalize(1)
	return v
}

// newTestTrainer wires a small trainer by hand: "cat"/"猫" form the lexicon,
// "猫" and "狗" are in HowNet
func newTestTrainer(t *testing.T, m *msg.MessageMaker) *Trainer {
	cfg := config.Default()
	cfg.Size = 8
	cfg.Threads = 2

	sv := readVocab(t, "</s> 10\ncat 9\ndog 8\nbird 7\nfish 6\n")
	tv := readVocab(t, "</s> 10\n猫 9\n狗 8\n鸟 7\n鱼 6\n")
	lex, err := lexicon.Load(strings.NewReader("cat\n"), strings.NewReader("猫\n"), sv, tv, m)
	require.NoError(t, err)

	k, err := kb.ReadSememes(strings.NewReader("animal\npet\nwater\n"))
	require.NoError(t, err)
	require.NoError(t, k.ReadHowNet(strings.NewReader("猫 animal pet\n狗 animal pet\n"), m))

	rng := rand.New(rand.NewSource(7))
	tr := &Trainer{Cfg: cfg, Msg: m, Lex: lex, KB: k, Link: k.Link(tv)}
	for i, v := range []*vocab.Store{sv, tv} {
		emb, err := embed.NewStore(v.Len(), cfg.Size, rng)
		require.NoError(t, err)
		for j := range emb.Out {
			emb.Out[j] = (rng.Float64() - 0.5) / float64(cfg.Size)
		}
		tr.Langs[i] = &Lang{Name: []string{"L1", "L2"}[i], Vocab: v, Emb: emb}
	}
	tr.Sem, err = embed.NewSememeStore(len(k.Sememes), len(k.HowNet), cfg.Size, rng)
	require.NoError(t, err)
	tr.Engine = embed.NewEngine(cfg.Alpha, cfg.AdaGrad, m)
	return tr
}

// pairDistance is the euclidean distance of the in+out sums of s and g
func pairDistance(tr *Trainer, s, g int) float64 {
	dim := tr.Cfg.Size
	a := tr.Langs[Source].Emb.Sum(s, make([]float64, dim))
	b := tr.Langs[Target].Emb.Sum(g, make([]float64, dim))
	return floats.Distance(a, b, 2)
}
