package eval

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thunlp/CLSP/internal/vecio"
)

func vectors(t *testing.T, dump string) *vecio.Vectors {
	v, err := vecio.Read(strings.NewReader(dump))
	require.NoError(t, err)
	v.Normalize()
	return v
}

func TestReadDictionary(t *testing.T) {
	d, err := ReadDictionary(strings.NewReader("Cat\t猫/猫咪\ndog\t狗\n\nnotab\n"))
	require.NoError(t, err)
	assert.Equal(t, Dictionary{"cat": {"猫", "猫咪"}, "dog": {"狗"}}, d)
}

func TestLexiconInduction(t *testing.T) {
	src := vectors(t, "3 2\ncat 1 0\ndog 0 1\nfish 1 1\n")
	tgt := vectors(t, "4 2\n猫 1 0.1\n狗 0.1 1\n鱼 1 0.9\n鸟 -1 0\n")
	d := Dictionary{"cat": {"猫"}, "dog": {"鱼"}, "fish": {"鸟"}, "bird": {"鸟"}}

	res := LexiconInduction(src, tgt, d, 0, rand.New(rand.NewSource(1)), nil)
	assert.Equal(t, 3, res.Tested)
	assert.InDelta(t, 1./3, res.P1, 1e-12)
	// 鸟 is last for fish among four candidates; 鱼 is in dog's top five
	assert.InDelta(t, 1., res.P5, 1e-12)

	res = LexiconInduction(src, tgt, d, 1, rand.New(rand.NewSource(1)), nil)
	assert.Equal(t, 1, res.Tested)
}

func TestNearestOrder(t *testing.T) {
	v := vectors(t, "3 2\na 1 0\nb 0 1\nc 1 1\n")
	n := Nearest(v, []float64{1, 0}, 2)
	require.Len(t, n, 2)
	assert.Equal(t, "a", n[0].Word)
	assert.Equal(t, "c", n[1].Word)
	assert.Len(t, Nearest(v, []float64{1, 0}, 10), 3)
}

func TestWordSim(t *testing.T) {
	v := vectors(t, "4 2\na 1 0\nb 1 0.2\nc 0 1\nd -1 0\n")
	res, err := WordSim(v, strings.NewReader("a b 9\na c 5\na d 1\nc zzz 3\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Tested)
	assert.Equal(t, 1, res.Skipped)
	assert.Greater(t, res.Score, 0.9)

	_, err = WordSim(v, strings.NewReader("a b\n"))
	assert.Error(t, err)
	_, err = WordSim(v, strings.NewReader("a zzz 1\n"))
	assert.Error(t, err)
}

func TestReadSememeListAndHowNet(t *testing.T) {
	known, err := ReadSememeList(strings.NewReader("animal|动物\npet|宠物\n"))
	require.NoError(t, err)
	assert.Len(t, known, 2)

	h, err := ReadHowNet(strings.NewReader("cat\t{animal|动物,pet|宠物};{animal|动物}\nrock\t{stone|石}\n"), known)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"cat": {"animal|动物", "pet|宠物"}}, h)

	_, err = ReadSememeList(strings.NewReader("animal\n"))
	assert.Error(t, err)
}

func TestAveragePrecisionAndF1(t *testing.T) {
	ranked := []Scored{{"a", 3}, {"x", 2}, {"b", 1}}
	assert.InDelta(t, (1+2./3)/2, AveragePrecision([]string{"a", "b"}, ranked), 1e-12)
	assert.Equal(t, 0., AveragePrecision([]string{"z"}, ranked))

	assert.InDelta(t, 2*0.5*0.5, F1([]string{"a", "b"}, []string{"a", "x"}), 1e-12)
	assert.Equal(t, 0., F1([]string{"a"}, []string{"x"}))
	assert.Equal(t, 1., F1([]string{"a"}, []string{"a"}))
}

func TestPredictorEvaluate(t *testing.T) {
	src := vectors(t, "3 2\ncat 1 0\ndog 0.9 0.1\nrock 0 1\n")
	tgt := vectors(t, "2 2\n猫 1 0.05\n石 0.05 1\n")
	srcHowNet := map[string][]string{
		"cat":  {"animal", "pet"},
		"dog":  {"animal"},
		"rock": {"stone"},
	}
	p := &Predictor{Source: src, HowNet: srcHowNet, K: 2, Decay: DefaultDecay, Select: DefaultSelect}

	_, ranked := p.Predict(tgt.Vec(tgt.ID("猫")))
	require.NotEmpty(t, ranked)
	assert.Equal(t, "animal", ranked[0].Sememe)
	assert.Equal(t, []string{"animal", "pet"}, p.Selected(ranked))

	gold := map[string][]string{"猫": {"animal", "pet"}, "石": {"stone"}}
	res := p.Evaluate(tgt, gold, []string{"猫", "石", "missing"})
	require.Len(t, res.Words, 2)
	assert.InDelta(t, 1, res.Words[0].AP, 1e-12)
	assert.InDelta(t, 1, res.Words[1].AP, 1e-12)
	assert.InDelta(t, 1, res.MAP, 1e-12)
}
