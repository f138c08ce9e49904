package kb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vocab []string

func (v vocab) Word(i int) string { return v[i] }
func (v vocab) Len() int           { return len(v) }

func TestReadSememesAndHowNet(t *testing.T) {
	k, err := ReadSememes(strings.NewReader("animal\nhuman\nbuilding\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"animal", "human", "building"}, k.Sememes)
	assert.Equal(t, 2, k.SememeID("building"))
	assert.Equal(t, -1, k.SememeID("tool"))

	require.NoError(t, k.ReadHowNet(strings.NewReader("猫 animal\n人 human animal tool\n\n房子 building\n狗 animal"), nil))
	require.Len(t, k.HowNet, 4)
	assert.Equal(t, Entry{Word: "猫", Sememes: []int32{0}}, k.HowNet[0])
	assert.Equal(t, []int32{1, 0}, k.HowNet[1].Sememes)
	assert.Equal(t, "房子", k.HowNet[2].Word)
	assert.Equal(t, Entry{Word: "狗", Sememes: []int32{0}}, k.HowNet[3])

	link := k.Link(vocab{"</s>", "房子", "狗", "猫", "鸟"})
	assert.Equal(t, []int32{-1, 2, 3, 0, -1}, link)
}

func TestReadHowNetHeadOnItsOwnLine(t *testing.T) {
	k, err := ReadSememes(strings.NewReader("animal pet water"))
	require.NoError(t, err)

	require.NoError(t, k.ReadHowNet(strings.NewReader("cat\nanimal pet\ndog\nanimal\nfish water\n"), nil))
	require.Len(t, k.HowNet, 3)
	assert.Equal(t, Entry{Word: "cat", Sememes: []int32{0, 1}}, k.HowNet[0])
	assert.Equal(t, Entry{Word: "dog", Sememes: []int32{0}}, k.HowNet[1])
	assert.Equal(t, Entry{Word: "fish", Sememes: []int32{2}}, k.HowNet[2])
	assert.Equal(t, -1, k.EntryID("animal"))
}

func TestLoadMissing(t *testing.T) {
	dir := t.TempDir()
	s := filepath.Join(dir, "sememes.txt")
	require.NoError(t, os.WriteFile(s, []byte("animal\n"), 0o644))
	_, err := Load(s, filepath.Join(dir, "hownet.txt"), nil)
	assert.Error(t, err)
	_, err = Load(filepath.Join(dir, "nope"), s, nil)
	assert.Error(t, err)
}
