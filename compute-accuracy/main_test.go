package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAccuracy(t *testing.T) {
	dir := t.TempDir()
	p := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	src := p("vec.en", "3 2\ncat 1 0 \ndog 0 1 \nfish 1 1 \n")
	tgt := p("vec.zh", "3 2\n猫 1 0.1 \n狗 0.1 1 \n鱼 1 0.9 \n")
	dict := p("dict", "Cat\t猫\ndog\t狗/犬\nbird\t鸟\n")
	sim := p("wordsim-en", "cat dog 1\ncat fish 6\ndog fish 5\ncat bird 3\n")

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{src, tgt, "--dict", dict, "--wordsim-source", sim, "--debug", "0"})
	require.NoError(t, cmd.Execute())

	got := out.String()
	assert.Contains(t, got, "Source WordSim Results:\nwordsim-en: Score: ")
	assert.Contains(t, got, "Tested Word Pairs: 3 Skipped Word Pairs: 1")
	assert.Contains(t, got, "Test Words: 2 P@1: 1.000000 P@5: 1.000000")
	assert.NotContains(t, got, "Target WordSim")
}

func TestComputeAccuracyNeedsTwoFiles(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetArgs([]string{"only-one"})
	assert.Error(t, cmd.Execute())
}
