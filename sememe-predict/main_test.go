package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSememePredict(t *testing.T) {
	dir := t.TempDir()
	p := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	src := p("vec.en", "3 2\ncat 1 0 \ndog 0 1 \nrock -1 0 \n")
	tgt := p("vec.zh", "3 2\n猫 1 0.1 \n狗 0.1 1 \n石 -1 0 \n")
	sememes := p("sememes", "animal|动物\npet|宠物\n")
	srcHowNet := p("hownet.en", "cat\t{animal|动物,pet|宠物}\ndog\t{animal|动物}\nrock\t{stone|石}\n")
	tgtHowNet := p("hownet.zh", "猫\t{animal|动物};{pet|宠物}\n狗\t{animal|动物}\n")
	freq := p("vocab.zh", "猫 12\n狗 7\n")
	results := filepath.Join(dir, "results")

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{src, tgt,
		"--sememes", sememes, "--hownet-source", srcHowNet, "--hownet-target", tgtHowNet,
		"--vocab-target", freq, "--results", results, "--mode", "2", "--debug", "0"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "mAP: 1.000000\n")

	b, err := os.ReadFile(results)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "Word\tFrequency\tAP\tF1", lines[0])
	assert.Contains(t, string(b), "猫\t12\t1\t")
	assert.Contains(t, string(b), "狗\t7\t1\t")
	assert.Contains(t, string(b), "\tSememes and Scores: animal|动物:")
	assert.NotContains(t, string(b), "rock")
}

func TestSememePredictNeedsHowNet(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"a", "b", "--sememes", "s"})
	assert.ErrorContains(t, cmd.Execute(), "hownet")
}
