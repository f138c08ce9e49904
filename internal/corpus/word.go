// Package corpus tokenises training text and streams sentences of vocabulary ids.
package corpus

import (
	"bufio"
	"bytes"
	"io"
)

const (
	// Sentinel is the token a newline turns into; it always owns vocabulary id 0
	Sentinel = "</s>"
	// MaxString bounds a token; longer tokens are truncated to MaxString-1 bytes
	MaxString = 100
	// MaxSentenceLength bounds the sentences handed to the trainers
	MaxSentenceLength = 1000
)

// ReadWord reads a single word, assuming space + tab + EOL to be word boundaries.
// A newline is reported as Sentinel. A final word without a trailing boundary is
// returned with a nil error; io.EOF comes on the following call.
func ReadWord(fin *bufio.Reader) (string, error) {
	return readword(fin, true)
}

// ReadWordNoEOL is ReadWord without the special treatment of newlines
func ReadWordNoEOL(fin *bufio.Reader) (string, error) {
	return readword(fin, false)
}

func readword(fin *bufio.Reader, eol bool) (string, error) {
	var buf bytes.Buffer
	for {
		ch, err := fin.ReadByte()
		if err != nil {
			if buf.Len() > 0 && err == io.EOF {
				return truncate(&buf), nil
			}
			return "", err
		}
		if ch == '\r' {
			continue
		}
		if ch == ' ' || ch == '\t' || ch == '\n' {
			if buf.Len() > 0 {
				if ch == '\n' && eol {
					_ = fin.UnreadByte()
				}
				return truncate(&buf), nil
			}
			if ch == '\n' && eol {
				return Sentinel, nil
			}
			continue
		}
		buf.WriteByte(ch)
	}
}

func truncate(buf *bytes.Buffer) string {
	if buf.Len() >= MaxString {
		buf.Truncate(MaxString - 1)
	}
	return buf.String()
}
