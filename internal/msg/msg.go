// Package msg is the leveled terminal messenger shared by every tool.
package msg

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	MSGMAND = -1
	MSGCRIT = 0
	MSGWARN = 1
	MSGNOTE = 2
	MSGFYI  = 3
	MSGPEEK = 4
	MSGTMI  = 5

	TIMETRACKERMSGTHRESH = MSGFYI
)

// MessageMaker sends messages to the terminal through logrus
type MessageMaker struct {
	Log   *logrus.Logger
	Name  string
	RunID string
	p     *message.Printer
}

// New returns a MessageMaker for the given debug mode: 0 = warnings only, 1 = info, 2 = debug, 3+ = everything
func New(name string, debug int, out io.Writer) *MessageMaker {
	l := logrus.New()
	if out == nil {
		out = os.Stderr
	}
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(debugtolevel(debug))
	return &MessageMaker{
		Log:   l,
		Name:  name,
		RunID: strings.Replace(uuid.New().String(), "-", "", -1),
		p:     message.NewPrinter(language.English),
	}
}

// Discard - a MessageMaker that writes nowhere; used by tests and by library code handed a nil messenger
func Discard() *MessageMaker {
	return New("discard", 0, io.Discard)
}

func debugtolevel(debug int) logrus.Level {
	switch {
	case debug <= 0:
		return logrus.WarnLevel
	case debug == 1:
		return logrus.InfoLevel
	case debug == 2:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

func (m *MessageMaker) entry() *logrus.Entry {
	return m.Log.WithField("run", m.RunID)
}

func thresholdtolevel(threshold int) logrus.Level {
	switch threshold {
	case MSGMAND:
		// warn is the quietest level New() ever sets
		return logrus.WarnLevel
	case MSGNOTE, MSGFYI:
		return logrus.InfoLevel
	case MSGCRIT:
		return logrus.ErrorLevel
	case MSGWARN:
		return logrus.WarnLevel
	case MSGPEEK:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

// Emit - send a message to the terminal if the logger is listening at this threshold
func (m *MessageMaker) Emit(s string, threshold int) {
	m.entry().Log(thresholdtolevel(threshold), s)
}

// Enabled - is anyone listening at this threshold? lets hot loops skip building messages
func (m *MessageMaker) Enabled(threshold int) bool {
	return m.Log.IsLevelEnabled(thresholdtolevel(threshold))
}

// Sprintf - fmt.Sprintf with thousands separators for the numbers
func (m *MessageMaker) Sprintf(f string, a ...any) string {
	return m.p.Sprintf(f, a...)
}

// Timer - report how much time elapsed between A and B
func (m *MessageMaker) Timer(letter string, o string, start time.Time, previous time.Time) {
	// sample output: "[D2: 33.764s][Δ: 8.024s] look up 48 specific words"
	d := fmt.Sprintf("[Δ: %.3fs] ", time.Since(previous).Seconds())
	o = fmt.Sprintf("[%s: %.3fs]", letter, time.Since(start).Seconds()) + d + o
	m.Emit(o, TIMETRACKERMSGTHRESH)
}

// Fatal - report the error and exit; logrus.Logger.ExitFunc decides how
func (m *MessageMaker) Fatal(err error) {
	if err != nil {
		m.entry().Fatalf("%s: %v", m.Name, err)
	}
}
