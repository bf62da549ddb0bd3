package protocol

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect(l *LineBuffer, input string) []string {
	var lines []string
	l.Feed([]byte(input), func(line string) {
		lines = append(lines, line)
	})
	return lines
}

func TestLineBufferTerminators(t *testing.T) {
	l := NewLineBuffer(0, nil)

	assert.Equal(t, []string{"jingle play 3"}, collect(l, "jingle play 3\r\n"))
	assert.Equal(t, []string{"a", "b", "", "c"}, collect(l, "a\nb\r\rc\n"))

	// Split across reads
	assert.Empty(t, collect(l, "hapt"))
	assert.Equal(t, "hapt", l.Pending())
	assert.Equal(t, []string{"haptic stop"}, collect(l, "ic stop\r"))
	assert.Empty(t, collect(l, "\n"), "LF after CR is part of the same terminator")
}

func TestLineBufferEditingAndEcho(t *testing.T) {
	var echo bytes.Buffer
	l := NewLineBuffer(0, &echo)

	lines := collect(l, "verz\x7fsion\r")
	assert.Equal(t, []string{"version"}, lines)
	assert.Equal(t, "verz\b \bsion\n", echo.String())

	// Backspace on an empty line is ignored
	echo.Reset()
	assert.Equal(t, []string{"x"}, collect(l, "\bx\n"))
	assert.Equal(t, "x\n", echo.String())
}

func TestLineBufferOverflow(t *testing.T) {
	l := NewLineBuffer(8, nil)

	lines := collect(l, strings.Repeat("y", 20)+"\nok\n")
	assert.Equal(t, []string{"ok"}, lines, "overlong line is dropped")
	assert.Equal(t, 1, l.Overflows)
}

func TestLineBufferFeedFifo(t *testing.T) {
	fifo := NewFifoBuffer(16)
	l := NewLineBuffer(0, nil)

	fifo.Write([]byte("help\nver"))
	var lines []string
	l.FeedFifo(fifo, func(line string) { lines = append(lines, line) })
	assert.Equal(t, []string{"help"}, lines)
	assert.True(t, fifo.IsEmpty())
	assert.Equal(t, "ver", l.Pending())
}

func TestNewlineWriter(t *testing.T) {
	var out bytes.Buffer
	w := NewlineWriter{W: &out}

	n, err := w.Write([]byte("Load complete\nnext"))
	assert.NoError(t, err)
	assert.Equal(t, 18, n)
	assert.Equal(t, "Load complete\n\rnext", out.String())
}
