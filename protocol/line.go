package protocol

import "io"

// LineBuffer assembles console input into command lines. Received bytes
// are echoed so a terminal user sees what they type.
type LineBuffer struct {
	buf       []byte
	max       int
	echo      io.Writer
	discard   bool // Current line overflowed, drop it at the terminator
	lastCR    bool
	Overflows int
}

// NewLineBuffer creates a LineBuffer accepting lines of up to max bytes.
// echo may be nil.
func NewLineBuffer(max int, echo io.Writer) *LineBuffer {
	if max <= 0 {
		max = LineMax
	}
	return &LineBuffer{buf: make([]byte, 0, max), max: max, echo: echo}
}

func (l *LineBuffer) write(s string) {
	if l.echo != nil {
		io.WriteString(l.echo, s)
	}
}

// Feed consumes data and calls fn for every completed line, without the
// terminator. CR, LF and CRLF all end a line.
func (l *LineBuffer) Feed(data []byte, fn func(line string)) {
	for _, b := range data {
		switch b {
		case CR, LF:
			if b == LF && l.lastCR {
				l.lastCR = false
				continue
			}
			l.lastCR = b == CR
			l.write("\n")
			if l.discard {
				l.discard = false
				l.buf = l.buf[:0]
				continue
			}
			line := string(l.buf)
			l.buf = l.buf[:0]
			fn(line)
			continue

		case BS, DEL:
			if len(l.buf) > 0 && !l.discard {
				l.buf = l.buf[:len(l.buf)-1]
				l.write("\b \b")
			}

		default:
			if l.discard {
				break
			}
			if len(l.buf) == l.max {
				l.discard = true
				l.Overflows++
				break
			}
			l.buf = append(l.buf, b)
			l.write(string(b))
		}
		l.lastCR = false
	}
}

// FeedFifo drains f into the line buffer
func (l *LineBuffer) FeedFifo(f *FifoBuffer, fn func(line string)) {
	var chunk [32]byte
	for !f.IsEmpty() {
		n := f.Read(chunk[:])
		l.Feed(chunk[:n], fn)
	}
}

// Pending returns the partial line typed so far
func (l *LineBuffer) Pending() string {
	return string(l.buf)
}

// NewlineWriter translates "\n" into "\n\r" on the way out, as the
// controller console does
type NewlineWriter struct {
	W io.Writer
}

func (w NewlineWriter) Write(p []byte) (int, error) {
	start := 0
	for i, b := range p {
		if b != LF {
			continue
		}
		if _, err := w.W.Write(p[start : i+1]); err != nil {
			return start, err
		}
		if _, err := w.W.Write([]byte{CR}); err != nil {
			return i + 1, err
		}
		start = i + 1
	}
	if start < len(p) {
		if _, err := w.W.Write(p[start:]); err != nil {
			return start, err
		}
	}
	return len(p), nil
}
