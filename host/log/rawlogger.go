package log

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"
)

// RawLogger records the raw console traffic of a controller link
type RawLogger interface {
	Log(tx bool, data []byte)
}

type rawLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewRaw creates a RawLogger writing to w. A nil w discards everything.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

// Log writes one timestamped line with the chunk quoted Go style, so CR
// and LF stay visible. tx is true for host to controller traffic.
func (r *rawLogger) Log(tx bool, data []byte) {
	if len(data) == 0 || r.w == nil {
		return
	}

	dir := "C->H"
	if tx {
		dir = "H->C"
	}
	line := fmt.Sprintf("%s %s %d bytes: %s\n",
		time.Now().Format("2006/01/02 15:04:05.000"),
		dir,
		len(data),
		strconv.Quote(string(data)))

	r.mu.Lock()
	_, _ = io.WriteString(r.w, line)
	r.mu.Unlock()
}
