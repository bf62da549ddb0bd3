package core

import (
	"io"

	"scjingle/protocol"
)

// Console is the line oriented command shell of the controller. Input is
// echoed, completed lines are dispatched on a CommandRegistry and the
// prompt is printed once the command has finished.
type Console struct {
	registry *CommandRegistry
	out      io.Writer
	lines    *protocol.LineBuffer

	// Commands counts dispatched lines, Failures the ones that returned an
	// error
	Commands uint32
	Failures uint32
}

// NewConsole creates a console writing to w. Line endings are sent as
// "\n\r".
func NewConsole(registry *CommandRegistry, w io.Writer) *Console {
	out := protocol.NewlineWriter{W: w}
	return &Console{
		registry: registry,
		out:      out,
		lines:    protocol.NewLineBuffer(protocol.LineMax, out),
	}
}

// Start prints the first prompt
func (c *Console) Start() {
	io.WriteString(c.out, protocol.Prompt)
}

// Feed consumes received bytes, running every completed line
func (c *Console) Feed(data []byte) {
	c.lines.Feed(data, c.execute)
}

// FeedFifo drains a receive FIFO into the console
func (c *Console) FeedFifo(f *protocol.FifoBuffer) {
	c.lines.FeedFifo(f, c.execute)
}

// Overflows returns the number of lines dropped for being too long
func (c *Console) Overflows() int {
	return c.lines.Overflows
}

func (c *Console) execute(line string) {
	if line != "" {
		c.Commands++
		if err := c.registry.Dispatch(line, c.out); err != nil {
			c.Failures++
		}
	}
	io.WriteString(c.out, protocol.Prompt)
}
