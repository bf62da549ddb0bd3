// Package controller talks to the command console of a controller over
// its USB CDC port. Every command is sent as one line, its echo is checked
// and the response lines are collected up to the next prompt.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	hostlog "scjingle/host/log"
	"scjingle/protocol"
)

var (
	ErrTimeout      = errors.New("timed out waiting for the controller")
	ErrEchoMismatch = errors.New("controller did not echo the command")
	ErrClosed       = errors.New("controller link closed")
)

// Config holds the link timing
type Config struct {
	// Timeout bounds the wait for one command's prompt
	Timeout time.Duration `help:"Time to wait for a command to complete" default:"2s"`

	// Pace is the pause after every command. The controller's CDC stack
	// drops input that arrives while it is still sending.
	Pace time.Duration `help:"Pause after each command" default:"100ms"`
}

// DefaultConfig returns the timing that works with the stock firmware
func DefaultConfig() Config {
	return Config{Timeout: 2 * time.Second, Pace: 100 * time.Millisecond}
}

// ResponseError reports a command whose output lacked the expected line
type ResponseError struct {
	Command string
	Want    string
	Lines   []string
}

func (e *ResponseError) Error() string {
	if e.Want == "" {
		return fmt.Sprintf("%q: unexpected output %q", e.Command, strings.Join(e.Lines, " | "))
	}
	if len(e.Lines) == 0 {
		return fmt.Sprintf("%q: no response, expected %q", e.Command, e.Want)
	}
	return fmt.Sprintf("%q: got %q, expected %q", e.Command, strings.Join(e.Lines, " | "), e.Want)
}

// event is one completed line, or the prompt
type event struct {
	line   string
	prompt bool
}

// Controller is a command/response link to one controller
type Controller struct {
	port   io.ReadWriteCloser
	cfg    Config
	logger *slog.Logger
	raw    hostlog.RawLogger

	execMu sync.Mutex
	events chan event

	lines      *protocol.LineBuffer
	promptSent bool

	errMu   sync.Mutex
	readErr error

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New starts a link over port. logger and raw may be nil.
func New(port io.ReadWriteCloser, cfg Config, logger *slog.Logger, raw hostlog.RawLogger) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if raw == nil {
		raw = hostlog.NewRaw(nil)
	}
	c := &Controller{
		port:   port,
		cfg:    cfg,
		logger: logger,
		raw:    raw,
		events: make(chan event, 64),
		lines:  protocol.NewLineBuffer(protocol.MessageMax, nil),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Close stops the reader and closes the port
func (c *Controller) Close() error {
	var err error
	c.stopOnce.Do(func() {
		close(c.stop)
		err = c.port.Close()
		<-c.done
	})
	return err
}

func (c *Controller) readLoop() {
	defer close(c.done)

	buf := make([]byte, 256)
	for {
		n, err := c.port.Read(buf)
		if n > 0 {
			c.raw.Log(false, buf[:n])
			c.feed(buf[:n])
		}
		if err == nil {
			continue
		}

		select {
		case <-c.stop:
			return
		default:
		}
		if isClosed(err) {
			c.errMu.Lock()
			c.readErr = err
			c.errMu.Unlock()
			return
		}
		// Serial ports report read timeouts as EOF
		time.Sleep(10 * time.Millisecond)
	}
}

func isClosed(err error) bool {
	return errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, os.ErrClosed)
}

func (c *Controller) feed(data []byte) {
	c.lines.Feed(data, func(line string) {
		c.promptSent = false
		line = strings.TrimPrefix(line, protocol.Prompt)
		if line == "" {
			return
		}
		c.emit(event{line: line})
	})
	if !c.promptSent && c.lines.Pending() == protocol.Prompt {
		c.promptSent = true
		c.emit(event{prompt: true})
	}
}

func (c *Controller) emit(ev event) {
	select {
	case c.events <- ev:
	case <-c.stop:
	}
}

func (c *Controller) closedErr() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.readErr != nil {
		return fmt.Errorf("%w: %w", ErrClosed, c.readErr)
	}
	return ErrClosed
}

// drain drops events left over from an abandoned command
func (c *Controller) drain() {
	for {
		select {
		case ev := <-c.events:
			c.logger.Debug("discarding stale output", "line", ev.line, "prompt", ev.prompt)
		default:
			return
		}
	}
}

func (c *Controller) write(s string) error {
	c.raw.Log(true, []byte(s))
	if _, err := io.WriteString(c.port, s); err != nil {
		return fmt.Errorf("write to controller: %w", err)
	}
	return nil
}

// next waits for the next event
func (c *Controller) next(ctx context.Context) (event, error) {
	select {
	case ev := <-c.events:
		return ev, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return event{}, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		}
		return event{}, ctx.Err()
	case <-c.done:
		return event{}, c.closedErr()
	}
}

func (c *Controller) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, c.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func (c *Controller) pace(ctx context.Context) error {
	if c.cfg.Pace <= 0 {
		return nil
	}
	t := time.NewTimer(c.cfg.Pace)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sync terminates any partial line on the controller and runs "version",
// discarding everything printed before its echo. It leaves the link
// aligned on a prompt.
func (c *Controller) Sync(ctx context.Context) error {
	const marker = "version"

	c.execMu.Lock()
	defer c.execMu.Unlock()

	c.drain()
	if err := c.write("\r" + marker + "\r"); err != nil {
		return err
	}

	tctx, cancel := c.withTimeout(ctx)
	defer cancel()
	echoed := false
	for {
		ev, err := c.next(tctx)
		if err != nil {
			return fmt.Errorf("sync: %w", err)
		}
		switch {
		case ev.line == marker:
			echoed = true
		case ev.prompt && echoed:
			return c.pace(ctx)
		case !echoed:
			c.logger.Debug("discarding output before sync", "line", ev.line)
		}
	}
}

// Exec runs one console command and returns its output lines without the
// echo and the prompt
func (c *Controller) Exec(ctx context.Context, cmd string) ([]string, error) {
	if strings.ContainsAny(cmd, "\r\n") {
		return nil, fmt.Errorf("command %q spans lines", cmd)
	}
	if len(cmd) > protocol.LineMax {
		return nil, fmt.Errorf("command %q longer than %d bytes", cmd, protocol.LineMax)
	}

	c.execMu.Lock()
	defer c.execMu.Unlock()

	c.drain()
	c.logger.Debug("exec", "cmd", cmd)
	if err := c.write(cmd + "\r"); err != nil {
		return nil, err
	}

	tctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var lines []string
	echoed := false
	for {
		ev, err := c.next(tctx)
		if err != nil {
			return lines, fmt.Errorf("%q: %w", cmd, err)
		}
		if ev.prompt {
			if !echoed {
				// left over from before the command
				continue
			}
			break
		}
		if !echoed {
			if ev.line != cmd {
				return nil, fmt.Errorf("%w: sent %q, got %q", ErrEchoMismatch, cmd, ev.line)
			}
			echoed = true
			continue
		}
		lines = append(lines, ev.line)
	}
	return lines, c.pace(ctx)
}

// Send runs cmd and checks that want is among the response lines
func (c *Controller) Send(ctx context.Context, cmd, want string) error {
	lines, err := c.Exec(ctx, cmd)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if l == want {
			return nil
		}
	}
	return &ResponseError{Command: cmd, Want: want, Lines: lines}
}

// SendQuiet runs a command that prints nothing on success
func (c *Controller) SendQuiet(ctx context.Context, cmd string) error {
	lines, err := c.Exec(ctx, cmd)
	if err != nil {
		return err
	}
	if len(lines) > 0 {
		return &ResponseError{Command: cmd, Lines: lines}
	}
	return nil
}
