package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"scjingle/host/controller"
	hostlog "scjingle/host/log"
)

const consolePrompt = "scjingle> "

type Console struct {
	Link `embed:""`
}

// Run is called by Kong when the console command is executed.
func (c *Console) Run(logger *slog.Logger, rawLogger hostlog.RawLogger) error {
	ctx, stop := signalContext()
	defer stop()
	ctl, err := c.Connect(ctx, logger, rawLogger)
	if err != nil {
		return err
	}
	defer ctl.Close()

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		scanner := bufio.NewScanner(os.Stdin)
		return runConsole(ctx, ctl, func() (string, error) {
			if scanner.Scan() {
				return scanner.Text(), nil
			}
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}, stdout)
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to set raw mode: %w", err)
	}
	defer term.Restore(fd, state)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, consolePrompt)
	if w, h, err := term.GetSize(fd); err == nil {
		t.SetSize(w, h)
	}
	return runConsole(ctx, ctl, t.ReadLine, t)
}

// runConsole passes every line read to the controller until quit, end of
// input or a dead link
func runConsole(ctx context.Context, ctl *controller.Controller, readLine func() (string, error), out io.Writer) error {
	fmt.Fprintln(out, "Enter controller commands ('help' lists them, 'quit' exits)")
	for {
		line, err := readLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "quit", "exit", "q":
			return nil
		}

		lines, err := ctl.Exec(ctx, line)
		for _, l := range lines {
			fmt.Fprintln(out, l)
		}
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, controller.ErrClosed) {
			return err
		}
		fmt.Fprintf(out, "Error: %v\n", err)
	}
}
