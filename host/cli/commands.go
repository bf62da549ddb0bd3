package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"scjingle/core"
	"scjingle/host/controller"
	"scjingle/host/jinglefile"
	hostlog "scjingle/host/log"
)

// stdout receives command results, logs go through slog
var stdout io.Writer = os.Stdout

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

type Upload struct {
	Link `embed:""`

	File     string `arg:"" type:"existingfile" help:"YAML or TOML jingle file"`
	Append   bool   `help:"Add to the jingles on the controller instead of replacing them"`
	NoVerify bool   `help:"Skip the CRC comparison with the locally built image"`
	Save     bool   `help:"Store the result in the controller EEPROM" default:"true" negatable:""`
}

// Run is called by Kong when the upload command is executed.
func (u *Upload) Run(logger *slog.Logger, rawLogger hostlog.RawLogger) error {
	f, err := jinglefile.Load(u.File)
	if err != nil {
		return err
	}
	jingles, err := f.Convert()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	ctl, err := u.Connect(ctx, logger, rawLogger)
	if err != nil {
		return err
	}
	defer ctl.Close()

	res, err := ctl.Upload(ctx, jingles, controller.UploadOptions{
		Replace: !u.Append,
		Verify:  !u.NoVerify,
		Save:    u.Save,
		Progress: func(done, total int) {
			logger.Info("upload progress", "done", done, "total", total)
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Uploaded %d jingles starting at %d, %d on the controller\n", len(jingles), res.First, res.Count)
	fmt.Fprintln(stdout, core.FormatChecksum(res.Checksum, res.Used))
	return nil
}

type Download struct {
	Link `embed:""`

	Output string `short:"o" help:"Jingle file to write, format by extension. YAML on stdout when empty." type:"path"`
}

// Run is called by Kong when the download command is executed.
func (d *Download) Run(logger *slog.Logger, rawLogger hostlog.RawLogger) error {
	format := jinglefile.FormatYAML
	if d.Output != "" {
		var err error
		if format, err = jinglefile.FormatFromPath(d.Output); err != nil {
			return err
		}
	}

	ctx, stop := signalContext()
	defer stop()
	ctl, err := d.Connect(ctx, logger, rawLogger)
	if err != nil {
		return err
	}
	defer ctl.Close()

	jingles, err := ctl.Download(ctx)
	if err != nil {
		return err
	}
	data, err := jinglefile.FromJingles(jingles).Marshal(format)
	if err != nil {
		return err
	}
	if d.Output == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(d.Output, data, 0o644); err != nil {
		return err
	}
	logger.Info("downloaded jingles", "count", len(jingles), "file", d.Output)
	return nil
}

type Play struct {
	Link `embed:""`

	Index int `arg:"" help:"Jingle index"`
}

// Run is called by Kong when the play command is executed.
func (p *Play) Run(logger *slog.Logger, rawLogger hostlog.RawLogger) error {
	ctx, stop := signalContext()
	defer stop()
	ctl, err := p.Connect(ctx, logger, rawLogger)
	if err != nil {
		return err
	}
	defer ctl.Close()
	return ctl.Play(ctx, p.Index)
}

type Exec struct {
	Link `embed:""`

	Command []string `arg:"" help:"Console command and its arguments"`
}

// Run is called by Kong when the exec command is executed.
func (e *Exec) Run(logger *slog.Logger, rawLogger hostlog.RawLogger) error {
	ctx, stop := signalContext()
	defer stop()
	ctl, err := e.Connect(ctx, logger, rawLogger)
	if err != nil {
		return err
	}
	defer ctl.Close()

	lines, err := ctl.Exec(ctx, strings.Join(e.Command, " "))
	for _, l := range lines {
		fmt.Fprintln(stdout, l)
	}
	return err
}
