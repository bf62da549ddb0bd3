// Package cli implements the scjingle command line. Every command is a
// kong command struct whose Run method receives the logger and the raw
// link logger bound by main.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"

	"scjingle/host/controller"
	hostlog "scjingle/host/log"
	"scjingle/host/serial"
)

// CLI is the root of the command line
type CLI struct {
	Config string    `help:"Configuration file (JSON, YAML or TOML)" type:"path" env:"SCJINGLE_CONFIG"`
	Log    LogConfig `embed:"" prefix:"log."`

	Upload   Upload   `cmd:"" help:"Write the jingles of a jingle file to the controller"`
	Download Download `cmd:"" help:"Read the controller's jingles into a jingle file"`
	Play     Play     `cmd:"" help:"Play a jingle on the controller"`
	Exec     Exec     `cmd:"" help:"Run one console command and print its output"`
	Console  Console  `cmd:"" help:"Interactive controller console"`
	Simulate Simulate `cmd:"" help:"Run a simulated controller"`
	Render   Render   `cmd:"" help:"Render a jingle to audio"`
	Image    Image    `cmd:"" help:"Build an EEPROM image from a jingle file"`
}

// LogConfig selects log verbosity and destinations
type LogConfig struct {
	Level   string `help:"Log level" default:"info" enum:"trace,debug,info,warn,error"`
	File    string `help:"Also write the log to this file" type:"path"`
	RawFile string `help:"Trace the controller link to this file" type:"path"`
}

// Link selects and times the connection to a controller
type Link struct {
	Serial serial.Config     `embed:"" prefix:"serial."`
	Addr   string            `help:"TCP address of a simulated controller, used instead of the serial port" env:"SCJINGLE_ADDR"`
	Timing controller.Config `embed:"" prefix:"link."`
}

// Connect opens the link and synchronizes with the console
func (l *Link) Connect(ctx context.Context, logger *slog.Logger, raw hostlog.RawLogger) (*controller.Controller, error) {
	var port io.ReadWriteCloser
	if l.Addr != "" {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", l.Addr)
		if err != nil {
			return nil, err
		}
		logger.Debug("connected", "addr", l.Addr)
		port = conn
	} else {
		p, err := serial.Open(&l.Serial)
		if err != nil {
			return nil, err
		}
		if err := p.Flush(); err != nil {
			logger.Warn("flush failed", "device", l.Serial.Device, "error", err)
		}
		logger.Debug("opened", "device", l.Serial.Device)
		port = p
	}

	ctl := controller.New(port, l.Timing, logger, raw)
	if err := ctl.Sync(ctx); err != nil {
		ctl.Close()
		return nil, fmt.Errorf("no console response: %w", err)
	}
	return ctl, nil
}

// OpenRawLogger follows the log configuration: a raw file when given,
// stdout at trace level, nothing otherwise. Opened files are appended to
// closers.
func OpenRawLogger(cfg LogConfig, logger *slog.Logger, closers *[]io.Closer) hostlog.RawLogger {
	switch {
	case cfg.RawFile != "":
		f, err := os.OpenFile(cfg.RawFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open raw log file", "file", cfg.RawFile, "error", err)
			return hostlog.NewRaw(nil)
		}
		*closers = append(*closers, f)
		return hostlog.NewRaw(f)
	case cfg.Level == "trace":
		return hostlog.NewRaw(os.Stdout)
	}
	return hostlog.NewRaw(nil)
}
