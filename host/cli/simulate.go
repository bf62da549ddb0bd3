package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"os"

	"scjingle/core"
	"scjingle/host/jinglefile"
	"scjingle/host/sim"
	"scjingle/storage"
)

type Simulate struct {
	Listen     string `help:"Serve the console on this TCP address instead of stdin" placeholder:"HOST:PORT"`
	EEPROM     string `help:"EEPROM image backing the simulated controller, created when missing" type:"path"`
	Audio      bool   `help:"Play the actuator signal on the audio device" default:"true" negatable:""`
	SampleRate int    `help:"Audio sample rate" default:"48000"`
}

// Run is called by Kong when the simulate command is executed.
func (s *Simulate) Run(logger *slog.Logger) error {
	ctx, stop := signalContext()
	defer stop()

	var eeprom core.PersistentStore = storage.NewMemory(core.EEPROMSize)
	if s.EEPROM != "" {
		f, err := storage.OpenFile(s.EEPROM, core.EEPROMSize)
		if err != nil {
			return err
		}
		defer func() {
			if err := f.Sync(); err != nil {
				logger.Error("failed to sync EEPROM image", "file", s.EEPROM, "error", err)
			}
			f.Close()
		}()
		eeprom = f
	}

	dev, err := sim.New(eeprom, logger)
	if err != nil {
		return err
	}
	if s.Audio {
		startAudio(ctx, dev, s.SampleRate, logger)
	}
	go dev.Run(ctx)

	if s.Listen != "" {
		ln, err := net.Listen("tcp", s.Listen)
		if err != nil {
			return err
		}
		return serveListener(ctx, dev, ln, logger)
	}

	served := make(chan error, 1)
	go func() {
		served <- dev.Serve(ctx, struct {
			io.Reader
			io.Writer
		}{os.Stdin, stdout})
	}()
	select {
	case err := <-served:
		return err
	case <-ctx.Done():
		return nil
	}
}

func startAudio(ctx context.Context, dev *sim.Device, sampleRate int, logger *slog.Logger) {
	player, err := sim.NewPlayer(sampleRate)
	if err != nil {
		logger.Warn("audio disabled", "error", err)
		return
	}
	stream := sim.NewStream(sampleRate, dev.Clock.Now())
	dev.SetEdgeSink(stream.Push)
	go func() {
		defer player.Close()
		if err := player.Play(ctx, stream); err != nil && ctx.Err() == nil {
			logger.Warn("audio stopped", "error", err)
		}
	}()
}

// serveListener runs a console session per connection until ctx is done
func serveListener(ctx context.Context, dev *sim.Device, ln net.Listener, logger *slog.Logger) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	logger.Info("serving console", "addr", ln.Addr().String())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go func() {
			defer conn.Close()
			logger.Info("client connected", "remote", conn.RemoteAddr().String())
			if err := dev.Serve(ctx, conn); err != nil && !errors.Is(err, net.ErrClosed) {
				logger.Debug("client session ended", "remote", conn.RemoteAddr().String(), "error", err)
			}
		}()
	}
}

type Render struct {
	Source     string `arg:"" optional:"" help:"Jingle file (.yaml, .toml) or EEPROM image. The factory jingles when omitted." type:"path"`
	Index      int    `short:"i" help:"Jingle index" default:"0"`
	Output     string `short:"o" help:"WAV file to write. Played on the audio device when empty." type:"path"`
	SampleRate int    `help:"Sample rate" default:"48000"`
}

// Run is called by Kong when the render command is executed.
func (r *Render) Run(logger *slog.Logger) error {
	if r.Index < 0 || r.Index > math.MaxUint8 {
		return fmt.Errorf("%w: jingle %d", core.ErrBadIndex, r.Index)
	}
	store, err := loadStore(r.Source)
	if err != nil {
		return err
	}
	samples, err := sim.RenderJingle(store, uint8(r.Index), r.SampleRate)
	if err != nil {
		return err
	}
	seconds := float64(len(samples)/sim.Channels) / float64(r.SampleRate)

	if r.Output != "" {
		f, err := os.Create(r.Output)
		if err != nil {
			return err
		}
		if err := sim.WriteWAV(f, samples, r.SampleRate); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logger.Info("rendered jingle", "index", r.Index, "seconds", seconds, "file", r.Output)
		return nil
	}

	player, err := sim.NewPlayer(r.SampleRate)
	if err != nil {
		return err
	}
	defer player.Close()
	ctx, stop := signalContext()
	defer stop()
	logger.Info("playing jingle", "index", r.Index, "seconds", seconds)
	return player.Play(ctx, sim.NewPCMReader(samples))
}

// loadStore reads Jingle Data from a jingle file, an EEPROM image or, for
// an empty path, the factory defaults
func loadStore(path string) (*core.JingleStore, error) {
	if path == "" {
		store := core.NewJingleStore(core.JingleDataMaxBytes)
		return store, store.LoadDefaults()
	}
	if _, err := jinglefile.FormatFromPath(path); err == nil {
		f, err := jinglefile.Load(path)
		if err != nil {
			return nil, err
		}
		return f.Image(0)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img := storage.NewMemory(len(data))
	if _, err := img.WriteAt(data, 0); err != nil {
		return nil, err
	}
	store := core.NewJingleStore(core.JingleDataMaxBytes)
	if err := store.LoadFromPersisted(img); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

type Image struct {
	File   string `arg:"" type:"existingfile" help:"YAML or TOML jingle file"`
	Output string `arg:"" type:"path" help:"EEPROM image to write"`
	Size   int64  `help:"EEPROM size in bytes" default:"4096"`
}

// Run is called by Kong when the image command is executed.
func (i *Image) Run(logger *slog.Logger) error {
	f, err := jinglefile.Load(i.File)
	if err != nil {
		return err
	}
	store, err := f.Image(0)
	if err != nil {
		return err
	}

	img, err := storage.OpenFile(i.Output, i.Size)
	if err != nil {
		return err
	}
	defer img.Close()
	if err := store.SaveToPersisted(img); err != nil {
		return err
	}
	if err := img.Sync(); err != nil {
		return err
	}

	used := store.Capacity() - int(store.BytesFree())
	logger.Info("wrote EEPROM image", "file", i.Output, "jingles", store.Count(), "used", used)
	fmt.Fprintln(stdout, core.FormatChecksum(store.Checksum(), used))
	return nil
}
