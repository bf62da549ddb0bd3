// Package sim runs the controller firmware on the host. The pulse timer is
// driven from a wall clock ticker, the console is served over any byte
// stream and the actuator pins can be rendered as audio.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"scjingle/core"
)

// Version is reported by the simulated console
const Version = "scjingle-sim"

// renderSteps bounds the timer matches of one offline render
const renderSteps = 1 << 24

// tailUS is the silence rendered after the last edge
const tailUS = 20000

// EdgeSink receives the actuator edges produced by Run
type EdgeSink func(edges []core.Edge)

// Device is a simulated controller
type Device struct {
	Firmware *core.Firmware
	Clock    *core.SimClock
	GPIO     *core.MemGPIO
	Source   core.JingleSource

	logger *slog.Logger

	consoleMu sync.Mutex

	sinkMu sync.Mutex
	sink   EdgeSink
}

// New boots a simulated controller. eeprom may be nil, in which case the
// factory jingles are loaded and the eeprom commands are absent.
func New(eeprom core.PersistentStore, logger *slog.Logger) (*Device, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clk := &core.SimClock{}
	gpio := core.NewMemGPIO(clk)
	fw, err := core.NewFirmware(clk, gpio, eeprom, Version)
	if err != nil {
		return nil, err
	}

	src, err := fw.LoadJingleData()
	if err != nil {
		logger.Warn("Jingle Data not loaded from EEPROM", "error", err)
	}
	store := fw.Engine.Store()
	logger.Info("booted", "source", src, "jingles", store.Count(), "free", store.BytesFree())

	return &Device{
		Firmware: fw,
		Clock:    clk,
		GPIO:     gpio,
		Source:   src,
		logger:   logger,
	}, nil
}

// SetEdgeSink installs the receiver of actuator edges. A nil sink drops
// them.
func (d *Device) SetEdgeSink(sink EdgeSink) {
	d.sinkMu.Lock()
	defer d.sinkMu.Unlock()
	d.sink = sink
}

// Advance moves simulated time forward by us microseconds, firing every
// match on the way, and hands the resulting edges to the sink
func (d *Device) Advance(us uint32) {
	d.Firmware.Timer.RunFor(d.Clock, us)
	edges := d.GPIO.Drain()

	d.sinkMu.Lock()
	sink := d.sink
	d.sinkMu.Unlock()
	if sink != nil && len(edges) > 0 {
		sink(edges)
	}
}

// Run keeps simulated time in step with the wall clock until ctx is done
func (d *Device) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			if elapsed <= 0 {
				continue
			}
			last = now
			d.Advance(uint32(elapsed.Microseconds()))
		}
	}
}

// Serve runs a console session on rw until the stream ends or ctx is done.
// Sessions are serialized.
func (d *Device) Serve(ctx context.Context, rw io.ReadWriter) error {
	d.consoleMu.Lock()
	defer d.consoleMu.Unlock()

	console := core.NewConsole(d.Firmware.Commands, rw)
	console.Start()

	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := rw.Read(buf)
		if n > 0 {
			console.Feed(buf[:n])
		}
		if err != nil {
			d.logger.Debug("console session ended", "commands", console.Commands, "failures", console.Failures, "error", err)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// RenderJingle plays jingle idx of store on a private simulated controller
// in virtual time and returns the actuator signal as interleaved stereo
// float32 samples, left haptic first
func RenderJingle(store *core.JingleStore, idx uint8, sampleRate int) ([]float32, error) {
	clk := &core.SimClock{}
	gpio := core.NewMemGPIO(clk)
	fw, err := core.NewFirmware(clk, gpio, nil, Version)
	if err != nil {
		return nil, err
	}
	if err := fw.Engine.Store().LoadImage(store.Bytes()); err != nil {
		return nil, err
	}
	if err := fw.Engine.PlayJingle(idx); err != nil {
		return nil, err
	}

	fw.Timer.RunUntilIdle(clk, renderSteps)
	if fw.Engine.Busy() {
		fw.Engine.Stop()
		return nil, fmt.Errorf("jingle %d still playing after %d timer events", idx, renderSteps)
	}
	return RenderEdges(gpio.Drain(), 0, core.TimerToUS(clk.Now())+tailUS, sampleRate), nil
}
