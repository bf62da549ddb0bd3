package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scjingle/core"
	"scjingle/host/controller"
	"scjingle/host/jinglefile"
	hostlog "scjingle/host/log"
	"scjingle/host/sim"
	"scjingle/storage"
)

const song = `
bpm: 120
intensity: 100
jingles:
  - name: hello
    right:
      - {note: A4, beats: 0.5}
      - {rest: true, beats: 0.25}
      - {note: E5, beats: 0.5}
    left:
      - {freq: 220, ms: 250}
  - name: click
    left:
      - {freq: 1000, ms: 10, duty: 255}
`

var (
	quiet = slog.New(slog.NewTextHandler(io.Discard, nil))
	noRaw = hostlog.NewRaw(nil)
)

// startSim serves a simulated controller on a loopback port
func startSim(t *testing.T) (*sim.Device, Link) {
	t.Helper()
	dev, err := sim.New(storage.NewMemory(core.EEPROMSize), nil)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveListener(ctx, dev, ln, quiet) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return dev, Link{
		Addr:   ln.Addr().String(),
		Timing: controller.Config{Timeout: 2 * time.Second},
	}
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func writeSong(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.yaml")
	require.NoError(t, os.WriteFile(path, []byte(song), 0o644))
	return path
}

func songJingles(t *testing.T) []core.Jingle {
	t.Helper()
	f, err := jinglefile.Parse([]byte(song), jinglefile.FormatYAML)
	require.NoError(t, err)
	jingles, err := f.Convert()
	require.NoError(t, err)
	return jingles
}

func TestParseCommandLine(t *testing.T) {
	var c CLI
	parser, err := kong.New(&c)
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{"play", "3", "--addr", "127.0.0.1:9000", "--link.pace", "0s"})
	require.NoError(t, err)
	assert.Equal(t, "play <index>", kctx.Command())
	assert.Equal(t, 3, c.Play.Index)
	assert.Equal(t, "127.0.0.1:9000", c.Play.Addr)
	assert.Equal(t, "/dev/ttyACM0", c.Play.Serial.Device)
	assert.Equal(t, 2*time.Second, c.Play.Timing.Timeout)
	assert.Zero(t, c.Play.Timing.Pace)
	assert.Equal(t, "info", c.Log.Level)

	_, err = parser.Parse([]string{"exec", "jingle", "print", "2", "--log.level", "debug"})
	require.NoError(t, err)
	assert.Equal(t, []string{"jingle", "print", "2"}, c.Exec.Command)
	assert.Equal(t, "debug", c.Log.Level)

	_, err = parser.Parse([]string{"play", "1", "--log.level", "loud"})
	assert.Error(t, err)
}

func TestUploadAndDownload(t *testing.T) {
	dev, link := startSim(t)
	out := captureStdout(t)

	up := Upload{Link: link, File: writeSong(t), Save: true}
	require.NoError(t, up.Run(quiet, noRaw))
	assert.Contains(t, out.String(), "Uploaded 2 jingles starting at 0, 2 on the controller")

	store := dev.Firmware.Engine.Store()
	require.Equal(t, uint8(2), store.Count())

	persisted := core.NewJingleStore(core.JingleDataMaxBytes)
	require.NoError(t, persisted.LoadFromPersisted(dev.Firmware.EEPROM))
	assert.Equal(t, store.Bytes(), persisted.Bytes())

	path := filepath.Join(t.TempDir(), "back.toml")
	down := Download{Link: link, Output: path}
	require.NoError(t, down.Run(quiet, noRaw))

	f, err := jinglefile.Load(path)
	require.NoError(t, err)
	got, err := f.Convert()
	require.NoError(t, err)
	if diff := cmp.Diff(songJingles(t), got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("downloaded jingles mismatch (-want +got):\n%s", diff)
	}
}

func TestUploadAppend(t *testing.T) {
	dev, link := startSim(t)
	require.NoError(t, dev.Firmware.Engine.Clear())
	captureStdout(t)

	up := Upload{Link: link, File: writeSong(t), Append: true}
	require.NoError(t, up.Run(quiet, noRaw))
	require.NoError(t, up.Run(quiet, noRaw))
	assert.Equal(t, uint8(4), dev.Firmware.Engine.Store().Count())
}

func TestDownloadToStdout(t *testing.T) {
	_, link := startSim(t)
	out := captureStdout(t)

	require.NoError(t, (&Download{Link: link}).Run(quiet, noRaw))
	f, err := jinglefile.Parse(out.Bytes(), jinglefile.FormatYAML)
	require.NoError(t, err)
	assert.Len(t, f.Jingles, core.FactoryJingleCount)
}

func TestExecAndPlay(t *testing.T) {
	dev, link := startSim(t)
	out := captureStdout(t)

	require.NoError(t, (&Exec{Link: link, Command: []string{"version"}}).Run(quiet, noRaw))
	assert.Equal(t, sim.Version+"\n", out.String())

	require.NoError(t, (&Play{Link: link, Index: 1}).Run(quiet, noRaw))
	assert.True(t, dev.Firmware.Engine.Busy())

	err := (&Play{Link: link, Index: 200}).Run(quiet, noRaw)
	var respErr *controller.ResponseError
	assert.True(t, errors.As(err, &respErr))
}

func TestConnectFails(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	link := Link{Addr: addr}
	_, err = link.Connect(context.Background(), quiet, noRaw)
	assert.Error(t, err)
}

func TestRunConsole(t *testing.T) {
	_, link := startSim(t)
	ctx := context.Background()
	ctl, err := link.Connect(ctx, quiet, noRaw)
	require.NoError(t, err)
	defer ctl.Close()

	script := []string{"version", "  ", "bogus", "quit", "never read"}
	read := 0
	readLine := func() (string, error) {
		if read == len(script) {
			return "", io.EOF
		}
		read++
		return script[read-1], nil
	}

	var out bytes.Buffer
	require.NoError(t, runConsole(ctx, ctl, readLine, &out))
	assert.Equal(t, 4, read, "stops at quit")
	assert.Contains(t, out.String(), sim.Version+"\n")
	assert.Contains(t, out.String(), "command not found\n")
}

func TestRunConsoleEOF(t *testing.T) {
	_, link := startSim(t)
	ctx := context.Background()
	ctl, err := link.Connect(ctx, quiet, noRaw)
	require.NoError(t, err)
	defer ctl.Close()

	var out bytes.Buffer
	err = runConsole(ctx, ctl, func() (string, error) { return "", io.EOF }, &out)
	assert.NoError(t, err)
}

func TestImageAndRender(t *testing.T) {
	captureStdout(t)
	dir := t.TempDir()
	img := filepath.Join(dir, "eeprom.bin")

	require.NoError(t, (&Image{File: writeSong(t), Output: img, Size: core.EEPROMSize}).Run(quiet))
	st, err := os.Stat(img)
	require.NoError(t, err)
	assert.Equal(t, int64(core.EEPROMSize), st.Size())

	store, err := loadStore(img)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), store.Count())

	wavPath := filepath.Join(dir, "click.wav")
	require.NoError(t, (&Render{Source: img, Index: 1, Output: wavPath, SampleRate: 8000}).Run(quiet))

	f, err := os.Open(wavPath)
	require.NoError(t, err)
	defer f.Close()
	samples, rate, err := sim.ReadWAV(f)
	require.NoError(t, err)
	assert.Equal(t, 8000, rate)
	assert.NotEmpty(t, samples)

	err = (&Render{Source: img, Index: 2, Output: wavPath, SampleRate: 8000}).Run(quiet)
	assert.ErrorIs(t, err, core.ErrBadIndex)
	err = (&Render{Index: 300, Output: wavPath}).Run(quiet)
	assert.ErrorIs(t, err, core.ErrBadIndex)
}

func TestLoadStore(t *testing.T) {
	store, err := loadStore("")
	require.NoError(t, err)
	assert.Equal(t, uint8(core.FactoryJingleCount), store.Count())

	store, err = loadStore(writeSong(t))
	require.NoError(t, err)
	assert.Equal(t, uint8(2), store.Count())

	blank := filepath.Join(t.TempDir(), "blank.bin")
	require.NoError(t, os.WriteFile(blank, make([]byte, core.EEPROMSize), 0o644))
	_, err = loadStore(blank)
	assert.ErrorIs(t, err, core.ErrInvalidPersistedData)
}
