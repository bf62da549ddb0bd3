package controller

import (
	"context"
	"fmt"
	"strings"

	"scjingle/core"
)

// Version returns the firmware version string
func (c *Controller) Version(ctx context.Context) (string, error) {
	lines, err := c.Exec(ctx, "version")
	if err != nil {
		return "", err
	}
	if len(lines) != 1 {
		return "", &ResponseError{Command: "version", Want: "<version>", Lines: lines}
	}
	return lines[0], nil
}

// Checksum returns the CRC16 and the used size of the controller's Jingle
// Data
func (c *Controller) Checksum(ctx context.Context) (uint16, int, error) {
	const cmd = "jingle crc"
	lines, err := c.Exec(ctx, cmd)
	if err != nil {
		return 0, 0, err
	}
	for _, l := range lines {
		var crc uint16
		var used int
		if _, err := fmt.Sscanf(l, "Jingle Data CRC = 0x%x (%d bytes)", &crc, &used); err == nil {
			return crc, used, nil
		}
	}
	return 0, 0, &ResponseError{Command: cmd, Want: core.FormatChecksum(0, 0), Lines: lines}
}

// Count returns the number of jingles stored on the controller
func (c *Controller) Count(ctx context.Context) (int, error) {
	const cmd = "jingle print"
	lines, err := c.Exec(ctx, cmd)
	if err != nil {
		return 0, err
	}
	for _, l := range lines {
		var n int
		if _, err := fmt.Sscanf(l, "Number of Jingles = %d", &n); err == nil {
			return n, nil
		}
	}
	return 0, &ResponseError{Command: cmd, Want: "Number of Jingles = <n>", Lines: lines}
}

// Jingle reads back jingle idx note by note
func (c *Controller) Jingle(ctx context.Context, idx int) (core.Jingle, error) {
	cmd := fmt.Sprintf("jingle print %d", idx)
	lines, err := c.Exec(ctx, cmd)
	if err != nil {
		return core.Jingle{}, err
	}

	var j core.Jingle
	counts := map[string]int{}
	for _, l := range lines {
		var side string
		var n, i int
		var duty, freq, dur uint16
		switch {
		case strings.HasPrefix(l, "numNotes "):
			if _, err := fmt.Sscanf(l, "numNotes %s = %d", &side, &n); err != nil {
				return core.Jingle{}, fmt.Errorf("%q: bad line %q: %w", cmd, l, err)
			}
			counts[side] = n
		case strings.Contains(l, " Note["):
			if _, err := fmt.Sscanf(l, "%s Note[%d] = 0x%x, 0x%x, 0x%x", &side, &i, &duty, &freq, &dur); err != nil {
				return core.Jingle{}, fmt.Errorf("%q: bad line %q: %w", cmd, l, err)
			}
			note := core.Note{DutyCycle: uint8(duty), PulseFreq: freq, Duration: dur}
			switch side {
			case core.HapticRight.String():
				j.Right = append(j.Right, note)
			case core.HapticLeft.String():
				j.Left = append(j.Left, note)
			}
		}
	}

	if _, ok := counts[core.HapticRight.String()]; !ok {
		return core.Jingle{}, &ResponseError{Command: cmd, Want: "numNotes right = <n>", Lines: lines}
	}
	if counts[core.HapticRight.String()] != len(j.Right) || counts[core.HapticLeft.String()] != len(j.Left) {
		return core.Jingle{}, fmt.Errorf("%q: note count mismatch, header says %d/%d, got %d/%d notes",
			cmd, counts["right"], counts["left"], len(j.Right), len(j.Left))
	}
	return j, nil
}

// Download reads back every jingle on the controller
func (c *Controller) Download(ctx context.Context) ([]core.Jingle, error) {
	n, err := c.Count(ctx)
	if err != nil {
		return nil, err
	}
	jingles := make([]core.Jingle, 0, n)
	for i := 0; i < n; i++ {
		j, err := c.Jingle(ctx, i)
		if err != nil {
			return nil, err
		}
		jingles = append(jingles, j)
	}
	return jingles, nil
}

// Play starts jingle idx
func (c *Controller) Play(ctx context.Context, idx int) error {
	return c.SendQuiet(ctx, fmt.Sprintf("jingle play %d", idx))
}

// UploadOptions control Upload
type UploadOptions struct {
	// Replace clears the controller's Jingle Data first, otherwise the
	// jingles are appended
	Replace bool
	// Verify compares the controller CRC with a locally built image
	Verify bool
	// Save writes the result to EEPROM
	Save bool
	// Progress, when set, is called after each jingle
	Progress func(done, total int)
}

// UploadResult describes the Jingle Data after an upload
type UploadResult struct {
	First    int // Index of the first uploaded jingle
	Count    int // Jingles on the controller
	Checksum uint16
	Used     int
}

// Upload writes jingles to the controller with "jingle add" and
// "jingle note" commands
func (c *Controller) Upload(ctx context.Context, jingles []core.Jingle, opts UploadOptions) (UploadResult, error) {
	var res UploadResult

	var existing []core.Jingle
	if opts.Replace {
		if err := c.SendQuiet(ctx, "jingle clear"); err != nil {
			return res, err
		}
	} else if opts.Verify {
		var err error
		if existing, err = c.Download(ctx); err != nil {
			return res, fmt.Errorf("reading current jingles: %w", err)
		}
	} else {
		n, err := c.Count(ctx)
		if err != nil {
			return res, err
		}
		existing = make([]core.Jingle, n)
	}

	local := core.NewJingleStore(core.JingleDataMaxBytes)
	all := append(append([]core.Jingle(nil), existing...), jingles...)
	for i, j := range all {
		if _, err := local.AppendJingle(j); err != nil {
			return res, fmt.Errorf("jingle %d does not fit the controller: %w", i, err)
		}
	}

	res.First = len(existing)
	for i, j := range jingles {
		idx := res.First + i
		cmd := fmt.Sprintf("jingle add %d %d", len(j.Right), len(j.Left))
		if err := c.Send(ctx, cmd, core.FormatJingleAdded(uint8(idx))); err != nil {
			return res, err
		}
		if err := c.sendNotes(ctx, idx, core.HapticRight, j.Right); err != nil {
			return res, err
		}
		if err := c.sendNotes(ctx, idx, core.HapticLeft, j.Left); err != nil {
			return res, err
		}
		c.logger.Info("uploaded jingle", "index", idx, "right", len(j.Right), "left", len(j.Left))
		if opts.Progress != nil {
			opts.Progress(i+1, len(jingles))
		}
	}
	res.Count = len(all)

	crc, used, err := c.Checksum(ctx)
	if err != nil {
		return res, err
	}
	res.Checksum, res.Used = crc, used
	if opts.Verify {
		wantUsed := local.Capacity() - int(local.BytesFree())
		if crc != local.Checksum() || used != wantUsed {
			return res, fmt.Errorf("verify failed: controller has %s, expected %s",
				core.FormatChecksum(crc, used), core.FormatChecksum(local.Checksum(), wantUsed))
		}
	}

	if opts.Save {
		if err := c.Send(ctx, "jingle eeprom save", core.RespSaveComplete); err != nil {
			return res, err
		}
	}
	return res, nil
}

// sendNotes sets the notes of one haptic. New jingles start zeroed, so
// all-zero notes are skipped.
func (c *Controller) sendNotes(ctx context.Context, idx int, h core.Haptic, notes []core.Note) error {
	for i, n := range notes {
		if n == (core.Note{}) {
			continue
		}
		cmd := fmt.Sprintf("jingle note %d %s %d %d %d %d", idx, h, i, n.DutyCycle, n.PulseFreq, n.Duration)
		if err := c.Send(ctx, cmd, core.RespNoteUpdated); err != nil {
			return err
		}
	}
	return nil
}
