package core

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scjingle/storage"
)

func newTestEngine(t *testing.T) (*hapticRig, *JingleEngine) {
	t.Helper()
	r := newHapticRig(t)
	store := NewJingleStore(0)
	require.NoError(t, store.LoadDefaults())
	return r, NewJingleEngine(store, r.seq)
}

func TestJingleEnginePlay(t *testing.T) {
	r, e := newTestEngine(t)

	require.NoError(t, e.PlayJingle(0))
	assert.True(t, r.seq.IsBusy(HapticRight))
	assert.True(t, r.seq.IsBusy(HapticLeft))
	assert.True(t, e.Busy())

	r.timer.RunUntilIdle(r.clk, 1_000_000)
	assert.False(t, e.Busy())
	assert.NotEmpty(t, r.gpio.Edges(PinHapticRight))
	assert.NotEmpty(t, r.gpio.Edges(PinHapticLeft))
}

func TestJingleEngineSingleChannel(t *testing.T) {
	r, e := newTestEngine(t)

	// Factory jingle 8 only has notes for the right haptic
	require.NoError(t, e.PlayJingle(8))
	assert.True(t, r.seq.IsBusy(HapticRight))
	assert.False(t, r.seq.IsBusy(HapticLeft))

	r.timer.RunUntilIdle(r.clk, 1_000_000)
	assert.Empty(t, r.gpio.Edges(PinHapticLeft))
}

func TestJingleEngineAddedJingle(t *testing.T) {
	r := newHapticRig(t)
	e := NewJingleEngine(NewJingleStore(0), r.seq)
	store := e.Store()
	assert.Equal(t, uint16(JingleDataMaxBytes-6), store.BytesFree())

	require.NoError(t, e.AddJingle(0, 2, 1))
	assert.Equal(t, uint8(1), store.Count())
	nr, err := store.NoteCount(HapticRight, 0)
	require.NoError(t, err)
	nl, err := store.NoteCount(HapticLeft, 0)
	require.NoError(t, err)
	assert.Equal(t, [2]uint16{2, 1}, [2]uint16{nr, nl})

	require.NoError(t, e.SetNote(0, HapticRight, 0, Note{DutyCycle: 128, PulseFreq: 250, Duration: 100}))
	require.NoError(t, e.PlayJingle(0))

	// The zeroed left note has no duration and completes at once
	assert.True(t, r.seq.IsBusy(HapticRight))
	assert.False(t, r.seq.IsBusy(HapticLeft))

	r.timer.RunUntilIdle(r.clk, 1000)
	assert.False(t, e.Busy())
	assert.Equal(t, uint32(testStart+100_000), r.clk.Now())

	pulses := r.pulses(PinHapticRight)
	require.Len(t, pulses, 24)
	assert.Equal(t, pulse{Rise: testStart, Fall: testStart + 1000}, pulses[0])
	assert.Equal(t, pulse{Rise: testStart + 23*4000, Fall: testStart + 23*4000 + 1000}, pulses[23])
	assert.Empty(t, r.gpio.Edges(PinHapticLeft))
}

func TestJingleEnginePlayErrors(t *testing.T) {
	r, e := newTestEngine(t)

	assert.ErrorIs(t, e.PlayJingle(FactoryJingleCount), ErrBadIndex)
	assert.False(t, e.Busy())

	require.NoError(t, e.PlayJingle(1))
	assert.ErrorIs(t, e.PlayJingle(1), ErrAlreadyPlaying)

	e.Stop()
	assert.False(t, e.Busy())
	assert.False(t, r.gpio.ReadPin(PinHapticRight))
	assert.False(t, r.gpio.ReadPin(PinHapticLeft))
}

func TestJingleEngineEditsBlockedWhilePlaying(t *testing.T) {
	r, e := newTestEngine(t)
	eeprom := storage.NewMemory(EEPROMSize)

	require.NoError(t, e.PlayJingle(3))
	before := e.Store().Bytes()

	assert.ErrorIs(t, e.AddJingle(0, 1, 1), ErrStoreBusy)
	assert.ErrorIs(t, e.DeleteJingle(3), ErrStoreBusy)
	assert.ErrorIs(t, e.SetNote(3, HapticRight, 0, Note{}), ErrStoreBusy)
	assert.ErrorIs(t, e.Clear(), ErrStoreBusy)
	assert.ErrorIs(t, e.LoadDefaults(), ErrStoreBusy)
	assert.ErrorIs(t, e.Load(eeprom), ErrStoreBusy)
	assert.Equal(t, before, e.Store().Bytes())

	// Persisting does not modify the arena
	assert.NoError(t, e.Save(eeprom))

	r.timer.RunUntilIdle(r.clk, 1_000_000)
	assert.NoError(t, e.DeleteJingle(3))
	assert.Equal(t, uint8(FactoryJingleCount-1), e.Store().Count())
	assert.NoError(t, e.Load(eeprom))
	assert.Equal(t, uint8(FactoryJingleCount), e.Store().Count())
	assert.NoError(t, e.ClearPersisted(eeprom))
	assert.NoError(t, e.Clear())
	assert.Equal(t, uint8(0), e.Store().Count())
}

func TestJingleEngineWait(t *testing.T) {
	r, e := newTestEngine(t)
	require.NoError(t, e.PlayJingle(5))

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				r.timer.Step(r.clk)
				runtime.Gosched()
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Wait(ctx))
	assert.False(t, e.Busy())
}

func TestJingleEngineWaitCancelled(t *testing.T) {
	_, e := newTestEngine(t)
	require.NoError(t, e.PlayJingle(5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.Wait(ctx), context.Canceled)
	e.Stop()
}
