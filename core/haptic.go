// Haptic note sequencer
// Plays a NoteSequence on each haptic by toggling its GPIO from PulseTimer
// match events, in the same way digital_out toggles a software PWM pin.
package core

// hapticState is shared between Play/Stop and the timer dispatch context.
// Only touch it with interrupts disabled.
type hapticState struct {
	seq  NoteSequence
	idx  int
	busy bool

	pulseHiDur   uint32 // ticks the GPIO is high per pulse
	pulseLoDur   uint32 // ticks the GPIO is low per pulse
	pulseRptCntr uint32 // pulses left in the current Note
}

// NoteSequencer drives both haptics
type NoteSequencer struct {
	timer     *PulseTimer
	actuators [HapticCount]*Actuator
	state     [HapticCount]hapticState
}

// NewNoteSequencer binds the right and left actuators to their match
// channels on timer.
func NewNoteSequencer(timer *PulseTimer, right, left *Actuator) *NoteSequencer {
	s := &NoteSequencer{timer: timer}
	s.actuators[HapticRight] = right
	s.actuators[HapticLeft] = left
	timer.SetHandler(HapticRight.match(), s.nextHapticState)
	timer.SetHandler(HapticLeft.match(), s.nextHapticState)
	return s
}

// Play starts seq on haptic h and returns immediately. It fails if seq is
// empty or h is still playing a previous sequence.
func (s *NoteSequencer) Play(h Haptic, seq NoteSequence) error {
	if h >= HapticCount {
		return ErrBadIndex
	}
	if seq.Len() == 0 {
		return ErrEmptySequence
	}

	state := disableInterrupts()
	defer restoreInterrupts(state)

	st := &s.state[h]
	if st.busy {
		return ErrAlreadyPlaying
	}
	st.seq = seq
	st.idx = 0

	RecordTiming(EvtPlay, uint8(h), s.timer.Now(), uint32(seq.Len()), 0)
	if wake, ok := s.startHapticNote(h, s.timer.Now()); ok {
		s.timer.armLocked(h.match(), wake)
	}
	return nil
}

// Stop cancels playback on h and leaves the haptic inactive
func (s *NoteSequencer) Stop(h Haptic) {
	if h >= HapticCount {
		return
	}

	state := disableInterrupts()
	defer restoreInterrupts(state)

	s.timer.matches[h.match()].armed = false
	s.state[h] = hapticState{}
	s.actuators[h].SetActive(false)
	RecordTiming(EvtStop, uint8(h), s.timer.Now(), 0, 0)
}

// IsBusy reports whether h is playing a sequence
func (s *NoteSequencer) IsBusy(h Haptic) bool {
	if h >= HapticCount {
		return false
	}

	state := disableInterrupts()
	defer restoreInterrupts(state)

	return s.state[h].busy
}

// startHapticNote sets up the first playable Note at or after st.idx,
// starting at tick from. Zero length Notes are skipped without touching the
// GPIO. It returns the wake time of the first event, or false when the
// sequence has no Notes left.
func (s *NoteSequencer) startHapticNote(h Haptic, from uint32) (uint32, bool) {
	st := &s.state[h]
	act := s.actuators[h]

	for ; st.idx < st.seq.Len(); st.idx++ {
		note := st.seq.At(st.idx)
		if note.Duration == 0 {
			continue
		}
		st.busy = true

		pulses := uint32(note.Duration) * uint32(note.PulseFreq) / 1000
		if note.IsDelay() || pulses == 0 {
			// Hold low for the whole Note
			act.SetActive(false)
			st.pulseHiDur = 0
			st.pulseLoDur = 0
			st.pulseRptCntr = 1
			RecordTiming(EvtNoteStart, uint8(h), from, uint32(st.idx), 0)
			return from + TimerFromMS(uint32(note.Duration)), true
		}

		pulseWidth := uint32(1000000) / uint32(note.PulseFreq)
		st.pulseHiDur = TimerFromUS(pulseWidth * uint32(note.DutyCycle) / 512)
		st.pulseLoDur = TimerFromUS(pulseWidth) - st.pulseHiDur
		st.pulseRptCntr = pulses

		act.SetActive(true)
		RecordTiming(EvtNoteStart, uint8(h), from, uint32(st.idx), pulses)
		return from + st.pulseHiDur, true
	}

	st.busy = false
	return 0, false
}

// nextHapticState is the match handler of both haptics
func (s *NoteSequencer) nextHapticState(t *Timer) uint8 {
	h := Haptic(t.Channel)
	st := &s.state[h]
	act := s.actuators[h]

	if !st.busy {
		return SF_DONE
	}

	if act.Active() {
		// High portion of the pulse is finished
		act.SetActive(false)
		t.WakeTime += st.pulseLoDur
		return SF_RESCHEDULE
	}

	if st.pulseRptCntr > 0 {
		st.pulseRptCntr--
	}
	switch {
	case st.pulseRptCntr > 1:
		act.SetActive(true)
		t.WakeTime += st.pulseHiDur
		return SF_RESCHEDULE
	case st.pulseRptCntr == 1:
		// Stay low for the last period so consecutive Notes are distinct
		t.WakeTime += st.pulseHiDur + st.pulseLoDur
		return SF_RESCHEDULE
	}

	RecordTiming(EvtNoteDone, uint8(h), t.WakeTime, uint32(st.idx), 0)
	st.busy = false
	st.idx++
	if wake, ok := s.startHapticNote(h, t.WakeTime); ok {
		t.WakeTime = wake
		return SF_RESCHEDULE
	}

	st.seq = NoteSequence{}
	RecordTiming(EvtSequenceDone, uint8(h), t.WakeTime, uint32(st.idx), 0)
	return SF_DONE
}
