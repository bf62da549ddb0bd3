package core

import (
	"context"
	"sync/atomic"
)

// Timer is the scheduled event held by one match channel
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	Channel  MatchChannel
	armed    bool
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// MatchChannel selects one comparator of a PulseTimer
type MatchChannel uint8

// One match per haptic, plus one reserved for Sleep.
const (
	MatchRight MatchChannel = iota
	MatchLeft
	MatchSleep
	MatchCount
)

// PulseTimer is a free-running microsecond counter with MatchCount
// independent one-shot comparators. Handlers run from Dispatch, which on
// hardware is the timer interrupt. A handler re-arms itself by updating
// t.WakeTime and returning SF_RESCHEDULE.
type PulseTimer struct {
	clock     Clock
	matches   [MatchCount]Timer
	sleepDone atomic.Bool
}

// NewPulseTimer creates a PulseTimer reading ticks from clock. A nil clock
// selects the global system tick counter.
func NewPulseTimer(clock Clock) *PulseTimer {
	if clock == nil {
		clock = SystemClock{}
	}
	pt := &PulseTimer{clock: clock}
	for i := range pt.matches {
		pt.matches[i].Channel = MatchChannel(i)
	}
	pt.matches[MatchSleep].Handler = pt.sleepEvent
	return pt
}

// Now returns the current counter value
func (pt *PulseTimer) Now() uint32 {
	return pt.clock.Now()
}

// SetHandler installs the expiry handler of a match channel
func (pt *PulseTimer) SetHandler(ch MatchChannel, handler func(*Timer) uint8) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	pt.matches[ch].Handler = handler
}

// ArmAt schedules the channel's handler at tick. An armed channel is
// silently overwritten.
func (pt *PulseTimer) ArmAt(ch MatchChannel, tick uint32) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	pt.armLocked(ch, tick)
}

// armLocked must be called with interrupts disabled
func (pt *PulseTimer) armLocked(ch MatchChannel, tick uint32) {
	t := &pt.matches[ch]
	t.WakeTime = tick
	t.armed = true
}

// Disarm stops the channel from firing
func (pt *PulseTimer) Disarm(ch MatchChannel) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	pt.matches[ch].armed = false
}

// Armed reports whether the channel is waiting to fire
func (pt *PulseTimer) Armed(ch MatchChannel) bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	return pt.matches[ch].armed
}

// NextWake returns the earliest wake time over all armed channels
func (pt *PulseTimer) NextWake() (uint32, bool) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	t := pt.earliestLocked()
	if t == nil {
		return 0, false
	}
	return t.WakeTime, true
}

// Dispatch fires every armed channel whose wake time has been reached,
// earliest first. Rescheduled handlers that are already due fire again in
// the same call.
func (pt *PulseTimer) Dispatch() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	pt.dispatchLocked(pt.clock.Now())
}

func (pt *PulseTimer) dispatchLocked(now uint32) {
	for {
		t := pt.earliestLocked()
		if t == nil || timerIsBefore(now, t.WakeTime) {
			return
		}

		t.armed = false
		if t.Handler == nil {
			continue
		}
		if t.Handler(t) == SF_RESCHEDULE {
			t.armed = true
		}
	}
}

func (pt *PulseTimer) earliestLocked() *Timer {
	var first *Timer
	for i := range pt.matches {
		t := &pt.matches[i]
		if !t.armed {
			continue
		}
		if first == nil || timerIsBefore(t.WakeTime, first.WakeTime) {
			first = t
		}
	}
	return first
}

// Sleep blocks the calling flow for us microseconds using the reserved
// match channel. It dispatches due matches itself while waiting, so it may
// be called from the loop that normally calls Dispatch.
func (pt *PulseTimer) Sleep(ctx context.Context, us uint32) error {
	pt.sleepDone.Store(false)
	pt.ArmAt(MatchSleep, pt.Now()+TimerFromUS(us))

	for !pt.sleepDone.Load() {
		if err := ctx.Err(); err != nil {
			pt.Disarm(MatchSleep)
			return err
		}
		pt.Dispatch()
		if pt.sleepDone.Load() {
			break
		}
		waitForInterrupt()
	}
	return nil
}

func (pt *PulseTimer) sleepEvent(t *Timer) uint8 {
	pt.sleepDone.Store(true)
	return SF_DONE
}

// SimClock is a manually advanced Clock for host simulation and tests
type SimClock struct {
	ticks atomic.Uint32
}

// Now returns the simulated tick count
func (c *SimClock) Now() uint32 {
	return c.ticks.Load()
}

// Set moves the simulated clock to ticks
func (c *SimClock) Set(ticks uint32) {
	c.ticks.Store(ticks)
}

// Step advances clk to the earliest armed wake time and dispatches it, the
// way the hardware counter would reach the next match. It returns false
// when nothing is armed.
func (pt *PulseTimer) Step(clk *SimClock) bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	t := pt.earliestLocked()
	if t == nil {
		return false
	}
	if timerIsBefore(clk.Now(), t.WakeTime) {
		clk.Set(t.WakeTime)
	}
	pt.dispatchLocked(clk.Now())
	return true
}

// RunFor steps every match due within the next us microseconds, then leaves
// clk at the end of the window.
func (pt *PulseTimer) RunFor(clk *SimClock, us uint32) {
	deadline := clk.Now() + TimerFromUS(us)
	for {
		next, ok := pt.NextWake()
		if !ok || timerIsBefore(deadline, next) {
			break
		}
		pt.Step(clk)
	}
	clk.Set(deadline)
}

// RunUntilIdle steps until no channel is armed or maxSteps is reached and
// returns the number of steps taken.
func (pt *PulseTimer) RunUntilIdle(clk *SimClock, maxSteps int) int {
	steps := 0
	for steps < maxSteps && pt.Step(clk) {
		steps++
	}
	return steps
}
