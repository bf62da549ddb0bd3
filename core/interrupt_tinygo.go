//go:build tinygo

package core

import (
	"runtime"
	"runtime/interrupt"
)

// disableInterrupts disables interrupts and returns the previous state
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}

// waitForInterrupt lets the scheduler run the timer dispatch loop
func waitForInterrupt() {
	runtime.Gosched()
}
