//go:build !tinygo

package core

import (
	"runtime"
	"sync"
)

// State is a placeholder for interrupt state on regular Go
type State uintptr

// irqMu stands in for the interrupt mask on host builds, where timer
// dispatch may run on its own goroutine.
var irqMu sync.Mutex

// disableInterrupts enters the critical section shared with Dispatch
func disableInterrupts() State {
	irqMu.Lock()
	return 0
}

// restoreInterrupts leaves the critical section
func restoreInterrupts(state State) {
	irqMu.Unlock()
}

// waitForInterrupt yields while the main flow waits on a dispatch context
func waitForInterrupt() {
	runtime.Gosched()
}
