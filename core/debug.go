package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TimingEvent captures a haptic event for post-mortem analysis
type TimingEvent struct {
	EventType uint8  // Event type code
	Haptic    uint8  // Haptic the event belongs to
	Clock     uint32 // Timer tick at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtPlay         = 1 // Play accepted; v1 = number of Notes
	EvtNoteStart    = 2 // Note started; v1 = Note index, v2 = pulse count
	EvtNoteDone     = 3 // Note finished; v1 = Note index
	EvtSequenceDone = 4 // Last Note finished
	EvtStop         = 5 // Stop requested
)

const (
	TimingRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Timing capture ring buffer (non-blocking, for post-mortem)
	timingRing     [TimingRingSize]TimingEvent
	timingRingHead uint8        // Next write position
	timingEnabled  bool  = true // Always capture timing events
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordTiming captures a timing event in the ring buffer.
// Called from timer dispatch, so it must stay allocation free.
func RecordTiming(eventType, haptic uint8, clock, value1, value2 uint32) {
	if !timingEnabled {
		return
	}
	idx := timingRingHead
	timingRing[idx] = TimingEvent{
		EventType: eventType,
		Haptic:    haptic,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	timingRingHead = (idx + 1) % TimingRingSize
}

// TimingEvents returns the ring contents from oldest to newest
func TimingEvents() []TimingEvent {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	var out []TimingEvent
	start := timingRingHead
	for i := uint8(0); i < TimingRingSize; i++ {
		evt := timingRing[(start+i)%TimingRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

// DumpTimingRing writes the timing ring buffer using write
func DumpTimingRing(write DebugWriter) {
	if write == nil {
		return
	}

	write("[TIMING] === Timing Ring Dump ===")
	for _, evt := range TimingEvents() {
		var name string
		switch evt.EventType {
		case EvtPlay:
			name = "PLAY"
		case EvtNoteStart:
			name = "NOTE_START"
		case EvtNoteDone:
			name = "NOTE_DONE"
		case EvtSequenceDone:
			name = "SEQ_DONE"
		case EvtStop:
			name = "STOP"
		default:
			name = "UNKNOWN"
		}

		write("[TIMING] " + name +
			" haptic=" + Haptic(evt.Haptic).String() +
			" clock=" + utoa(evt.Clock) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	write("[TIMING] === End Dump ===")
}

// ClearTimingRing clears the timing buffer
func ClearTimingRing() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	for i := range timingRing {
		timingRing[i] = TimingEvent{}
	}
	timingRingHead = 0
}
