package core

// The haptic timer counts microseconds, matching the 1 MHz prescaled
// counter the Jingle timings are expressed in.
const (
	TimerFreq = 1000000
)

var bootTime uint32

// Clock is a source of timer ticks for a PulseTimer.
type Clock interface {
	Now() uint32
}

// SystemClock reads the global tick counter maintained by the target.
type SystemClock struct{}

// Now returns GetTime().
func (SystemClock) Now() uint32 {
	return GetTime()
}

// GetTime returns the current system time in timer ticks
func GetTime() uint32 {
	return getSystemTicks()
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ticks uint32) {
	setSystemTicks(ticks)
}

// GetUptime returns ticks elapsed since TimerInit
func GetUptime() uint32 {
	return GetTime() - bootTime
}

// TimerFromUS converts microseconds to timer ticks
func TimerFromUS(us uint32) uint32 {
	return us * (TimerFreq / 1000000)
}

// TimerFromMS converts milliseconds to timer ticks
func TimerFromMS(ms uint32) uint32 {
	return TimerFromUS(ms * 1000)
}

// TimerToUS converts timer ticks to microseconds
func TimerToUS(ticks uint32) uint32 {
	return ticks / (TimerFreq / 1000000)
}

// TimerInit records the boot time for uptime calculation
func TimerInit() {
	bootTime = GetTime()
}

// timerIsBefore reports whether time1 is before time2, tolerating wraparound
// of the 32-bit counter (~71 minutes at 1 MHz).
func timerIsBefore(time1, time2 uint32) bool {
	return int32(time1-time2) < 0
}
