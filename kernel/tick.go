package kernel

// TickSource reads the current scheduler time.
//
// The counter is monotonic but wraps at 32 bits; compare ticks with
// tickGE, never with plain operators. Now must be safe to call from the
// scheduler loop while an interrupt handler (or the goroutine standing
// in for one on the host) advances the counter.
type TickSource interface {
	Now() uint32
}

// Watchdog supervises the scheduler loop for forward progress.
//
// Start arms it with the timeout chosen at construction. Feed must then
// be called at least once per timeout or the platform resets; that reset
// is the sole recovery from a stuck task.
type Watchdog interface {
	Start()
	Feed()
}

// tickGE reports whether tick a is at or after tick b on the wrapping
// 32-bit tick line. Valid as long as a and b are less than 2^31 ticks
// apart.
func tickGE(a, b uint32) bool {
	return int32(a-b) >= 0
}
