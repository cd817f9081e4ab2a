//go:build !tinygo

package hal

import (
	"sync/atomic"
	"time"
)

const hostTickDur = time.Millisecond

// hostTime is the host tick source: a ticker goroutine (the stand-in
// for the timer interrupt) calls step, the scheduler loop reads Now.
type hostTime struct {
	ticks atomic.Uint32
	wake  chan struct{}
	done  chan struct{}

	last time.Time
	acc  time.Duration
}

func newHostTime() *hostTime {
	return &hostTime{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (t *hostTime) Now() uint32 { return t.ticks.Load() }

// WaitTick blocks until the counter next advances (or the runner shuts
// the timebase down).
func (t *hostTime) WaitTick() {
	select {
	case <-t.wake:
	case <-t.done:
	}
}

// step advances the counter by however much wall time passed since the
// previous call, in whole ticks. Used by the window runner, which is
// paced by the frame rate rather than by the tick duration.
func (t *hostTime) step() {
	now := time.Now()
	if t.last.IsZero() {
		t.last = now
		t.stepN(1)
		return
	}

	t.acc += now.Sub(t.last)
	t.last = now

	n := uint32(t.acc / hostTickDur)
	if n == 0 {
		return
	}
	t.acc = t.acc % hostTickDur
	t.stepN(n)
}

func (t *hostTime) stepN(n uint32) {
	t.ticks.Add(n)
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

func (t *hostTime) stop() {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
}
