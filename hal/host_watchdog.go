//go:build !tinygo

package hal

import (
	"sync"
	"time"
)

// hostWatchdog models the supervisory timer with time.AfterFunc. On
// expiry it invokes the reset hook exactly once; on hardware the
// equivalent is a full chip reset.
type hostWatchdog struct {
	mu      sync.Mutex
	timeout time.Duration
	onReset func()
	timer   *time.Timer
	armed   bool
	fired   bool
}

func newHostWatchdog(timeout time.Duration, onReset func()) *hostWatchdog {
	return &hostWatchdog{timeout: timeout, onReset: onReset}
}

func (w *hostWatchdog) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.armed {
		return
	}
	w.armed = true
	w.timer = time.AfterFunc(w.timeout, w.expire)
}

func (w *hostWatchdog) Feed() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.armed || w.fired {
		return
	}
	w.timer.Reset(w.timeout)
}

func (w *hostWatchdog) expire() {
	w.mu.Lock()
	if w.fired {
		w.mu.Unlock()
		return
	}
	w.fired = true
	fn := w.onReset
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// stop disarms the watchdog; used on clean host shutdown only.
func (w *hostWatchdog) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.armed = false
}
