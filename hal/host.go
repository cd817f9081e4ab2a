//go:build !tinygo

package hal

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"
)

// Config tunes the host platform. Zero values select defaults.
type Config struct {
	WatchdogTimeout time.Duration // default 2s
	OnWatchdogReset func()        // default: log and exit(2)
	FlashPath       string
	FlashSizeBytes  uint32
	DisplayWidth    int
	DisplayHeight   int
}

type hostHAL struct {
	logger *hostLogger
	led    *hostLED
	t      *hostTime
	dog    *hostWatchdog
	bus    *hostBus
	con    *hostConsole
	fb     *hostFramebuffer
	flash  *hostFlash
}

// New returns a host HAL implementation.
func New(cfg Config) HAL {
	logger := &hostLogger{w: os.Stdout}

	timeout := cfg.WatchdogTimeout
	if timeout == 0 {
		timeout = 2 * time.Second
	}
	onReset := cfg.OnWatchdogReset
	if onReset == nil {
		onReset = func() {
			logger.WriteLineString("watchdog: no refresh within timeout, resetting")
			os.Exit(2)
		}
	}

	w, h := cfg.DisplayWidth, cfg.DisplayHeight
	if w <= 0 {
		w = 240
	}
	if h <= 0 {
		h = 240
	}

	return &hostHAL{
		logger: logger,
		led:    &hostLED{logger: logger},
		t:      newHostTime(),
		dog:    newHostWatchdog(timeout, onReset),
		bus:    newHostBus(),
		con:    newHostConsole(),
		fb:     newHostFramebuffer(w, h),
		flash:  newHostFlash(cfg.FlashPath, cfg.FlashSizeBytes),
	}
}

func (h *hostHAL) Logger() Logger     { return h.logger }
func (h *hostHAL) LED() LED           { return h.led }
func (h *hostHAL) Time() Time         { return h.t }
func (h *hostHAL) Watchdog() Watchdog { return h.dog }
func (h *hostHAL) Bus() Bus           { return h.bus }
func (h *hostHAL) Console() Console   { return h.con }
func (h *hostHAL) Display() Display   { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Flash() Flash       { return h.flash }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostLED struct {
	mu     sync.Mutex
	on     bool
	logger *hostLogger
}

func (l *hostLED) High() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.on {
		l.on = true
		l.logger.WriteLineString("led: HIGH")
	}
}

func (l *hostLED) Low() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.on {
		l.on = false
		l.logger.WriteLineString("led: LOW")
	}
}

// hostBus tracks select-line state in memory.
type hostBus struct {
	mu       sync.Mutex
	asserted map[uint8]bool
}

func newHostBus() *hostBus {
	return &hostBus{asserted: make(map[uint8]bool)}
}

func (b *hostBus) Assert(dev uint8) {
	b.mu.Lock()
	b.asserted[dev] = true
	b.mu.Unlock()
}

func (b *hostBus) Deassert(dev uint8) {
	b.mu.Lock()
	delete(b.asserted, dev)
	b.mu.Unlock()
}

func (b *hostBus) isAsserted(dev uint8) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.asserted[dev]
}

// hostConsole bridges stdin to the shell's non-blocking ReadByte. A
// reader goroutine feeds a bounded channel; overflow bytes are dropped.
type hostConsole struct {
	in chan byte
	w  *os.File
}

func newHostConsole() *hostConsole {
	c := &hostConsole{in: make(chan byte, 256), w: os.Stdout}
	go func() {
		r := bufio.NewReader(os.Stdin)
		for {
			b, err := r.ReadByte()
			if err != nil {
				return
			}
			select {
			case c.in <- b:
			default:
			}
		}
	}()
	return c
}

func (c *hostConsole) ReadByte() (byte, bool) {
	select {
	case b := <-c.in:
		return b, true
	default:
		return 0, false
	}
}

func (c *hostConsole) WriteString(s string) {
	fmt.Fprint(c.w, s)
}
