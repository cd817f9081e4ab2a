// Package hal abstracts the platform under NimbusOS: the tick source,
// the supervisory watchdog, the shared peripheral bus, and the devices
// the collaborator tasks drive. The kernel itself only ever sees the
// small interfaces defined here.
package hal

import "errors"

var ErrNotImplemented = errors.New("not implemented")

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

// Time is the scheduler timebase: a monotonic millisecond tick counter
// that wraps at 32 bits.
//
// Now is advanced asynchronously (a timer interrupt on hardware, a
// ticker goroutine on the host) and must be safe to read concurrently.
// WaitTick blocks until the counter next advances; the kernel uses it
// as the low-power idle wait.
type Time interface {
	Now() uint32
	WaitTick()
}

// Watchdog is a supervisory timer. Once started it must be fed at
// least once per timeout or the platform resets.
type Watchdog interface {
	Start()
	Feed()
}

// Bus drives the select lines of the shared peripheral bus. Device
// numbering is owned by the application wiring.
type Bus interface {
	Assert(dev uint8)
	Deassert(dev uint8)
}

// Console is a byte-oriented operator console (UART on hardware,
// stdin/stdout on the host). ReadByte never blocks.
type Console interface {
	ReadByte() (byte, bool)
	WriteString(s string)
}

// Framebuffer is a drawable surface. Implementations push pixels either
// into a memory buffer (host) or straight to a panel over the shared
// bus (hardware); either way the caller brackets rendering with the
// bus arbiter.
type Framebuffer interface {
	Width() int
	Height() int
	SetPixelRGB(x, y int, r, g, b uint8)
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Flash provides raw access to non-volatile memory.
//
// It is intentionally low-level: addresses and erase blocks only.
type Flash interface {
	SizeBytes() uint32
	EraseBlockBytes() uint32
	ReadAt(p []byte, off uint32) (int, error)
	WriteAt(p []byte, off uint32) (int, error)
	Erase(off, size uint32) error
}

// HAL aggregates the platform services NimbusOS runs on.
type HAL interface {
	Logger() Logger
	LED() LED
	Time() Time
	Watchdog() Watchdog
	Bus() Bus
	Console() Console
	Display() Display
	Flash() Flash
}
