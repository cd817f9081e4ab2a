//go:build !tinygo

package hal

import "sync"

// hostFramebuffer is an RGB565 buffer in memory. The window runner
// snapshots it on every frame, so pixel writes are mutex-guarded.
type hostFramebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	buf    []byte
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	return &hostFramebuffer{
		width:  width,
		height: height,
		buf:    make([]byte, width*height*2),
	}
}

func (f *hostFramebuffer) Width() int  { return f.width }
func (f *hostFramebuffer) Height() int { return f.height }

func (f *hostFramebuffer) SetPixelRGB(x, y int, r, g, b uint8) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	pixel := rgb565(r, g, b)
	off := (y*f.width + x) * 2
	f.mu.Lock()
	f.buf[off] = byte(pixel)
	f.buf[off+1] = byte(pixel >> 8)
	f.mu.Unlock()
}

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	f.mu.Lock()
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
	f.mu.Unlock()
}

func (f *hostFramebuffer) Present() error { return nil }

func (f *hostFramebuffer) snapshotRGB565(dst []byte) {
	f.mu.Lock()
	copy(dst, f.buf)
	f.mu.Unlock()
}
