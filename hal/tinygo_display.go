//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ili9341"
)

const (
	displayDC  = machine.GP14
	displayRST = machine.GP15
)

// iliFramebuffer pushes pixels straight to the panel over the shared
// SPI bus; there is no shadow buffer. Callers must hold the bus (the
// display service brackets every render with the arbiter).
type iliFramebuffer struct {
	d *ili9341.Device
	w int
	h int
}

func newILI9341Framebuffer() Framebuffer {
	// The arbiter owns the select line, so the driver gets none.
	d := ili9341.NewSPI(machine.SPI0, displayDC, machine.NoPin, displayRST)
	d.Configure(ili9341.Config{})
	w, h := d.Size()
	return &iliFramebuffer{d: d, w: int(w), h: int(h)}
}

func (f *iliFramebuffer) Width() int  { return f.w }
func (f *iliFramebuffer) Height() int { return f.h }

func (f *iliFramebuffer) SetPixelRGB(x, y int, r, g, b uint8) {
	if x < 0 || x >= f.w || y < 0 || y >= f.h {
		return
	}
	f.d.SetPixel(int16(x), int16(y), color.RGBA{R: r, G: g, B: b, A: 0xFF})
}

func (f *iliFramebuffer) ClearRGB(r, g, b uint8) {
	f.d.FillScreen(color.RGBA{R: r, G: g, B: b, A: 0xFF})
}

func (f *iliFramebuffer) Present() error { return nil }
