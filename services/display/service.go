// Package display renders the system status panel. It owns the display
// slot on the shared bus: every frame is bracketed by a Select/Deselect
// pair so the storage driver can never see a half-drawn transaction.
package display

import (
	"encoding/binary"
	"fmt"
	"image/color"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"github.com/JustVugg/NimbusOS/hal"
	"github.com/JustVugg/NimbusOS/kernel"
)

// MsgStats is the mailbox message kind carrying a stats sample: uptime
// and context-switch counters, little-endian uint32 each.
const MsgStats uint8 = 1

const lineHeight = 12

var (
	colorBG     = color.RGBA{R: 0x10, G: 0x10, B: 0x18, A: 0xFF}
	colorText   = color.RGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	colorAccent = color.RGBA{R: 0x50, G: 0xC8, B: 0x78, A: 0xFF}
	colorDim    = color.RGBA{R: 0x80, G: 0x80, B: 0x90, A: 0xFF}
)

// Service is the status panel task.
type Service struct {
	k   *kernel.Kernel
	fb  hal.Framebuffer
	log hal.Logger
	dev kernel.BusDevice

	uptime   uint32
	switches uint32

	// rows renders incrementally across dispatches when the run budget
	// trips mid-table.
	nextRow int
	infos   [kernel.MaxTasks]kernel.TaskInfo
	nInfos  int
}

// New creates the display service. fb may be nil on headless hosts; the
// task then only drains its mailbox.
func New(k *kernel.Kernel, fb hal.Framebuffer, log hal.Logger, dev kernel.BusDevice) *Service {
	return &Service{k: k, fb: fb, log: log, dev: dev}
}

// Step drains the stats mailbox and redraws the panel.
func (s *Service) Step(ctx *kernel.Context) {
	var buf [kernel.MaxPayloadBytes]byte
	if kind, n := ctx.Receive(buf[:]); kind == MsgStats && n == 8 {
		s.uptime = binary.LittleEndian.Uint32(buf[0:4])
		s.switches = binary.LittleEndian.Uint32(buf[4:8])
	}

	if s.fb == nil {
		return
	}

	bus := ctx.Bus()
	bus.Select(s.dev)
	defer bus.Deselect()

	if s.nextRow == 0 {
		s.fb.ClearRGB(colorBG.R, colorBG.G, colorBG.B)
		s.drawHeader()
		s.nInfos = s.k.Snapshot(s.infos[:])
	}

	for s.nextRow < s.nInfos {
		s.drawTaskRow(s.nextRow)
		s.nextRow++
		if ctx.ShouldYield() {
			// Finish the table on the next dispatch.
			return
		}
	}
	s.nextRow = 0

	if err := s.fb.Present(); err != nil && s.log != nil {
		s.log.WriteLineString("display: present: " + err.Error())
	}
}

func (s *Service) drawHeader() {
	s.text(4, lineHeight, "NimbusOS", colorAccent)
	s.text(4, 2*lineHeight,
		fmt.Sprintf("up %d  cs %d", s.uptime, s.switches), colorText)
	s.text(4, 3*lineHeight, "ID PRIO   STATE", colorDim)
}

func (s *Service) drawTaskRow(i int) {
	ti := s.infos[i]
	c := colorText
	if ti.Suspended {
		c = colorDim
	}
	line := fmt.Sprintf("%-2d %-6s %s", ti.ID, ti.Priority.String(), ti.State.String())
	s.text(4, (4+i)*lineHeight, line, c)
}

func (s *Service) text(x, y int, str string, c color.RGBA) {
	d := &fbDisplayer{fb: s.fb}
	tinyfont.WriteLine(d, &proggy.TinySZ8pt7b, int16(x), int16(y), str, c)
}

// fbDisplayer adapts a framebuffer to the displayer shape tinyfont
// draws on.
type fbDisplayer struct {
	fb hal.Framebuffer
}

func (d *fbDisplayer) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *fbDisplayer) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}
	d.fb.SetPixelRGB(ix, iy, c.R, c.G, c.B)
}

func (d *fbDisplayer) Display() error { return nil }
