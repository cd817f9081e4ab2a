//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"machine"
	"time"
)

// Shared SPI0 bus wiring. Both peripherals sit on the same SCK/SDO/SDI
// lines; only the select lines differ, and those are owned by the bus
// arbiter, never by the drivers.
const (
	busSCK = machine.GP18
	busSDO = machine.GP19
	busSDI = machine.GP16
)

// One select pin per bus device, indexed by device number. Selects are
// active low.
var busCS = [...]machine.Pin{machine.GP13, machine.GP17}

const watchdogTimeoutMillis = 2000

type rp2HAL struct {
	logger *uartLogger
	led    *pinLED
	t      *rp2Time
	dog    rp2Watchdog
	bus    *pinBus
	con    *uartConsole
	fb     Framebuffer
	flash  Flash
}

// New returns the rp2 HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	machine.SPI0.Configure(machine.SPIConfig{
		SCK:       busSCK,
		SDO:       busSDO,
		SDI:       busSDI,
		Frequency: 25_000_000,
	})

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	return &rp2HAL{
		logger: &uartLogger{uart: uart},
		led:    &pinLED{pin: ledPin},
		t:      newRP2Time(),
		dog:    rp2Watchdog{timeoutMillis: watchdogTimeoutMillis},
		bus:    newPinBus(),
		con:    &uartConsole{uart: uart},
		fb:     newILI9341Framebuffer(),
		flash:  rp2Flash{},
	}
}

func (h *rp2HAL) Logger() Logger     { return h.logger }
func (h *rp2HAL) LED() LED           { return h.led }
func (h *rp2HAL) Time() Time         { return h.t }
func (h *rp2HAL) Watchdog() Watchdog { return h.dog }
func (h *rp2HAL) Bus() Bus           { return h.bus }
func (h *rp2HAL) Console() Console   { return h.con }
func (h *rp2HAL) Display() Display   { return rp2Display{fb: h.fb} }
func (h *rp2HAL) Flash() Flash       { return h.flash }

type rp2Display struct {
	fb Framebuffer
}

func (d rp2Display) Framebuffer() Framebuffer { return d.fb }

type rp2Time struct {
	boot time.Time
}

func newRP2Time() *rp2Time {
	return &rp2Time{boot: time.Now()}
}

func (t *rp2Time) Now() uint32 {
	return uint32(time.Since(t.boot) / time.Millisecond)
}

func (t *rp2Time) WaitTick() {
	time.Sleep(time.Millisecond)
}

// rp2Watchdog wraps the hardware watchdog; expiry is a chip reset.
type rp2Watchdog struct {
	timeoutMillis uint32
}

func (w rp2Watchdog) Start() {
	machine.Watchdog.Configure(machine.WatchdogConfig{
		TimeoutMillis: w.timeoutMillis,
	})
	machine.Watchdog.Start()
}

func (w rp2Watchdog) Feed() {
	machine.Watchdog.Update()
}

type pinBus struct {
	cs [len(busCS)]machine.Pin
}

func newPinBus() *pinBus {
	b := &pinBus{cs: busCS}
	for _, p := range b.cs {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.High()
	}
	return b
}

func (b *pinBus) Assert(dev uint8) {
	if int(dev) < len(b.cs) {
		b.cs[dev].Low()
	}
}

func (b *pinBus) Deassert(dev uint8) {
	if int(dev) < len(b.cs) {
		b.cs[dev].High()
	}
}

type pinLED struct {
	pin machine.Pin
}

func (l *pinLED) High() { l.pin.High() }
func (l *pinLED) Low()  { l.pin.Low() }

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	l.uart.Write([]byte(s))
	l.uart.Write([]byte("\r\n"))
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	l.uart.Write(b)
	l.uart.Write([]byte("\r\n"))
}

type uartConsole struct {
	uart *machine.UART
}

func (c *uartConsole) ReadByte() (byte, bool) {
	if c.uart.Buffered() == 0 {
		return 0, false
	}
	b, err := c.uart.ReadByte()
	if err != nil {
		return 0, false
	}
	return b, true
}

func (c *uartConsole) WriteString(s string) {
	c.uart.Write([]byte(s))
}
