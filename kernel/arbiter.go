package kernel

// BusDevice identifies one peripheral on the shared bus.
type BusDevice uint8

// BusNone means no device is selected.
const BusNone BusDevice = 0xFF

// BusPort asserts and deasserts device select lines. Implementations
// drive chip-select pins on hardware and counters in tests.
type BusPort interface {
	Assert(BusDevice)
	Deassert(BusDevice)
}

// Arbiter serializes access to a bus shared by multiple peripheral
// drivers. Every driver touching the bus must bracket its transaction
// with Select(own device) ... Deselect(); a driver that skips the
// bracket corrupts whatever transaction another driver resumes on a
// later dispatch.
//
// This is scoped mutual exclusion for a single-threaded cooperative
// system: there is no blocking and no queue of contenders, only correct
// assert/deassert bracketing.
type Arbiter struct {
	port     BusPort
	devices  []BusDevice
	selected BusDevice
}

// NewArbiter creates an arbiter over port for the given device set.
// Deselect deasserts every listed device.
func NewArbiter(port BusPort, devices ...BusDevice) *Arbiter {
	return &Arbiter{port: port, devices: devices, selected: BusNone}
}

// Select asserts dev, deasserting the previously selected device first.
// A repeated Select of the already-selected device is a no-op.
func (a *Arbiter) Select(dev BusDevice) {
	if a.port == nil || dev == BusNone {
		return
	}
	if a.selected == dev {
		return
	}
	if a.selected != BusNone {
		a.port.Deassert(a.selected)
	}
	a.port.Assert(dev)
	a.selected = dev
}

// Deselect deasserts every known device, returning the bus to a neutral
// idle state.
func (a *Arbiter) Deselect() {
	if a.port == nil {
		return
	}
	for _, d := range a.devices {
		a.port.Deassert(d)
	}
	a.selected = BusNone
}

// Selected returns the currently selected device, or BusNone.
func (a *Arbiter) Selected() BusDevice { return a.selected }
