package app

import (
	"github.com/JustVugg/NimbusOS/hal"
	"github.com/JustVugg/NimbusOS/kernel"
)

// busPort adapts the HAL's select-line driver to the arbiter's port.
type busPort struct {
	bus hal.Bus
}

func (p busPort) Assert(d kernel.BusDevice) {
	if p.bus != nil {
		p.bus.Assert(uint8(d))
	}
}

func (p busPort) Deassert(d kernel.BusDevice) {
	if p.bus != nil {
		p.bus.Deassert(uint8(d))
	}
}
