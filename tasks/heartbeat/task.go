// Package heartbeat blinks the board LED as a liveness indicator.
package heartbeat

import (
	"github.com/JustVugg/NimbusOS/hal"
	"github.com/JustVugg/NimbusOS/kernel"
)

const defaultInterval = 500

// Task toggles the LED and sleeps between toggles.
type Task struct {
	led      hal.LED
	interval uint32
	on       bool
}

// New creates the heartbeat task. interval is in ticks; zero selects
// the default half-second cadence.
func New(led hal.LED, interval uint32) *Task {
	if interval == 0 {
		interval = defaultInterval
	}
	return &Task{led: led, interval: interval}
}

func (t *Task) Step(ctx *kernel.Context) {
	t.on = !t.on
	if t.led != nil {
		if t.on {
			t.led.High()
		} else {
			t.led.Low()
		}
	}
	ctx.Sleep(t.interval)
}
