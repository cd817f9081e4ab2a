// Package app wires the kernel, the HAL, and the services into a
// running system. Device numbering on the shared bus lives here.
package app

import (
	"context"
	"io"
	"time"

	"github.com/JustVugg/NimbusOS/hal"
	"github.com/JustVugg/NimbusOS/kernel"
	"github.com/JustVugg/NimbusOS/services/display"
	"github.com/JustVugg/NimbusOS/services/shell"
	"github.com/JustVugg/NimbusOS/services/storage"
	"github.com/JustVugg/NimbusOS/tasks/heartbeat"
	"github.com/JustVugg/NimbusOS/tasks/stats"
)

// Shared-bus device numbers.
const (
	BusDisplay kernel.BusDevice = 0
	BusStorage kernel.BusDevice = 1
)

// Task periods in ticks.
const (
	periodShell   = 5
	periodDisplay = 250
	periodStorage = 100
	periodStats   = 1000
)

const idleDelay = 500 * time.Microsecond

// maxStepsPerFrame bounds scheduler work per window frame so a busy
// task table cannot stall rendering.
const maxStepsPerFrame = 32

type Config struct {
	// RunBudget is the pseudo-preemption budget in ticks; zero selects
	// the kernel default.
	RunBudget uint32

	// LowPower starts the system with the low-power idle path enabled.
	LowPower bool

	// Listen is the remote console address; empty disables it. Ignored
	// on hardware builds.
	Listen string

	// StepDriven leaves the kernel's idle hooks unset: an external
	// pacer (the window runner) calls StepFunc instead of Run.
	StepDriven bool
}

// System is the assembled OS instance.
type System struct {
	K *kernel.Kernel

	remote io.Closer
}

// New builds the system on top of h. The kernel is not started; call
// Run or drive StepFunc.
func New(h hal.HAL, cfg Config) (*System, error) {
	ht := h.Time()

	kcfg := kernel.Config{
		Clock:      ht,
		Watchdog:   h.Watchdog(),
		Bus:        busPort{h.Bus()},
		BusDevices: []kernel.BusDevice{BusDisplay, BusStorage},
		RunBudget:  cfg.RunBudget,
	}
	if !cfg.StepDriven {
		kcfg.Idle = func() { time.Sleep(idleDelay) }
		kcfg.LowPowerWait = ht.WaitTick
	}
	k := kernel.New(kcfg)
	k.SetLowPower(cfg.LowPower)

	store := storage.New(h.Flash(), h.Logger(), k.Bus(), BusStorage)
	sh := shell.New(k, h.Logger(), h.Console(), store)

	var fb hal.Framebuffer
	if d := h.Display(); d != nil {
		fb = d.Framebuffer()
	}

	sys := &System{K: k}

	if _, res := k.Register(kernel.TaskFunc(sh.Step), periodShell, kernel.PriorityHigh); res != kernel.RegOK {
		return nil, regError(res)
	}
	if _, res := k.Register(store, periodStorage, kernel.PriorityIdle); res != kernel.RegOK {
		return nil, regError(res)
	}
	if _, res := k.Register(heartbeat.New(h.LED(), 0), 0, kernel.PriorityNormal); res != kernel.RegOK {
		return nil, regError(res)
	}

	// The panel registers before the sampler: they share a priority, so
	// the lower id keeps redraws ahead of fresh samples.
	disp := display.New(k, fb, h.Logger(), BusDisplay)
	dispID, res := k.Register(disp, periodDisplay, kernel.PriorityLow)
	if res != kernel.RegOK {
		return nil, regError(res)
	}
	if _, res := k.Register(stats.New(k, dispID), periodStats, kernel.PriorityLow); res != kernel.RegOK {
		return nil, regError(res)
	}

	if err := wireRemote(sys, sh, h.Logger(), cfg.Listen); err != nil {
		return nil, err
	}
	return sys, nil
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (s *System) Run(ctx context.Context) error {
	defer s.closeRemote()
	return s.K.Run(ctx)
}

// StepFunc returns a pacer callback for step-driven hosts: each call
// runs a bounded batch of scheduler iterations.
func (s *System) StepFunc() func() error {
	s.K.Start()
	return func() error {
		for i := 0; i < maxStepsPerFrame; i++ {
			if !s.K.Step() {
				break
			}
		}
		return nil
	}
}

func (s *System) closeRemote() {
	if s.remote != nil {
		s.remote.Close()
	}
}

type regErr struct{ res kernel.RegResult }

func (e regErr) Error() string { return "app: register task: " + e.res.String() }

func regError(res kernel.RegResult) error { return regErr{res: res} }
