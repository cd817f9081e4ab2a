// Package kernel implements the NimbusOS core: a fixed-capacity task
// registry, a cooperative priority scheduler with sleep/wake and
// suspend/resume, single-slot mailbox messaging, shared-bus arbitration,
// and watchdog supervision of the scheduler loop.
//
// There is one logical thread of control: tasks run to completion and
// the only genuine concurrency is the tick interrupt advancing the
// counter behind TickSource. Nothing in this package blocks.
package kernel

import "context"

const defaultRunBudget = 50

// Config carries the kernel's construction-time dependencies. Clock is
// required; everything else is optional.
type Config struct {
	Clock    TickSource
	Watchdog Watchdog

	// Bus and BusDevices configure the shared-bus arbiter.
	Bus        BusPort
	BusDevices []BusDevice

	// RunBudget is the number of ticks a dispatch may run before
	// Context.ShouldYield trips. Zero selects the default.
	RunBudget uint32

	// Idle is called when no task is runnable and low-power mode is
	// off; it should be a short fixed delay. LowPowerWait is called
	// instead when low-power mode is on and should block until the
	// next tick interrupt. Both may be nil (the host window runner
	// paces the loop itself).
	Idle         func()
	LowPowerWait func()
}

// Kernel owns the task table and the scheduler loop.
//
// All mutating methods except Send must be called from the scheduler's
// goroutine (registration happens before the loop starts; everything
// else happens inside a dispatched task). Send is safe from any
// producer context.
type Kernel struct {
	clock   TickSource
	dog     Watchdog
	bus     *Arbiter
	budget  uint32
	idle    func()
	lowWait func()

	tasks [MaxTasks]taskState
	count TaskID

	started   bool
	lowPower  bool
	switches  uint32
	startTick uint32
}

// New creates a kernel instance.
func New(cfg Config) *Kernel {
	budget := cfg.RunBudget
	if budget == 0 {
		budget = defaultRunBudget
	}
	return &Kernel{
		clock:   cfg.Clock,
		dog:     cfg.Watchdog,
		bus:     NewArbiter(cfg.Bus, cfg.BusDevices...),
		budget:  budget,
		idle:    cfg.Idle,
		lowWait: cfg.LowPowerWait,
	}
}

// Register adds a task to the table and returns its id. period is the
// minimum number of ticks between dispatches; a freshly registered task
// is immediately eligible. Registration is only valid before the
// scheduler starts; the table is never resized and entries are never
// removed. A failed registration leaves the table untouched.
func (k *Kernel) Register(t Task, period uint32, prio Priority) (TaskID, RegResult) {
	if t == nil {
		return 0, RegErrNilTask
	}
	if k.started {
		return 0, RegErrStarted
	}
	if k.count >= MaxTasks {
		return 0, RegErrCapacity
	}

	id := k.count
	k.count++
	k.tasks[id] = taskState{
		task:     t,
		period:   period,
		priority: prio,
		state:    StateReady,
		lastRun:  k.clock.Now() - period,
	}
	return id, RegOK
}

// Suspend sets the administrative suspend flag for id. The scheduler
// skips a suspended task regardless of its nominal state. A WAITING
// task keeps its wake time; any other state is displayed as SUSPENDED.
func (k *Kernel) Suspend(id TaskID) CtlResult {
	if id >= k.count {
		return CtlErrNoTask
	}
	st := &k.tasks[id]
	st.suspended = true
	if st.state != StateWaiting {
		st.state = StateSuspended
	}
	return CtlOK
}

// Resume clears the suspend flag for id. A SUSPENDED task becomes
// READY; a WAITING task merely loses the administrative block and still
// will not run before its wake time elapses.
func (k *Kernel) Resume(id TaskID) CtlResult {
	if id >= k.count {
		return CtlErrNoTask
	}
	st := &k.tasks[id]
	st.suspended = false
	if st.state == StateSuspended {
		st.state = StateReady
	}
	return CtlOK
}

// Send delivers a message of up to MaxPayloadBytes to task to. The
// target's mailbox holds at most one undelivered message; a send
// against a full mailbox is refused, never queued or overwritten. Safe
// to call from any producer context, including interrupt handlers.
func (k *Kernel) Send(to TaskID, kind uint8, payload []byte) SendResult {
	if to >= k.count {
		return SendErrNoTask
	}
	if len(payload) > MaxPayloadBytes {
		return SendErrPayloadTooLarge
	}
	return k.tasks[to].box.put(kind, payload)
}

// Start seals the registry and arms the watchdog. Run calls it; hosts
// that drive Step directly must call it once themselves.
func (k *Kernel) Start() {
	if k.started {
		return
	}
	k.started = true
	k.startTick = k.clock.Now()
	if k.dog != nil {
		k.dog.Start()
	}
}

// Run executes the scheduler loop until ctx is cancelled. On hardware
// it is called with a background context and never returns; a watchdog
// reset is the only way out.
func (k *Kernel) Run(ctx context.Context) error {
	k.Start()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		k.Step()
	}
}

// Step runs one scheduler iteration: feed the watchdog, wake due
// sleepers, pick the highest-priority eligible task (ties to the lowest
// id), and run it to completion. It reports whether a task was
// dispatched.
func (k *Kernel) Step() bool {
	now := k.clock.Now()

	// The refresh happens before anything else, unconditionally; a
	// missed refresh is how a stuck iteration gets the system reset.
	if k.dog != nil {
		k.dog.Feed()
	}

	for i := TaskID(0); i < k.count; i++ {
		st := &k.tasks[i]
		if st.suspended {
			continue
		}
		if st.state == StateWaiting && tickGE(now, st.wakeAt) {
			st.state = StateReady
			st.wakeAt = 0
		}
	}

	var (
		sel     TaskID
		selPrio Priority
		found   bool
	)
	for i := TaskID(0); i < k.count; i++ {
		st := &k.tasks[i]
		if st.suspended || st.state != StateReady {
			continue
		}
		if now-st.lastRun < st.period {
			continue
		}
		// Strictly-greater keeps the tie-break at lowest id.
		if !found || st.priority > selPrio {
			sel = i
			selPrio = st.priority
			found = true
		}
	}

	if !found {
		if k.lowPower {
			if k.lowWait != nil {
				k.lowWait()
			}
		} else if k.idle != nil {
			k.idle()
		}
		return false
	}

	st := &k.tasks[sel]
	st.state = StateRunning
	st.lastRun = now
	st.runStart = now

	st.task.Step(&Context{k: k, id: sel})

	// A task that slept or suspended itself keeps that state; only an
	// unchanged RUNNING task is demoted back to READY.
	if st.state == StateRunning {
		st.state = StateReady
	}
	k.switches++
	return true
}

// Bus returns the shared-bus arbiter.
func (k *Kernel) Bus() *Arbiter { return k.bus }

// SetLowPower switches the idle path between the fixed short delay and
// the low-power wait.
func (k *Kernel) SetLowPower(on bool) { k.lowPower = on }

// LowPower reports whether low-power idling is enabled.
func (k *Kernel) LowPower() bool { return k.lowPower }

// Uptime returns ticks elapsed since the scheduler started.
func (k *Kernel) Uptime() uint32 { return k.clock.Now() - k.startTick }

// ContextSwitches returns the number of dispatches performed.
func (k *Kernel) ContextSwitches() uint32 { return k.switches }

// TaskCount returns the number of registered tasks.
func (k *Kernel) TaskCount() int { return int(k.count) }

// Info returns a snapshot of one task's scheduling state.
func (k *Kernel) Info(id TaskID) (TaskInfo, bool) {
	if id >= k.count {
		return TaskInfo{}, false
	}
	st := &k.tasks[id]
	return TaskInfo{
		ID:        id,
		Priority:  st.priority,
		State:     st.state,
		Suspended: st.suspended,
		Period:    st.period,
		LastRun:   st.lastRun,
		WakeAt:    st.wakeAt,
	}, true
}

// Snapshot fills dst with task snapshots and returns how many it wrote.
func (k *Kernel) Snapshot(dst []TaskInfo) int {
	n := 0
	for i := TaskID(0); i < k.count && n < len(dst); i++ {
		info, _ := k.Info(i)
		dst[n] = info
		n++
	}
	return n
}
