package kernel

import "testing"

type fakeClock struct{ t uint32 }

func (c *fakeClock) Now() uint32      { return c.t }
func (c *fakeClock) Advance(n uint32) { c.t += n }

type fakeWatchdog struct {
	started bool
	feeds   int
}

func (d *fakeWatchdog) Start() { d.started = true }
func (d *fakeWatchdog) Feed()  { d.feeds++ }

func TestRegisterAssignsDenseIDs(t *testing.T) {
	k := New(Config{Clock: &fakeClock{}})

	for i := 0; i < MaxTasks; i++ {
		id, res := k.Register(TaskFunc(func(*Context) {}), 0, PriorityNormal)
		if res != RegOK {
			t.Fatalf("register %d: expected RegOK, got %s", i, res)
		}
		if id != TaskID(i) {
			t.Fatalf("register %d: expected id %d, got %d", i, i, id)
		}
	}

	if _, res := k.Register(TaskFunc(func(*Context) {}), 0, PriorityNormal); res != RegErrCapacity {
		t.Fatalf("expected RegErrCapacity, got %s", res)
	}
	if k.TaskCount() != MaxTasks {
		t.Fatalf("failed registration mutated the table: count %d", k.TaskCount())
	}
}

func TestRegisterAfterStartFails(t *testing.T) {
	k := New(Config{Clock: &fakeClock{}})
	k.Start()
	if _, res := k.Register(TaskFunc(func(*Context) {}), 0, PriorityNormal); res != RegErrStarted {
		t.Fatalf("expected RegErrStarted, got %s", res)
	}
}

func TestRegisterNilTaskFails(t *testing.T) {
	k := New(Config{Clock: &fakeClock{}})
	if _, res := k.Register(nil, 0, PriorityNormal); res != RegErrNilTask {
		t.Fatalf("expected RegErrNilTask, got %s", res)
	}
}

// register adds a task that records its dispatches and then suspends
// itself, so each task is observed exactly once per resume.
func registerRecorder(t *testing.T, k *Kernel, prio Priority, order *[]TaskID) TaskID {
	t.Helper()
	id, res := k.Register(TaskFunc(func(c *Context) {
		*order = append(*order, c.TaskID())
		c.Suspend(c.TaskID())
	}), 0, prio)
	if res != RegOK {
		t.Fatalf("register: %s", res)
	}
	return id
}

func TestDispatchOrderMatrix(t *testing.T) {
	cases := []struct {
		name  string
		prios []Priority
		want  []TaskID
	}{
		{"ascending", []Priority{PriorityLow, PriorityNormal, PriorityHigh}, []TaskID{2, 1, 0}},
		{"descending", []Priority{PriorityHigh, PriorityNormal, PriorityLow}, []TaskID{0, 1, 2}},
		{"mixed", []Priority{PriorityNormal, PriorityHigh, PriorityIdle, PriorityHigh}, []TaskID{1, 3, 0, 2}},
		{"all equal ties to lowest id", []Priority{PriorityNormal, PriorityNormal, PriorityNormal}, []TaskID{0, 1, 2}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clk := &fakeClock{}
			k := New(Config{Clock: clk})
			var order []TaskID
			for _, p := range tc.prios {
				registerRecorder(t, k, p, &order)
			}
			k.Start()
			for i := 0; i < len(tc.prios); i++ {
				if !k.Step() {
					t.Fatalf("step %d: expected a dispatch", i)
				}
			}
			if k.Step() {
				t.Fatal("expected no dispatch once all tasks suspended")
			}
			if len(order) != len(tc.want) {
				t.Fatalf("expected %d dispatches, got %v", len(tc.want), order)
			}
			for i := range tc.want {
				if order[i] != tc.want[i] {
					t.Fatalf("dispatch order %v, want %v", order, tc.want)
				}
			}
		})
	}
}

func TestPeriodGatesDispatch(t *testing.T) {
	clk := &fakeClock{t: 1000}
	k := New(Config{Clock: clk})
	runs := 0
	if _, res := k.Register(TaskFunc(func(*Context) { runs++ }), 10, PriorityNormal); res != RegOK {
		t.Fatalf("register: %s", res)
	}
	k.Start()

	// Freshly registered tasks are immediately eligible.
	if !k.Step() {
		t.Fatal("expected first dispatch")
	}
	for i := 0; i < 9; i++ {
		clk.Advance(1)
		if k.Step() {
			t.Fatalf("dispatched again only %d ticks after the last run", i+1)
		}
	}
	clk.Advance(1)
	if !k.Step() {
		t.Fatal("expected dispatch once the period elapsed")
	}
	if runs != 2 {
		t.Fatalf("expected 2 runs, got %d", runs)
	}
}

func TestSleepWakesAtBoundary(t *testing.T) {
	clk := &fakeClock{t: 500}
	k := New(Config{Clock: clk})
	dispatches := 0
	slept := false
	id, _ := k.Register(TaskFunc(func(c *Context) {
		dispatches++
		if !slept {
			slept = true
			c.Sleep(100)
		}
	}), 0, PriorityNormal)
	k.Start()

	if !k.Step() {
		t.Fatal("expected first dispatch")
	}
	info, _ := k.Info(id)
	if info.State != StateWaiting || info.WakeAt != 600 {
		t.Fatalf("expected WAITING until 600, got %s until %d", info.State, info.WakeAt)
	}

	clk.Advance(99)
	if k.Step() {
		t.Fatal("dispatched before the wake time elapsed")
	}
	clk.Advance(1)
	if !k.Step() {
		t.Fatal("expected dispatch exactly at the wake boundary")
	}
	if dispatches != 2 {
		t.Fatalf("expected 2 dispatches, got %d", dispatches)
	}
	info, _ = k.Info(id)
	if info.WakeAt != 0 {
		t.Fatalf("wake time not cleared: %d", info.WakeAt)
	}
}

func TestSuspendIsOrthogonalToSleep(t *testing.T) {
	clk := &fakeClock{t: 100}
	k := New(Config{Clock: clk})
	dispatches := 0
	slept := false
	id, _ := k.Register(TaskFunc(func(c *Context) {
		dispatches++
		if !slept {
			slept = true
			c.Sleep(100)
		}
	}), 0, PriorityNormal)
	k.Start()
	k.Step()

	if res := k.Suspend(id); res != CtlOK {
		t.Fatalf("suspend: %s", res)
	}
	info, _ := k.Info(id)
	if info.State != StateWaiting || !info.Suspended || info.WakeAt != 200 {
		t.Fatalf("suspend clobbered the waiting task: %+v", info)
	}

	clk.Advance(20)
	if res := k.Resume(id); res != CtlOK {
		t.Fatalf("resume: %s", res)
	}

	// Resumed, but still waiting: no dispatch until the wake time.
	clk.Advance(79) // now 199
	if k.Step() {
		t.Fatal("resumed task ran before its wake time")
	}
	clk.Advance(1) // now 200
	if !k.Step() {
		t.Fatal("expected dispatch at the original wake time")
	}
	if dispatches != 2 {
		t.Fatalf("expected 2 dispatches, got %d", dispatches)
	}
}

func TestSuspendedTaskNeverWakes(t *testing.T) {
	clk := &fakeClock{}
	k := New(Config{Clock: clk})
	id, _ := k.Register(TaskFunc(func(c *Context) { c.Sleep(10) }), 0, PriorityNormal)
	k.Start()
	k.Step()
	k.Suspend(id)

	clk.Advance(1000)
	for i := 0; i < 5; i++ {
		if k.Step() {
			t.Fatal("suspended task was dispatched")
		}
	}

	k.Resume(id)
	if !k.Step() {
		t.Fatal("expected dispatch after resume past the wake time")
	}
}

func TestSuspendDisplayedState(t *testing.T) {
	k := New(Config{Clock: &fakeClock{}})
	id, _ := k.Register(TaskFunc(func(*Context) {}), 0, PriorityNormal)

	k.Suspend(id)
	if info, _ := k.Info(id); info.State != StateSuspended || !info.Suspended {
		t.Fatalf("expected SUSPENDED, got %+v", info)
	}
	k.Resume(id)
	if info, _ := k.Info(id); info.State != StateReady || info.Suspended {
		t.Fatalf("expected READY after resume, got %+v", info)
	}

	if res := k.Suspend(TaskID(200)); res != CtlErrNoTask {
		t.Fatalf("expected CtlErrNoTask, got %s", res)
	}
	if res := k.Resume(TaskID(200)); res != CtlErrNoTask {
		t.Fatalf("expected CtlErrNoTask, got %s", res)
	}
}

func TestSelfSuspendPreserved(t *testing.T) {
	k := New(Config{Clock: &fakeClock{}})
	id, _ := k.Register(TaskFunc(func(c *Context) { c.Suspend(c.TaskID()) }), 0, PriorityNormal)
	k.Start()
	if !k.Step() {
		t.Fatal("expected dispatch")
	}
	info, _ := k.Info(id)
	if info.State != StateSuspended || !info.Suspended {
		t.Fatalf("self-suspend not preserved after return: %+v", info)
	}
	if k.Step() {
		t.Fatal("self-suspended task was redispatched")
	}
}

func TestMailboxBackpressure(t *testing.T) {
	k := New(Config{Clock: &fakeClock{}})
	id, _ := k.Register(TaskFunc(func(*Context) {}), 0, PriorityNormal)

	if res := k.Send(id, 1, []byte{0xAA, 0xBB}); res != SendOK {
		t.Fatalf("first send: %s", res)
	}
	if res := k.Send(id, 2, []byte{0xCC}); res != SendErrBoxFull {
		t.Fatalf("expected SendErrBoxFull, got %s", res)
	}

	ctx := &Context{k: k, id: id}
	var buf [MaxPayloadBytes]byte
	kind, n := ctx.Receive(buf[:])
	if kind != 1 || n != 2 || buf[0] != 0xAA || buf[1] != 0xBB {
		t.Fatalf("receive: kind=%d n=%d buf=%x", kind, n, buf[:n])
	}

	if res := k.Send(id, 3, []byte{0xDD}); res != SendOK {
		t.Fatalf("send after drain: %s", res)
	}
}

func TestMailboxValidation(t *testing.T) {
	k := New(Config{Clock: &fakeClock{}})
	id, _ := k.Register(TaskFunc(func(*Context) {}), 0, PriorityNormal)

	if res := k.Send(TaskID(99), 1, nil); res != SendErrNoTask {
		t.Fatalf("expected SendErrNoTask, got %s", res)
	}
	long := make([]byte, MaxPayloadBytes+1)
	if res := k.Send(id, 1, long); res != SendErrPayloadTooLarge {
		t.Fatalf("expected SendErrPayloadTooLarge, got %s", res)
	}
	// The failed sends left the slot empty.
	if res := k.Send(id, 1, []byte{1}); res != SendOK {
		t.Fatalf("expected SendOK, got %s", res)
	}
}

func TestReceiveTruncatesToDst(t *testing.T) {
	k := New(Config{Clock: &fakeClock{}})
	id, _ := k.Register(TaskFunc(func(*Context) {}), 0, PriorityNormal)
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if res := k.Send(id, 7, payload); res != SendOK {
		t.Fatalf("send: %s", res)
	}

	ctx := &Context{k: k, id: id}
	var small [4]byte
	kind, n := ctx.Receive(small[:])
	if kind != 7 || n != 4 {
		t.Fatalf("expected 4 bytes of kind 7, got kind=%d n=%d", kind, n)
	}
	// The slot is drained even on a short read.
	if _, n := ctx.Receive(small[:]); n != 0 {
		t.Fatalf("expected empty mailbox, copied %d bytes", n)
	}
}

func TestWatchdogFedEveryIteration(t *testing.T) {
	dog := &fakeWatchdog{}
	clk := &fakeClock{}
	k := New(Config{Clock: clk, Watchdog: dog})
	k.Start()
	if !dog.started {
		t.Fatal("watchdog not armed at start")
	}

	// Idle iterations feed too.
	for i := 0; i < 3; i++ {
		k.Step()
	}
	if dog.feeds != 3 {
		t.Fatalf("expected 3 feeds, got %d", dog.feeds)
	}
}

func TestShouldYieldAfterBudget(t *testing.T) {
	clk := &fakeClock{}
	k := New(Config{Clock: clk, RunBudget: 10})
	checked := false
	k.Register(TaskFunc(func(c *Context) {
		if c.ShouldYield() {
			t.Error("budget tripped at dispatch start")
		}
		clk.Advance(9)
		if c.ShouldYield() {
			t.Error("budget tripped one tick early")
		}
		clk.Advance(1)
		if !c.ShouldYield() {
			t.Error("budget did not trip once exceeded")
		}
		checked = true
	}), 0, PriorityNormal)
	k.Start()
	k.Step()
	if !checked {
		t.Fatal("task never ran")
	}
}

func TestLowPowerIdlePath(t *testing.T) {
	idles, waits := 0, 0
	k := New(Config{
		Clock:        &fakeClock{},
		Idle:         func() { idles++ },
		LowPowerWait: func() { waits++ },
	})
	k.Start()

	k.Step()
	if idles != 1 || waits != 0 {
		t.Fatalf("expected the fixed idle delay, got idles=%d waits=%d", idles, waits)
	}

	k.SetLowPower(true)
	if !k.LowPower() {
		t.Fatal("low-power flag not set")
	}
	k.Step()
	if idles != 1 || waits != 1 {
		t.Fatalf("expected the low-power wait, got idles=%d waits=%d", idles, waits)
	}
}

func TestTickWrap(t *testing.T) {
	clk := &fakeClock{t: 0xFFFFFFF0}
	k := New(Config{Clock: clk})
	dispatches := 0
	slept := false
	k.Register(TaskFunc(func(c *Context) {
		dispatches++
		if !slept {
			slept = true
			c.Sleep(0x20) // wake time wraps past zero
		}
	}), 0, PriorityNormal)
	k.Start()
	k.Step()

	clk.Advance(0x1F)
	if k.Step() {
		t.Fatal("woke before the wrapped wake time")
	}
	clk.Advance(1)
	if !k.Step() {
		t.Fatal("missed the wake across the counter wrap")
	}
	if dispatches != 2 {
		t.Fatalf("expected 2 dispatches, got %d", dispatches)
	}
}

func TestContextSwitchCounterAndUptime(t *testing.T) {
	clk := &fakeClock{t: 77}
	k := New(Config{Clock: clk})
	k.Register(TaskFunc(func(c *Context) { c.Suspend(c.TaskID()) }), 0, PriorityNormal)
	k.Start()

	k.Step()
	k.Step() // idle
	if k.ContextSwitches() != 1 {
		t.Fatalf("expected 1 context switch, got %d", k.ContextSwitches())
	}
	clk.Advance(23)
	if k.Uptime() != 23 {
		t.Fatalf("expected uptime 23, got %d", k.Uptime())
	}
}

// End to end: A(HIGH,0), B(NORMAL,0), C(LOW,0). A is picked first, sleeps
// 100 ticks, B runs while A waits, and A preempts the rotation again the
// moment its wake time elapses.
func TestEndToEndPriorityAndSleep(t *testing.T) {
	clk := &fakeClock{t: 10}
	k := New(Config{Clock: clk})
	var order []TaskID

	a, _ := k.Register(TaskFunc(func(c *Context) {
		order = append(order, c.TaskID())
		c.Sleep(100)
	}), 0, PriorityHigh)
	b, _ := k.Register(TaskFunc(func(c *Context) {
		order = append(order, c.TaskID())
	}), 0, PriorityNormal)
	k.Register(TaskFunc(func(c *Context) {
		order = append(order, c.TaskID())
	}), 0, PriorityLow)
	k.Start()

	if !k.Step() || order[0] != a {
		t.Fatalf("first dispatch: got %v, want task %d", order, a)
	}
	clk.Advance(50)
	if !k.Step() || order[1] != b {
		t.Fatalf("second dispatch: got %v, want task %d", order, b)
	}
	clk.Advance(50) // 100 ticks since A slept
	if !k.Step() || order[2] != a {
		t.Fatalf("third dispatch: got %v, want task %d again", order, a)
	}
}
