package kernel

const (
	// MaxTasks is the fixed capacity of the task table.
	MaxTasks = 32

	// MaxPayloadBytes is the maximum mailbox payload size.
	MaxPayloadBytes = 8
)

// TaskID identifies a registered task. IDs are dense: 0..TaskCount()-1.
type TaskID uint8

// Priority orders dispatch among simultaneously eligible tasks.
type Priority uint8

const (
	PriorityIdle Priority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityIdle:
		return "idle"
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// State is a task's scheduling state.
//
// Administrative suspension is tracked separately (TaskInfo.Suspended):
// a WAITING task keeps its state and wake time while suspended.
type State uint8

const (
	StateReady State = iota
	StateRunning
	StateWaiting
	StateSuspended
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateWaiting:
		return "waiting"
	case StateSuspended:
		return "suspended"
	default:
		return "unknown"
	}
}

// Task is a cooperative unit of execution.
//
// Step is invoked once per dispatch and runs to completion; the kernel
// cannot interrupt it. Long loops must poll Context.ShouldYield and
// return early, deferring remaining work to the next dispatch.
type Task interface {
	Step(*Context)
}

// TaskFunc adapts a plain function to the Task interface.
type TaskFunc func(*Context)

func (f TaskFunc) Step(c *Context) { f(c) }

// TaskInfo is a point-in-time snapshot of one task's scheduling state.
type TaskInfo struct {
	ID        TaskID
	Priority  Priority
	State     State
	Suspended bool
	Period    uint32
	LastRun   uint32
	WakeAt    uint32
}

type taskState struct {
	task      Task
	period    uint32
	priority  Priority
	state     State
	suspended bool
	lastRun   uint32
	wakeAt    uint32
	runStart  uint32
	box       mailbox
}
