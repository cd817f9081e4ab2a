// Package stats samples kernel counters and ships them to the status
// panel through the mailbox.
package stats

import (
	"encoding/binary"

	"github.com/JustVugg/NimbusOS/kernel"
	"github.com/JustVugg/NimbusOS/services/display"
)

// Task publishes a stats sample each dispatch. If the panel has not
// consumed the previous sample yet, the new one is dropped; the next
// period brings a fresher sample anyway.
type Task struct {
	k  *kernel.Kernel
	to kernel.TaskID

	dropped uint32
}

// New creates the sampler. to is the display service's task id.
func New(k *kernel.Kernel, to kernel.TaskID) *Task {
	return &Task{k: k, to: to}
}

func (t *Task) Step(ctx *kernel.Context) {
	var p [8]byte
	binary.LittleEndian.PutUint32(p[0:4], t.k.Uptime())
	binary.LittleEndian.PutUint32(p[4:8], t.k.ContextSwitches())

	if res := ctx.Send(t.to, display.MsgStats, p[:]); res == kernel.SendErrBoxFull {
		t.dropped++
	}
}

// Dropped returns how many samples were discarded against a full
// mailbox.
func (t *Task) Dropped() uint32 { return t.dropped }
