package kernel

// Context provides the dispatched task access to kernel operations.
// It is only valid for the duration of one Step call.
type Context struct {
	k  *Kernel
	id TaskID
}

// TaskID returns the current task ID.
func (c *Context) TaskID() TaskID { return c.id }

// Now returns the current tick.
func (c *Context) Now() uint32 { return c.k.clock.Now() }

// Sleep parks the calling task for at least d ticks. It never blocks
// the processor: the caller must return from Step promptly afterward,
// and the scheduler alone makes the task ready again once the deadline
// passes.
func (c *Context) Sleep(d uint32) {
	st := &c.k.tasks[c.id]
	st.state = StateWaiting
	st.wakeAt = c.k.clock.Now() + d
}

// ShouldYield reports whether the task has used up its run budget.
// Advisory only: the kernel cannot interrupt a running task, so any
// long-running loop must poll this and return early, deferring the
// remaining work to its next dispatch.
func (c *Context) ShouldYield() bool {
	st := &c.k.tasks[c.id]
	return c.k.clock.Now()-st.runStart >= c.k.budget
}

// Receive drains the calling task's mailbox into dst. It returns the
// message kind and the number of bytes copied; n is 0 when nothing is
// pending. Only the mailbox owner may call it.
func (c *Context) Receive(dst []byte) (kind uint8, n int) {
	return c.k.tasks[c.id].box.take(dst)
}

// Send delivers a message to another task's mailbox.
func (c *Context) Send(to TaskID, kind uint8, payload []byte) SendResult {
	return c.k.Send(to, kind, payload)
}

// Suspend administratively parks a task (possibly the caller itself).
func (c *Context) Suspend(id TaskID) CtlResult { return c.k.Suspend(id) }

// Resume clears a task's administrative suspension.
func (c *Context) Resume(id TaskID) CtlResult { return c.k.Resume(id) }

// Bus returns the shared-bus arbiter.
func (c *Context) Bus() *Arbiter { return c.k.Bus() }
