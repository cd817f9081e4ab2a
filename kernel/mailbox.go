package kernel

import "sync"

type message struct {
	kind uint8
	n    uint8
	data [MaxPayloadBytes]byte
}

// mailbox is a single-slot message buffer. A second send before the
// owner drains the slot is refused, never overwritten; the full slot is
// the backpressure signal to the sender.
//
// The mutex keeps put/take atomic with respect to producers outside the
// scheduler goroutine (the host tick goroutine today, interrupt-context
// senders on hardware tomorrow).
type mailbox struct {
	mu      sync.Mutex
	pending bool
	msg     message
}

func (mb *mailbox) put(kind uint8, payload []byte) SendResult {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.pending {
		return SendErrBoxFull
	}
	mb.msg.kind = kind
	mb.msg.n = uint8(len(payload))
	copy(mb.msg.data[:], payload)
	mb.pending = true
	return SendOK
}

func (mb *mailbox) take(dst []byte) (kind uint8, n int) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if !mb.pending {
		return 0, 0
	}
	n = int(mb.msg.n)
	if n > len(dst) {
		n = len(dst)
	}
	copy(dst, mb.msg.data[:n])
	kind = mb.msg.kind
	mb.pending = false
	return kind, n
}
