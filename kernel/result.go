package kernel

// RegResult describes the outcome of a registration attempt.
type RegResult uint8

const (
	RegOK RegResult = iota
	RegErrNilTask
	RegErrCapacity
	RegErrStarted
)

func (r RegResult) String() string {
	switch r {
	case RegOK:
		return "ok"
	case RegErrNilTask:
		return "nil task"
	case RegErrCapacity:
		return "capacity exceeded"
	case RegErrStarted:
		return "scheduler already started"
	default:
		return "unknown"
	}
}

// SendResult describes the outcome of a mailbox send attempt.
type SendResult uint8

const (
	SendOK SendResult = iota
	SendErrNoTask
	SendErrPayloadTooLarge
	SendErrBoxFull
)

func (r SendResult) String() string {
	switch r {
	case SendOK:
		return "ok"
	case SendErrNoTask:
		return "no such task"
	case SendErrPayloadTooLarge:
		return "payload too large"
	case SendErrBoxFull:
		return "mailbox full"
	default:
		return "unknown"
	}
}

// CtlResult describes the outcome of a suspend or resume request.
type CtlResult uint8

const (
	CtlOK CtlResult = iota
	CtlErrNoTask
)

func (r CtlResult) String() string {
	switch r {
	case CtlOK:
		return "ok"
	case CtlErrNoTask:
		return "no such task"
	default:
		return "unknown"
	}
}
