// Package shell is the command console: it polls the operator console
// for input, parses lines, and executes commands against the kernel
// API and the storage driver. The remote console reuses its command
// engine via Exec.
package shell

import (
	"github.com/google/shlex"

	"github.com/JustVugg/NimbusOS/hal"
	"github.com/JustVugg/NimbusOS/kernel"
)

const (
	maxLineBytes   = 128
	maxScriptLines = 64
	prompt         = "nimbus> "
)

type Service struct {
	k     *kernel.Kernel
	log   hal.Logger
	con   hal.Console
	store storage
	reg   *registry

	line []byte

	// pending holds queued script lines; one executes per dispatch so
	// a long script cannot hog the scheduler.
	pending []string

	prompted bool
}

// storage is what the shell needs from the storage driver.
type storage interface {
	Mounted() bool
	ReadFile(path string, max int) ([]byte, error)
	WriteFile(path string, data []byte) error
	List(path string, fn func(name string, size int64, dir bool) bool) error
	Remove(path string) error
}

// New creates the shell. con may be nil when only the remote console
// feeds it; store may be nil when no storage driver is present.
func New(k *kernel.Kernel, log hal.Logger, con hal.Console, store storage) *Service {
	s := &Service{k: k, log: log, con: con, store: store, reg: newRegistry()}
	s.registerBuiltins()
	return s
}


// Step executes at most one queued script line, then drains whatever
// console bytes arrived since the last dispatch.
func (s *Service) Step(ctx *kernel.Context) {
	if len(s.pending) > 0 {
		line := s.pending[0]
		s.pending = s.pending[1:]
		s.Exec(ctx, line, s.consoleOut)
		return
	}

	if s.con == nil {
		return
	}
	if !s.prompted {
		s.prompted = true
		s.con.WriteString(prompt)
	}
	for {
		b, ok := s.con.ReadByte()
		if !ok {
			return
		}
		s.feed(ctx, b)
		if ctx.ShouldYield() {
			return
		}
	}
}

func (s *Service) feed(ctx *kernel.Context, b byte) {
	switch b {
	case '\r':
		// CRLF consoles: the LF does the work.
	case '\n':
		line := string(s.line)
		s.line = s.line[:0]
		s.Exec(ctx, line, s.consoleOut)
		s.con.WriteString(prompt)
	case 0x08, 0x7F: // backspace / delete
		if len(s.line) > 0 {
			s.line = s.line[:len(s.line)-1]
		}
	default:
		if len(s.line) < maxLineBytes {
			s.line = append(s.line, b)
		}
	}
}

func (s *Service) consoleOut(msg string) {
	if s.con != nil {
		s.con.WriteString(msg)
	} else if s.log != nil {
		s.log.WriteLineString(msg)
	}
}

// Exec parses and runs one command line, writing output through out.
func (s *Service) Exec(ctx *kernel.Context, line string, out func(string)) {
	args, err := shlex.Split(line)
	if err != nil {
		out("parse error: " + err.Error() + "\n")
		return
	}
	if len(args) == 0 {
		return
	}

	cmd, ok := s.reg.resolve(args[0])
	if !ok {
		out("unknown command: " + args[0] + " (try help)\n")
		return
	}
	if err := cmd.Run(ctx, s, args[1:], out); err != nil {
		out("error: " + err.Error() + "\n")
	}
}

// queueScript schedules lines for execution, one per dispatch.
func (s *Service) queueScript(lines []string) bool {
	if len(s.pending)+len(lines) > maxScriptLines {
		return false
	}
	s.pending = append(s.pending, lines...)
	return true
}
