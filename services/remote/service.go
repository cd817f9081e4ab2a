//go:build !tinygo

// Package remote exposes the shell over TCP on host builds. Network
// goroutines only parse and queue lines; command execution stays on
// the scheduler, one queued line per dispatch batch, so remote clients
// get the same single-threaded kernel view the serial console gets.
package remote

import (
	"bufio"
	"net"
	"sync"

	"github.com/JustVugg/NimbusOS/hal"
	"github.com/JustVugg/NimbusOS/kernel"
	"github.com/JustVugg/NimbusOS/services/shell"
)

const (
	queueDepth   = 32
	maxLineBytes = 256
)

type request struct {
	line string
	conn net.Conn
}

// Service accepts TCP connections and feeds their lines to the shell.
type Service struct {
	sh  *shell.Service
	log hal.Logger

	ln    net.Listener
	reqs  chan request
	close sync.Once
}

// New starts listening on addr. The returned service must be
// registered as a kernel task to actually execute anything.
func New(sh *shell.Service, log hal.Logger, addr string) (*Service, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &Service{sh: sh, log: log, ln: ln, reqs: make(chan request, queueDepth)}
	go s.accept()
	return s, nil
}

// Addr returns the bound listen address.
func (s *Service) Addr() net.Addr { return s.ln.Addr() }

// Close stops the listener. In-flight connections drop on their next
// read.
func (s *Service) Close() error {
	var err error
	s.close.Do(func() { err = s.ln.Close() })
	return err
}

func (s *Service) accept() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.serve(conn)
	}
}

func (s *Service) serve(conn net.Conn) {
	defer conn.Close()
	if s.log != nil {
		s.log.WriteLineString("remote: client " + conn.RemoteAddr().String())
	}

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, maxLineBytes), maxLineBytes)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		// Drop lines when the scheduler is not keeping up rather than
		// letting a client stall the accept loop.
		select {
		case s.reqs <- request{line: line, conn: conn}:
		default:
			conn.Write([]byte("busy\n"))
		}
	}
}

// Step drains queued lines and executes them against the shell.
func (s *Service) Step(ctx *kernel.Context) {
	for {
		select {
		case req := <-s.reqs:
			s.sh.Exec(ctx, req.line, func(msg string) {
				req.conn.Write([]byte(msg))
			})
		default:
			return
		}
		if ctx.ShouldYield() {
			return
		}
	}
}
