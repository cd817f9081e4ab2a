// Package storage is the storage/script driver: a littlefs filesystem
// over the platform flash, mounted lazily from the scheduler loop and
// consumed by the shell (ls, cat, run).
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"

	"tinygo.org/x/tinyfs/littlefs"

	"github.com/JustVugg/NimbusOS/hal"
	"github.com/JustVugg/NimbusOS/kernel"
)

// ErrNotMounted is returned while the filesystem is not available.
var ErrNotMounted = errors.New("storage: not mounted")

type Service struct {
	flash hal.Flash
	log   hal.Logger
	arb   *kernel.Arbiter
	dev   kernel.BusDevice

	fs       *littlefs.LFS
	mounted  bool
	mountErr error
}

// New creates the storage driver. dev is the service's device number on
// the shared bus; every media access is bracketed through arb.
func New(flash hal.Flash, log hal.Logger, arb *kernel.Arbiter, dev kernel.BusDevice) *Service {
	return &Service{flash: flash, log: log, arb: arb, dev: dev}
}

// Step mounts the filesystem on the first dispatch. There is no other
// periodic work; reads and writes happen on behalf of the shell.
func (s *Service) Step(ctx *kernel.Context) {
	if s.mounted || s.mountErr != nil {
		return
	}
	s.withBus(func() {
		s.mount()
	})
}

func (s *Service) mount() {
	if s.flash == nil || s.flash.SizeBytes() == 0 {
		s.mountErr = errors.New("storage: no flash device")
		return
	}

	fs := littlefs.New(&flashDev{flash: s.flash})
	fs.Configure(&littlefs.Config{
		CacheSize:     512,
		LookaheadSize: 512,
		BlockCycles:   100,
	})

	if err := fs.Mount(); err != nil {
		// Blank media: format once, then mount for real.
		if err := fs.Format(); err != nil {
			s.mountErr = fmt.Errorf("storage: format: %w", err)
			s.logLine(s.mountErr.Error())
			return
		}
		if err := fs.Mount(); err != nil {
			s.mountErr = fmt.Errorf("storage: mount: %w", err)
			s.logLine(s.mountErr.Error())
			return
		}
	}

	s.fs = fs
	s.mounted = true
	s.logLine("storage: littlefs mounted")
}

func (s *Service) logLine(msg string) {
	if s.log != nil {
		s.log.WriteLineString(msg)
	}
}

// withBus runs fn with the storage device selected on the shared bus.
func (s *Service) withBus(fn func()) {
	if s.arb != nil {
		s.arb.Select(s.dev)
		defer s.arb.Deselect()
	}
	fn()
}

// Mounted reports whether the filesystem is available.
func (s *Service) Mounted() bool { return s.mounted }

// ReadFile returns up to max bytes of the named file.
func (s *Service) ReadFile(path string, max int) ([]byte, error) {
	if !s.mounted {
		return nil, ErrNotMounted
	}
	var data []byte
	var err error
	s.withBus(func() {
		f, openErr := s.fs.OpenFile(path, os.O_RDONLY)
		if openErr != nil {
			err = fmt.Errorf("storage: open %s: %w", path, openErr)
			return
		}
		defer f.Close()
		data, err = io.ReadAll(io.LimitReader(f, int64(max)))
		if err != nil {
			err = fmt.Errorf("storage: read %s: %w", path, err)
		}
	})
	return data, err
}

// WriteFile replaces the named file's contents.
func (s *Service) WriteFile(path string, data []byte) error {
	if !s.mounted {
		return ErrNotMounted
	}
	var err error
	s.withBus(func() {
		f, openErr := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
		if openErr != nil {
			err = fmt.Errorf("storage: create %s: %w", path, openErr)
			return
		}
		defer f.Close()
		if _, werr := f.Write(data); werr != nil {
			err = fmt.Errorf("storage: write %s: %w", path, werr)
		}
	})
	return err
}

// List calls fn for every entry under path; fn returning false stops
// the walk.
func (s *Service) List(path string, fn func(name string, size int64, dir bool) bool) error {
	if !s.mounted {
		return ErrNotMounted
	}
	var err error
	s.withBus(func() {
		f, openErr := s.fs.OpenFile(path, os.O_RDONLY)
		if openErr != nil {
			err = fmt.Errorf("storage: open %s: %w", path, openErr)
			return
		}
		defer f.Close()
		entries, rdErr := f.Readdir(0)
		if rdErr != nil {
			err = fmt.Errorf("storage: readdir %s: %w", path, rdErr)
			return
		}
		for _, e := range entries {
			name := e.Name()
			if name == "." || name == ".." {
				continue
			}
			if !fn(name, e.Size(), e.IsDir()) {
				return
			}
		}
	})
	return err
}

// Remove deletes the named file.
func (s *Service) Remove(path string) error {
	if !s.mounted {
		return ErrNotMounted
	}
	var err error
	s.withBus(func() {
		if rmErr := s.fs.Remove(path); rmErr != nil {
			err = fmt.Errorf("storage: remove %s: %w", path, rmErr)
		}
	})
	return err
}
