//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Hz    int    // tick rate, default 1000
	Ticks uint64 // stop after N ticks (0 = run until ctx is cancelled)
}

var errTicksDone = errors.New("tick budget reached")

// RunHeadless drives the host timebase from a real ticker while run
// executes the scheduler loop. run should block until its context is
// cancelled (kernel.Run does).
func RunHeadless(ctx context.Context, h HAL, cfg HeadlessConfig, run func(context.Context, HAL) error) error {
	hh, ok := h.(*hostHAL)
	if !ok {
		return errors.New("hal: RunHeadless needs a host HAL")
	}

	hz := cfg.Hz
	if hz <= 0 {
		hz = 1000
	}
	d := time.Second / time.Duration(hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", hz)
	}

	g, ctx := errgroup.WithContext(ctx)

	// The stand-in for the timer interrupt.
	g.Go(func() error {
		defer hh.t.stop()
		t := time.NewTicker(d)
		defer t.Stop()
		var n uint64
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				hh.t.stepN(1)
				n++
				if cfg.Ticks > 0 && n >= cfg.Ticks {
					return errTicksDone
				}
			}
		}
	})

	g.Go(func() error {
		defer hh.dog.stop()
		return run(ctx, h)
	})

	err := g.Wait()
	if errors.Is(err, errTicksDone) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
