//go:build tinygo

package main

import (
	"context"

	"github.com/JustVugg/NimbusOS/app"
	"github.com/JustVugg/NimbusOS/hal"
)

func main() {
	h := hal.New()
	sys, err := app.New(h, app.Config{})
	if err != nil {
		if l := h.Logger(); l != nil {
			l.WriteLineString("boot: " + err.Error())
		}
		select {}
	}
	// Never returns; the watchdog is the only way out.
	sys.Run(context.Background())
}
