//go:build !tinygo

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/JustVugg/NimbusOS/app"
	"github.com/JustVugg/NimbusOS/hal"
)

const defaultConfigPath = "nimbus.yaml"

func main() {
	var (
		configPath = flag.String("config", defaultConfigPath, "Boot configuration file.")
		headless   = flag.Bool("headless", false, "Run without a window.")
		hz         = flag.Int("hz", 0, "Tick rate in headless mode (overrides config).")
		ticks      = flag.Uint64("ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
		listen     = flag.String("listen", "", "Remote console address (overrides config).")
		lowPower   = flag.Bool("lowpower", false, "Start with low-power idling enabled.")
	)
	flag.Parse()

	cfg, err := loadBootConfig(*configPath, *configPath != defaultConfigPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *hz > 0 {
		cfg.TickHz = *hz
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *lowPower {
		cfg.LowPower = true
	}

	halCfg := hal.Config{
		FlashPath:      cfg.FlashPath,
		FlashSizeBytes: cfg.FlashSizeBytes,
	}
	if cfg.WatchdogTimeoutMS > 0 {
		halCfg.WatchdogTimeout = time.Duration(cfg.WatchdogTimeoutMS) * time.Millisecond
	}
	h := hal.New(halCfg)

	appCfg := app.Config{
		RunBudget: cfg.RunBudgetTicks,
		LowPower:  cfg.LowPower,
		Listen:    cfg.Listen,
	}

	if *headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err := hal.RunHeadless(ctx, h, hal.HeadlessConfig{Hz: cfg.TickHz, Ticks: *ticks},
			func(ctx context.Context, h hal.HAL) error {
				sys, err := app.New(h, appCfg)
				if err != nil {
					return err
				}
				return sys.Run(ctx)
			})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	appCfg.StepDriven = true
	err = hal.RunWindow(h, func(h hal.HAL) func() error {
		sys, err := app.New(h, appCfg)
		if err != nil {
			return func() error { return err }
		}
		return sys.StepFunc()
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
