//go:build !tinygo

package main

import (
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"
)

// bootConfig mirrors nimbus.yaml. Every field is optional; zero values
// select the built-in defaults.
type bootConfig struct {
	TickHz            int    `yaml:"tick_hz"`
	WatchdogTimeoutMS int    `yaml:"watchdog_timeout_ms"`
	RunBudgetTicks    uint32 `yaml:"run_budget_ticks"`
	LowPower          bool   `yaml:"low_power"`
	Listen            string `yaml:"listen"`
	FlashPath         string `yaml:"flash_path"`
	FlashSizeBytes    uint32 `yaml:"flash_size_bytes"`
}

// loadBootConfig reads path if it exists. A missing file is not an
// error unless the operator named it explicitly.
func loadBootConfig(path string, explicit bool) (bootConfig, error) {
	var cfg bootConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
