//go:build tinygo

package app

import (
	"github.com/JustVugg/NimbusOS/hal"
	"github.com/JustVugg/NimbusOS/services/shell"
)

// No remote console on hardware builds; the UART shell is the console.
func wireRemote(_ *System, _ *shell.Service, _ hal.Logger, _ string) error {
	return nil
}
