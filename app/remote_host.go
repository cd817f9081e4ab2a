//go:build !tinygo

package app

import (
	"github.com/JustVugg/NimbusOS/hal"
	"github.com/JustVugg/NimbusOS/kernel"
	"github.com/JustVugg/NimbusOS/services/remote"
	"github.com/JustVugg/NimbusOS/services/shell"
)

const periodRemote = 10

func wireRemote(sys *System, sh *shell.Service, log hal.Logger, addr string) error {
	if addr == "" {
		return nil
	}
	svc, err := remote.New(sh, log, addr)
	if err != nil {
		return err
	}
	if _, res := sys.K.Register(svc, periodRemote, kernel.PriorityNormal); res != kernel.RegOK {
		svc.Close()
		return regError(res)
	}
	if log != nil {
		log.WriteLineString("remote: listening on " + svc.Addr().String())
	}
	sys.remote = svc
	return nil
}
