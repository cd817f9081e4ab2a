package shell

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JustVugg/NimbusOS/internal/buildinfo"
	"github.com/JustVugg/NimbusOS/kernel"
)

const maxCatBytes = 4096

func (s *Service) registerBuiltins() {
	cmds := []command{
		{
			Name: "help", Aliases: []string{"?"},
			Usage: "help [command]",
			Desc:  "list commands or show usage for one",
			Run:   cmdHelp,
		},
		{
			Name: "ps", Aliases: []string{"tasks"},
			Usage: "ps",
			Desc:  "show the task table",
			Run:   cmdPS,
		},
		{
			Name:  "uptime",
			Usage: "uptime",
			Desc:  "ticks since start and context switches",
			Run:   cmdUptime,
		},
		{
			Name:  "mem",
			Usage: "mem",
			Desc:  "heap usage",
			Run:   cmdMem,
		},
		{
			Name: "version", Aliases: []string{"ver"},
			Usage: "version",
			Desc:  "firmware build identifier",
			Run:   cmdVersion,
		},
		{
			Name:  "suspend",
			Usage: "suspend <id>",
			Desc:  "suspend a task",
			Run:   cmdSuspend,
		},
		{
			Name:  "resume",
			Usage: "resume <id>",
			Desc:  "resume a suspended task",
			Run:   cmdResume,
		},
		{
			Name:  "send",
			Usage: "send <id> <kind> [text]",
			Desc:  "post a message to a task mailbox",
			Run:   cmdSend,
		},
		{
			Name: "reset", Aliases: []string{"reboot"},
			Usage: "reset",
			Desc:  "force a watchdog reset",
			Run:   cmdReset,
		},
		{
			Name:  "lowpower",
			Usage: "lowpower on|off",
			Desc:  "toggle the low-power idle path",
			Run:   cmdLowPower,
		},
		{
			Name: "ls", Aliases: []string{"dir"},
			Usage: "ls [path]",
			Desc:  "list files on the storage volume",
			Run:   cmdLS,
		},
		{
			Name:  "cat",
			Usage: "cat <path>",
			Desc:  "print a file",
			Run:   cmdCat,
		},
		{
			Name:  "run",
			Usage: "run <path>",
			Desc:  "execute a script file, one line per tick",
			Run:   cmdRun,
		},
	}
	for _, c := range cmds {
		if err := s.reg.register(c); err != nil && s.log != nil {
			s.log.WriteLineString(err.Error())
		}
	}
}

func cmdHelp(_ *kernel.Context, s *Service, args []string, out func(string)) error {
	if len(args) == 1 {
		cmd, ok := s.reg.resolve(args[0])
		if !ok {
			return fmt.Errorf("no such command: %s", args[0])
		}
		out(fmt.Sprintf("%s\n  %s\n", cmd.Usage, cmd.Desc))
		return nil
	}
	for _, name := range s.reg.names() {
		cmd, _ := s.reg.resolve(name)
		out(fmt.Sprintf("%-10s %s\n", name, cmd.Desc))
	}
	return nil
}

func cmdPS(_ *kernel.Context, s *Service, _ []string, out func(string)) error {
	var infos [kernel.MaxTasks]kernel.TaskInfo
	n := s.k.Snapshot(infos[:])
	out("ID  PRIO    STATE      SUSP  PERIOD\n")
	for _, ti := range infos[:n] {
		susp := "-"
		if ti.Suspended {
			susp = "yes"
		}
		out(fmt.Sprintf("%-3d %-7s %-10s %-5s %d\n",
			ti.ID, ti.Priority.String(), ti.State.String(), susp, ti.Period))
	}
	return nil
}

func cmdUptime(_ *kernel.Context, s *Service, _ []string, out func(string)) error {
	out(fmt.Sprintf("up %d ticks, %d context switches\n",
		s.k.Uptime(), s.k.ContextSwitches()))
	return nil
}

func cmdMem(_ *kernel.Context, _ *Service, _ []string, out func(string)) error {
	out(memStatusLine() + "\n")
	return nil
}

func cmdVersion(_ *kernel.Context, _ *Service, _ []string, out func(string)) error {
	out(fmt.Sprintf("NimbusOS %s (%s, %s)\n",
		buildinfo.Short(), buildinfo.Commit, buildinfo.Date))
	return nil
}

func cmdSuspend(_ *kernel.Context, s *Service, args []string, out func(string)) error {
	id, err := parseTaskID(args)
	if err != nil {
		return err
	}
	if res := s.k.Suspend(id); res != kernel.CtlOK {
		return fmt.Errorf("suspend %d: %s", id, res.String())
	}
	out(fmt.Sprintf("task %d suspended\n", id))
	return nil
}

func cmdResume(_ *kernel.Context, s *Service, args []string, out func(string)) error {
	id, err := parseTaskID(args)
	if err != nil {
		return err
	}
	if res := s.k.Resume(id); res != kernel.CtlOK {
		return fmt.Errorf("resume %d: %s", id, res.String())
	}
	out(fmt.Sprintf("task %d resumed\n", id))
	return nil
}

func cmdSend(_ *kernel.Context, s *Service, args []string, out func(string)) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: send <id> <kind> [text]")
	}
	id, err := parseTaskID(args[:1])
	if err != nil {
		return err
	}
	kind, err := strconv.ParseUint(args[1], 0, 8)
	if err != nil {
		return fmt.Errorf("bad kind %q", args[1])
	}
	var payload []byte
	if len(args) > 2 {
		payload = []byte(strings.Join(args[2:], " "))
	}
	if res := s.k.Send(kernel.TaskID(id), uint8(kind), payload); res != kernel.SendOK {
		return fmt.Errorf("send: %s", res.String())
	}
	out("sent\n")
	return nil
}

func cmdReset(_ *kernel.Context, _ *Service, _ []string, out func(string)) error {
	out("resetting\n")
	// Parking the scheduler stops the watchdog refresh; the expiry
	// performs the actual reset.
	select {}
}

func cmdLowPower(_ *kernel.Context, s *Service, args []string, out func(string)) error {
	if len(args) != 1 {
		state := "off"
		if s.k.LowPower() {
			state = "on"
		}
		out("lowpower " + state + "\n")
		return nil
	}
	switch args[0] {
	case "on":
		s.k.SetLowPower(true)
	case "off":
		s.k.SetLowPower(false)
	default:
		return fmt.Errorf("usage: lowpower on|off")
	}
	return nil
}

func cmdLS(_ *kernel.Context, s *Service, args []string, out func(string)) error {
	if s.store == nil {
		return fmt.Errorf("no storage driver")
	}
	path := "/"
	if len(args) == 1 {
		path = args[0]
	}
	return s.store.List(path, func(name string, size int64, dir bool) bool {
		if dir {
			out(fmt.Sprintf("%-24s <dir>\n", name))
		} else {
			out(fmt.Sprintf("%-24s %d\n", name, size))
		}
		return true
	})
}

func cmdCat(_ *kernel.Context, s *Service, args []string, out func(string)) error {
	if s.store == nil {
		return fmt.Errorf("no storage driver")
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: cat <path>")
	}
	data, err := s.store.ReadFile(args[0], maxCatBytes)
	if err != nil {
		return err
	}
	out(string(data))
	if len(data) > 0 && data[len(data)-1] != '\n' {
		out("\n")
	}
	return nil
}

func cmdRun(_ *kernel.Context, s *Service, args []string, out func(string)) error {
	if s.store == nil {
		return fmt.Errorf("no storage driver")
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: run <path>")
	}
	data, err := s.store.ReadFile(args[0], maxCatBytes)
	if err != nil {
		return err
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if !s.queueScript(lines) {
		return fmt.Errorf("script too long (max %d queued lines)", maxScriptLines)
	}
	out(fmt.Sprintf("queued %d lines\n", len(lines)))
	return nil
}

func parseTaskID(args []string) (kernel.TaskID, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected a task id")
	}
	id, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil {
		return 0, fmt.Errorf("bad task id %q", args[0])
	}
	return kernel.TaskID(id), nil
}
