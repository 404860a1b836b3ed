package devices

import (
	"fmt"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/dxl.go/pkg/cli/sh"
	"github.com/robotalks/dxl.go/pkg/dxl"
	"github.com/robotalks/dxl.go/pkg/dxl/bus"
)

func requireArgs(c *ishell.Context, n int) bool {
	if len(c.Args) < n {
		c.Err(fmt.Errorf("usage: %s %s", c.Cmd.Name, c.Cmd.Help))
		return false
	}
	return true
}

func idArg(c *ishell.Context, i int) (byte, bool) {
	id, err := parseID(c.Args[i])
	if err != nil {
		c.Err(err)
		return 0, false
	}
	return id, true
}

// done reports err or prints OK.
func done(c *ishell.Context, err error) {
	if err != nil {
		c.Err(err)
		return
	}
	if sh.ShellFrom(c).OutputJSON {
		c.Println("{}")
		return
	}
	c.Println("OK")
}

func output(c *ishell.Context, s *sh.Shell, res interface{}, err error) {
	if err != nil {
		c.Err(err)
		return
	}
	s.Output(c, res)
}

var (
	// PingCmd pings devices.
	PingCmd = ishell.Cmd{
		Name:    "ping",
		Aliases: []string{"p"},
		Help:    "ID...",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			if !requireArgs(c, 1) {
				return
			}
			for i := range c.Args {
				id, ok := idArg(c, i)
				if !ok {
					return
				}
				res, err := ping(s.Context, s.Bus, id)
				output(c, s, res, err)
			}
		}),
	}

	// ScanCmd discovers devices by pinging a range of ids.
	ScanCmd = ishell.Cmd{
		Name: "scan",
		Help: "[FROM TO]",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			from, to := byte(0), dxl.BroadcastID-1
			if len(c.Args) >= 2 {
				var ok bool
				if from, ok = idArg(c, 0); !ok {
					return
				}
				if to, ok = idArg(c, 1); !ok {
					return
				}
			}
			found, err := scan(s.Context, s.Bus, from, to)
			if err != nil {
				c.Err(err)
			}
			if s.OutputJSON {
				s.Output(c, found)
				return
			}
			for _, res := range found {
				c.Println(res.String())
			}
		}),
	}

	// ReadCmd reads raw bytes.
	ReadCmd = ishell.Cmd{
		Name:    "read",
		Aliases: []string{"r"},
		Help:    "ID ADDR LEN",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			if !requireArgs(c, 3) {
				return
			}
			id, ok := idArg(c, 0)
			if !ok {
				return
			}
			addr, err := parseUint(c.Args[1], 16)
			if err != nil {
				c.Err(err)
				return
			}
			n, err := parseUint(c.Args[2], 16)
			if err != nil {
				c.Err(err)
				return
			}
			res, err := readMem(s.Context, s.Bus, id, uint16(addr), int(n))
			output(c, s, res, err)
		}),
	}

	// WriteCmd writes raw bytes.
	WriteCmd = ishell.Cmd{
		Name:    "write",
		Aliases: []string{"w"},
		Help:    "ID ADDR BYTE...",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			if !requireArgs(c, 3) {
				return
			}
			id, ok := idArg(c, 0)
			if !ok {
				return
			}
			addr, err := parseUint(c.Args[1], 16)
			if err != nil {
				c.Err(err)
				return
			}
			data := make([]byte, 0, len(c.Args)-2)
			for _, arg := range c.Args[2:] {
				v, err := parseUint(arg, 8)
				if err != nil {
					c.Err(err)
					return
				}
				data = append(data, byte(v))
			}
			ctx, cancel := s.Context()
			defer cancel()
			done(c, s.Bus.Write(ctx, id, uint16(addr), data))
		}),
	}

	// GetCmd reads a register by name.
	GetCmd = ishell.Cmd{
		Name:    "get",
		Aliases: []string{"g"},
		Help:    "ID REG",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			if !requireArgs(c, 2) {
				return
			}
			id, ok := idArg(c, 0)
			if !ok {
				return
			}
			res, err := getRegister(s.Context, s.Bus, s.Table, id, c.Args[1])
			output(c, s, res, err)
		}),
	}

	// SetCmd writes a register by name.
	SetCmd = ishell.Cmd{
		Name:    "set",
		Aliases: []string{"s"},
		Help:    "ID REG VALUE",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			if !requireArgs(c, 3) {
				return
			}
			id, ok := idArg(c, 0)
			if !ok {
				return
			}
			val, err := parseUint(c.Args[2], 32)
			if err != nil {
				c.Err(err)
				return
			}
			res, err := setRegister(s.Context, s.Bus, s.Table, id, c.Args[1], uint32(val))
			output(c, s, res, err)
		}),
	}

	// WaitCmd waits until a register approaches a goal.
	WaitCmd = ishell.Cmd{
		Name: "wait",
		Help: "ID REG GOAL [TOLERANCE [TIMEOUT]]",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			if !requireArgs(c, 3) {
				return
			}
			id, ok := idArg(c, 0)
			if !ok {
				return
			}
			goal, err := parseUint(c.Args[2], 32)
			if err != nil {
				c.Err(err)
				return
			}
			var tolerance uint64
			if len(c.Args) > 3 {
				if tolerance, err = parseUint(c.Args[3], 32); err != nil {
					c.Err(err)
					return
				}
			}
			timeout := DefaultWaitTimeout
			if len(c.Args) > 4 {
				if timeout, err = time.ParseDuration(c.Args[4]); err != nil {
					c.Err(err)
					return
				}
			}
			res, err := waitRegister(s.Bus, s.Table, id, c.Args[1], uint32(goal), uint32(tolerance), s.Timeout, timeout)
			output(c, s, res, err)
		}),
	}

	// RegsCmd lists the control table.
	RegsCmd = ishell.Cmd{
		Name: "regs",
		Help: "",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			regs := listRegisters(s.Table)
			if s.OutputJSON {
				s.Output(c, regs)
				return
			}
			for _, reg := range regs {
				c.Println(reg.String())
			}
		}),
	}

	// ActionCmd executes registered writes.
	ActionCmd = ishell.Cmd{
		Name: "action",
		Help: "[ID]",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			id := dxl.BroadcastID
			if len(c.Args) > 0 {
				var ok bool
				if id, ok = idArg(c, 0); !ok {
					return
				}
			}
			ctx, cancel := s.Context()
			defer cancel()
			done(c, s.Bus.Action(ctx, id))
		}),
	}

	// RebootCmd restarts a device.
	RebootCmd = ishell.Cmd{
		Name: "reboot",
		Help: "ID",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			if !requireArgs(c, 1) {
				return
			}
			id, ok := idArg(c, 0)
			if !ok {
				return
			}
			ctx, cancel := s.Context()
			defer cancel()
			done(c, s.Bus.Reboot(ctx, id))
		}),
	}

	// ResetCmd restores factory defaults.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "ID [all|except-id|except-id-baud]",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			if !requireArgs(c, 1) {
				return
			}
			id, ok := idArg(c, 0)
			if !ok {
				return
			}
			mode := bus.ResetAll
			if len(c.Args) > 1 {
				var err error
				if mode, err = parseResetMode(c.Args[1]); err != nil {
					c.Err(err)
					return
				}
			}
			ctx, cancel := s.Context()
			defer cancel()
			done(c, s.Bus.FactoryReset(ctx, id, mode))
		}),
	}
)

func init() {
	sh.AddCmds(
		&PingCmd,
		&ScanCmd,
		&ReadCmd,
		&WriteCmd,
		&GetCmd,
		&SetCmd,
		&WaitCmd,
		&RegsCmd,
		&ActionCmd,
		&RebootCmd,
		&ResetCmd,
	)
}
