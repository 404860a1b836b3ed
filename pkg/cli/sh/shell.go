package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/dxl.go/pkg/dxl/bus"
	"github.com/robotalks/dxl.go/pkg/env"
)

// DefaultTimeout bounds a single bus transaction.
const DefaultTimeout = 100 * time.Millisecond

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoOpen    bool
	Timeout     time.Duration

	Shell  *ishell.Shell
	Config *env.Config
	Env    *env.Env
	Bus    *bus.Bus
	Table  bus.Table
}

const (
	shellKey     = "$shell"
	closedPrompt = "[closed] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Timeout:     DefaultTimeout,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpen wraps command func requires an opened bus.
func MustBeOpen(fn func(c *ishell.Context, s *Shell)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		if s.Bus == nil {
			c.Err(fmt.Errorf("bus not open"))
			return
		}
		fn(c, s)
	}
}

// WithAutoOpen sets AutoOpen.
func (s *Shell) WithAutoOpen(en bool) *Shell {
	s.AutoOpen = en
	return s
}

// Attach uses b as the bus of the shell.
func (s *Shell) Attach(b *bus.Bus, table bus.Table) {
	s.Bus, s.Table = b, table
	s.Shell.SetPrompt(fmt.Sprintf("P%d > ", b.Version()))
}

// Open opens the bus from Config.
func (s *Shell) Open() error {
	e, err := s.Config.Open()
	if err != nil {
		return err
	}
	s.Close()
	s.Env = e
	s.Attach(e.Bus, e.Table)
	s.Shell.SetPrompt(fmt.Sprintf("%s P%d > ", s.Config.Port, e.Bus.Version()))
	return nil
}

// Close closes the bus.
func (s *Shell) Close() {
	if s.Env != nil {
		s.Env.Close()
		s.Env = nil
	}
	s.Bus, s.Table = nil, nil
	s.Shell.SetPrompt(closedPrompt)
}

// Context creates a context bounded by the transaction timeout.
func (s *Shell) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.Timeout)
}

// Output prints a result in text or JSON.
func (s *Shell) Output(c *ishell.Context, res interface{}) {
	if s.OutputJSON {
		out, err := json.Marshal(res)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(fmt.Sprint(res))
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoOpen {
		if s.Interactive {
			s.Shell.Printf("Opening %s ...\n", s.Config.Port)
		}
		if err := s.Open(); err != nil {
			log.Fatalf("open %q failed: %v", s.Config.Port, err)
		}
	}
	defer s.Close()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// OpenCmd opens the bus.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[PORT]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) > 0 {
				s.Config.Port = c.Args[0]
			}
			if err := s.Open(); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes the bus.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoOpen(true).Run(flag.Args()...)
}
