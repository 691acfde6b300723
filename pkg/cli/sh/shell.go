// Package sh provides the interactive shell of roverctl.
package sh

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/openrover/pkg/cli/link"
	"github.com/robotalks/openrover/pkg/l0/comm"
	"github.com/robotalks/openrover/pkg/l0/hal"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	BaudRate    int

	Shell *ishell.Shell
	Link  *link.Link

	cancel     func()
	statusLock sync.Mutex
	status     *Status
}

// Status is the last telemetry received.
type Status struct {
	Frame comm.Frame `json:"-"`
	Raw   []byte     `json:"frame"`
	Text  string     `json:"status"`
	Time  time.Time  `json:"time"`
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var commands = []*ishell.Cmd{
	&ConnectCmd,
	&DisconnectCmd,
	&PortsCmd,
	&StatusCmd,
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New() *Shell {
	s := &Shell{
		Interactive: true,
		BaudRate:    hal.DefaultBaudRate,
		Shell:       ishell.New(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Link == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// Send sends a frame and prints the result.
func Send(c *ishell.Context, f comm.Frame) error {
	s := ShellFrom(c)
	if err := s.Link.Send(f); err != nil {
		c.Err(err)
		return err
	}
	if s.OutputJSON {
		c.Printf("{\"frame\":\"% x\"}\n", f.Bytes())
		return nil
	}
	c.Println("OK")
	return nil
}

// Connect opens a link and starts monitoring telemetry.
func (s *Shell) Connect(target string) error {
	l, err := link.Open(target, s.BaudRate)
	if err != nil {
		return err
	}
	s.Disconnect()
	ctx, cancel := context.WithCancel(context.Background())
	s.Link, s.cancel = l, cancel
	go l.Monitor(ctx, s.updateStatus)
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", target))
	return nil
}

// Disconnect disconnects current link and forgets its telemetry.
func (s *Shell) Disconnect() {
	if s.Link != nil {
		s.cancel()
		s.Link, s.cancel = nil, nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
	s.statusLock.Lock()
	s.status = nil
	s.statusLock.Unlock()
}

// Status returns the last telemetry received, nil if none.
func (s *Shell) Status() *Status {
	s.statusLock.Lock()
	defer s.statusLock.Unlock()
	return s.status
}

func (s *Shell) updateStatus(f comm.Frame) {
	st := &Status{Frame: f, Raw: f.Bytes(), Text: link.FormatStatus(f), Time: time.Now()}
	s.statusLock.Lock()
	s.status = st
	s.statusLock.Unlock()
}

// Run runs the shell. With args, they are executed as a single command.
func (s *Shell) Run(target string, args ...string) error {
	if target != "" {
		if err := s.Connect(target); err != nil {
			return fmt.Errorf("connect %q failed: %v", target, err)
		}
		defer s.Disconnect()
	}
	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	if !s.Interactive {
		return fmt.Errorf("command expected")
	}
	s.Shell.Run()
	return nil
}

var (
	// ConnectCmd connects a rover.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "PORT|URL",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("PORT or URL required"))
				return
			}
			if err := ShellFrom(c).Connect(c.Args[0]); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current rover.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"ls"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ports, err := hal.SerialPorts()
			if err != nil {
				c.Err(err)
				return
			}
			if ShellFrom(c).OutputJSON {
				if ports == nil {
					ports = []string{}
				}
				out, _ := json.Marshal(ports)
				c.Println(string(out))
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
			}
			for _, port := range ports {
				c.Println(port)
			}
		},
	}

	// StatusCmd prints the last telemetry.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			st := s.Status()
			if s.OutputJSON {
				out, err := json.Marshal(st)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if st == nil {
				c.Println("No telemetry received")
				return
			}
			c.Printf("%s (% x) %s ago\n", st.Text, st.Raw, time.Since(st.Time).Round(time.Millisecond))
		}),
	}
)
