// Package drive provides shell commands driving the rover.
package drive

import (
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/openrover/pkg/cli/link"
	"github.com/robotalks/openrover/pkg/cli/sh"
	"github.com/robotalks/openrover/pkg/l0/comm"
	"github.com/robotalks/openrover/pkg/l0/motor"
)

func driveCmd(dir motor.Direction, aliases ...string) *ishell.Cmd {
	return &ishell.Cmd{
		Name:    dir.String(),
		Aliases: aliases,
		Help:    "SPEED(0-100)",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("SPEED required"))
				return
			}
			f, err := link.ParseDrive(append([]string{dir.String()}, c.Args[0]))
			if err != nil {
				c.Err(err)
				return
			}
			sh.Send(c, f)
		}),
	}
}

var (
	// StopCmd pauses the rover.
	StopCmd = ishell.Cmd{
		Name:    "stop",
		Aliases: []string{"s", "pause"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.Send(c, link.DriveFrame(motor.Pause, 0))
		}),
	}

	// RawCmd sends raw bytes, e.g. to test resynchronization.
	RawCmd = ishell.Cmd{
		Name:    "raw",
		Help:    "HEX-BYTES",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			data, err := link.ParseBytes(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if len(data) == comm.FrameLen {
				if f, err := comm.DecodeFrame(data); err != nil {
					c.Printf("warning: %v\n", err)
				} else {
					c.Printf("frame: %s\n", link.FormatStatus(f))
				}
			}
			if _, err := sh.ShellFrom(c).Link.Write(data); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		}),
	}
)

func init() {
	sh.AddCmds(
		driveCmd(motor.Forward, "f", "fwd"),
		driveCmd(motor.Backward, "b", "back"),
		driveCmd(motor.Left, "l"),
		driveCmd(motor.Right, "r"),
		&StopCmd,
		&RawCmd,
	)
}
