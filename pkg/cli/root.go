// Package cli implements roverctl, the operator tool of the rover.
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/robotalks/openrover/pkg/cli/link"
	"github.com/robotalks/openrover/pkg/cli/sh"
	fx "github.com/robotalks/openrover/pkg/framework"
	"github.com/robotalks/openrover/pkg/l0/comm"
	"github.com/robotalks/openrover/pkg/l0/hal"

	// shell commands.
	_ "github.com/robotalks/openrover/pkg/cli/cmds/drive"
)

var (
	target     string
	baudRate   int
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "roverctl",
	Short: "OpenRover operator tool",
	Long: `roverctl sends drive commands to a rover and monitors its telemetry.

Connection:
  Serial:    --port /dev/ttyUSB0 [--baud 9600]
  WebSocket: --port ws://host:8080/rover

The port defaults to the ROVER_PORT environment variable.`,
	SilenceUsage: true,
}

var shellCmd = &cobra.Command{
	Use:   "shell [COMMAND ARGS...]",
	Short: "Interactive shell, or run a single shell command",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := sh.New()
		s.BaudRate = baudRate
		s.OutputJSON = outputJSON
		return s.Run(target, args...)
	},
}

var sendCmd = &cobra.Command{
	Use:   "send DIRECTION [SPEED]",
	Short: "Send a drive command",
	Long: `Send a drive command. DIRECTION is one of forward, right, backward,
left or stop. SPEED is the duty cycle in percent.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := link.ParseDrive(args)
		if err != nil {
			return err
		}
		l, err := openLink()
		if err != nil {
			return err
		}
		defer l.Close()
		if err := l.Send(f); err != nil {
			return err
		}
		fmt.Printf("sent % x\n", f.Bytes())
		return nil
	},
}

var monitorDuration time.Duration

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Display telemetry from the rover",
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := openLink()
		if err != nil {
			return err
		}
		runner := fx.NewRunner().HandleSignals()
		ctx := runner.Context
		if monitorDuration > 0 {
			var cancel func()
			ctx, cancel = context.WithTimeout(ctx, monitorDuration)
			defer cancel()
		}
		fmt.Printf("Connection: %s\nPress Ctrl+C to exit\n\n", l.Target)
		err = l.Monitor(ctx, func(f comm.Frame) {
			fmt.Printf("%s % x %s\n", time.Now().Format("15:04:05.000"), f.Bytes(), link.FormatStatus(f))
		})
		if err == context.Canceled || err == context.DeadlineExceeded {
			return nil
		}
		return err
	},
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := hal.SerialPorts()
		if err != nil {
			return err
		}
		for _, port := range ports {
			fmt.Println(port)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&target, "port", "p", os.Getenv("ROVER_PORT"), "Serial port or websocket URL of the rover")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", hal.DefaultBaudRate, "Baud rate (serial only)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Print output in JSON (shell only)")
	// glog flags.
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	monitorCmd.Flags().DurationVarP(&monitorDuration, "duration", "d", 0, "Stop after the duration, 0 runs until interrupted")

	rootCmd.AddCommand(shellCmd, sendCmd, monitorCmd, portsCmd)
}

func openLink() (*link.Link, error) {
	if target == "" {
		return nil, fmt.Errorf("--port is required")
	}
	return link.Open(target, baudRate)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
