// Package rover assembles the rover controller from the receive path,
// the control task, the PWM output and the telemetry task.
package rover

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/openrover/pkg/framework"
	"github.com/robotalks/openrover/pkg/l0/comm"
	"github.com/robotalks/openrover/pkg/l0/hal"
	"github.com/robotalks/openrover/pkg/l0/motor"
	"github.com/robotalks/openrover/pkg/l0/telemetry"
	"github.com/robotalks/openrover/pkg/l1/comm/mqtt"
	"github.com/robotalks/openrover/pkg/l1/comm/websocket"
	"github.com/robotalks/openrover/pkg/sim"
)

// Rover is an assembled rover controller.
type Rover struct {
	ID string

	Ring       *comm.RingBuffer
	Receiver   *comm.Receiver
	Duty       *motor.DutyCycle
	Pins       *hal.VirtualPins
	PWMDriver  *hal.VirtualPWM
	Dispatcher *motor.Dispatcher
	Controller *motor.Controller
	PWM        *motor.PWM
	Reporter   *telemetry.Reporter
	Sim        *sim.Rover

	ControlTask   *fx.Loop
	TelemetryTask *fx.Loop

	// optional links.
	Serial    io.ReadWriteCloser
	Bridge    *mqtt.Bridge
	WebSocket *websocket.Server
}

// New creates a Rover without any links.
func (c *Config) New() *Rover {
	r := &Rover{
		ID:        c.RoverID(),
		Ring:      comm.NewRingBuffer(c.RingCapacity),
		Duty:      &motor.DutyCycle{},
		Pins:      &hal.VirtualPins{},
		PWMDriver: &hal.VirtualPWM{Max: uint32(c.MaxCompare)},
	}
	r.Receiver = comm.NewReceiver(r.Ring)
	r.Dispatcher = motor.NewDispatcher(r.Duty, r.Pins)
	r.Controller = motor.NewController(r.Ring, r.Dispatcher)
	r.Controller.Parser.StrictResync = c.StrictResync
	r.PWM = motor.NewPWM(r.Duty, r.PWMDriver)
	if c.PWMPeriod > 0 {
		r.PWM.Period = c.PWMPeriod
	}
	r.Reporter = telemetry.NewReporter(r.Dispatcher)

	r.ControlTask = fx.NewPeriodicTask("control", c.ControlPeriod)
	r.ControlTask.Add(r.Controller)
	if c.Simulate {
		r.Sim = sim.NewRover(r.Dispatcher)
		r.ControlTask.Add(r.Sim)
	}
	r.TelemetryTask = r.Reporter.NewTask(c.TelemetryPeriod)
	return r
}

// NewRover creates a Rover and opens the configured links.
func (c *Config) NewRover() (*Rover, error) {
	r := c.New()
	if c.SerialPort != "" {
		port, err := hal.OpenSerial(c.SerialPort, c.BaudRate)
		if err != nil {
			return nil, err
		}
		r.AddSerial(c.SerialPort, port)
	}
	if c.MQTTBrokerURL != "" {
		bridge, err := mqtt.NewBridge(c.MQTTBrokerURL, r.ID)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("create MQTT bridge error: %v", err)
		}
		r.AddBridge(bridge)
	}
	if c.ListenAddr != "" {
		r.AddWebSocket(websocket.NewServer(c.ListenAddr, r.Receiver))
	}
	return r, nil
}

// serialLink closes the port only once, either by the Receiver when
// reading fails, or by Rover.Close.
type serialLink struct {
	io.ReadWriteCloser

	once sync.Once
	err  error
}

func (l *serialLink) Close() error {
	l.once.Do(func() {
		l.err = l.ReadWriteCloser.Close()
	})
	return l.err
}

// AddSerial uses a serial link for both commands and telemetry.
// The rover stops when the port fails, as no Pause can arrive anymore.
func (r *Rover) AddSerial(name string, port io.ReadWriteCloser) *Rover {
	link := &serialLink{ReadWriteCloser: port}
	r.Serial = link
	r.Receiver.AttachRequired(name, link)
	r.Reporter.AddSender(telemetry.NewWriterSender(link))
	return r
}

// AddBridge uses MQTT for both commands and telemetry.
func (r *Rover) AddBridge(bridge *mqtt.Bridge) *Rover {
	bridge.Stats = &r.Controller.Stats
	r.Bridge = bridge
	r.Receiver.Attach("mqtt", bridge.Commands())
	r.Reporter.AddSender(bridge)
	return r
}

// AddWebSocket serves the websocket link.
func (r *Rover) AddWebSocket(srv *websocket.Server) *Rover {
	r.WebSocket = srv
	r.Reporter.AddSender(srv)
	return r
}

// Runnables returns everything to be run.
func (r *Rover) Runnables() []fx.Runnable {
	runnables := []fx.Runnable{r.Receiver, r.PWM, r.ControlTask, r.TelemetryTask}
	if r.Bridge != nil {
		runnables = append(runnables, r.Bridge)
	}
	if r.WebSocket != nil {
		runnables = append(runnables, r.WebSocket)
	}
	return runnables
}

// Run implements Runnable. It stops when ctx is done or any Runnable
// fails, and pauses the motor before returning.
func (r *Rover) Run(ctx context.Context) error {
	glog.Infof("rover %s started", r.ID)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	runner := fx.NewRunnerWith(ctx)
	for _, runnable := range r.Runnables() {
		runner.Go(fx.CancelOnError(runnable, cancel))
	}
	err := runner.Wait()
	if perr := r.Dispatcher.Apply(motor.Outcome{Direction: motor.Pause}); perr != nil {
		glog.Warningf("rover %s: pause failed: %v", r.ID, perr)
	}
	if perr := r.PWM.Update(); perr != nil {
		glog.Warningf("rover %s: PWM stop failed: %v", r.ID, perr)
	}
	stats := r.Controller.Stats.Snapshot()
	glog.Infof("rover %s stopped: frames=%d checksum-errors=%d invalid-opcodes=%d skipped=%d overruns=%d resyncs=%d",
		r.ID, stats.Frames, stats.ChecksumErrors, stats.InvalidOpcodes, stats.SkippedBytes, stats.Overruns, stats.Resyncs)
	if r.Sim != nil {
		glog.Infof("rover %s simulated pose %s", r.ID, r.Sim.Pose())
	}
	return err
}

// Close closes the links not owned by a Runnable. It's safe to call after
// the serial port is closed by a failure.
func (r *Rover) Close() error {
	if r.Serial != nil {
		return r.Serial.Close()
	}
	return nil
}
