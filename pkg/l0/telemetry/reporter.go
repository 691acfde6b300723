// Package telemetry reports the motor state periodically.
//
// A telemetry frame uses the same layout as a command frame:
//
//	[0xFF][direction][duty][direction ^ duty]
//
// where direction is the opcode of the current direction (0 for pause)
// and duty is the applied duty cycle in percent.
package telemetry

import (
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/openrover/pkg/framework"
	"github.com/robotalks/openrover/pkg/l0/comm"
	"github.com/robotalks/openrover/pkg/l0/motor"
)

// DefaultTelemetryPeriod is the period of the telemetry task.
const DefaultTelemetryPeriod = 250 * time.Millisecond

// StateSource provides the current motor state.
type StateSource interface {
	State() motor.State
}

// Reporter is the telemetry controller.
type Reporter struct {
	Source  StateSource
	Senders Multi

	sent   atomic.Uint64
	failed atomic.Uint64
}

// NewReporter creates a Reporter.
func NewReporter(src StateSource, senders ...Sender) *Reporter {
	return &Reporter{Source: src, Senders: senders}
}

// AddSender adds Senders. It must be called before the loop starts.
func (r *Reporter) AddSender(senders ...Sender) *Reporter {
	r.Senders = append(r.Senders, senders...)
	return r
}

// AddToLoop implements LoopAdder.
func (r *Reporter) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvReport, r)
}

// NewTask creates the periodic telemetry task.
func (r *Reporter) NewTask(period time.Duration) *fx.Loop {
	if period <= 0 {
		period = DefaultTelemetryPeriod
	}
	l := &fx.Loop{TaskName: "telemetry", Interval: period}
	return l.Add(r)
}

// Frame returns the telemetry frame of the current state.
func (r *Reporter) Frame() comm.Frame {
	return r.Source.State().Frame()
}

// Control implements Controller.
func (r *Reporter) Control(cc fx.ControlContext) error {
	frame := r.Frame()
	glog.V(3).Infof("telemetry: %s", frame)
	if err := r.Senders.Send(cc.Context(), frame); err != nil {
		r.failed.Add(1)
		return err
	}
	r.sent.Add(1)
	return nil
}

// Sent returns the number of reports delivered to all senders.
func (r *Reporter) Sent() uint64 {
	return r.sent.Load()
}

// Failed returns the number of reports failed on some sender.
func (r *Reporter) Failed() uint64 {
	return r.failed.Load()
}
