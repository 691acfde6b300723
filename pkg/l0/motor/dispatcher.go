package motor

import (
	"fmt"
	"sync/atomic"

	"github.com/robotalks/openrover/pkg/l0/comm"
	"github.com/robotalks/openrover/pkg/l0/hal"
)

// OpcodeError indicates a frame with a valid checksum but unknown opcode.
type OpcodeError struct {
	Opcode byte
}

// Error implements error.
func (e *OpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode %d", e.Opcode)
}

// Outcome is the motor action decided from a frame.
type Outcome struct {
	Direction Direction
	Speed     int8
}

// Duty returns the duty cycle in percent, Pause is always 0.
func (o Outcome) Duty() uint8 {
	if o.Direction == Pause {
		return 0
	}
	return ClampDuty(int(o.Speed))
}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	if o.Direction == Pause {
		return Pause.String()
	}
	return fmt.Sprintf("%s(%d)", o.Direction, o.Speed)
}

// Decide maps a frame into an Outcome. Corrupted frames and unknown
// opcodes result in Pause with the reason returned as error.
func Decide(f comm.Frame) (Outcome, error) {
	if !f.Valid() {
		return Outcome{Direction: Pause}, &comm.ChecksumError{Frame: f}
	}
	dir, ok := DirectionFromOpcode(f.Opcode)
	if !ok {
		return Outcome{Direction: Pause}, &OpcodeError{Opcode: f.Opcode}
	}
	return Outcome{Direction: dir, Speed: f.Speed()}, nil
}

// State is the motor output state.
type State struct {
	Direction Direction
	Duty      uint8
}

// Frame encodes the state as a frame, e.g. for telemetry.
func (s State) Frame() comm.Frame {
	return comm.NewFrame(s.Direction.Opcode(), s.Duty)
}

// Dispatcher applies Outcomes to the motor outputs.
type Dispatcher struct {
	Duty *DutyCycle
	Pins hal.DirectionPins

	state atomic.Uint32 // Direction<<8 | duty
}

// NewDispatcher creates a Dispatcher. The outputs are not touched
// until the first Apply.
func NewDispatcher(duty *DutyCycle, pins hal.DirectionPins) *Dispatcher {
	return &Dispatcher{Duty: duty, Pins: pins}
}

// Dispatch decides and applies a frame. A rejected frame still applies
// Pause and the reason is returned (see IsRejected). An error from the
// outputs takes precedence.
func (d *Dispatcher) Dispatch(f comm.Frame) (Outcome, error) {
	out, reason := Decide(f)
	if err := d.Apply(out); err != nil {
		return out, err
	}
	return out, reason
}

// IsRejected tells if err is the reason a frame is decided as Pause.
func IsRejected(err error) bool {
	switch err.(type) {
	case *comm.ChecksumError, *OpcodeError:
		return true
	}
	return false
}

// Apply updates duty cycle and direction pins.
func (d *Dispatcher) Apply(out Outcome) error {
	duty := d.Duty.Store(int(out.Duty()))
	d.state.Store(uint32(out.Direction)<<8 | uint32(duty))
	return d.Pins.SetDirection(out.Direction.Pins())
}

// State returns the last applied state.
func (d *Dispatcher) State() State {
	val := d.state.Load()
	return State{Direction: Direction(val >> 8), Duty: uint8(val)}
}
