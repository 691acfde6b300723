package msgs

import (
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/openrover/pkg/l0/comm"
	"github.com/robotalks/openrover/pkg/l0/motor"
	pb "github.com/robotalks/openrover/pkg/proto/rover/v1"
)

// TypeID Groups
const (
	GroupRover  uint32 = 0x00010000
	GroupCustom uint32 = 0x7f000000 // base group id for custom messages.
)

// TypeIDs
const (
	DriveCommandTypeID uint32 = TypeIDKindCommand | GroupRover | 0x0001
	RoverStatusTypeID  uint32 = TypeIDKindEvent | GroupRover | 0x0001
)

// DriveCommand requests a motion.
type DriveCommand struct {
	pb.DriveCommand
}

// NewDriveCommand creates a DriveCommand.
func NewDriveCommand(dir motor.Direction, speed int8) *DriveCommand {
	return &DriveCommand{DriveCommand: pb.DriveCommand{Opcode: uint32(dir.Opcode()), Speed: int32(speed)}}
}

// NewMessage implements Message.
func (m *DriveCommand) NewMessage() Message { return &DriveCommand{} }

// TypeID implements Message.
func (m *DriveCommand) TypeID() uint32 { return DriveCommandTypeID }

// Serializable implements Message.
func (m *DriveCommand) Serializable() proto.Message { return &m.DriveCommand }

// Frame converts the command into a wire frame.
func (m *DriveCommand) Frame() (comm.Frame, error) {
	if m.Opcode > 0xff {
		return comm.Frame{}, fmt.Errorf("opcode %d out of range", m.Opcode)
	}
	if m.Speed < -128 || m.Speed > 127 {
		return comm.Frame{}, fmt.Errorf("speed %d out of range", m.Speed)
	}
	return comm.NewFrame(byte(m.Opcode), byte(int8(m.Speed))), nil
}

// RoverStatus is the telemetry event.
type RoverStatus struct {
	pb.RoverStatus
}

// NewRoverStatus creates a RoverStatus from a telemetry frame.
func NewRoverStatus(roverID string, frame comm.Frame, t time.Time) *RoverStatus {
	return &RoverStatus{RoverStatus: pb.RoverStatus{
		RoverId:   roverID,
		Direction: uint32(frame.Opcode),
		Duty:      uint32(frame.Magnitude),
		Frame:     frame.Bytes(),
		Timestamp: t.UnixNano(),
	}}
}

// WithStats fills the receive statistics.
func (m *RoverStatus) WithStats(stats comm.StatsSnapshot) *RoverStatus {
	m.Frames = stats.Frames
	m.ChecksumErrors = stats.ChecksumErrors
	m.InvalidOpcodes = stats.InvalidOpcodes
	m.SkippedBytes = stats.SkippedBytes
	m.Resyncs = stats.Resyncs
	m.Overruns = stats.Overruns
	return m
}

// NewMessage implements Message.
func (m *RoverStatus) NewMessage() Message { return &RoverStatus{} }

// TypeID implements Message.
func (m *RoverStatus) TypeID() uint32 { return RoverStatusTypeID }

// Serializable implements Message.
func (m *RoverStatus) Serializable() proto.Message { return &m.RoverStatus }

// State returns the motor state reported.
func (m *RoverStatus) State() motor.State {
	dir, _ := motor.DirectionFromOpcode(byte(m.Direction))
	return motor.State{Direction: dir, Duty: uint8(m.Duty)}
}

// Time returns the time of the report.
func (m *RoverStatus) Time() time.Time {
	return time.Unix(0, m.Timestamp)
}
