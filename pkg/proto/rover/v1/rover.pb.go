// Package rover contains the messages defined in rover.proto.
//
// The structs are kept in sync with rover.proto by hand, they are
// encoded by github.com/golang/protobuf/proto using the struct tags.
package rover

import (
	proto "github.com/golang/protobuf/proto"
)

// Typed wraps a message with its type ID.
type Typed struct {
	TypeId  uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Message []byte `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *Typed) Reset()         { *m = Typed{} }
func (m *Typed) String() string { return proto.CompactTextString(m) }
func (*Typed) ProtoMessage()    {}

func (m *Typed) GetTypeId() uint32 {
	if m != nil {
		return m.TypeId
	}
	return 0
}

func (m *Typed) GetMessage() []byte {
	if m != nil {
		return m.Message
	}
	return nil
}

// DriveCommand requests a motion, it's converted to a wire frame.
type DriveCommand struct {
	// opcode of the direction, 0 pauses the rover.
	Opcode uint32 `protobuf:"varint,1,opt,name=opcode,proto3" json:"opcode,omitempty"`
	// signed speed in percent.
	Speed int32 `protobuf:"zigzag32,2,opt,name=speed,proto3" json:"speed,omitempty"`
}

func (m *DriveCommand) Reset()         { *m = DriveCommand{} }
func (m *DriveCommand) String() string { return proto.CompactTextString(m) }
func (*DriveCommand) ProtoMessage()    {}

func (m *DriveCommand) GetOpcode() uint32 {
	if m != nil {
		return m.Opcode
	}
	return 0
}

func (m *DriveCommand) GetSpeed() int32 {
	if m != nil {
		return m.Speed
	}
	return 0
}

// RoverStatus is published on every telemetry report.
type RoverStatus struct {
	RoverId        string `protobuf:"bytes,1,opt,name=rover_id,json=roverId,proto3" json:"rover_id,omitempty"`
	Direction      uint32 `protobuf:"varint,2,opt,name=direction,proto3" json:"direction,omitempty"`
	Duty           uint32 `protobuf:"varint,3,opt,name=duty,proto3" json:"duty,omitempty"`
	Frame          []byte `protobuf:"bytes,4,opt,name=frame,proto3" json:"frame,omitempty"`
	Timestamp      int64  `protobuf:"varint,5,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Frames         uint64 `protobuf:"varint,10,opt,name=frames,proto3" json:"frames,omitempty"`
	ChecksumErrors uint64 `protobuf:"varint,11,opt,name=checksum_errors,json=checksumErrors,proto3" json:"checksum_errors,omitempty"`
	InvalidOpcodes uint64 `protobuf:"varint,12,opt,name=invalid_opcodes,json=invalidOpcodes,proto3" json:"invalid_opcodes,omitempty"`
	SkippedBytes   uint64 `protobuf:"varint,13,opt,name=skipped_bytes,json=skippedBytes,proto3" json:"skipped_bytes,omitempty"`
	Resyncs        uint64 `protobuf:"varint,14,opt,name=resyncs,proto3" json:"resyncs,omitempty"`
	Overruns       uint64 `protobuf:"varint,15,opt,name=overruns,proto3" json:"overruns,omitempty"`
}

func (m *RoverStatus) Reset()         { *m = RoverStatus{} }
func (m *RoverStatus) String() string { return proto.CompactTextString(m) }
func (*RoverStatus) ProtoMessage()    {}

func (m *RoverStatus) GetRoverId() string {
	if m != nil {
		return m.RoverId
	}
	return ""
}

func (m *RoverStatus) GetDirection() uint32 {
	if m != nil {
		return m.Direction
	}
	return 0
}

func (m *RoverStatus) GetDuty() uint32 {
	if m != nil {
		return m.Duty
	}
	return 0
}

func (m *RoverStatus) GetFrame() []byte {
	if m != nil {
		return m.Frame
	}
	return nil
}

func (m *RoverStatus) GetTimestamp() int64 {
	if m != nil {
		return m.Timestamp
	}
	return 0
}

func init() {
	proto.RegisterType((*Typed)(nil), "rover.v1.Typed")
	proto.RegisterType((*DriveCommand)(nil), "rover.v1.DriveCommand")
	proto.RegisterType((*RoverStatus)(nil), "rover.v1.RoverStatus")
}
