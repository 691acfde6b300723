package msgs

import (
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"

	pb "github.com/robotalks/openrover/pkg/proto/rover/v1"
)

// TypeID masks
const (
	TypeIDMaskKind  uint32 = 0x80000000
	TypeIDMaskGroup uint32 = 0x7fff0000
	TypeIDMaskID    uint32 = 0x0000ffff
)

// Message Kinds
const (
	TypeIDKindCommand uint32 = 0x00000000
	TypeIDKindEvent   uint32 = 0x80000000
)

// Typed wraps a message with type information.
type Typed struct {
	pb.Typed
}

// ErrUnknownType indicates unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

// ErrUnexpectedType indicates the message decoded is not the expected one.
var ErrUnexpectedType = errors.New("unexpected message type")

// Message is a message which can be serialized over the wire.
type Message interface {
	NewMessage() Message
	TypeID() uint32
	Serializable() proto.Message
}

// MessageTypes are predefined mapping of type ID to messages.
var MessageTypes = map[uint32]Message{
	DriveCommandTypeID: (*DriveCommand)(nil),
	RoverStatusTypeID:  (*RoverStatus)(nil),
}

// TypedFrom creates a Typed from a message.
func TypedFrom(msg Message) (*Typed, error) {
	data, err := proto.Marshal(msg.Serializable())
	if err != nil {
		return nil, err
	}
	return &Typed{Typed: pb.Typed{TypeId: msg.TypeID(), Message: data}}, nil
}

// Encode wraps msg in Typed and encodes it to bytes.
func Encode(msg Message) ([]byte, error) {
	typed, err := TypedFrom(msg)
	if err != nil {
		return nil, err
	}
	return typed.Encode()
}

// Decode decodes the packet into actual message.
func (p Typed) Decode() (Message, error) {
	msgType, ok := MessageTypes[p.TypeId]
	if !ok {
		return nil, &ErrUnknownType{TypeID: p.TypeId}
	}
	msg := msgType.NewMessage()
	if err := proto.Unmarshal(p.Message, msg.Serializable()); err != nil {
		return nil, err
	}
	return msg, nil
}

// Encode encodes the Typed to bytes.
func (p Typed) Encode() ([]byte, error) {
	return proto.Marshal(&p.Typed)
}

// Kind gets message kind from type ID.
func (p Typed) Kind() uint32 {
	return p.TypeId & TypeIDMaskKind
}

// IsCommand determines if the message is a command.
func (p Typed) IsCommand() bool {
	return p.Kind() == TypeIDKindCommand
}

// IsEvent determines if the message is an event.
func (p Typed) IsEvent() bool {
	return p.Kind() == TypeIDKindEvent
}

// DecodeTyped decodes bytes into Typed.
func DecodeTyped(data []byte) (*Typed, error) {
	var typed Typed
	if err := proto.Unmarshal(data, &typed.Typed); err != nil {
		return nil, err
	}
	return &typed, nil
}

// DecodeMessage decodes bytes into the actual message.
func DecodeMessage(data []byte) (Message, error) {
	typed, err := DecodeTyped(data)
	if err != nil {
		return nil, err
	}
	return typed.Decode()
}
