package comm

import (
	"fmt"
	"io"
)

// Wire constants.
const (
	// StartMarker precedes every frame.
	StartMarker byte = 0xff
	// PayloadLen is the number of bytes following the marker.
	PayloadLen = 3
	// FrameLen is the full length on the wire.
	FrameLen = PayloadLen + 1
)

// Frame is a received or to-be-sent command:
// [StartMarker][Opcode][Magnitude][Checksum].
type Frame struct {
	Opcode    byte
	Magnitude byte
	Checksum  byte
}

// Checksum calculates the checksum for opcode and magnitude.
func Checksum(opcode, magnitude byte) byte {
	return opcode ^ magnitude
}

// NewFrame creates a Frame with the checksum filled.
func NewFrame(opcode, magnitude byte) Frame {
	return Frame{Opcode: opcode, Magnitude: magnitude, Checksum: Checksum(opcode, magnitude)}
}

// Valid checks the checksum.
func (f Frame) Valid() bool {
	return Checksum(f.Opcode, f.Magnitude) == f.Checksum
}

// Speed returns Magnitude as the signed value on the wire.
func (f Frame) Speed() int8 {
	return int8(f.Magnitude)
}

// Bytes returns encoded bytes for sending.
func (f Frame) Bytes() []byte {
	return []byte{StartMarker, f.Opcode, f.Magnitude, f.Checksum}
}

// WriteTo implements io.WriterTo.
func (f Frame) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f.Bytes())
	return int64(n), err
}

// String implements fmt.Stringer.
func (f Frame) String() string {
	return fmt.Sprintf("{op=%d mag=%d chk=%#02x}", f.Opcode, f.Speed(), f.Checksum)
}
