package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning indicates Run is called more than once.
	ErrAlreadyRunning = errors.New("already running")
	// ErrShortFrame indicates less than FrameLen bytes are given.
	ErrShortFrame = errors.New("short frame")
)

// InputError indicates a required input of the Receiver failed.
type InputError struct {
	Name string
	Err  error
}

// Error implements error.
func (e *InputError) Error() string {
	return fmt.Sprintf("input %s failed: %v", e.Name, e.Err)
}

// MarkerError indicates a frame doesn't start with StartMarker.
type MarkerError struct {
	Got byte
}

// Error implements error.
func (e *MarkerError) Error() string {
	return fmt.Sprintf("bad start marker %#02x", e.Got)
}

// ChecksumError indicates the checksum doesn't match.
type ChecksumError struct {
	Frame Frame
}

// Error implements error.
func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: expect %#02x, got %#02x",
		Checksum(e.Frame.Opcode, e.Frame.Magnitude), e.Frame.Checksum)
}

// DecodeFrame decodes exactly one encoded frame including the StartMarker.
func DecodeFrame(b []byte) (Frame, error) {
	if len(b) < FrameLen {
		return Frame{}, ErrShortFrame
	}
	if b[0] != StartMarker {
		return Frame{}, &MarkerError{Got: b[0]}
	}
	f := Frame{Opcode: b[1], Magnitude: b[2], Checksum: b[3]}
	if !f.Valid() {
		return f, &ChecksumError{Frame: f}
	}
	return f, nil
}
