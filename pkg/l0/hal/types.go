// Package hal defines the hardware collaborators of the rover controller.
package hal

// DirectionPins drives the two direction outputs of the motor driver.
type DirectionPins interface {
	// SetDirection sets pin A and pin B, true means high.
	SetDirection(a, b bool) error
}

// PWMDriver is the PWM peripheral generating the motor enable signal.
type PWMDriver interface {
	// SetCompare sets the compare value, 0 (always off) to MaxCompare (always on).
	SetCompare(value uint32) error
	// MaxCompare returns the maximum compare value, e.g. 255 for an 8-bit timer.
	MaxCompare() uint32
}

// DefaultMaxCompare matches the 8-bit timer of the rover MCU.
const DefaultMaxCompare uint32 = 255
