package motor

import "sync/atomic"

// MaxDuty is 100 percent.
const MaxDuty = 100

// DutyCycle is the percent duty cycle shared by the control task (writer)
// and the PWM ticker (reader). It's a single 32-bit word, so every load
// observes a complete value in [0, MaxDuty].
type DutyCycle struct {
	percent atomic.Uint32
}

// ClampDuty limits a signed magnitude into [0, MaxDuty].
func ClampDuty(val int) uint8 {
	switch {
	case val < 0:
		return 0
	case val > MaxDuty:
		return MaxDuty
	}
	return uint8(val)
}

// ScaleCompare converts percent into a PWM compare value:
// round(percent / 100 * max).
func ScaleCompare(percent uint8, max uint32) uint32 {
	return (uint32(percent)*max + MaxDuty/2) / MaxDuty
}

// Store sets the duty cycle, clamped, and returns the stored value.
func (d *DutyCycle) Store(val int) uint8 {
	p := ClampDuty(val)
	d.percent.Store(uint32(p))
	return p
}

// Load returns the duty cycle in percent.
func (d *DutyCycle) Load() uint8 {
	return uint8(d.percent.Load())
}

// Compare returns the PWM compare value for max.
func (d *DutyCycle) Compare(max uint32) uint32 {
	return ScaleCompare(d.Load(), max)
}
