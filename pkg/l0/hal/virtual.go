package hal

import (
	"sync/atomic"

	"github.com/golang/glog"
)

// VirtualPins implements DirectionPins in memory, logging changes.
// It's used on hosts without GPIO and in tests.
type VirtualPins struct {
	state atomic.Uint32 // bit0: A, bit1: B, bit2: set at least once
}

// SetDirection implements DirectionPins.
func (p *VirtualPins) SetDirection(a, b bool) error {
	val := uint32(4)
	if a {
		val |= 1
	}
	if b {
		val |= 2
	}
	if old := p.state.Swap(val); old != val {
		glog.V(1).Infof("pins: A=%v B=%v", a, b)
	}
	return nil
}

// Direction returns the current pin levels.
func (p *VirtualPins) Direction() (a, b bool) {
	val := p.state.Load()
	return val&1 != 0, val&2 != 0
}

// VirtualPWM implements PWMDriver in memory.
type VirtualPWM struct {
	Max uint32

	compare atomic.Uint32
	writes  atomic.Uint64
}

// NewVirtualPWM creates a VirtualPWM with DefaultMaxCompare.
func NewVirtualPWM() *VirtualPWM {
	return &VirtualPWM{Max: DefaultMaxCompare}
}

// SetCompare implements PWMDriver.
func (p *VirtualPWM) SetCompare(value uint32) error {
	if old := p.compare.Swap(value); old != value {
		glog.V(2).Infof("pwm: compare %d/%d", value, p.MaxCompare())
	}
	p.writes.Add(1)
	return nil
}

// MaxCompare implements PWMDriver.
func (p *VirtualPWM) MaxCompare() uint32 {
	if p.Max == 0 {
		return DefaultMaxCompare
	}
	return p.Max
}

// Compare returns the last compare value.
func (p *VirtualPWM) Compare() uint32 {
	return p.compare.Load()
}

// Writes returns how many times SetCompare is called.
func (p *VirtualPWM) Writes() uint64 {
	return p.writes.Load()
}
