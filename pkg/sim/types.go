// Package sim simulates the motion of the rover from its motor state,
// for hosts without real motors.
package sim

import "fmt"

// Pos2D defines the position in 2D, in millimeters.
type Pos2D struct {
	X, Y float64
}

// Pose2D defines the pose in 2D.
type Pose2D struct {
	Pos2D
	Orientation Angle
}

// Angle is the common representation of angle, in radians
// normalized to (-Pi, Pi].
type Angle float64

// Add is a helper to add Pos2D.
func (p Pos2D) Add(p1 Pos2D) Pos2D {
	return Pos2D{X: p.X + p1.X, Y: p.Y + p1.Y}
}

// OffsetBy performs Add in-place.
func (p *Pos2D) OffsetBy(p1 Pos2D) *Pos2D {
	p.X += p1.X
	p.Y += p1.Y
	return p
}

// String implements fmt.Stringer.
func (p Pose2D) String() string {
	return fmt.Sprintf("(%.1f, %.1f) %.1f°", p.X, p.Y, p.Orientation.Degrees())
}
