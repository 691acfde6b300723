package sim

import "math"

// AngleFromDegrees creates Angle from degrees.
func AngleFromDegrees(d float64) Angle {
	return Angle(normalizeRadians(d * math.Pi / 180.0))
}

// AddRadians adds radians to current angle.
func (a Angle) AddRadians(r float64) Angle {
	return Angle(normalizeRadians(float64(a) + r))
}

// Radians gets angle in radians.
func (a Angle) Radians() float64 {
	return float64(a)
}

// Degrees gets angle in degrees.
func (a Angle) Degrees() float64 {
	return float64(a) * 180 / math.Pi
}

// Project projects distance along the angle into X and Y.
func (a Angle) Project(dist float64) Pos2D {
	r := float64(a)
	return Pos2D{X: dist * math.Cos(r), Y: dist * math.Sin(r)}
}

func normalizeRadians(r float64) float64 {
	if r >= 2*math.Pi || r <= -2*math.Pi {
		r = math.Remainder(r, 2*math.Pi)
	}
	if r > math.Pi {
		r -= 2 * math.Pi
	} else if r <= -math.Pi {
		r += 2 * math.Pi
	}
	return r
}
