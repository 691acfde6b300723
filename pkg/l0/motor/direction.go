package motor

import "fmt"

// Direction is the motion selected by a command. The value is the
// opcode on the wire, Pause has no opcode and is encoded as 0.
type Direction uint8

// Directions.
const (
	Pause Direction = iota
	Forward
	Right
	Backward
	Left
)

var directionNames = [...]string{"pause", "forward", "right", "backward", "left"}

// DirectionFromOpcode maps an opcode to Direction.
func DirectionFromOpcode(op byte) (Direction, bool) {
	if op >= byte(Forward) && op <= byte(Left) {
		return Direction(op), true
	}
	return Pause, false
}

// ParseDirection parses a direction name.
func ParseDirection(name string) (Direction, error) {
	for n, s := range directionNames {
		if s == name {
			return Direction(n), nil
		}
	}
	switch name {
	case "stop":
		return Pause, nil
	case "back":
		return Backward, nil
	}
	return Pause, fmt.Errorf("unknown direction %q", name)
}

// Opcode returns the opcode on the wire.
func (d Direction) Opcode() byte {
	return byte(d)
}

// Pins returns the levels of direction pin A and B.
func (d Direction) Pins() (a, b bool) {
	switch d {
	case Forward:
		return false, false
	case Right:
		return false, true
	case Backward:
		return true, true
	case Left:
		return true, false
	default:
		return false, true
	}
}

// String implements fmt.Stringer.
func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", d)
}
