package sim

import (
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/openrover/pkg/framework"
	"github.com/robotalks/openrover/pkg/l0/motor"
)

// Defaults of the simulated rover at 100% duty cycle.
const (
	DefaultDriveSpeedMax float64 = 500 // mm/s
	DefaultTurnSpeedMax  float64 = 90  // degrees/s
)

// StateSource provides the current motor state.
type StateSource interface {
	State() motor.State
}

// Rover moves a simulated rover according to the motor state. Forward
// and Backward drive along the orientation, Left and Right spin in place.
// Speed is proportional to the duty cycle.
type Rover struct {
	Source        StateSource
	DriveSpeedMax float64 // mm/s
	TurnSpeedMax  float64 // radians/s

	lock     sync.Mutex
	pose     Pose2D
	lastTime time.Time
	lastDir  motor.Direction
}

// NewRover creates a Rover with default speeds.
func NewRover(src StateSource) *Rover {
	return &Rover{
		Source:        src,
		DriveSpeedMax: DefaultDriveSpeedMax,
		TurnSpeedMax:  AngleFromDegrees(DefaultTurnSpeedMax).Radians(),
	}
}

// AddToLoop implements LoopAdder.
func (r *Rover) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvAcuate, r)
}

// Control implements Controller.
func (r *Rover) Control(cc fx.ControlContext) error {
	r.Advance(cc.Time())
	return nil
}

// Advance moves the rover to the time now, assuming the current motor
// state is held since the last call.
func (r *Rover) Advance(now time.Time) Pose2D {
	state := r.Source.State()
	r.lock.Lock()
	defer r.lock.Unlock()
	if !r.lastTime.IsZero() && now.After(r.lastTime) {
		secs := now.Sub(r.lastTime).Seconds() * float64(state.Duty) / motor.MaxDuty
		switch state.Direction {
		case motor.Forward:
			r.pose.OffsetBy(r.pose.Orientation.Project(secs * r.DriveSpeedMax))
		case motor.Backward:
			r.pose.OffsetBy(r.pose.Orientation.Project(-secs * r.DriveSpeedMax))
		case motor.Left:
			r.pose.Orientation = r.pose.Orientation.AddRadians(secs * r.TurnSpeedMax)
		case motor.Right:
			r.pose.Orientation = r.pose.Orientation.AddRadians(-secs * r.TurnSpeedMax)
		}
	}
	if state.Direction != r.lastDir {
		glog.V(1).Infof("sim: %s at %s", state.Direction, r.pose)
		r.lastDir = state.Direction
	}
	r.lastTime = now
	return r.pose
}

// Pose returns the current pose.
func (r *Rover) Pose() Pose2D {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.pose
}

// SetPose places the rover.
func (r *Rover) SetPose(pose Pose2D) {
	r.lock.Lock()
	r.pose = pose
	r.lock.Unlock()
}
