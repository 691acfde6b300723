package motor

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/openrover/pkg/framework"
	"github.com/robotalks/openrover/pkg/l0/comm"
)

// DefaultControlPeriod is the period of the control task.
const DefaultControlPeriod = 100 * time.Millisecond

// Controller is the control task: on each iteration, it takes at most
// one frame from the receive ring and dispatches it.
type Controller struct {
	Ring       *comm.RingBuffer
	Parser     comm.Parser
	Dispatcher *Dispatcher
	Stats      comm.Stats

	overruns uint64
}

// NewController creates a Controller.
func NewController(ring *comm.RingBuffer, dispatcher *Dispatcher) *Controller {
	return &Controller{Ring: ring, Dispatcher: dispatcher}
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvControl, c)
}

// Control implements Controller.
func (c *Controller) Control(fx.ControlContext) error {
	if n := c.Ring.Overruns(); n != c.overruns {
		// bytes are lost somewhere in the ring, the content is not trustworthy.
		glog.Warningf("control: receive overrun (%d bytes), resync", n-c.overruns)
		c.overruns = n
		c.Stats.Overruns.Store(n)
		c.Ring.Clear()
		c.Parser.Reset()
		c.Stats.Resyncs.Add(1)
		return nil
	}
	pr := c.Parser.Poll(c.Ring)
	if pr.Skipped > 0 {
		c.Stats.SkippedBytes.Add(uint64(pr.Skipped))
		glog.V(2).Infof("control: %d bytes skipped", pr.Skipped)
	}
	if pr.Frame == nil {
		return nil
	}
	return c.HandleFrame(*pr.Frame)
}

// HandleFrame validates and dispatches a completed frame.
func (c *Controller) HandleFrame(f comm.Frame) error {
	c.Stats.Frames.Add(1)
	out, err := c.Dispatcher.Dispatch(f)
	switch err.(type) {
	case nil:
		glog.V(2).Infof("control: %s -> %s", f, out)
	case *comm.ChecksumError:
		c.Stats.ChecksumErrors.Add(1)
		glog.V(1).Infof("control: %s %v, pause", f, err)
	case *OpcodeError:
		c.Stats.InvalidOpcodes.Add(1)
		glog.V(1).Infof("control: %s %v, pause", f, err)
	default:
		return err
	}
	return nil
}
