package motor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/openrover/pkg/l0/comm"
	"github.com/robotalks/openrover/pkg/l0/hal"
)

type pinLevels struct {
	a, b bool
}

func newTestDispatcher() (*Dispatcher, *hal.VirtualPins) {
	pins := &hal.VirtualPins{}
	return NewDispatcher(&DutyCycle{}, pins), pins
}

func TestDispatch(t *testing.T) {
	testCases := []struct {
		name   string
		frame  comm.Frame
		expect Outcome
		duty   uint8
		pins   pinLevels
		reject bool
	}{
		{"forward", comm.NewFrame(1, 40), Outcome{Forward, 40}, 40, pinLevels{false, false}, false},
		{"right", comm.NewFrame(2, 55), Outcome{Right, 55}, 55, pinLevels{false, true}, false},
		{"backward", comm.NewFrame(3, 100), Outcome{Backward, 100}, 100, pinLevels{true, true}, false},
		{"left", comm.NewFrame(4, 1), Outcome{Left, 1}, 1, pinLevels{true, false}, false},
		{"zero speed", comm.NewFrame(1, 0), Outcome{Forward, 0}, 0, pinLevels{false, false}, false},
		{"speed above 100", comm.NewFrame(1, 127), Outcome{Forward, 127}, 100, pinLevels{false, false}, false},
		{"negative speed", comm.NewFrame(3, 0xf6), Outcome{Backward, -10}, 0, pinLevels{true, true}, false},
		{"invalid opcode", comm.NewFrame(5, 50), Outcome{Direction: Pause}, 0, pinLevels{false, true}, true},
		{"opcode zero", comm.NewFrame(0, 50), Outcome{Direction: Pause}, 0, pinLevels{false, true}, true},
		{"opcode 0xff", comm.NewFrame(0xff, 50), Outcome{Direction: Pause}, 0, pinLevels{false, true}, true},
		{"bad checksum", comm.Frame{Opcode: 1, Magnitude: 50, Checksum: 0}, Outcome{Direction: Pause}, 0, pinLevels{false, true}, true},
		{"bad checksum left", comm.Frame{Opcode: 4, Magnitude: 2, Checksum: 4 ^ 3}, Outcome{Direction: Pause}, 0, pinLevels{false, true}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, pins := newTestDispatcher()
			// start from a moving state so Pause is observable.
			require.NoError(t, d.Apply(Outcome{Backward, 77}))
			for i := 0; i < 2; i++ {
				out, err := d.Dispatch(tc.frame)
				if tc.reject {
					require.Error(t, err)
					require.True(t, IsRejected(err), "%v", err)
				} else {
					require.NoError(t, err)
				}
				require.Equal(t, tc.expect, out)
				require.Equal(t, tc.duty, d.Duty.Load())
				a, b := pins.Direction()
				require.Equal(t, tc.pins, pinLevels{a, b})
				require.Equal(t, State{Direction: tc.expect.Direction, Duty: tc.duty}, d.State())
			}
		})
	}
}

func TestDecideReasons(t *testing.T) {
	_, err := Decide(comm.NewFrame(1, 2))
	require.NoError(t, err)

	out, err := Decide(comm.Frame{Opcode: 1, Magnitude: 2, Checksum: 2})
	require.IsType(t, &comm.ChecksumError{}, err)
	require.Equal(t, Pause, out.Direction)

	out, err = Decide(comm.NewFrame(9, 2))
	require.Equal(t, &OpcodeError{Opcode: 9}, err)
	require.Equal(t, Pause, out.Direction)
}

type failingPins struct{}

func (failingPins) SetDirection(a, b bool) error { return errors.New("gpio failure") }

func TestDispatchPinError(t *testing.T) {
	d := NewDispatcher(&DutyCycle{}, failingPins{})
	_, err := d.Dispatch(comm.NewFrame(1, 30))
	require.EqualError(t, err, "gpio failure")
	require.False(t, IsRejected(err))
	require.Equal(t, uint8(30), d.Duty.Load())
	// the output failure wins over the rejection.
	_, err = d.Dispatch(comm.NewFrame(7, 30))
	require.EqualError(t, err, "gpio failure")
	require.Equal(t, uint8(0), d.Duty.Load())
}

func TestStateFrame(t *testing.T) {
	require.Equal(t, comm.NewFrame(2, 60), State{Direction: Right, Duty: 60}.Frame())
	require.Equal(t, comm.Frame{}, State{}.Frame())
	require.True(t, State{Direction: Left, Duty: 99}.Frame().Valid())
}

func TestDirection(t *testing.T) {
	for _, name := range []string{"forward", "right", "backward", "left", "pause"} {
		dir, err := ParseDirection(name)
		require.NoError(t, err)
		require.Equal(t, name, dir.String())
	}
	dir, err := ParseDirection("back")
	require.NoError(t, err)
	require.Equal(t, Backward, dir)
	dir, err = ParseDirection("stop")
	require.NoError(t, err)
	require.Equal(t, Pause, dir)
	_, err = ParseDirection("up")
	require.Error(t, err)
	require.Equal(t, "direction(9)", Direction(9).String())
}
