package rover

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/openrover/pkg/l0/comm"
	"github.com/robotalks/openrover/pkg/l0/hal"
	"github.com/robotalks/openrover/pkg/l0/motor"
	"github.com/robotalks/openrover/pkg/l0/telemetry"
)

func testConfig() *Config {
	conf := NewConfig()
	conf.ID = "test"
	conf.SerialPort, conf.MQTTBrokerURL, conf.ListenAddr = "", "", ""
	conf.ControlPeriod = 2 * time.Millisecond
	conf.TelemetryPeriod = 5 * time.Millisecond
	conf.PWMPeriod = time.Millisecond
	return conf
}

func waitFor(t *testing.T, cond func() bool) {
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		require.True(t, time.Now().Before(deadline), "timeout")
		time.Sleep(time.Millisecond)
	}
}

// frameLink records written frames without blocking the writer.
type frameLink struct {
	ch chan []byte
}

func (l *frameLink) Write(p []byte) (int, error) {
	data := make([]byte, len(p))
	copy(data, p)
	select {
	case l.ch <- data:
	default:
	}
	return len(p), nil
}

func TestRoverDrive(t *testing.T) {
	r := testConfig().New()
	require.Equal(t, "test", r.ID)
	link := &frameLink{ch: make(chan []byte, 64)}
	r.Reporter.AddSender(telemetry.NewWriterSender(link))

	var cmds bytes.Buffer
	cmds.Write([]byte{0x01, 0x02})
	comm.NewFrame(1, 50).WriteTo(&cmds)
	r.Receiver.Attach("test", &cmds)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	waitFor(t, func() bool { return r.Dispatcher.State() == motor.State{Direction: motor.Forward, Duty: 50} })
	waitFor(t, func() bool { return r.PWMDriver.Compare() == 128 })
	a, b := r.Pins.Direction()
	require.False(t, a)
	require.False(t, b)

	// telemetry reports the state.
	waitFor(t, func() bool {
		select {
		case data := <-link.ch:
			return bytes.Equal(data, []byte{0xff, 1, 50, 51})
		default:
			return false
		}
	})

	r.Receiver.Attach("stop", bytes.NewReader(comm.NewFrame(0, 0).Bytes()))
	waitFor(t, func() bool { return r.Dispatcher.State() == motor.State{} })
	waitFor(t, func() bool { return r.PWMDriver.Compare() == 0 })
	a, b = r.Pins.Direction()
	require.False(t, a)
	require.True(t, b)

	cancel()
	require.NoError(t, <-errCh)
	stats := r.Controller.Stats.Snapshot()
	require.Equal(t, uint64(2), stats.Frames)
	require.Equal(t, uint64(1), stats.InvalidOpcodes)
	require.Equal(t, uint64(2), stats.SkippedBytes)
}

func TestRoverStopsMotor(t *testing.T) {
	conf := testConfig()
	conf.Simulate = true
	r := conf.New()
	r.Receiver.Attach("test", bytes.NewReader(comm.NewFrame(3, 80).Bytes()))
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()
	waitFor(t, func() bool { return r.Duty.Load() == 80 })
	waitFor(t, func() bool { return r.Sim.Pose().X < 0 })
	cancel()
	require.NoError(t, <-errCh)
	require.Equal(t, motor.State{}, r.Dispatcher.State())
	require.Equal(t, uint32(0), r.PWMDriver.Compare())
}

type readResult struct {
	data []byte
	err  error
}

// testPort is a serial port fed by the test.
type testPort struct {
	reads  chan readResult
	closed chan struct{}

	lock   sync.Mutex
	closes int
}

func newTestPort() *testPort {
	return &testPort{reads: make(chan readResult), closed: make(chan struct{})}
}

func (p *testPort) Read(b []byte) (int, error) {
	select {
	case res := <-p.reads:
		return copy(b, res.data), res.err
	case <-p.closed:
		return 0, io.ErrClosedPipe
	}
}

func (p *testPort) Write(b []byte) (int, error) {
	select {
	case <-p.closed:
		return 0, io.ErrClosedPipe
	default:
		return len(b), nil
	}
}

func (p *testPort) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.closes++
	if p.closes == 1 {
		close(p.closed)
	}
	return nil
}

func (p *testPort) Closes() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.closes
}

func TestRoverStopsOnSerialFailure(t *testing.T) {
	r := testConfig().New()
	port := newTestPort()
	r.AddSerial("ttyTEST", port)
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(context.Background()) }()

	port.reads <- readResult{data: comm.NewFrame(1, 60).Bytes()}
	waitFor(t, func() bool { return r.Dispatcher.State() == motor.State{Direction: motor.Forward, Duty: 60} })
	waitFor(t, func() bool { return r.PWMDriver.Compare() > 0 })

	port.reads <- readResult{err: errors.New("device disconnected")}
	select {
	case err := <-errCh:
		require.Error(t, err)
		require.Contains(t, err.Error(), "ttyTEST")
		require.Contains(t, err.Error(), "device disconnected")
	case <-time.After(2 * time.Second):
		t.Fatal("rover keeps running without the serial port")
	}
	require.Equal(t, motor.State{}, r.Dispatcher.State())
	require.Equal(t, uint32(0), r.PWMDriver.Compare())
	require.Equal(t, 1, port.Closes())
	require.NoError(t, r.Close())
	require.Equal(t, 1, port.Closes())
}

func TestRoverCloseSerial(t *testing.T) {
	r := testConfig().New()
	port := newTestPort()
	r.AddSerial("ttyTEST", port)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	require.Equal(t, 1, port.Closes())
}

// switchPins fails once broken.
type switchPins struct {
	hal.VirtualPins
	broken atomic.Bool
}

func (p *switchPins) SetDirection(a, b bool) error {
	if p.broken.Load() {
		return errors.New("pins unavailable")
	}
	return p.VirtualPins.SetDirection(a, b)
}

func TestRoverStopsPWMWhenPinsFail(t *testing.T) {
	r := testConfig().New()
	pins := &switchPins{}
	r.Dispatcher.Pins = pins
	r.Receiver.Attach("test", bytes.NewReader(comm.NewFrame(1, 70).Bytes()))
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()
	waitFor(t, func() bool { return r.PWMDriver.Compare() > 0 })
	pins.broken.Store(true)
	cancel()
	require.NoError(t, <-errCh)
	require.Equal(t, uint32(0), r.PWMDriver.Compare())
}

func TestConfigDefaults(t *testing.T) {
	conf := NewConfig()
	require.Equal(t, 9600, conf.BaudRate)
	require.Equal(t, 128, conf.RingCapacity)
	require.Equal(t, uint(255), conf.MaxCompare)
	require.Equal(t, 100*time.Millisecond, conf.ControlPeriod)
	require.Equal(t, 250*time.Millisecond, conf.TelemetryPeriod)
	require.NotEmpty(t, conf.RoverID())

	r, err := testConfig().NewRover()
	require.NoError(t, err)
	require.Nil(t, r.Bridge)
	require.Nil(t, r.WebSocket)
	require.Len(t, r.Runnables(), 4)
	require.NoError(t, r.Close())
}
