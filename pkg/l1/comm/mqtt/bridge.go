package mqtt

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/openrover/pkg/framework"
	"github.com/robotalks/openrover/pkg/l0/comm"
	"github.com/robotalks/openrover/pkg/l1/msgs"
)

// ErrTimeout indicates the broker doesn't respond in time.
var ErrTimeout = errors.New("mqtt: timeout")

// Payloads of the online topic.
var (
	PayloadOnline  = []byte("1")
	PayloadOffline = []byte("0")
)

const commandQueueSize = 16

// StatusTopic is where RoverStatus is published.
func StatusTopic(roverID string) string {
	return "rover/" + roverID + "/status"
}

// CommandTopic receives DriveCommand.
func CommandTopic(roverID string) string {
	return "rover/" + roverID + "/cmd"
}

// RawTopic receives wire bytes which are forwarded unmodified.
func RawTopic(roverID string) string {
	return "rover/" + roverID + "/raw"
}

// OnlineTopic is retained with PayloadOnline while the rover is connected.
func OnlineTopic(roverID string) string {
	return "rover/" + roverID + "/online"
}

// Bridge connects a rover to MQTT: commands become wire bytes read
// from Commands, and telemetry frames are published as RoverStatus.
type Bridge struct {
	Queue   *Queue
	RoverID string
	// Stats is optional, included in RoverStatus if present.
	Stats *comm.Stats

	commands *commandStream
}

// NewBridge creates a Bridge.
func NewBridge(brokerURL, roverID string) (*Bridge, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	if opts.ClientID == "" {
		opts.SetClientID("openrover:" + roverID)
	}
	opts.SetBinaryWill(topicPrefix+OnlineTopic(roverID), PayloadOffline, 1, true)
	b := &Bridge{
		Queue:    NewQueue(opts, topicPrefix),
		RoverID:  roverID,
		commands: newCommandStream(),
	}
	b.Queue.OnConnect = func(q *Queue) {
		q.PubWith(OnlineTopic(roverID), PayloadOnline, 1, true)
	}
	b.Queue.Sub(CommandTopic(roverID), b.handleCommand)
	b.Queue.Sub(RawTopic(roverID), b.handleRaw)
	return b, nil
}

// Name implements Named.
func (b *Bridge) Name() string {
	return "mqtt"
}

// Commands returns the byte stream of received commands. It's meant to
// be attached to a Receiver.
func (b *Bridge) Commands() io.ReadCloser {
	return b.commands
}

// Send implements telemetry.Sender.
func (b *Bridge) Send(ctx context.Context, f comm.Frame) error {
	if !b.Queue.Client.IsConnected() {
		glog.V(3).Info("mqtt: not connected, status skipped")
		return nil
	}
	status := msgs.NewRoverStatus(b.RoverID, f, time.Now())
	if b.Stats != nil {
		status.WithStats(b.Stats.Snapshot())
	}
	data, err := msgs.Encode(status)
	if err != nil {
		return err
	}
	return waitToken(ctx, b.Queue.Pub(StatusTopic(b.RoverID), data))
}

// Run implements Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	defer b.commands.Close()
	err := fx.RunWithContextCancel(ctx, nil, func() error {
		token := b.Queue.Connect()
		token.Wait()
		return token.Error()
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	waitToken(context.Background(), b.Queue.PubWith(OnlineTopic(b.RoverID), PayloadOffline, 1, true))
	b.Queue.Close()
	return ctx.Err()
}

func (b *Bridge) handleCommand(topic string, payload []byte) {
	msg, err := msgs.DecodeMessage(payload)
	if err != nil {
		glog.Warningf("mqtt: %s: bad message: %v", topic, err)
		return
	}
	cmd, ok := msg.(*msgs.DriveCommand)
	if !ok {
		glog.Warningf("mqtt: %s: %v %T", topic, msgs.ErrUnexpectedType, msg)
		return
	}
	f, err := cmd.Frame()
	if err != nil {
		glog.Warningf("mqtt: %s: %v", topic, err)
		return
	}
	glog.V(2).Infof("mqtt: command %s", f)
	b.commands.put(f.Bytes())
}

func (b *Bridge) handleRaw(topic string, payload []byte) {
	data := make([]byte, len(payload))
	copy(data, payload)
	b.commands.put(data)
}

func waitToken(ctx context.Context, token interface {
	WaitTimeout(time.Duration) bool
	Error() error
}) error {
	timeout := DefaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if !token.WaitTimeout(timeout) {
		return ErrTimeout
	}
	return token.Error()
}

// commandStream turns received messages into a byte stream.
type commandStream struct {
	dataCh chan []byte
	doneCh chan struct{}
	once   sync.Once
	buf    []byte
}

func newCommandStream() *commandStream {
	return &commandStream{
		dataCh: make(chan []byte, commandQueueSize),
		doneCh: make(chan struct{}),
	}
}

func (s *commandStream) put(data []byte) {
	select {
	case s.dataCh <- data:
	case <-s.doneCh:
	default:
		glog.Warning("mqtt: command queue full, dropped")
	}
}

// Read implements io.Reader.
func (s *commandStream) Read(p []byte) (int, error) {
	if len(s.buf) == 0 {
		select {
		case s.buf = <-s.dataCh:
		case <-s.doneCh:
			return 0, io.EOF
		}
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

// Close implements io.Closer.
func (s *commandStream) Close() error {
	s.once.Do(func() { close(s.doneCh) })
	return nil
}
