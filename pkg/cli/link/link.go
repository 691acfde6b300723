// Package link connects the operator tools to a rover.
package link

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/openrover/pkg/framework"
	"github.com/robotalks/openrover/pkg/l0/comm"
	"github.com/robotalks/openrover/pkg/l0/hal"
	"github.com/robotalks/openrover/pkg/l0/motor"
	"github.com/robotalks/openrover/pkg/l1/comm/websocket"
)

// Link is the byte stream to a rover, over a serial port or websocket.
type Link struct {
	Target string

	conn      io.ReadWriteCloser
	writeLock sync.Mutex
}

// Open opens a Link. A target starting with ws:// or wss:// is a
// websocket URL, otherwise it's a serial port.
func Open(target string, baudRate int) (*Link, error) {
	var conn io.ReadWriteCloser
	var err error
	if strings.HasPrefix(target, "ws://") || strings.HasPrefix(target, "wss://") {
		conn, err = websocket.Dial(target)
	} else {
		conn, err = hal.OpenSerial(target, baudRate)
	}
	if err != nil {
		return nil, err
	}
	return New(target, conn), nil
}

// New creates a Link over an established connection.
func New(target string, conn io.ReadWriteCloser) *Link {
	return &Link{Target: target, conn: conn}
}

// Close implements io.Closer.
func (l *Link) Close() error {
	return l.conn.Close()
}

// Write sends raw bytes.
func (l *Link) Write(data []byte) (int, error) {
	l.writeLock.Lock()
	defer l.writeLock.Unlock()
	return l.conn.Write(data)
}

// Send sends a frame.
func (l *Link) Send(f comm.Frame) error {
	glog.V(2).Infof("send %s", f)
	_, err := l.Write(f.Bytes())
	return err
}

// Drive sends a drive command.
func (l *Link) Drive(dir motor.Direction, speed int8) error {
	return l.Send(DriveFrame(dir, speed))
}

// Monitor decodes frames received from the rover until ctx is canceled
// or the link fails. The Link is closed when Monitor returns.
func (l *Link) Monitor(ctx context.Context, fn func(comm.Frame)) error {
	return fx.RunWithContextCloser(ctx, l.conn, func() error {
		ring := comm.NewRingBuffer(comm.DefaultRingCapacity)
		var parser comm.Parser
		buf := make([]byte, comm.DefaultRingCapacity)
		for {
			n, err := l.conn.Read(buf)
			for _, b := range buf[:n] {
				ring.Push(b)
				if pr := parser.Poll(ring); pr.Frame != nil {
					fn(*pr.Frame)
				}
			}
			if err != nil {
				return err
			}
		}
	})
}

// DriveFrame encodes a drive command.
func DriveFrame(dir motor.Direction, speed int8) comm.Frame {
	return comm.NewFrame(dir.Opcode(), byte(speed))
}

// ParseDrive parses DIRECTION [SPEED], SPEED defaults to 0.
func ParseDrive(args []string) (comm.Frame, error) {
	if len(args) < 1 {
		return comm.Frame{}, fmt.Errorf("DIRECTION required")
	}
	dir, err := motor.ParseDirection(strings.ToLower(args[0]))
	if err != nil {
		return comm.Frame{}, err
	}
	var speed int64
	if len(args) > 1 {
		if speed, err = strconv.ParseInt(args[1], 0, 8); err != nil {
			return comm.Frame{}, fmt.Errorf("invalid SPEED: %v", err)
		}
	}
	return DriveFrame(dir, int8(speed)), nil
}

// ParseBytes parses bytes in hex, e.g. "ff 01 32 33" or "ff013233".
func ParseBytes(args []string) ([]byte, error) {
	str := strings.Join(args, "")
	str = strings.TrimPrefix(strings.ToLower(str), "0x")
	if len(str)%2 != 0 {
		return nil, fmt.Errorf("odd number of hex digits")
	}
	data := make([]byte, 0, len(str)/2)
	for i := 0; i < len(str); i += 2 {
		val, err := strconv.ParseUint(str[i:i+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid byte %q", str[i:i+2])
		}
		data = append(data, byte(val))
	}
	return data, nil
}

// FormatStatus describes a telemetry frame.
func FormatStatus(f comm.Frame) string {
	if !f.Valid() {
		return fmt.Sprintf("corrupted %s", f)
	}
	dir, ok := motor.DirectionFromOpcode(f.Opcode)
	if !ok {
		return motor.Pause.String()
	}
	return fmt.Sprintf("%s %d%%", dir, f.Magnitude)
}
