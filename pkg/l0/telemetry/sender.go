package telemetry

import (
	"context"
	"io"
	"sync"

	fx "github.com/robotalks/openrover/pkg/framework"
	"github.com/robotalks/openrover/pkg/l0/comm"
)

// Sender delivers a telemetry frame somewhere.
type Sender interface {
	Send(context.Context, comm.Frame) error
}

// SenderFunc is the func form of Sender.
type SenderFunc func(context.Context, comm.Frame) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, frame comm.Frame) error {
	return f(ctx, frame)
}

// WriterSender writes encoded frames to an io.Writer, e.g. the serial TX.
type WriterSender struct {
	Writer io.Writer

	lock sync.Mutex
}

// NewWriterSender creates a WriterSender.
func NewWriterSender(w io.Writer) *WriterSender {
	return &WriterSender{Writer: w}
}

// Send implements Sender.
func (s *WriterSender) Send(_ context.Context, frame comm.Frame) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, err := frame.WriteTo(s.Writer)
	return err
}

// Multi sends a frame to all Senders. A failed Sender doesn't prevent
// the rest from receiving the frame.
type Multi []Sender

// Send implements Sender.
func (m Multi) Send(ctx context.Context, frame comm.Frame) error {
	var errs fx.AggregatedError
	for _, s := range m {
		errs.Add(s.Send(ctx, frame))
	}
	return errs.Aggregate()
}
