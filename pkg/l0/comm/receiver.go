package comm

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	fx "github.com/robotalks/openrover/pkg/framework"
)

const readChunkSize = 64

// Receiver is the only producer of a RingBuffer. Bytes from all attached
// inputs are forwarded to a single goroutine (Run) which pushes them into
// the ring in arrival order, like the RX interrupt handler on the MCU.
type Receiver struct {
	Ring *RingBuffer

	chunkCh  chan []byte
	failCh   chan error
	received atomic.Uint64
	dropped  atomic.Uint64

	lock    sync.Mutex
	ctx     context.Context
	pending []input
}

type input struct {
	name     string
	reader   io.Reader
	required bool
}

// NewReceiver creates a Receiver producing into ring.
func NewReceiver(ring *RingBuffer) *Receiver {
	return &Receiver{Ring: ring, chunkCh: make(chan []byte, 16), failCh: make(chan error, 1)}
}

// Name implements Named.
func (r *Receiver) Name() string {
	return "receiver"
}

// Attach adds an input. It can be called before or after Run starts.
// The input is detached when reading fails or the Receiver stops.
// If the reader is also an io.Closer, it's closed when detached.
func (r *Receiver) Attach(name string, reader io.Reader) {
	r.attach(input{name: name, reader: reader})
}

// AttachRequired adds an input the Receiver can't run without, e.g. the
// serial port. When it's detached for any reason other than stopping,
// Run returns an InputError.
func (r *Receiver) AttachRequired(name string, reader io.Reader) {
	r.attach(input{name: name, reader: reader, required: true})
}

func (r *Receiver) attach(in input) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.ctx == nil {
		r.pending = append(r.pending, in)
		return
	}
	r.startInput(r.ctx, in)
}

// Received returns total bytes received from all inputs.
func (r *Receiver) Received() uint64 {
	return r.received.Load()
}

// Dropped returns the bytes refused by the full ring.
func (r *Receiver) Dropped() uint64 {
	return r.dropped.Load()
}

// Run implements Runnable.
func (r *Receiver) Run(ctx context.Context) error {
	r.lock.Lock()
	if r.ctx != nil {
		r.lock.Unlock()
		return ErrAlreadyRunning
	}
	r.ctx = ctx
	for _, in := range r.pending {
		r.startInput(ctx, in)
	}
	r.pending = nil
	r.lock.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk := <-r.chunkCh:
			r.push(chunk)
		case err := <-r.failCh:
			r.drain()
			return err
		}
	}
}

// drain pushes the chunks already read.
func (r *Receiver) drain() {
	for {
		select {
		case chunk := <-r.chunkCh:
			r.push(chunk)
		default:
			return
		}
	}
}

func (r *Receiver) push(chunk []byte) {
	var dropped uint64
	for _, b := range chunk {
		if !r.Ring.Push(b) {
			dropped++
		}
	}
	if dropped > 0 {
		r.dropped.Add(dropped)
		glog.V(1).Infof("receiver: ring full, %d bytes dropped", dropped)
	}
	r.received.Add(uint64(len(chunk)))
}

func (r *Receiver) startInput(ctx context.Context, in input) {
	glog.V(2).Infof("receiver: input %s attached", in.name)
	go func() {
		var err error
		if closer, ok := in.reader.(io.Closer); ok {
			err = fx.RunWithContextCloser(ctx, closer, func() error {
				return r.readInput(ctx, in.reader)
			})
		} else {
			err = r.readInput(ctx, in.reader)
		}
		switch err {
		case context.Canceled, context.DeadlineExceeded:
			glog.V(2).Infof("receiver: input %s detached", in.name)
			return
		case io.EOF:
			glog.Infof("receiver: input %s closed", in.name)
		default:
			glog.Warningf("receiver: input %s detached: %v", in.name, err)
		}
		if in.required {
			select {
			case r.failCh <- &InputError{Name: in.name, Err: err}:
			default:
			}
		}
	}()
}

func (r *Receiver) readInput(ctx context.Context, reader io.Reader) error {
	buf := make([]byte, readChunkSize)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case r.chunkCh <- chunk:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err != nil {
			return err
		}
	}
}
