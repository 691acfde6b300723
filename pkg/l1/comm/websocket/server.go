// Package websocket carries the rover byte stream over websocket, as an
// alternative to the serial link.
package websocket

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/openrover/pkg/framework"
	"github.com/robotalks/openrover/pkg/l0/comm"
)

// DefaultPath is where the link is served.
const DefaultPath = "/rover"

// DefaultWriteTimeout limits the time sending a frame to a client.
const DefaultWriteTimeout = 100 * time.Millisecond

// Inputs accepts byte streams, implemented by comm.Receiver.
type Inputs interface {
	Attach(name string, r io.Reader)
}

// Server accepts websocket clients. Bytes received from clients are
// attached to Inputs and telemetry frames are broadcast to all clients.
type Server struct {
	Addr   string
	Inputs Inputs

	lock  sync.Mutex
	conns map[*conn]struct{}
}

type conn struct {
	*websocket.Conn
	once   sync.Once
	doneCh chan struct{}
}

// Close implements io.Closer and unblocks the handler.
func (c *conn) Close() error {
	var err error
	c.once.Do(func() {
		err = c.Conn.Close()
		close(c.doneCh)
	})
	return err
}

// NewServer creates a Server.
func NewServer(addr string, inputs Inputs) *Server {
	return &Server{Addr: addr, Inputs: inputs, conns: make(map[*conn]struct{})}
}

// Name implements Named.
func (s *Server) Name() string {
	return "websocket"
}

// Handler returns the http.Handler serving websocket clients.
func (s *Server) Handler() http.Handler {
	return websocket.Handler(s.serve)
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.conns)
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(DefaultPath, s.Handler())
	srv := &http.Server{Addr: s.Addr, Handler: mux}
	glog.Infof("websocket: listening on %s%s", s.Addr, DefaultPath)
	return fx.RunWithContextCancel(ctx, func() {
		srv.Close()
		s.closeAll()
	}, srv.ListenAndServe)
}

// Send implements telemetry.Sender. Clients failed to receive the
// frame are disconnected.
func (s *Server) Send(_ context.Context, f comm.Frame) error {
	data := f.Bytes()
	s.lock.Lock()
	conns := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.lock.Unlock()
	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(DefaultWriteTimeout))
		if err := websocket.Message.Send(c.Conn, data); err != nil {
			glog.Warningf("websocket: %s: %v", c.Request().RemoteAddr, err)
			c.Close()
		}
	}
	return nil
}

func (s *Server) serve(ws *websocket.Conn) {
	ws.PayloadType = websocket.BinaryFrame
	c := &conn{Conn: ws, doneCh: make(chan struct{})}
	name := "ws:" + ws.Request().RemoteAddr
	s.lock.Lock()
	s.conns[c] = struct{}{}
	s.lock.Unlock()
	glog.Infof("websocket: %s connected", name)

	s.Inputs.Attach(name, c)
	<-c.doneCh

	s.lock.Lock()
	delete(s.conns, c)
	s.lock.Unlock()
	glog.Infof("websocket: %s disconnected", name)
}

func (s *Server) closeAll() {
	s.lock.Lock()
	conns := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.lock.Unlock()
	for _, c := range conns {
		c.Close()
	}
}

// Dial connects to a rover served by Server.
func Dial(url string) (*websocket.Conn, error) {
	ws, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, err
	}
	ws.PayloadType = websocket.BinaryFrame
	return ws, nil
}
