package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/robotalks/openrover/pkg/l0/comm"
)

func waitFor(t *testing.T, cond func() bool) {
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		require.True(t, time.Now().Before(deadline), "timeout")
		time.Sleep(time.Millisecond)
	}
}

func TestServerLink(t *testing.T) {
	ring := comm.NewRingBuffer(16)
	recv := comm.NewReceiver(ring)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go recv.Run(ctx)

	s := NewServer("", recv)
	hs := httptest.NewServer(s.Handler())
	defer hs.Close()

	ws, err := Dial("ws" + strings.TrimPrefix(hs.URL, "http"))
	require.NoError(t, err)
	defer ws.Close()

	_, err = ws.Write(comm.NewFrame(1, 20).Bytes())
	require.NoError(t, err)
	waitFor(t, func() bool { return ring.Available() == comm.FrameLen })
	var p comm.Parser
	pr := p.Poll(ring)
	require.NotNil(t, pr.Frame)
	require.Equal(t, comm.NewFrame(1, 20), *pr.Frame)

	waitFor(t, func() bool { return s.Clients() == 1 })
	require.NoError(t, s.Send(context.Background(), comm.NewFrame(2, 40)))
	var data []byte
	require.NoError(t, websocket.Message.Receive(ws, &data))
	require.Equal(t, comm.NewFrame(2, 40).Bytes(), data)

	ws.Close()
	waitFor(t, func() bool { return s.Clients() == 0 })
}
