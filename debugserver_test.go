package holokin

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugServerStreamsFrames(t *testing.T) {
	server := NewDebugServer(NewNopLogger())
	ts := httptest.NewServer(server)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	// Registration happens on the handler goroutine; wait for it.
	deadline := time.Now().Add(2 * time.Second)
	for server.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, 1, server.ClientCount())

	state := NewIkState()
	Solve(standingInput(), DefaultBodyParameters(), state)
	server.Broadcast(7, state)

	var frame poseFrame
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, 7, frame.Tick)
	assert.Len(t, frame.Nodes, NodeCount)

	hmd, ok := frame.Nodes["Hmd"]
	require.True(t, ok)
	assert.InDelta(t, 1.7, hmd.Position[1], 1e-5)
}

func TestDebugServerDropsDeadClients(t *testing.T) {
	server := NewDebugServer(NewNopLogger())
	ts := httptest.NewServer(server)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	deadline := time.Now().Add(2 * time.Second)
	for server.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, 1, server.ClientCount())

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for server.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 0, server.ClientCount())
}
