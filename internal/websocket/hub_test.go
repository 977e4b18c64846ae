package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshap474/tabular/pkg/contracts/domain"
)

func TestHubClientLifecycle(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// First frame is the connection acknowledgement.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, TypeConnection, msg.Type)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestHubBroadcastProgress(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage() // connection ack
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	hub.BroadcastProgress(domain.ProgressUpdate{
		FileName: "data.csv",
		Phase:    domain.PhaseParsing,
		Percent:  60,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, TypeProgress, msg.Type)

	data, err := json.Marshal(msg.Data)
	require.NoError(t, err)
	var update domain.ProgressUpdate
	require.NoError(t, json.Unmarshal(data, &update))
	assert.Equal(t, "data.csv", update.FileName)
	assert.Equal(t, domain.PhaseParsing, update.Phase)
	assert.Equal(t, 60, update.Percent)
}

func TestServeWSAfterShutdownRejectsConnection(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return hub.running
	}, 2*time.Second, 5*time.Millisecond)

	hub.Shutdown()
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return !hub.running
	}, 2*time.Second, 5*time.Millisecond)

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	// The dial must fail fast with 503 rather than hang on a stopped hub.
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Zero(t, hub.ClientCount())
}

func TestHubBroadcastWithoutClients(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	// Must not block or panic with nobody listening.
	hub.BroadcastProgress(domain.ProgressUpdate{FileName: "x.csv", Percent: 10})
	assert.Zero(t, hub.ClientCount())
}
