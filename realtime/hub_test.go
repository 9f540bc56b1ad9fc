package realtime

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHub(t *testing.T) *Hub {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := NewHub(logger)
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

func TestBroadcastReachesClient(t *testing.T) {
	h := newHub(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Serve(w, r, 1)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	h.Broadcast("order_updated", map[string]interface{}{"id": 7, "status": "confirmed"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, "order_updated", ev.Type)
	assert.NotEmpty(t, ev.Timestamp)
	assert.Equal(t, "confirmed", ev.Data.(map[string]interface{})["status"])
}

func TestClientDisconnectUnregisters(t *testing.T) {
	h := newHub(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Serve(w, r, 1)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestBroadcastWithoutClientsDoesNotBlock(t *testing.T) {
	h := newHub(t)
	for i := 0; i < 1000; i++ {
		h.Broadcast("listing_created", i)
	}
	assert.Equal(t, 0, h.ClientCount())
}
