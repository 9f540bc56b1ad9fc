package push

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSendPostsMessage(t *testing.T) {
	var got []Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"data":[{"status":"ok","id":"abc-123"}]}`))
	}))
	defer srv.Close()

	c := NewExpoClient(srv.URL, "secret", time.Second, quietLogger())
	ticket, err := c.Send(context.Background(), Message{
		To:    "ExponentPushToken[xyz]",
		Title: "Hi",
		Body:  "there",
		Data:  map[string]string{"order_id": "7"},
	})
	require.NoError(t, err)
	assert.Equal(t, "abc-123", ticket.ID)

	require.Len(t, got, 1)
	assert.Equal(t, "ExponentPushToken[xyz]", got[0].To)
	assert.Equal(t, "default", got[0].Sound)
	assert.Equal(t, "7", got[0].Data["order_id"])
}

func TestSendWithoutToken(t *testing.T) {
	c := NewExpoClient("http://127.0.0.1:1", "", time.Second, quietLogger())
	_, err := c.Send(context.Background(), Message{Title: "x"})
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestSendGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"code":"INTERNAL"}]}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewExpoClient(srv.URL, "", time.Second, quietLogger())
	_, err := c.Send(context.Background(), Message{To: "ExponentPushToken[a]"})
	assert.ErrorIs(t, err, ErrGatewayStatus)
}

func TestSendTicketError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"status":"error","message":"not registered","details":{"error":"DeviceNotRegistered"}}]}`))
	}))
	defer srv.Close()

	c := NewExpoClient(srv.URL, "", time.Second, quietLogger())
	ticket, err := c.Send(context.Background(), Message{To: "ExponentPushToken[a]"})
	require.Error(t, err)

	var te *TicketError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "DeviceNotRegistered", te.Ticket.Details.Error)
	assert.Equal(t, "error", ticket.Status)
	assert.Contains(t, err.Error(), "DeviceNotRegistered")
}

func TestSendHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	c := NewExpoClient(srv.URL, "", 5*time.Second, quietLogger())
	_, err := c.Send(ctx, Message{To: "ExponentPushToken[a]"})
	assert.Error(t, err)
}

func TestIsExpoToken(t *testing.T) {
	assert.True(t, IsExpoToken("ExponentPushToken[abc]"))
	assert.True(t, IsExpoToken("ExpoPushToken[abc]"))
	assert.False(t, IsExpoToken("fcm:abc"))
	assert.False(t, IsExpoToken("ExponentPushToken[abc"))
}
