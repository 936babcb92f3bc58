package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"subscription-tracker-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func join(hub *Hub, userID string, buffer int) *Client {
	client := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, buffer)}
	hub.register <- client
	return client
}

func TestHubBroadcast_DeliversEnvelope(t *testing.T) {
	hub, _ := startHub(t)
	a := join(hub, "admin", 4)
	b := join(hub, "admin", 4)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 5*time.Millisecond)

	hub.Broadcast("scheduler_status", map[string]string{"source": "manual"})

	for _, c := range []*Client{a, b} {
		select {
		case frame := <-c.Send:
			var env struct {
				Type string            `json:"type"`
				Data map[string]string `json:"data"`
			}
			require.NoError(t, json.Unmarshal(frame, &env))
			assert.Equal(t, "scheduler_status", env.Type)
			assert.Equal(t, "manual", env.Data["source"])
		case <-time.After(time.Second):
			t.Fatal("frame not delivered")
		}
	}
}

func TestHubBroadcast_DropsSlowClient(t *testing.T) {
	hub, _ := startHub(t)
	slow := join(hub, "admin", 1)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	hub.Broadcast("scheduler_status", 1)
	hub.Broadcast("scheduler_status", 2)

	assert.Equal(t, 0, hub.Clients())
	<-slow.Send
	_, open := <-slow.Send
	assert.False(t, open)
}

func TestHubRun_ClosesClientsOnShutdown(t *testing.T) {
	hub, cancel := startHub(t)
	c := join(hub, "admin", 1)

	cancel()
	select {
	case _, open := <-c.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("client channel not closed")
	}
}
