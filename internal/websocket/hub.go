package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"subscription-tracker-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ClusterChannel carries events between instances sharing one Redis.
const ClusterChannel = "subtracker:live_events"

// Envelope is the frame pushed to every client.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans events out to the connected dashboard clients. With a Redis
// client every event goes through ClusterChannel so all instances see it.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	rdb    redis.UniversalClient
	logger logger.ILogger
}

// NewHub builds a hub. rdb may be nil for a single instance.
func NewHub(rdb redis.UniversalClient, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rdb:        rdb,
		logger:     log,
	}
}

// Run serves registrations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("LIVE", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// leave unregisters client unless the hub already stopped.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
		h.logger.Info("LIVE", "Client unregistered", map[string]interface{}{"user_id": client.UserID})
	}
}

// Clients reports the number of local connections.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event to every client of every instance.
func (h *Hub) Broadcast(eventType string, data interface{}) {
	frame, err := json.Marshal(Envelope{Type: eventType, Data: data})
	if err != nil {
		h.logger.Error("LIVE", "Failed to encode event", map[string]interface{}{"error": err.Error(), "type": eventType})
		return
	}

	if h.rdb != nil {
		err := h.rdb.Publish(context.Background(), ClusterChannel, frame).Err()
		if err == nil {
			return
		}
		h.logger.Warn("LIVE", "Redis publish failed, delivering locally", map[string]interface{}{"error": err.Error()})
	}
	h.deliver(frame)
}

func (h *Hub) deliver(frame []byte) {
	var slow []*Client
	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.Send <- frame:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("LIVE", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": client.UserID})
		h.remove(client)
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.deliver([]byte(msg.Payload))
		}
	}
}
