package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"swappay-be/internal/dto"
	"swappay-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ClusterChannel is the redis pub/sub channel instances use to share room events.
const ClusterChannel = "cluster_events"

type clusterMessage struct {
	Origin  string          `json:"origin"`
	Channel string          `json:"channel"`
	Message json.RawMessage `json:"message"`
}

// Hub tracks connected clients and the room channels they joined.
type Hub struct {
	// All live clients.
	clients map[*Client]struct{}

	// Room channel -> members.
	rooms map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client

	// Closed when Run returns.
	done chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out. Nil means single instance.
	rdb *redis.Client

	// instanceId tags our own redis publishes so they are not delivered twice.
	instanceId string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rdb:        rdb,
		instanceId: uuid.NewString(),
		logger:     log,
	}
}

// Run processes registrations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				for channel, members := range h.rooms {
					delete(members, client)
					if len(members) == 0 {
						delete(h.rooms, channel)
					}
				}
				// Send stays open: the read side may still reply on it.
				close(client.done)
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"user_id": client.UserID})
		}
	}
}

// Join subscribes a registered client to a room channel.
func (h *Hub) Join(channel string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	members, ok := h.rooms[channel]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[channel] = members
	}
	members[client] = struct{}{}
}

func (h *Hub) Leave(channel string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[channel]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, channel)
		}
	}
}

// PublishToRoom delivers an event to local room members and forwards it to
// the other instances through redis.
func (h *Hub) PublishToRoom(channel, event string, payload map[string]interface{}) {
	data, err := json.Marshal(dto.SocketOutbound{Event: event, Channel: channel, Data: payload})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode room event", map[string]interface{}{"event": event, "error": err.Error()})
		return
	}

	h.deliver(channel, data)

	if h.rdb != nil {
		msg, _ := json.Marshal(clusterMessage{Origin: h.instanceId, Channel: channel, Message: data})
		if err := h.rdb.Publish(context.Background(), ClusterChannel, msg).Err(); err != nil {
			h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"channel": channel, "error": err.Error()})
		}
	}
}

func (h *Hub) deliver(channel string, data []byte) {
	var slow []*Client

	h.mu.RLock()
	for client := range h.rooms[channel] {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"user_id": client.UserID})
		go func(c *Client) { h.unregister <- c }(client)
	}
}

// drop asks Run to unregister c. It gives up once the hub has stopped.
func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
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
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.instanceId {
				continue
			}
			h.deliver(payload.Channel, payload.Message)
		}
	}
}
