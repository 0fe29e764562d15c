package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ai-copilot-be/internal/pkg/logger"
)

// Hub fans live suggestions out to the browsers watching a session. Clients
// register under the session id; redis pub/sub relays messages across
// instances so a session's watcher can land on any backend replica.
type Hub struct {
	// Registered clients map: SessionID -> List of Clients (multi-device)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Tags published envelopes so the subscriber can skip its own messages
	// and not deliver them twice on the same instance.
	instanceId string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceId: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"session_id": client.SessionID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish sends an insights payload to every client watching sessionId,
// locally and via redis for other instances.
func (h *Hub) Publish(sessionId string, payload interface{}) {
	h.PublishTyped(sessionId, "insights", payload)
}

// PublishTyped is Publish with an explicit message type, for non-insight
// pushes like the end-of-session report notification.
func (h *Hub) PublishTyped(sessionId, msgType string, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type": msgType,
		"data": payload,
	})
	if err != nil {
		h.logger.Warn("Hub", "Failed to marshal payload", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliverLocal(sessionId, data)

	if h.rdb != nil {
		envelope, _ := json.Marshal(map[string]interface{}{
			"origin_id":         h.instanceId,
			"target_session_id": sessionId,
			"message":           json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), "copilot_events", envelope)
	}
}

func (h *Hub) deliverLocal(sessionId string, data []byte) {
	h.mu.RLock()
	clients, ok := h.clients[sessionId]
	h.mu.RUnlock()
	if !ok {
		return
	}

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"session_id": sessionId})
			close(client.Send)
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "copilot_events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.handleRelayed([]byte(msg.Payload))
	}
}

func (h *Hub) handleRelayed(raw []byte) {
	var payload struct {
		OriginID        string          `json:"origin_id"`
		TargetSessionID string          `json:"target_session_id"`
		Message         json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
		return
	}
	// Our own publishes were already delivered locally.
	if payload.OriginID == h.instanceId {
		return
	}
	h.deliverLocal(payload.TargetSessionID, payload.Message)
}
