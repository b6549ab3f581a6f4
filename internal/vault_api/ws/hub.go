// Package ws pushes processing notifications to connected clients. The hub
// fans Kafka notification events out to every websocket session the owning
// user has open; slow clients are dropped rather than allowed to stall the
// feed.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/finvault-backend/internal/domain/shared"
)

// Hub routes notification events to the owning user's connected clients
type Hub struct {
	logger *slog.Logger

	// clients is keyed by user so broadcasts touch only the sessions that
	// should see the event. Only the run loop mutates it.
	clients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	events     chan *shared.NotificationEvent
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan *shared.NotificationEvent, 64),
	}
}

// Run owns the client registry until the context is canceled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			sessions, ok := h.clients[client.userID.String()]
			if !ok {
				sessions = make(map[*Client]struct{})
				h.clients[client.userID.String()] = sessions
			}
			sessions[client] = struct{}{}
			h.logger.Debug("websocket client connected",
				"user_id", client.userID.String(), "sessions", len(sessions))

		case client := <-h.unregister:
			h.drop(client)

		case event := <-h.events:
			h.dispatch(event)
		}
	}
}

// Broadcast queues a notification event for delivery. Delivery is
// best-effort: if the hub's queue is full the event is dropped and logged.
func (h *Hub) Broadcast(event *shared.NotificationEvent) {
	select {
	case h.events <- event:
	default:
		h.logger.Warn("notification hub queue full, dropping event",
			"event_id", event.EventID.String(), "user_id", event.UserID.String())
	}
}

// HandleNotification is the Kafka handler for the notification topic. It
// always commits: a malformed event is logged and skipped, never retried.
func (h *Hub) HandleNotification(_ context.Context, key []byte, value []byte) error {
	var event shared.NotificationEvent
	if err := json.Unmarshal(value, &event); err != nil {
		h.logger.Error("Failed to unmarshal notification event, skipping",
			"key", string(key), "error", err)
		return nil
	}

	h.Broadcast(&event)
	return nil
}

func (h *Hub) dispatch(event *shared.NotificationEvent) {
	sessions, ok := h.clients[event.UserID.String()]
	if !ok || len(sessions) == 0 {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal notification event", "error", err)
		return
	}

	for client := range sessions {
		select {
		case client.send <- data:
		default:
			// The client's buffer is full; it is not keeping up.
			h.logger.Warn("dropping slow websocket client",
				"user_id", event.UserID.String())
			h.drop(client)
		}
	}
}

func (h *Hub) drop(client *Client) {
	sessions, ok := h.clients[client.userID.String()]
	if !ok {
		return
	}
	if _, exists := sessions[client]; !exists {
		return
	}
	delete(sessions, client)
	close(client.send)
	if len(sessions) == 0 {
		delete(h.clients, client.userID.String())
	}
}

func (h *Hub) closeAll() {
	for _, sessions := range h.clients {
		for client := range sessions {
			close(client.send)
		}
	}
	h.clients = make(map[string]map[*Client]struct{})
}
