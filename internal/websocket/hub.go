package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"shiftmap-backend/internal/models"
)

// SnapshotFunc builds the current live map for an agency ("" for all agencies)
type SnapshotFunc func(ctx context.Context, agencyID string) (interface{}, error)

// LocationSharer records a location sent by a staff member
type LocationSharer interface {
	Share(ctx context.Context, staffID, shiftID string, loc models.Location) (*models.Location, error)
}

// Hooks connect incoming client messages to the rest of the server
type Hooks struct {
	Snapshot  SnapshotFunc
	Locations LocationSharer
}

// Hub maintains active WebSocket connections and broadcasts messages
type Hub struct {
	// Registered clients by connection id
	clients map[string]*Client

	// Outbound messages for managers of an agency
	broadcast chan *Message

	register   chan *Client
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	hooks Hooks
	log   *zap.Logger

	mu sync.RWMutex
}

// Message is a payload for the managers of one agency
type Message struct {
	AgencyID string
	Data     interface{}
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.Named("websocket"),
	}
}

// SetHooks installs message handlers. Call before Run.
func (h *Hub) SetHooks(hooks Hooks) {
	h.hooks = hooks
}

// Run starts the hub's main loop and closes every connection when ctx is done.
// Call it once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				client.closeSend()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info("client connected",
				zap.String("user_id", client.UserID),
				zap.String("role", client.Role),
				zap.String("agency_id", client.AgencyID),
				zap.Int("clients", total),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				client.closeSend()
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info("client disconnected", zap.String("user_id", client.UserID), zap.Int("clients", total))

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *Hub) deliver(message *Message) {
	data, err := json.Marshal(message.Data)
	if err != nil {
		h.log.Error("failed to marshal broadcast", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if !client.isManager() || client.AgencyID != message.AgencyID {
			continue
		}
		if !client.trySend(data) {
			h.log.Warn("client buffer full, dropping message", zap.String("user_id", client.UserID))
		}
	}
}

// BroadcastToAgency queues a message for every manager watching the agency.
// Managers without an agency are addressed with "".
// Messages sent after the hub has stopped are discarded.
func (h *Hub) BroadcastToAgency(agencyID string, data interface{}) {
	select {
	case h.broadcast <- &Message{AgencyID: agencyID, Data: data}:
	case <-h.done:
	}
}

// ConnectedAgencies returns the distinct agencies of connected managers
func (h *Hub) ConnectedAgencies() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]bool)
	agencies := []string{}
	for _, client := range h.clients {
		if client.isManager() && !seen[client.AgencyID] {
			seen[client.AgencyID] = true
			agencies = append(agencies, client.AgencyID)
		}
	}
	return agencies
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
