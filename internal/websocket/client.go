package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"shiftmap-backend/internal/database"
	"shiftmap-backend/internal/middleware"
	"shiftmap-backend/internal/models"
	"shiftmap-backend/internal/services"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 2048

	// Time allowed to answer a refresh or location message
	handleTimeout = 15 * time.Second
)

// Client represents a WebSocket client connection
type Client struct {
	ID       string
	UserID   string
	Role     string
	AgencyID string
	StaffID  string
	conn     *websocket.Conn
	hub      *Hub
	send     chan []byte
	log      *zap.Logger

	// Guards send against use after the hub closed it
	sendMu sync.Mutex
	closed bool
}

// IncomingMessage represents a message from the client
type IncomingMessage struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// LocationUpdate is the data of a staff "location_update" message
type LocationUpdate struct {
	ShiftID string `json:"shift_id"`
	models.Location
}

func NewClient(user middleware.UserClaims, conn *websocket.Conn, hub *Hub) *Client {
	id := uuid.New().String()
	return &Client{
		ID:       id,
		UserID:   user.UserID,
		Role:     user.Role,
		AgencyID: user.AgencyID,
		StaffID:  user.StaffID,
		conn:     conn,
		hub:      hub,
		send:     make(chan []byte, 256),
		log:      hub.log.With(zap.String("client_id", id), zap.String("user_id", user.UserID)),
	}
}

func (c *Client) isManager() bool {
	return c.Role == models.RoleAdmin || c.Role == models.RoleManager
}

// ReadPump pumps messages from the WebSocket connection to the hub
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket read failed", zap.Error(err))
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.log.Debug("invalid message format", zap.Error(err))
			continue
		}

		switch msg.Type {
		case "ping":
			c.queue(map[string]interface{}{
				"type":      "pong",
				"timestamp": time.Now().Format(time.RFC3339),
			})

		case "refresh":
			c.handleRefresh()

		case "location_update":
			c.handleLocationUpdate(msg.Data)
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend hands data to the write pump without blocking. It returns false
// when the buffer is full or the hub has already closed the channel.
func (c *Client) trySend(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend closes send once, which makes the write pump hang up
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// queue hands a reply to the write pump, dropping it when the buffer is full
// or the connection is shutting down.
func (c *Client) queue(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Error("failed to marshal reply", zap.Error(err))
		return
	}
	if !c.trySend(data) {
		c.log.Warn("dropping reply, client buffer full or closed")
	}
}

func (c *Client) replyError(message string) {
	c.queue(map[string]interface{}{"type": "error", "error": message})
}

func (c *Client) handleRefresh() {
	if !c.isManager() || c.hub.hooks.Snapshot == nil {
		c.replyError("refresh is only available to managers")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	snap, err := c.hub.hooks.Snapshot(ctx, c.AgencyID)
	if err != nil {
		c.log.Warn("refresh failed", zap.Error(err))
		c.replyError("failed to build live map")
		return
	}
	c.queue(map[string]interface{}{"type": services.MessageLiveMapSnapshot, "data": snap})
}

func (c *Client) handleLocationUpdate(raw json.RawMessage) {
	if c.Role != models.RoleStaff || c.StaffID == "" || c.hub.hooks.Locations == nil {
		c.replyError("location updates are only accepted from staff")
		return
	}

	var update LocationUpdate
	if err := json.Unmarshal(raw, &update); err != nil || update.ShiftID == "" {
		c.replyError("location_update needs a shift_id and coordinates")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	loc, err := c.hub.hooks.Locations.Share(ctx, c.StaffID, update.ShiftID, update.Location)
	if err != nil {
		c.log.Info("location update rejected", zap.String("shift_id", update.ShiftID), zap.Error(err))
		c.replyError(locationErrorMessage(err))
		return
	}
	c.queue(map[string]interface{}{
		"type": "location_saved",
		"data": map[string]interface{}{"shift_id": update.ShiftID, "location": loc},
	})
}

func locationErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrInvalidLocation):
		return "location must have a valid latitude and longitude"
	case errors.Is(err, database.ErrNotFound):
		return "shift not found or not assigned to you"
	default:
		return "failed to save location"
	}
}
