package wshub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"
)

// Inbound message types.
const (
	TypeJoin     = "join"
	TypeStart    = "start_game"
	TypeClick    = "click"
	TypeReset    = "reset"
	TypeGetState = "get_state"
	TypeRematch  = "rematch"
)

// ClientMessage is the JSON structure received from clients.
type ClientMessage struct {
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
	PlayerID string `json:"playerId,omitempty"`
}

// ParseClientMessage decodes one inbound frame. A frame without a type is malformed.
func ParseClientMessage(data []byte) (ClientMessage, bool) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
		return ClientMessage{}, false
	}
	return msg, true
}

// Client represents a single WebSocket connection in the hub.
type Client struct {
	ConnID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// NewClient wraps a connection with a buffered outbound queue.
func NewClient(connID string, conn *websocket.Conn) *Client {
	return &Client{ConnID: connID, Conn: conn, Send: make(chan []byte, 32)}
}

// WritePump reads from the Send channel and writes to the WebSocket connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub manages per-room WebSocket connections keyed by connection id.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ConnID] = c
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[connID]; ok {
		close(c.Send)
		delete(h.clients, connID)
	}
}

// Count returns the number of registered connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send replies to a single connection. Non-blocking: drops if channel full.
func (h *Hub) Send(connID string, msg ServerMessage) {
	data, ok := encode(msg)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	c, found := h.clients[connID]
	if !found {
		return
	}
	select {
	case c.Send <- data:
	default:
		log.Warn().Str("conn_id", connID).Str("type", msg.Type).Msg("send buffer full, dropping message")
	}
}

// Broadcast sends a message to every connection. Non-blocking: drops if channel full.
func (h *Hub) Broadcast(msg ServerMessage) {
	data, ok := encode(msg)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.Send <- data:
		default:
			// Drop message if channel full
		}
	}
}

func encode(msg ServerMessage) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("marshal server message")
		return nil, false
	}
	return data, true
}
