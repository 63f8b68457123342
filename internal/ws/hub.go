// Package ws implements the live order-board feed: the dashboard keeps one
// websocket open per session and receives pedido events for its restaurant
// instead of polling the list endpoint.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Evento types pushed to the board.
const (
	EventoPedidoCreado      = "pedido_creado"
	EventoPedidoActualizado = "pedido_actualizado"
)

// Evento is the wire envelope for board pushes.
type Evento struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type cliente struct {
	conn          *websocket.Conn
	send          chan []byte
	restauranteID string
}

// Hub fans pedido events out to connected dashboard clients, scoped per
// restaurant. A full send buffer drops the client rather than blocking the
// broadcaster.
type Hub struct {
	mu       sync.RWMutex
	clientes map[*cliente]bool
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clientes: make(map[*cliente]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Broadcast pushes an event to every client of the given restaurant.
// Best-effort: marshal or delivery failures are logged, never surfaced.
func (h *Hub) Broadcast(restauranteID, tipo string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("tipo", tipo).Msg("hub: marshal payload")
		return
	}
	msg, err := json.Marshal(Evento{Type: tipo, Payload: data})
	if err != nil {
		log.Error().Err(err).Str("tipo", tipo).Msg("hub: marshal evento")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clientes {
		if c.restauranteID != restauranteID {
			continue
		}
		select {
		case c.send <- msg:
		default:
			// Slow consumer — drop silently, the client will reconnect.
		}
	}
}

// Serve upgrades the connection and pumps events until the client goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, restauranteID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("hub: upgrade failed")
		return
	}

	c := &cliente{conn: conn, send: make(chan []byte, 64), restauranteID: restauranteID}

	h.mu.Lock()
	h.clientes[c] = true
	h.mu.Unlock()
	log.Info().Str("restaurante_id", restauranteID).Msg("hub: cliente conectado")

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) writePump(c *cliente) {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
	c.conn.Close()
}

// readPump discards inbound frames; it exists to detect disconnects.
func (h *Hub) readPump(c *cliente) {
	defer func() {
		h.mu.Lock()
		if _, ok := h.clientes[c]; ok {
			delete(h.clientes, c)
			close(c.send)
		}
		h.mu.Unlock()
		c.conn.Close()
		log.Info().Str("restaurante_id", c.restauranteID).Msg("hub: cliente desconectado")
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
