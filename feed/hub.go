// Package feed pushes live order events to connected staff over websockets.
package feed

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gorilla/websocket"
)

// Event types
const (
	EventOrderCreated  = "order_created"
	EventOrderStatus   = "order_status"
	EventOrderDeleted  = "order_deleted"
	EventStopoverState = "stopover_status"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many events a client may fall behind before it is dropped.
	sendBuffer = 32
)

type Message struct {
	Event string      `json:"event"`
	At    time.Time   `json:"at"`
	Data  interface{} `json:"data"`
}

type client struct {
	conn *websocket.Conn
	role string
	send chan []byte
}

// Hub tracks connected clients and the role each one authenticated with.
// Every client has its own writer goroutine, so Broadcast never waits on a
// socket.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

var defaultHub = NewHub()

// Default returns the process-wide hub.
func Default() *Hub { return defaultHub }

func (h *Hub) Register(conn *websocket.Conn, role string) {
	cl := h.attach(conn, role)
	go h.writePump(cl)
}

func (h *Hub) attach(conn *websocket.Conn, role string) *client {
	cl := &client{conn: conn, role: role, send: make(chan []byte, sendBuffer)}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = cl
	utils.InfoLogger.Printf("Feed client connected (%s), %d online", role, len(h.clients))
	return cl
}

// writePump delivers queued events until the client is removed.
func (h *Hub) writePump(cl *client) {
	for data := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Dropping feed client (%s): %v", cl.role, err)
			h.Unregister(cl.conn)
			return
		}
	}
}

// remove must be called with the mutex held.
func (h *Hub) remove(cl *client) {
	delete(h.clients, cl.conn)
	close(cl.send)
	cl.conn.Close()
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if cl, ok := h.clients[conn]; ok {
		h.remove(cl)
	}
}

func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast queues msg for every client. A client whose queue is full is
// dropped.
func (h *Hub) Broadcast(msg Message) {
	if msg.At.IsZero() {
		msg.At = time.Now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling feed message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			utils.ErrorLogger.Printf("Dropping slow feed client (%s)", cl.role)
			h.remove(cl)
		}
	}
}

// CloseAll disconnects every client, used on shutdown.
func (h *Hub) CloseAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, cl := range h.clients {
		cl.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		h.remove(cl)
	}
}

func (h *Hub) OrderCreated(order models.OrderView) {
	h.Broadcast(Message{Event: EventOrderCreated, Data: order})
}

func (h *Hub) OrderStatusChanged(order models.OrderView) {
	h.Broadcast(Message{Event: EventOrderStatus, Data: map[string]interface{}{
		"id":         order.ID,
		"order_uuid": order.OrderUUID,
		"status":     order.Status,
	}})
}

func (h *Hub) OrderDeleted(id uint) {
	h.Broadcast(Message{Event: EventOrderDeleted, Data: map[string]interface{}{"id": id}})
}

func (h *Hub) StopoverStatusChanged(stop models.Stopover) {
	h.Broadcast(Message{Event: EventStopoverState, Data: stop})
}
