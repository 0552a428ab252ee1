package kds

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/drivethru-app/models"
	"github.com/yeremiapane/drivethru-app/utils"
)

// Event types
const (
	EventOrderUpdate = "order_update"
	EventSnapshot    = "snapshot"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// BoardUpdate is the payload of an order_update message.
type BoardUpdate struct {
	Event  models.OrderEvent    `json:"event"`
	Totals models.Items         `json:"totals"`
	Orders map[int]models.Items `json:"orders"`
}

// Hub keeps the connected order board clients and pushes every order change to them.
type Hub struct {
	clients  map[*websocket.Conn]string // conn -> remote address
	mutex    sync.Mutex
	snapshot func() models.ActiveSnapshot
}

// NewHub creates a hub whose clients are primed with snapshot on connect.
func NewHub(snapshot func() models.ActiveSnapshot) *Hub {
	return &Hub{
		clients:  make(map[*websocket.Conn]string),
		snapshot: snapshot,
	}
}

// Register adds conn and sends it the current board. The snapshot is read
// under the hub lock so no update can slip in between.
func (h *Hub) Register(conn *websocket.Conn, client string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	data, err := json.Marshal(Message{Event: EventSnapshot, Data: h.readSnapshot()})
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling snapshot: %v", err)
		return
	}
	h.clients[conn] = client
	if err := write(conn, data); err != nil {
		utils.ErrorLogger.Errorf("Error sending snapshot to %s: %v", client, err)
	}
	utils.InfoLogger.WithField("client", client).Info("Board client connected")
}

// Unregister removes conn and closes it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if client, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		utils.InfoLogger.WithField("client", client).Info("Board client disconnected")
	}
	conn.Close()
}

func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Notify pushes event together with the active board to every client.
// Reading the board and sending it happen under one lock, so the last
// message a client gets always reflects the latest store state.
func (h *Hub) Notify(_ context.Context, event models.OrderEvent) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	snap := h.readSnapshot()
	h.broadcast(Message{Event: EventOrderUpdate, Data: BoardUpdate{
		Event:  event,
		Totals: snap.Totals,
		Orders: snap.Orders,
	}})
}

// Broadcast sends msg to all clients. Clients that cannot be written to are dropped.
func (h *Hub) Broadcast(msg Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.broadcast(msg)
}

// broadcast expects h.mutex to be held.
func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling message: %v", err)
		return
	}

	utils.InfoLogger.Debugf("Broadcasting %s to %d clients", msg.Event, len(h.clients))
	for conn, client := range h.clients {
		if err := write(conn, data); err != nil {
			utils.ErrorLogger.Errorf("Error sending message to %s: %v", client, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

func (h *Hub) readSnapshot() models.ActiveSnapshot {
	snap := models.ActiveSnapshot{Orders: map[int]models.Items{}}
	if h.snapshot != nil {
		snap = h.snapshot()
	}
	return snap
}

func write(conn *websocket.Conn, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
