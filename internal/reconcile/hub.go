package reconcile

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// eventRequest is the incoming WebSocket message format. Clients report
// chat lifecycle events; the payload is the trigger name.
type eventRequest struct {
	Type string `json:"type"`
}

type syncFrame struct {
	Type    string            `json:"type"` // "sync"
	Updates []IndicatorUpdate `json:"updates"`
}

type toastFrame struct {
	Type    string `json:"type"` // "toast"
	Level   string `json:"level"`
	Message string `json:"message"`
}

type scrollFrame struct {
	Type      string `json:"type"` // "scroll"
	MessageID int    `json:"messageId"`
	Flash     bool   `json:"flash"`
}

type errorFrame struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

// Hub fans indicator updates, toasts, and scroll commands out to every
// connected client, and feeds inbound chat events to the driver.
type Hub struct {
	// OnTrigger runs for each valid inbound event. Set before serving.
	OnTrigger func(Trigger)

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

// HandleWebSocket upgrades the connection and reads chat events until
// the client goes away.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("reconcile: websocket upgrade: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("reconcile: websocket read: %v", err)
			}
			return
		}

		var req eventRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			h.send(conn, errorFrame{Type: "error", Message: "invalid message format"})
			continue
		}

		switch Trigger(req.Type) {
		case TriggerChatChanged, TriggerMessageAdded, TriggerChatLoaded:
			if h.OnTrigger != nil {
				h.OnTrigger(Trigger(req.Type))
			}
		default:
			h.send(conn, errorFrame{Type: "error", Message: "unknown event type: " + req.Type})
		}
	}
}

// BroadcastSync pushes a fresh set of indicator updates to every client.
func (h *Hub) BroadcastSync(updates []IndicatorUpdate) {
	h.broadcast(syncFrame{Type: "sync", Updates: updates})
}

// Toast shows a transient message on every client. level is "info" or
// "warning".
func (h *Hub) Toast(level, message string) {
	h.broadcast(toastFrame{Type: "toast", Level: level, Message: message})
}

// Scroll tells clients to bring a message into view, flashing it when
// flash is set.
func (h *Hub) Scroll(messageID int, flash bool) {
	h.broadcast(scrollFrame{Type: "scroll", MessageID: messageID, Flash: flash})
}

func (h *Hub) broadcast(frame any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		h.sendLocked(conn, frame)
	}
}

func (h *Hub) send(conn *websocket.Conn, frame any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sendLocked(conn, frame)
}

func (h *Hub) sendLocked(conn *websocket.Conn, frame any) {
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("reconcile: websocket write: %v", err)
	}
}

// ClientCount reports how many clients are connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
