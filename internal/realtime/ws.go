package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Event is the envelope pushed to connected clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub fans events out to a user's open sockets. A user may hold
// several connections (tabs); each gets every event addressed to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*websocket.Conn]bool
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*websocket.Conn]bool),
		logger:  logger,
	}
}

func (h *Hub) register(userID string, ws *websocket.Conn) {
	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*websocket.Conn]bool)
	}
	h.clients[userID][ws] = true
	h.mu.Unlock()
}

func (h *Hub) unregister(userID string, ws *websocket.Conn) {
	h.mu.Lock()
	if conns, ok := h.clients[userID]; ok {
		delete(conns, ws)
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}
	h.mu.Unlock()
}

// Push sends evt to every open connection belonging to userID. Send
// failures are left for the connection's read loop to notice.
func (h *Hub) Push(userID string, evt Event) {
	payload, _ := json.Marshal(evt)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ws := range h.clients[userID] {
		_ = ws.WriteMessage(websocket.TextMessage, payload)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Serve upgrades the request and parks the connection until the client
// goes away. The protocol is server push only; client frames are
// discarded.
func (h *Hub) Serve(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h.register(userID, ws)
	defer func() {
		h.unregister(userID, ws)
		_ = ws.Close()
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return nil
		}
	}
}
