package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	ws "creatorboosta/internal/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades authenticated clients and attaches them to
// the notification hub. Auth runs in the middleware; by the time we
// get here the user ID is on the context.
type WebSocketHandler struct {
	Hub *ws.Hub
	Log *logrus.Logger
}

func NewWebSocketHandler(hub *ws.Hub, log *logrus.Logger) *WebSocketHandler {
	return &WebSocketHandler{Hub: hub, Log: log}
}

func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	userID := currentUserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &ws.Client{
		Hub:    h.Hub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		UserID: userID,
	}
	client.Hub.Register <- client

	go h.writePump(client)
	go h.readPump(client)
}

func (h *WebSocketHandler) writePump(client *ws.Client) {
	defer client.Conn.Close()

	for message := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (h *WebSocketHandler) readPump(client *ws.Client) {
	defer func() {
		client.Hub.Unregister <- client
		client.Conn.Close()
	}()

	// Clients never send anything meaningful; the read loop only
	// detects disconnects.
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.Log.WithError(err).Debug("websocket read error")
			}
			break
		}
	}
}
