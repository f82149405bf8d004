package websocket

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"creatorboosta/internal/models"
)

// Client is one connected device of a logged-in user. A user may be
// connected from several devices at once.
type Client struct {
	Hub    *Hub
	Conn   Conn
	Send   chan []byte
	UserID string
}

// Hub pushes stored notifications to connected clients. Persistence
// happens before the push; a user who is offline simply reads the feed
// later.
type Hub struct {
	Clients    map[string]map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Notify     chan models.Notification
	Broadcast  chan models.Notification

	log *logrus.Logger
}

// NewHub creates a hub; Run must be started on its own goroutine.
func NewHub(log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		Clients:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Notify:     make(chan models.Notification, 64),
		Broadcast:  make(chan models.Notification, 16),
		log:        log,
	}
}

// Run is the hub event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			if h.Clients[client.UserID] == nil {
				h.Clients[client.UserID] = make(map[*Client]bool)
			}
			h.Clients[client.UserID][client] = true
			h.log.WithField("user_id", client.UserID).Debug("websocket client registered")

		case client := <-h.Unregister:
			if set, ok := h.Clients[client.UserID]; ok && set[client] {
				delete(set, client)
				if len(set) == 0 {
					delete(h.Clients, client.UserID)
				}
				close(client.Send)
				h.log.WithField("user_id", client.UserID).Debug("websocket client unregistered")
			}

		case notification := <-h.Notify:
			h.deliver(notification.UserID, notification)

		case notification := <-h.Broadcast:
			for userID := range h.Clients {
				n := notification
				n.UserID = userID
				h.deliver(userID, n)
			}
		}
	}
}

func (h *Hub) deliver(userID string, notification models.Notification) {
	set, ok := h.Clients[userID]
	if !ok {
		return
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal notification")
		return
	}
	for client := range set {
		select {
		case client.Send <- payload:
		default:
			close(client.Send)
			delete(set, client)
		}
	}
	if len(set) == 0 {
		delete(h.Clients, userID)
	}
}
