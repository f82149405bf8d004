package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"creatorboosta/internal/models"
	ws "creatorboosta/internal/websocket"
)

// Notifier persists a notification and pushes it to connected clients.
// The database write is the source of truth; the push is best effort.
type Notifier struct {
	DB  *sqlx.DB
	Hub *ws.Hub
	Log *logrus.Logger
}

func NewNotifier(db *sqlx.DB, hub *ws.Hub, log *logrus.Logger) *Notifier {
	return &Notifier{DB: db, Hub: hub, Log: log}
}

// Send stores a notification for one user and pushes it live.
func (n *Notifier) Send(ctx context.Context, userID string, typ models.NotificationType, title, titleEn, message, messageEn string) {
	notification := models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		TitleEn:   titleEn,
		Message:   message,
		MessageEn: messageEn,
		CreatedAt: time.Now(),
	}
	query := `
		INSERT INTO notifications (id, user_id, type, title, title_en, message, message_en, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)`
	_, err := n.DB.ExecContext(ctx, query,
		notification.ID, notification.UserID, notification.Type,
		notification.Title, notification.TitleEn, notification.Message,
		notification.MessageEn, notification.CreatedAt)
	if err != nil {
		n.Log.WithError(err).Error("failed to store notification")
		return
	}
	n.Hub.Notify <- notification
}

// BroadcastAll fans an admin announcement out to every account's feed
// and pushes it to everyone currently connected. Returns the number of
// feeds written.
func (n *Notifier) BroadcastAll(ctx context.Context, title, message string) (int64, error) {
	query := `
		INSERT INTO notifications (id, user_id, type, title, title_en, message, message_en, is_read, created_at)
		SELECT gen_random_uuid(), id, $1, $2, $2, $3, $3, FALSE, now() FROM users`
	res, err := n.DB.ExecContext(ctx, query, models.NotifBroadcast, title, message)
	if err != nil {
		return 0, err
	}
	count, _ := res.RowsAffected()
	n.Hub.Broadcast <- models.Notification{
		ID:        uuid.NewString(),
		Type:      models.NotifBroadcast,
		Title:     title,
		TitleEn:   title,
		Message:   message,
		MessageEn: message,
		CreatedAt: time.Now(),
	}
	return count, nil
}

// NotificationHandler serves the per-user notification feed.
type NotificationHandler struct {
	DB  *sqlx.DB
	Log *logrus.Logger
}

func NewNotificationHandler(db *sqlx.DB, log *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{DB: db, Log: log}
}

// List returns the newest notifications first.
func (h *NotificationHandler) List(c *gin.Context) {
	notifications := []models.Notification{}
	query := `SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT 50`
	if err := h.DB.SelectContext(c.Request.Context(), &notifications, query, currentUserID(c)); err != nil {
		h.Log.WithError(err).Error("failed to list notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Could not fetch notifications."})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkRead flags one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	res, err := h.DB.ExecContext(c.Request.Context(),
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`,
		c.Param("id"), currentUserID(c))
	if err != nil {
		h.Log.WithError(err).Error("failed to mark notification read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Server error, please try again."})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "Notification not found."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read."})
}
