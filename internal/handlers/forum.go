package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"creatorboosta/internal/models"
)

// ForumHandler serves categories, topics and replies with their
// denormalized view/reply counters.
type ForumHandler struct {
	DB       *sqlx.DB
	Notifier *Notifier
	Log      *logrus.Logger
}

func NewForumHandler(db *sqlx.DB, notifier *Notifier, log *logrus.Logger) *ForumHandler {
	return &ForumHandler{DB: db, Notifier: notifier, Log: log}
}

// Categories lists active forum categories.
func (h *ForumHandler) Categories(c *gin.Context) {
	categories := []models.ForumCategory{}
	query := `SELECT * FROM forum_categories WHERE is_active = TRUE ORDER BY name`
	if err := h.DB.SelectContext(c.Request.Context(), &categories, query); err != nil {
		h.Log.WithError(err).Error("failed to list forum categories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Could not fetch categories."})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Topics lists topics, optionally filtered by category, pinned and
// newest first.
func (h *ForumHandler) Topics(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if skip < 0 {
		skip = 0
	}

	topics := []models.ForumTopic{}
	var err error
	if categoryID := c.Query("category_id"); categoryID != "" {
		query := `SELECT * FROM forum_topics WHERE category_id = $1
		          ORDER BY is_pinned DESC, created_at DESC OFFSET $2 LIMIT $3`
		err = h.DB.SelectContext(c.Request.Context(), &topics, query, categoryID, skip, limit)
	} else {
		query := `SELECT * FROM forum_topics ORDER BY is_pinned DESC, created_at DESC OFFSET $1 LIMIT $2`
		err = h.DB.SelectContext(c.Request.Context(), &topics, query, skip, limit)
	}
	if err != nil {
		h.Log.WithError(err).Error("failed to list forum topics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Could not fetch topics."})
		return
	}
	c.JSON(http.StatusOK, topics)
}

// Topic returns one topic and counts the view.
func (h *ForumHandler) Topic(c *gin.Context) {
	var topic models.ForumTopic
	query := `UPDATE forum_topics SET views_count = views_count + 1 WHERE id = $1 RETURNING *`
	err := h.DB.GetContext(c.Request.Context(), &topic, query, c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "Topic not found."})
			return
		}
		h.Log.WithError(err).Error("failed to load forum topic")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Server error, please try again."})
		return
	}
	c.JSON(http.StatusOK, topic)
}

type CreateTopicRequest struct {
	CategoryID string `json:"category_id" binding:"required"`
	Title      string `json:"title" binding:"required,min=3,max=200"`
	Content    string `json:"content" binding:"required,min=3"`
}

// CreateTopic opens a new thread in a category.
func (h *ForumHandler) CreateTopic(c *gin.Context) {
	var req CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Invalid request: " + err.Error()})
		return
	}

	var topic models.ForumTopic
	query := `
		INSERT INTO forum_topics (id, category_id, user_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING *`
	err := h.DB.GetContext(c.Request.Context(), &topic, query,
		uuid.NewString(), req.CategoryID, currentUserID(c), req.Title, req.Content)
	if err != nil {
		h.Log.WithError(err).Error("failed to create forum topic")
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Error creating forum topic."})
		return
	}
	c.JSON(http.StatusCreated, topic)
}

// Replies lists a topic's replies in posting order.
func (h *ForumHandler) Replies(c *gin.Context) {
	replies := []models.ForumReply{}
	query := `SELECT * FROM forum_replies WHERE topic_id = $1 ORDER BY created_at`
	if err := h.DB.SelectContext(c.Request.Context(), &replies, query, c.Param("id")); err != nil {
		h.Log.WithError(err).Error("failed to list forum replies")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Could not fetch replies."})
		return
	}
	c.JSON(http.StatusOK, replies)
}

type CreateReplyRequest struct {
	Content string `json:"content" binding:"required,min=1"`
}

// CreateReply posts a reply, bumps the topic's counter and notifies
// the topic author.
func (h *ForumHandler) CreateReply(c *gin.Context) {
	var req CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Invalid request: " + err.Error()})
		return
	}
	topicID := c.Param("id")
	userID := currentUserID(c)

	tx, err := h.DB.Beginx()
	if err != nil {
		h.Log.WithError(err).Error("failed to begin transaction")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Server error, please try again."})
		return
	}
	defer tx.Rollback()

	var topic models.ForumTopic
	err = tx.GetContext(c.Request.Context(), &topic,
		`SELECT * FROM forum_topics WHERE id = $1 FOR UPDATE`, topicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "Topic not found."})
			return
		}
		h.Log.WithError(err).Error("failed to load topic for reply")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Server error, please try again."})
		return
	}
	if topic.IsLocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "topic_locked", "message": "This topic is locked."})
		return
	}

	var reply models.ForumReply
	err = tx.GetContext(c.Request.Context(), &reply,
		`INSERT INTO forum_replies (id, topic_id, user_id, content, created_at)
		 VALUES ($1, $2, $3, $4, now()) RETURNING *`,
		uuid.NewString(), topicID, userID, req.Content)
	if err != nil {
		h.Log.WithError(err).Error("failed to create reply")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Server error, please try again."})
		return
	}

	_, err = tx.ExecContext(c.Request.Context(),
		`UPDATE forum_topics SET replies_count = replies_count + 1, updated_at = now() WHERE id = $1`, topicID)
	if err != nil {
		h.Log.WithError(err).Error("failed to bump reply counter")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Server error, please try again."})
		return
	}

	if err := tx.Commit(); err != nil {
		h.Log.WithError(err).Error("failed to commit reply")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Server error, please try again."})
		return
	}

	if topic.UserID != userID {
		h.Notifier.Send(c.Request.Context(), topic.UserID, models.NotifForumReply,
			"Konunuza Yanıt Geldi", "New Reply to Your Topic",
			"\""+topic.Title+"\" konunuza yeni bir yanıt geldi.",
			"Your topic \""+topic.Title+"\" has a new reply.")
	}

	c.JSON(http.StatusCreated, reply)
}
