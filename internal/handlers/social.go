package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"creatorboosta/internal/ledger"
	"creatorboosta/internal/models"
)

// SocialHandler manages linked social profiles and the discovery feed.
type SocialHandler struct {
	DB     *sqlx.DB
	Ledger *ledger.Service
	Log    *logrus.Logger
}

func NewSocialHandler(db *sqlx.DB, ldg *ledger.Service, log *logrus.Logger) *SocialHandler {
	return &SocialHandler{DB: db, Ledger: ldg, Log: log}
}

type CreateSocialAccountRequest struct {
	Platform       models.Platform `json:"platform" binding:"required,oneof=instagram twitter tiktok youtube"`
	Username       string          `json:"username" binding:"required"`
	DisplayName    string          `json:"display_name" binding:"required"`
	Description    string          `json:"description"`
	ProfileImage   string          `json:"profile_image"`
	FollowersCount int             `json:"followers_count" binding:"omitempty,gte=0"`
	Category       string          `json:"category"`
}

// Create links a social profile to the caller's account.
func (h *SocialHandler) Create(c *gin.Context) {
	var req CreateSocialAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Invalid request: " + err.Error()})
		return
	}

	var account models.SocialAccount
	query := `
		INSERT INTO social_accounts (id, user_id, platform, username, display_name, description,
		                             profile_image, followers_count, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		RETURNING *, FALSE AS is_featured`
	err := h.DB.GetContext(c.Request.Context(), &account, query,
		uuid.NewString(), currentUserID(c), req.Platform, req.Username, req.DisplayName,
		req.Description, req.ProfileImage, req.FollowersCount, req.Category)
	if err != nil {
		h.Log.WithError(err).Error("failed to create social account")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Error creating social account."})
		return
	}

	c.JSON(http.StatusCreated, account)
}

// Mine lists the caller's own linked profiles, for the boost screen.
func (h *SocialHandler) Mine(c *gin.Context) {
	accounts := []models.SocialAccount{}
	query := `
		SELECT *, (boost_expires_at IS NOT NULL AND boost_expires_at > now()) AS is_featured
		FROM social_accounts WHERE user_id = $1 ORDER BY created_at DESC`
	if err := h.DB.SelectContext(c.Request.Context(), &accounts, query, currentUserID(c)); err != nil {
		h.Log.WithError(err).Error("failed to list social accounts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Could not fetch accounts."})
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// Discover serves the public feed. The ledger guarantees featured
// accounts come before non-featured ones; the BOOST badge relies on
// that ordering.
func (h *SocialHandler) Discover(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	accounts, err := h.Ledger.ListDiscoverable(c.Request.Context(), skip, limit)
	if err != nil {
		fail(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}
