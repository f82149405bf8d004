package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"creatorboosta/internal/ledger"
	"creatorboosta/internal/models"
)

// AdminHandler groups the management endpoints. Every route here sits
// behind RequireAdmin.
type AdminHandler struct {
	DB       *sqlx.DB
	Ledger   *ledger.Service
	Notifier *Notifier
	Log      *logrus.Logger
}

func NewAdminHandler(db *sqlx.DB, ldg *ledger.Service, notifier *Notifier, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{DB: db, Ledger: ldg, Notifier: notifier, Log: log}
}

// Users lists accounts, newest first.
func (h *AdminHandler) Users(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if skip < 0 {
		skip = 0
	}

	users := []models.User{}
	query := `SELECT * FROM users ORDER BY created_at DESC OFFSET $1 LIMIT $2`
	if err := h.DB.SelectContext(c.Request.Context(), &users, query, skip, limit); err != nil {
		h.Log.WithError(err).Error("failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Could not fetch users."})
		return
	}
	c.JSON(http.StatusOK, users)
}

type SetRoleRequest struct {
	Role models.Role `json:"role" binding:"required,oneof=user vip admin"`
}

// SetRole changes an account's role.
func (h *AdminHandler) SetRole(c *gin.Context) {
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Invalid request: " + err.Error()})
		return
	}

	res, err := h.DB.ExecContext(c.Request.Context(),
		`UPDATE users SET role = $1, updated_at = now() WHERE id = $2`, req.Role, c.Param("id"))
	if err != nil {
		h.Log.WithError(err).Error("failed to update role")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Server error, please try again."})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "User not found."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role updated."})
}

type SetCreditsRequest struct {
	Credits *int `json:"credits" binding:"required"`
}

// SetCredits overrides an account's balance. The override is recorded
// on the grant log by the ledger so the audit trail stays complete.
func (h *AdminHandler) SetCredits(c *gin.Context) {
	var req SetCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Invalid request: " + err.Error()})
		return
	}

	if err := h.Ledger.AdminSetCredits(c.Request.Context(), c.Param("id"), *req.Credits); err != nil {
		fail(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Credits updated.", "credits": *req.Credits})
}

type UpdatePackageRequest struct {
	Price    *float64 `json:"price" binding:"omitempty,gt=0"`
	IsActive *bool    `json:"is_active"`
}

// UpdatePackage adjusts the price or availability of a catalog entry.
// Existing pending purchases keep their snapshotted amount.
func (h *AdminHandler) UpdatePackage(c *gin.Context) {
	var req UpdatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Invalid request: " + err.Error()})
		return
	}
	if req.Price == nil && req.IsActive == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Nothing to update."})
		return
	}

	var pkg models.VipPackage
	query := `
		UPDATE vip_packages
		SET price = COALESCE($1, price), is_active = COALESCE($2, is_active)
		WHERE id = $3
		RETURNING *`
	err := h.DB.GetContext(c.Request.Context(), &pkg, query, req.Price, req.IsActive, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "Package not found."})
		return
	}
	c.JSON(http.StatusOK, pkg)
}

// Purchases lists VIP purchases, pending first so the review queue is
// at the top.
func (h *AdminHandler) Purchases(c *gin.Context) {
	purchases := []models.VipPurchase{}
	query := `
		SELECT * FROM vip_purchases
		ORDER BY (status = 'pending') DESC, created_at DESC`
	if status := c.Query("status"); status != "" {
		query = `SELECT * FROM vip_purchases WHERE status = $1 ORDER BY created_at DESC`
		if err := h.DB.SelectContext(c.Request.Context(), &purchases, query, status); err != nil {
			h.Log.WithError(err).Error("failed to list purchases")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Could not fetch purchases."})
			return
		}
		c.JSON(http.StatusOK, purchases)
		return
	}
	if err := h.DB.SelectContext(c.Request.Context(), &purchases, query); err != nil {
		h.Log.WithError(err).Error("failed to list purchases")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Could not fetch purchases."})
		return
	}
	c.JSON(http.StatusOK, purchases)
}

// ApprovePurchase activates the purchased VIP package. Approval of an
// already-resolved purchase is rejected, not repeated.
func (h *AdminHandler) ApprovePurchase(c *gin.Context) {
	purchase, err := h.Ledger.ApprovePurchase(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Log, err)
		return
	}

	h.Notifier.Send(c.Request.Context(), purchase.UserID, models.NotifVipApproved,
		"VIP Üyeliğiniz Aktif!", "Your VIP Is Active!",
		"Ödemeniz onaylandı, VIP üyeliğiniz aktifleştirildi.",
		"Your payment was approved and your VIP membership is now active.")

	c.JSON(http.StatusOK, purchase)
}

// RejectPurchase closes a pending purchase without activating anything.
func (h *AdminHandler) RejectPurchase(c *gin.Context) {
	purchase, err := h.Ledger.RejectPurchase(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

// Stats aggregates the dashboard numbers in one round trip.
func (h *AdminHandler) Stats(c *gin.Context) {
	var stats struct {
		TotalUsers          int     `db:"total_users" json:"total_users"`
		VipUsers            int     `db:"vip_users" json:"vip_users"`
		TotalBoosts         int     `db:"total_boosts" json:"total_boosts"`
		ActiveBoosts        int     `db:"active_boosts" json:"active_boosts"`
		TotalTopics         int     `db:"total_topics" json:"total_topics"`
		TotalSocialAccounts int     `db:"total_social_accounts" json:"total_social_accounts"`
		TotalVipPurchases   int     `db:"total_vip_purchases" json:"total_vip_purchases"`
		Revenue             float64 `db:"revenue" json:"revenue"`
	}
	query := `
		SELECT
			(SELECT count(*) FROM users)                                              AS total_users,
			(SELECT count(*) FROM users WHERE vip_expires_at > now())                 AS vip_users,
			(SELECT count(*) FROM boosts)                                             AS total_boosts,
			(SELECT count(*) FROM boosts WHERE expires_at > now())                    AS active_boosts,
			(SELECT count(*) FROM forum_topics)                                       AS total_topics,
			(SELECT count(*) FROM social_accounts)                                    AS total_social_accounts,
			(SELECT count(*) FROM vip_purchases)                                      AS total_vip_purchases,
			(SELECT COALESCE(sum(amount), 0) FROM vip_purchases WHERE status = 'approved') AS revenue`
	if err := h.DB.GetContext(c.Request.Context(), &stats, query); err != nil {
		h.Log.WithError(err).Error("failed to aggregate stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Could not fetch stats."})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type BroadcastRequest struct {
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// Broadcast writes an announcement into every user's feed and pushes
// it to all connected clients.
func (h *AdminHandler) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Invalid request: " + err.Error()})
		return
	}

	count, err := h.Notifier.BroadcastAll(c.Request.Context(), req.Title, req.Message)
	if err != nil {
		h.Log.WithError(err).Error("failed to broadcast")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Server error, please try again."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Broadcast sent.", "recipients": count})
}

// Settings returns the admin-managed key/value configuration.
func (h *AdminHandler) Settings(c *gin.Context) {
	settings := []models.AdminSetting{}
	query := `SELECT * FROM admin_settings ORDER BY key`
	if err := h.DB.SelectContext(c.Request.Context(), &settings, query); err != nil {
		h.Log.WithError(err).Error("failed to list settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Could not fetch settings."})
		return
	}
	c.JSON(http.StatusOK, settings)
}

type UpdateSettingRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// UpdateSetting upserts one key. Payment details (IBAN, wallet,
// telegram contact) are edited through here.
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	var req UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Invalid request: " + err.Error()})
		return
	}

	var setting models.AdminSetting
	query := `
		INSERT INTO admin_settings (id, key, value, description, updated_at)
		VALUES (gen_random_uuid(), $1, $2, '', now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		RETURNING *`
	err := h.DB.GetContext(c.Request.Context(), &setting, query, req.Key, req.Value)
	if err != nil {
		h.Log.WithError(err).Error("failed to update setting")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Server error, please try again."})
		return
	}
	c.JSON(http.StatusOK, setting)
}
