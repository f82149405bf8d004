package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"creatorboosta/internal/ledger"
	"creatorboosta/internal/models"
)

// VipHandler serves the package catalog and purchase initiation.
// Payments settle out of band (bank transfer or crypto, confirmed over
// Telegram); an admin approves or rejects the purchase afterwards.
type VipHandler struct {
	DB     *sqlx.DB
	Ledger *ledger.Service
	Log    *logrus.Logger
}

func NewVipHandler(db *sqlx.DB, ldg *ledger.Service, log *logrus.Logger) *VipHandler {
	return &VipHandler{DB: db, Ledger: ldg, Log: log}
}

// Packages lists the active VIP catalog.
func (h *VipHandler) Packages(c *gin.Context) {
	packages := []models.VipPackage{}
	query := `SELECT * FROM vip_packages WHERE is_active = TRUE ORDER BY price`
	if err := h.DB.SelectContext(c.Request.Context(), &packages, query); err != nil {
		h.Log.WithError(err).Error("failed to list vip packages")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Could not fetch packages."})
		return
	}
	c.JSON(http.StatusOK, packages)
}

type PurchaseRequest struct {
	PackageID     string               `json:"package_id" binding:"required"`
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"omitempty,oneof=bank_transfer crypto"`
}

// Purchase records a pending purchase with the price snapshotted. The
// response reminds the client the payment is confirmed manually.
func (h *VipHandler) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Invalid request: " + err.Error()})
		return
	}

	purchase, err := h.Ledger.InitiatePurchase(c.Request.Context(), currentUserID(c), req.PackageID, req.PaymentMethod)
	if err != nil {
		fail(c, h.Log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"purchase": purchase,
		"message":  "Purchase recorded. It will be activated once the payment is confirmed.",
	})
}

// MyPurchases lists the caller's purchase history, newest first.
func (h *VipHandler) MyPurchases(c *gin.Context) {
	purchases := []models.VipPurchase{}
	query := `SELECT * FROM vip_purchases WHERE user_id = $1 ORDER BY created_at DESC`
	if err := h.DB.SelectContext(c.Request.Context(), &purchases, query, currentUserID(c)); err != nil {
		h.Log.WithError(err).Error("failed to list vip purchases")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Could not fetch purchases."})
		return
	}
	c.JSON(http.StatusOK, purchases)
}
