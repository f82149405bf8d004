package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"creatorboosta/internal/ledger"
	"creatorboosta/internal/models"
)

// BoostHandler exposes the boost ledger over HTTP.
type BoostHandler struct {
	Ledger   *ledger.Service
	Notifier *Notifier
	Log      *logrus.Logger
}

func NewBoostHandler(ldg *ledger.Service, notifier *Notifier, log *logrus.Logger) *BoostHandler {
	return &BoostHandler{Ledger: ldg, Notifier: notifier, Log: log}
}

type CreateBoostRequest struct {
	SocialAccountID string `json:"social_account_id" binding:"required"`
	DurationHours   int    `json:"duration_hours" binding:"required"`
}

// Create debits the caller and opens (or extends) the boost window.
// The response carries the cost and the new balance so the client can
// update its credit display without a second round trip.
func (h *BoostHandler) Create(c *gin.Context) {
	var req CreateBoostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Invalid request: " + err.Error()})
		return
	}

	result, err := h.Ledger.CreateBoost(c.Request.Context(), currentUserID(c), req.SocialAccountID, req.DurationHours)
	if err != nil {
		fail(c, h.Log, err)
		return
	}

	h.Notifier.Send(c.Request.Context(), result.Boost.UserID, models.NotifBoostActive,
		"Boost Aktifleşti!", "Boost Activated!",
		fmt.Sprintf("Hesabınız %d saat boyunca boost alacak.", req.DurationHours),
		fmt.Sprintf("Your account will be boosted for %d hours.", req.DurationHours))

	c.JSON(http.StatusCreated, result)
}

// Durations returns the purchasable schedule so the client renders the
// same prices the ledger will charge.
func (h *BoostHandler) Durations(c *gin.Context) {
	type option struct {
		Hours   int `json:"hours"`
		Credits int `json:"credits"`
	}
	options := []option{}
	for _, hours := range ledger.BoostDurations() {
		cost, _ := ledger.BoostCost(hours)
		options = append(options, option{Hours: hours, Credits: cost})
	}
	c.JSON(http.StatusOK, options)
}
