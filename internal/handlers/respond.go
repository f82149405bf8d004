package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"creatorboosta/internal/ledger"
)

// fail translates ledger errors into stable machine-readable kinds so
// the client can branch on them (e.g. show the "earn credits" CTA only
// for insufficient_credits) instead of parsing message text.
func fail(c *gin.Context, log *logrus.Logger, err error) {
	var insufficient *ledger.InsufficientCreditsError
	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "insufficient_credits",
			"message":  "Not enough credits for this boost.",
			"balance":  insufficient.Balance,
			"required": insufficient.Required,
		})
	case errors.Is(err, ledger.ErrInvalidDuration):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_duration", "message": "Boost duration is not available."})
	case errors.Is(err, ledger.ErrRateLimitExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate_limit_exceeded", "message": "Daily limit reached."})
	case errors.Is(err, ledger.ErrAlreadyClaimed):
		c.JSON(http.StatusConflict, gin.H{"error": "already_claimed", "message": "Reward already claimed."})
	case errors.Is(err, ledger.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "already_resolved", "message": "Purchase has already been processed."})
	case errors.Is(err, ledger.ErrNotOwner):
		// Authorization failure: generic message to the caller, the
		// details are already logged at warning level by the ledger.
		c.JSON(http.StatusForbidden, gin.H{"error": "not_owner", "message": "You cannot boost this account."})
	case errors.Is(err, ledger.ErrPackageInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": "package_inactive", "message": "This VIP package is not available."})
	case errors.Is(err, ledger.ErrNegativeCredits):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Credits cannot be negative."})
	case errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrSocialNotFound),
		errors.Is(err, ledger.ErrPackageNotFound),
		errors.Is(err, ledger.ErrPurchaseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()})
	default:
		log.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Server error, please try again."})
	}
}

// currentUserID pulls the authenticated account id set by the auth
// middleware.
func currentUserID(c *gin.Context) string {
	return c.GetString("userID")
}
