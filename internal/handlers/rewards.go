package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"creatorboosta/internal/ledger"
	"creatorboosta/internal/models"
)

// RewardsHandler exposes the credit reward engine over HTTP.
type RewardsHandler struct {
	Ledger   *ledger.Service
	Notifier *Notifier
	Log      *logrus.Logger
}

func NewRewardsHandler(ldg *ledger.Service, notifier *Notifier, log *logrus.Logger) *RewardsHandler {
	return &RewardsHandler{Ledger: ldg, Notifier: notifier, Log: log}
}

// AdWatched grants the ad-watch reward. The client calls this after
// the ad finishes; the daily cap is enforced here, never client-side.
func (h *RewardsHandler) AdWatched(c *gin.Context) {
	userID := currentUserID(c)
	result, err := h.Ledger.GrantAdWatch(c.Request.Context(), userID)
	if err != nil {
		fail(c, h.Log, err)
		return
	}

	h.Notifier.Send(c.Request.Context(), userID, models.NotifCreditsEarned,
		"Kredi Kazandınız!", "Credits Earned!",
		fmt.Sprintf("Reklam izlediğiniz için %d kredi kazandınız.", result.Granted),
		fmt.Sprintf("You earned %d credits for watching an ad.", result.Granted))

	c.JSON(http.StatusOK, gin.H{
		"granted":         result.Granted,
		"daily_remaining": result.DailyRemaining,
		"total_credits":   result.TotalCredits,
	})
}

// AdsRemaining reports how many rewarded ads are left today.
func (h *RewardsHandler) AdsRemaining(c *gin.Context) {
	remaining, err := h.Ledger.DailyAdsRemaining(c.Request.Context(), currentUserID(c), time.Now())
	if err != nil {
		fail(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"daily_remaining": remaining, "daily_limit": ledger.DailyAdLimit})
}

// DailyLogin grants the once-per-day login reward.
func (h *RewardsHandler) DailyLogin(c *gin.Context) {
	userID := currentUserID(c)
	result, err := h.Ledger.GrantDailyLogin(c.Request.Context(), userID)
	if err != nil {
		fail(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"granted":       result.Granted,
		"total_credits": result.TotalCredits,
	})
}

// FollowCreator grants the one-time follow reward. A second call is
// rejected with already_claimed so the UI cannot re-grant.
func (h *RewardsHandler) FollowCreator(c *gin.Context) {
	userID := currentUserID(c)
	result, err := h.Ledger.GrantFollowCreator(c.Request.Context(), userID)
	if err != nil {
		fail(c, h.Log, err)
		return
	}

	h.Notifier.Send(c.Request.Context(), userID, models.NotifCreditsEarned,
		"Takip Ödülü!", "Follow Reward!",
		fmt.Sprintf("Takip ettiğiniz için %d kredi kazandınız!", result.Granted),
		fmt.Sprintf("You earned %d credits for following!", result.Granted))

	c.JSON(http.StatusOK, gin.H{
		"granted":       result.Granted,
		"total_credits": result.TotalCredits,
	})
}
