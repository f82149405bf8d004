package ledger

import (
	"sort"
	"time"

	"creatorboosta/internal/models"
)

// Credit amounts and caps. These are product constants, not config:
// changing them changes the economy, so they ship with the code.
const (
	SignupBonusCredits   = 10
	AdWatchCredits       = 5
	FollowCreatorCredits = 10
	DailyLoginCredits    = 2
	ReferralCredits      = 20

	// DailyAdLimit caps successful ad-watch grants per UTC calendar day.
	DailyAdLimit = 5

	// VipEarnMultiplier applies to ad-watch grants only, floored to a
	// whole credit.
	VipEarnMultiplier = 1.5
)

// boostCosts is the canonical duration→cost schedule. The linear
// 1-credit/hour table that used to float around the client is
// superseded by this one.
var boostCosts = map[int]int{
	1:   10,
	6:   50,
	12:  90,
	24:  150,
	72:  400,
	168: 800,
}

// BoostCost returns the credit cost for a boost duration, or
// ErrInvalidDuration if the duration is not on the schedule.
func BoostCost(durationHours int) (int, error) {
	cost, ok := boostCosts[durationHours]
	if !ok {
		return 0, ErrInvalidDuration
	}
	return cost, nil
}

// BoostDurations returns the purchasable durations in ascending order.
func BoostDurations() []int {
	hours := make([]int, 0, len(boostCosts))
	for h := range boostCosts {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours
}

// rewardRule fixes the amount and rate limit for one grant reason.
// maxPerDay/maxEver of 0 mean unlimited on that axis.
type rewardRule struct {
	amount        int
	maxPerDay     int
	maxEver       int
	vipMultiplier bool
}

var rewardRules = map[models.GrantReason]rewardRule{
	models.ReasonAdWatch:       {amount: AdWatchCredits, maxPerDay: DailyAdLimit, vipMultiplier: true},
	models.ReasonFollowCreator: {amount: FollowCreatorCredits, maxEver: 1},
	models.ReasonDailyLogin:    {amount: DailyLoginCredits, maxPerDay: 1},
	models.ReasonReferral:      {amount: ReferralCredits},
}

// ruleFor rejects reasons outside the closed enum.
func ruleFor(reason models.GrantReason) (rewardRule, error) {
	rule, ok := rewardRules[reason]
	if !ok {
		return rewardRule{}, ErrUnknownReason
	}
	return rule, nil
}

// dayStartUTC returns the start of the UTC calendar day containing t.
// All daily caps use UTC day boundaries so that "per day" means the
// same thing regardless of where the server or the client sits.
func dayStartUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
