package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"creatorboosta/internal/models"
)

// Service is the boost and credits ledger. It owns every write to
// users.credits and social_accounts.boost_expires_at; no other code
// path may touch those fields.
type Service struct {
	store Store
	log   *logrus.Logger
	now   func() time.Time
}

// New creates a ledger service on top of a store.
func New(store Store, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, log: log, now: time.Now}
}

// GrantResult reports the outcome of a reward grant.
type GrantResult struct {
	Granted        int `json:"granted"`
	DailyRemaining int `json:"daily_remaining"`
	TotalCredits   int `json:"total_credits"`
}

// BoostResult reports a created boost plus everything the client needs
// to update its local state without a second round trip.
type BoostResult struct {
	Boost         models.Boost `json:"boost"`
	CreditsSpent  int          `json:"credits_spent"`
	NewBalance    int          `json:"new_balance"`
	FeaturedUntil time.Time    `json:"featured_until"`
}

// GrantAdWatch rewards one watched ad. At most DailyAdLimit grants per
// account per UTC day; active VIPs earn at VipEarnMultiplier.
func (s *Service) GrantAdWatch(ctx context.Context, userID string) (*GrantResult, error) {
	return s.grant(ctx, userID, models.ReasonAdWatch)
}

// GrantDailyLogin rewards the first login of the UTC day.
func (s *Service) GrantDailyLogin(ctx context.Context, userID string) (*GrantResult, error) {
	return s.grant(ctx, userID, models.ReasonDailyLogin)
}

// GrantFollowCreator rewards following the creator account. It is
// granted at most once per account, ever; a second attempt fails with
// ErrAlreadyClaimed and changes nothing.
func (s *Service) GrantFollowCreator(ctx context.Context, userID string) (*GrantResult, error) {
	var result *GrantResult
	err := s.store.InTx(ctx, func(tx Tx) error {
		acct, err := tx.AccountForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if acct.IsFollowingCreator {
			return ErrAlreadyClaimed
		}
		prior, err := tx.CountGrants(ctx, userID, models.ReasonFollowCreator, time.Time{})
		if err != nil {
			return err
		}
		if prior > 0 {
			return ErrAlreadyClaimed
		}
		if err := tx.SetFollowingCreator(ctx, userID); err != nil {
			return err
		}
		granted, err := s.appendGrant(ctx, tx, acct, models.ReasonFollowCreator, FollowCreatorCredits)
		if err != nil {
			return err
		}
		result = &GrantResult{Granted: granted, TotalCredits: acct.Credits + granted}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GrantReferral rewards the referrer for a completed referred signup.
// Registration is the only caller and runs once per new account, which
// keeps the one-grant-per-referee invariant.
func (s *Service) GrantReferral(ctx context.Context, referrerID string) (*GrantResult, error) {
	var result *GrantResult
	err := s.store.InTx(ctx, func(tx Tx) error {
		acct, err := tx.AccountForUpdate(ctx, referrerID)
		if err != nil {
			return err
		}
		granted, err := s.appendGrant(ctx, tx, acct, models.ReasonReferral, ReferralCredits)
		if err != nil {
			return err
		}
		result = &GrantResult{Granted: granted, TotalCredits: acct.Credits + granted}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// grant handles the daily-capped reasons through the rule table.
func (s *Service) grant(ctx context.Context, userID string, reason models.GrantReason) (*GrantResult, error) {
	rule, err := ruleFor(reason)
	if err != nil {
		return nil, err
	}
	var result *GrantResult
	err = s.store.InTx(ctx, func(tx Tx) error {
		acct, err := tx.AccountForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		now := s.now()
		today := 0
		if rule.maxPerDay > 0 {
			today, err = tx.CountGrants(ctx, userID, reason, dayStartUTC(now))
			if err != nil {
				return err
			}
			if today >= rule.maxPerDay {
				return ErrRateLimitExceeded
			}
		}
		if rule.maxEver > 0 {
			ever, err := tx.CountGrants(ctx, userID, reason, time.Time{})
			if err != nil {
				return err
			}
			if ever >= rule.maxEver {
				return ErrAlreadyClaimed
			}
		}
		amount := rule.amount
		if rule.vipMultiplier && acct.HasActiveVip(now) {
			amount = int(float64(amount) * VipEarnMultiplier)
		}
		granted, err := s.appendGrant(ctx, tx, acct, reason, amount)
		if err != nil {
			return err
		}
		result = &GrantResult{
			Granted:      granted,
			TotalCredits: acct.Credits + granted,
		}
		if rule.maxPerDay > 0 {
			result.DailyRemaining = rule.maxPerDay - today - 1
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// appendGrant writes the log row and moves the materialized balance in
// the same transaction, keeping balance == sum(grants) - sum(debits).
func (s *Service) appendGrant(ctx context.Context, tx Tx, acct *models.User, reason models.GrantReason, amount int) (int, error) {
	grant := &models.CreditGrant{
		ID:        uuid.NewString(),
		UserID:    acct.ID,
		Reason:    reason,
		Amount:    amount,
		CreatedAt: s.now(),
	}
	if err := tx.InsertGrant(ctx, grant); err != nil {
		return 0, err
	}
	if err := tx.AddCredits(ctx, acct.ID, amount); err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{
		"user_id": acct.ID,
		"reason":  reason,
		"amount":  amount,
	}).Info("credits granted")
	return amount, nil
}

// DailyAdsRemaining is a pure read of today's remaining ad-watch quota,
// using the same UTC day boundary as the grant path.
func (s *Service) DailyAdsRemaining(ctx context.Context, userID string, asOf time.Time) (int, error) {
	if _, err := s.store.Account(ctx, userID); err != nil {
		return 0, err
	}
	watched, err := s.store.CountGrants(ctx, userID, models.ReasonAdWatch, dayStartUTC(asOf))
	if err != nil {
		return 0, err
	}
	remaining := DailyAdLimit - watched
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// CreateBoost converts credits into a visibility window on one of the
// caller's social accounts. The debit, the boost record and the window
// extension commit atomically or not at all.
func (s *Service) CreateBoost(ctx context.Context, userID, socialAccountID string, durationHours int) (*BoostResult, error) {
	cost, err := BoostCost(durationHours)
	if err != nil {
		return nil, err
	}
	var result *BoostResult
	err = s.store.InTx(ctx, func(tx Tx) error {
		acct, err := tx.AccountForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		social, err := tx.SocialAccountForUpdate(ctx, socialAccountID)
		if err != nil {
			return err
		}
		if social.UserID != userID {
			s.log.WithFields(logrus.Fields{
				"user_id":           userID,
				"social_account_id": socialAccountID,
				"owner_id":          social.UserID,
			}).Warn("cross-account boost attempt rejected")
			return ErrNotOwner
		}
		if acct.Credits < cost {
			return &InsufficientCreditsError{Balance: acct.Credits, Required: cost}
		}

		now := s.now()
		boost := models.Boost{
			ID:              uuid.NewString(),
			UserID:          userID,
			SocialAccountID: socialAccountID,
			CreditsSpent:    cost,
			DurationHours:   durationHours,
			StartedAt:       now,
			ExpiresAt:       now.Add(time.Duration(durationHours) * time.Hour),
		}
		if err := tx.AddCredits(ctx, userID, -cost); err != nil {
			return err
		}
		if err := tx.InsertBoost(ctx, &boost); err != nil {
			return err
		}
		// A shorter boost on top of a longer active one must not
		// shrink the featured window.
		featuredUntil := boost.ExpiresAt
		if social.BoostExpiresAt != nil && social.BoostExpiresAt.After(featuredUntil) {
			featuredUntil = *social.BoostExpiresAt
		}
		if err := tx.ApplyBoost(ctx, socialAccountID, featuredUntil); err != nil {
			return err
		}
		result = &BoostResult{
			Boost:         boost,
			CreditsSpent:  cost,
			NewBalance:    acct.Credits - cost,
			FeaturedUntil: featuredUntil,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"user_id":           userID,
		"social_account_id": socialAccountID,
		"duration_hours":    durationHours,
		"credits_spent":     cost,
	}).Info("boost created")
	return result, nil
}

// IsFeatured reports whether the social account's boost window covers
// asOf. Pure read, no side effects.
func (s *Service) IsFeatured(ctx context.Context, socialAccountID string, asOf time.Time) (bool, error) {
	social, err := s.store.SocialAccount(ctx, socialAccountID)
	if err != nil {
		return false, err
	}
	return social.Featured(asOf), nil
}

// ListDiscoverable serves the discovery feed with the featured-first
// ordering contract.
func (s *Service) ListDiscoverable(ctx context.Context, skip, limit int) ([]models.SocialAccount, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.ListDiscoverable(ctx, s.now(), skip, limit)
}

// InitiatePurchase records a pending VIP purchase, snapshotting the
// package price so later price edits never reprice it.
func (s *Service) InitiatePurchase(ctx context.Context, userID, packageID string, method models.PaymentMethod) (*models.VipPurchase, error) {
	if method != models.PaymentBankTransfer && method != models.PaymentCrypto {
		method = models.PaymentBankTransfer
	}
	var purchase *models.VipPurchase
	err := s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.Account(ctx, userID); err != nil {
			return err
		}
		pkg, err := tx.Package(ctx, packageID)
		if err != nil {
			return err
		}
		if !pkg.IsActive {
			return ErrPackageInactive
		}
		purchase = &models.VipPurchase{
			ID:            uuid.NewString(),
			UserID:        userID,
			PackageID:     packageID,
			Amount:        pkg.Price,
			PaymentMethod: method,
			Status:        models.PurchasePending,
			CreatedAt:     s.now(),
		}
		return tx.InsertPurchase(ctx, purchase)
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// ApprovePurchase is the only path that sets VIP state on an account.
// An unexpired package stacks: the new expiry extends from the later of
// now and the current expiry, so an additional purchase never reduces
// remaining entitlement.
func (s *Service) ApprovePurchase(ctx context.Context, purchaseID string) (*models.VipPurchase, error) {
	var purchase *models.VipPurchase
	err := s.store.InTx(ctx, func(tx Tx) error {
		p, err := tx.PurchaseForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		if p.Status != models.PurchasePending {
			return ErrAlreadyResolved
		}
		pkg, err := tx.Package(ctx, p.PackageID)
		if err != nil {
			return err
		}
		acct, err := tx.AccountForUpdate(ctx, p.UserID)
		if err != nil {
			return err
		}
		now := s.now()
		base := now
		if acct.HasActiveVip(now) {
			base = *acct.VipExpiresAt
		}
		expiresAt := base.AddDate(0, 0, pkg.DurationDays)
		if err := tx.SetVip(ctx, acct.ID, pkg.Tier, expiresAt); err != nil {
			return err
		}
		if err := tx.ResolvePurchase(ctx, p.ID, models.PurchaseApproved, now); err != nil {
			return err
		}
		p.Status = models.PurchaseApproved
		p.ResolvedAt = &now
		purchase = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("purchase_id", purchaseID).Info("vip purchase approved")
	return purchase, nil
}

// RejectPurchase terminates a pending purchase without touching the
// account's VIP state.
func (s *Service) RejectPurchase(ctx context.Context, purchaseID string) (*models.VipPurchase, error) {
	var purchase *models.VipPurchase
	err := s.store.InTx(ctx, func(tx Tx) error {
		p, err := tx.PurchaseForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		if p.Status != models.PurchasePending {
			return ErrAlreadyResolved
		}
		now := s.now()
		if err := tx.ResolvePurchase(ctx, p.ID, models.PurchaseRejected, now); err != nil {
			return err
		}
		p.Status = models.PurchaseRejected
		p.ResolvedAt = &now
		purchase = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// AdminSetCredits overrides an account balance. Admin overrides bypass
// the reward caps but still go through the ledger so the non-negative
// invariant holds everywhere.
func (s *Service) AdminSetCredits(ctx context.Context, userID string, credits int) error {
	if credits < 0 {
		return ErrNegativeCredits
	}
	err := s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.AccountForUpdate(ctx, userID); err != nil {
			return err
		}
		return tx.SetCredits(ctx, userID, credits)
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "credits": credits}).Info("admin credit override")
	return nil
}
