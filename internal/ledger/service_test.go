package ledger

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creatorboosta/internal/models"
)

// memStore is an in-memory Store used to exercise the ledger rules
// without a database. InTx snapshots the state and restores it when fn
// fails, matching the all-or-nothing contract.
type memStore struct {
	mu        sync.Mutex
	users     map[string]*models.User
	socials   map[string]*models.SocialAccount
	grants    []models.CreditGrant
	boosts    []models.Boost
	packages  map[string]*models.VipPackage
	purchases map[string]*models.VipPurchase
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[string]*models.User),
		socials:   make(map[string]*models.SocialAccount),
		packages:  make(map[string]*models.VipPackage),
		purchases: make(map[string]*models.VipPurchase),
	}
}

func (s *memStore) snapshot() *memStore {
	c := newMemStore()
	for id, u := range s.users {
		cp := *u
		c.users[id] = &cp
	}
	for id, a := range s.socials {
		cp := *a
		c.socials[id] = &cp
	}
	for id, p := range s.packages {
		cp := *p
		c.packages[id] = &cp
	}
	for id, p := range s.purchases {
		cp := *p
		c.purchases[id] = &cp
	}
	c.grants = append([]models.CreditGrant(nil), s.grants...)
	c.boosts = append([]models.Boost(nil), s.boosts...)
	return c
}

func (s *memStore) restore(from *memStore) {
	s.users = from.users
	s.socials = from.socials
	s.packages = from.packages
	s.purchases = from.purchases
	s.grants = from.grants
	s.boosts = from.boosts
}

func (s *memStore) Account(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account(id)
}

func (s *memStore) account(id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) SocialAccount(ctx context.Context, id string) (*models.SocialAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.socialAccount(id)
}

func (s *memStore) socialAccount(id string) (*models.SocialAccount, error) {
	a, ok := s.socials[id]
	if !ok {
		return nil, ErrSocialNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *memStore) CountGrants(ctx context.Context, userID string, reason models.GrantReason, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countGrants(userID, reason, since)
}

func (s *memStore) countGrants(userID string, reason models.GrantReason, since time.Time) (int, error) {
	n := 0
	for _, g := range s.grants {
		if g.UserID == userID && g.Reason == reason && !g.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *memStore) Package(ctx context.Context, id string) (*models.VipPackage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pkg(id)
}

func (s *memStore) pkg(id string) (*models.VipPackage, error) {
	p, ok := s.packages[id]
	if !ok {
		return nil, ErrPackageNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) Purchase(ctx context.Context, id string) (*models.VipPurchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purchase(id)
}

func (s *memStore) purchase(id string) (*models.VipPurchase, error) {
	p, ok := s.purchases[id]
	if !ok {
		return nil, ErrPurchaseNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(before)
		return err
	}
	return nil
}

func (s *memStore) ListDiscoverable(ctx context.Context, asOf time.Time, skip, limit int) ([]models.SocialAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts := make([]models.SocialAccount, 0, len(s.socials))
	for _, a := range s.socials {
		cp := *a
		cp.IsFeatured = cp.Featured(asOf)
		accounts = append(accounts, cp)
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].IsFeatured != accounts[j].IsFeatured {
			return accounts[i].IsFeatured
		}
		if accounts[i].BoostCount != accounts[j].BoostCount {
			return accounts[i].BoostCount > accounts[j].BoostCount
		}
		return accounts[i].CreatedAt.After(accounts[j].CreatedAt)
	})
	if skip >= len(accounts) {
		return []models.SocialAccount{}, nil
	}
	accounts = accounts[skip:]
	if limit < len(accounts) {
		accounts = accounts[:limit]
	}
	return accounts, nil
}

type memTx struct {
	s *memStore
}

func (t *memTx) Account(ctx context.Context, id string) (*models.User, error) {
	return t.s.account(id)
}

func (t *memTx) SocialAccount(ctx context.Context, id string) (*models.SocialAccount, error) {
	return t.s.socialAccount(id)
}

func (t *memTx) CountGrants(ctx context.Context, userID string, reason models.GrantReason, since time.Time) (int, error) {
	return t.s.countGrants(userID, reason, since)
}

func (t *memTx) Package(ctx context.Context, id string) (*models.VipPackage, error) {
	return t.s.pkg(id)
}

func (t *memTx) Purchase(ctx context.Context, id string) (*models.VipPurchase, error) {
	return t.s.purchase(id)
}

func (t *memTx) AccountForUpdate(ctx context.Context, id string) (*models.User, error) {
	return t.s.account(id)
}

func (t *memTx) SocialAccountForUpdate(ctx context.Context, id string) (*models.SocialAccount, error) {
	return t.s.socialAccount(id)
}

func (t *memTx) PurchaseForUpdate(ctx context.Context, id string) (*models.VipPurchase, error) {
	return t.s.purchase(id)
}

func (t *memTx) AddCredits(ctx context.Context, userID string, delta int) error {
	u, ok := t.s.users[userID]
	if !ok {
		return ErrAccountNotFound
	}
	if u.Credits+delta < 0 {
		return ErrNegativeCredits
	}
	u.Credits += delta
	return nil
}

func (t *memTx) SetCredits(ctx context.Context, userID string, credits int) error {
	u, ok := t.s.users[userID]
	if !ok {
		return ErrAccountNotFound
	}
	u.Credits = credits
	return nil
}

func (t *memTx) InsertGrant(ctx context.Context, grant *models.CreditGrant) error {
	t.s.grants = append(t.s.grants, *grant)
	return nil
}

func (t *memTx) SetFollowingCreator(ctx context.Context, userID string) error {
	u, ok := t.s.users[userID]
	if !ok {
		return ErrAccountNotFound
	}
	u.IsFollowingCreator = true
	return nil
}

func (t *memTx) InsertBoost(ctx context.Context, boost *models.Boost) error {
	t.s.boosts = append(t.s.boosts, *boost)
	return nil
}

func (t *memTx) ApplyBoost(ctx context.Context, socialAccountID string, expiresAt time.Time) error {
	a, ok := t.s.socials[socialAccountID]
	if !ok {
		return ErrSocialNotFound
	}
	a.BoostCount++
	exp := expiresAt
	a.BoostExpiresAt = &exp
	return nil
}

func (t *memTx) InsertPurchase(ctx context.Context, purchase *models.VipPurchase) error {
	cp := *purchase
	t.s.purchases[purchase.ID] = &cp
	return nil
}

func (t *memTx) ResolvePurchase(ctx context.Context, id string, status models.PurchaseStatus, at time.Time) error {
	p, ok := t.s.purchases[id]
	if !ok {
		return ErrPurchaseNotFound
	}
	if p.Status != models.PurchasePending {
		return ErrAlreadyResolved
	}
	p.Status = status
	resolved := at
	p.ResolvedAt = &resolved
	return nil
}

func (t *memTx) SetVip(ctx context.Context, userID string, tier models.VipTier, expiresAt time.Time) error {
	u, ok := t.s.users[userID]
	if !ok {
		return ErrAccountNotFound
	}
	u.VipPackage = tier
	exp := expiresAt
	u.VipExpiresAt = &exp
	if u.Role == models.RoleUser {
		u.Role = models.RoleVip
	}
	return nil
}

// --- fixtures ---

var testEpoch = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store *memStore
	svc   *Service
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	f := &fixture{store: store, now: testEpoch}
	f.svc = New(store, nil)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) addUser(id string, credits int) *models.User {
	u := &models.User{
		ID:       id,
		Username: id,
		Role:     models.RoleUser,
		Credits:  credits,
	}
	f.store.users[id] = u
	return u
}

func (f *fixture) addSocial(id, userID string) *models.SocialAccount {
	a := &models.SocialAccount{
		ID:        id,
		UserID:    userID,
		Platform:  models.PlatformInstagram,
		Username:  id,
		CreatedAt: f.now,
	}
	f.store.socials[id] = a
	return a
}

func (f *fixture) addPackage(id string, tier models.VipTier, price float64, days int) *models.VipPackage {
	p := &models.VipPackage{
		ID:           id,
		Tier:         tier,
		Price:        price,
		DurationDays: days,
		IsActive:     true,
	}
	f.store.packages[id] = p
	return p
}

// --- reward engine ---

func TestGrantAdWatchDailyCap(t *testing.T) {
	f := newFixture(t)
	f.addUser("alice", 0)
	ctx := context.Background()

	for i := 0; i < DailyAdLimit; i++ {
		result, err := f.svc.GrantAdWatch(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, AdWatchCredits, result.Granted)
		assert.Equal(t, DailyAdLimit-i-1, result.DailyRemaining)
		f.now = f.now.Add(time.Minute)
	}

	_, err := f.svc.GrantAdWatch(ctx, "alice")
	require.ErrorIs(t, err, ErrRateLimitExceeded)

	acct, err := f.store.Account(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, DailyAdLimit*AdWatchCredits, acct.Credits, "rejected grant must not change the balance")
}

func TestGrantAdWatchCapResetsAtUTCMidnight(t *testing.T) {
	f := newFixture(t)
	f.addUser("alice", 0)
	ctx := context.Background()

	for i := 0; i < DailyAdLimit; i++ {
		_, err := f.svc.GrantAdWatch(ctx, "alice")
		require.NoError(t, err)
	}
	_, err := f.svc.GrantAdWatch(ctx, "alice")
	require.ErrorIs(t, err, ErrRateLimitExceeded)

	// 23:59:59 UTC same day is still capped.
	f.now = time.Date(2025, 1, 15, 23, 59, 59, 0, time.UTC)
	_, err = f.svc.GrantAdWatch(ctx, "alice")
	require.ErrorIs(t, err, ErrRateLimitExceeded)

	// One second later the quota is fresh.
	f.now = time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)
	result, err := f.svc.GrantAdWatch(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, DailyAdLimit-1, result.DailyRemaining)
}

func TestGrantAdWatchVipMultiplier(t *testing.T) {
	f := newFixture(t)
	u := f.addUser("vip-user", 0)
	u.VipPackage = models.VipPro
	exp := f.now.Add(24 * time.Hour)
	u.VipExpiresAt = &exp

	result, err := f.svc.GrantAdWatch(context.Background(), "vip-user")
	require.NoError(t, err)
	// 5 * 1.5 floored.
	assert.Equal(t, 7, result.Granted)
}

func TestGrantAdWatchExpiredVipEarnsBaseRate(t *testing.T) {
	f := newFixture(t)
	u := f.addUser("expired", 0)
	u.VipPackage = models.VipPro
	exp := f.now.Add(-time.Hour)
	u.VipExpiresAt = &exp

	result, err := f.svc.GrantAdWatch(context.Background(), "expired")
	require.NoError(t, err)
	assert.Equal(t, AdWatchCredits, result.Granted)
}

func TestGrantDailyLoginOncePerDay(t *testing.T) {
	f := newFixture(t)
	f.addUser("alice", 0)
	ctx := context.Background()

	result, err := f.svc.GrantDailyLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, DailyLoginCredits, result.Granted)

	_, err = f.svc.GrantDailyLogin(ctx, "alice")
	require.ErrorIs(t, err, ErrRateLimitExceeded)

	f.now = f.now.Add(24 * time.Hour)
	_, err = f.svc.GrantDailyLogin(ctx, "alice")
	require.NoError(t, err)
}

func TestGrantFollowCreatorOnceEver(t *testing.T) {
	f := newFixture(t)
	f.addUser("alice", 0)
	ctx := context.Background()

	result, err := f.svc.GrantFollowCreator(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, FollowCreatorCredits, result.Granted)

	acct, _ := f.store.Account(ctx, "alice")
	assert.True(t, acct.IsFollowingCreator)

	// Not even after a long wait.
	f.now = f.now.AddDate(1, 0, 0)
	_, err = f.svc.GrantFollowCreator(ctx, "alice")
	require.ErrorIs(t, err, ErrAlreadyClaimed)

	acct, _ = f.store.Account(ctx, "alice")
	assert.Equal(t, FollowCreatorCredits, acct.Credits, "failed claim must not change the balance")
}

func TestGrantReferral(t *testing.T) {
	f := newFixture(t)
	f.addUser("referrer", 3)

	result, err := f.svc.GrantReferral(context.Background(), "referrer")
	require.NoError(t, err)
	assert.Equal(t, ReferralCredits, result.Granted)
	assert.Equal(t, 3+ReferralCredits, result.TotalCredits)
}

func TestGrantUnknownAccount(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GrantAdWatch(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestDailyAdsRemaining(t *testing.T) {
	f := newFixture(t)
	f.addUser("alice", 0)
	ctx := context.Background()

	remaining, err := f.svc.DailyAdsRemaining(ctx, "alice", f.now)
	require.NoError(t, err)
	assert.Equal(t, DailyAdLimit, remaining)

	_, err = f.svc.GrantAdWatch(ctx, "alice")
	require.NoError(t, err)

	remaining, err = f.svc.DailyAdsRemaining(ctx, "alice", f.now)
	require.NoError(t, err)
	assert.Equal(t, DailyAdLimit-1, remaining)
}

// --- boost ledger ---

func TestCreateBoostExactCost(t *testing.T) {
	f := newFixture(t)
	f.addUser("alice", 150)
	f.addSocial("insta", "alice")
	ctx := context.Background()

	result, err := f.svc.CreateBoost(ctx, "alice", "insta", 24)
	require.NoError(t, err)
	assert.Equal(t, 150, result.CreditsSpent)
	assert.Equal(t, 0, result.NewBalance)
	assert.Equal(t, f.now.Add(24*time.Hour), result.FeaturedUntil)

	acct, _ := f.store.Account(ctx, "alice")
	assert.Equal(t, 0, acct.Credits)

	featured, err := f.svc.IsFeatured(ctx, "insta", f.now.Add(23*time.Hour))
	require.NoError(t, err)
	assert.True(t, featured)

	featured, err = f.svc.IsFeatured(ctx, "insta", f.now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.False(t, featured, "window end is exclusive")
}

func TestCreateBoostOneCreditShort(t *testing.T) {
	f := newFixture(t)
	f.addUser("alice", 149)
	f.addSocial("insta", "alice")
	ctx := context.Background()

	_, err := f.svc.CreateBoost(ctx, "alice", "insta", 24)

	var insufficient *InsufficientCreditsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 149, insufficient.Balance)
	assert.Equal(t, 150, insufficient.Required)

	acct, _ := f.store.Account(ctx, "alice")
	assert.Equal(t, 149, acct.Credits, "failed boost must not debit")
	assert.Empty(t, f.store.boosts)

	social, _ := f.store.SocialAccount(ctx, "insta")
	assert.Nil(t, social.BoostExpiresAt)
}

func TestCreateBoostInvalidDuration(t *testing.T) {
	f := newFixture(t)
	f.addUser("alice", 1000)
	f.addSocial("insta", "alice")

	for _, hours := range []int{0, -1, 2, 48, 1000} {
		_, err := f.svc.CreateBoost(context.Background(), "alice", "insta", hours)
		require.ErrorIs(t, err, ErrInvalidDuration, "duration %d", hours)
	}
}

func TestCreateBoostNotOwner(t *testing.T) {
	f := newFixture(t)
	f.addUser("alice", 1000)
	f.addUser("mallory", 1000)
	f.addSocial("insta", "alice")
	ctx := context.Background()

	_, err := f.svc.CreateBoost(ctx, "mallory", "insta", 1)
	require.ErrorIs(t, err, ErrNotOwner)

	acct, _ := f.store.Account(ctx, "mallory")
	assert.Equal(t, 1000, acct.Credits)
}

func TestCreateBoostExtendsWindow(t *testing.T) {
	f := newFixture(t)
	f.addUser("alice", 1000)
	f.addSocial("insta", "alice")
	ctx := context.Background()

	first, err := f.svc.CreateBoost(ctx, "alice", "insta", 6)
	require.NoError(t, err)

	// A later boost extends from its own start, past the first window.
	f.now = f.now.Add(3 * time.Hour)
	second, err := f.svc.CreateBoost(ctx, "alice", "insta", 6)
	require.NoError(t, err)
	assert.True(t, second.FeaturedUntil.After(first.FeaturedUntil))
	assert.Equal(t, f.now.Add(6*time.Hour), second.FeaturedUntil)

	social, _ := f.store.SocialAccount(ctx, "insta")
	assert.Equal(t, 2, social.BoostCount)
}

func TestCreateBoostNeverShrinksWindow(t *testing.T) {
	f := newFixture(t)
	f.addUser("alice", 1000)
	f.addSocial("insta", "alice")
	ctx := context.Background()

	long, err := f.svc.CreateBoost(ctx, "alice", "insta", 72)
	require.NoError(t, err)

	// A short boost on top of a long active one keeps the long expiry.
	f.now = f.now.Add(time.Hour)
	short, err := f.svc.CreateBoost(ctx, "alice", "insta", 1)
	require.NoError(t, err)
	assert.Equal(t, long.FeaturedUntil, short.FeaturedUntil)

	social, _ := f.store.SocialAccount(ctx, "insta")
	require.NotNil(t, social.BoostExpiresAt)
	assert.Equal(t, long.FeaturedUntil, *social.BoostExpiresAt)
}

func TestListDiscoverableFeaturedFirst(t *testing.T) {
	f := newFixture(t)
	f.addUser("alice", 1000)
	f.addUser("bob", 1000)

	plain := f.addSocial("plain", "bob")
	plain.BoostCount = 50 // popularity never beats an active boost

	f.addSocial("boosted", "alice")
	_, err := f.svc.CreateBoost(context.Background(), "alice", "boosted", 6)
	require.NoError(t, err)

	accounts, err := f.svc.ListDiscoverable(context.Background(), 0, 20)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "boosted", accounts[0].ID)
	assert.True(t, accounts[0].IsFeatured)
	assert.False(t, accounts[1].IsFeatured)
}

func TestBoostDurationsSchedule(t *testing.T) {
	assert.Equal(t, []int{1, 6, 12, 24, 72, 168}, BoostDurations())

	for hours, want := range map[int]int{1: 10, 6: 50, 12: 90, 24: 150, 72: 400, 168: 800} {
		cost, err := BoostCost(hours)
		require.NoError(t, err)
		assert.Equal(t, want, cost)
	}
}

// --- vip purchases ---

func TestPurchaseLifecycle(t *testing.T) {
	f := newFixture(t)
	f.addUser("alice", 0)
	f.addPackage("pro", models.VipPro, 49.90, 30)
	ctx := context.Background()

	purchase, err := f.svc.InitiatePurchase(ctx, "alice", "pro", models.PaymentCrypto)
	require.NoError(t, err)
	assert.Equal(t, models.PurchasePending, purchase.Status)
	assert.Equal(t, 49.90, purchase.Amount)
	assert.Equal(t, models.PaymentCrypto, purchase.PaymentMethod)

	// A price edit after initiation never reprices the purchase.
	f.store.packages["pro"].Price = 99.90

	approved, err := f.svc.ApprovePurchase(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseApproved, approved.Status)
	assert.Equal(t, 49.90, approved.Amount)
	require.NotNil(t, approved.ResolvedAt)

	acct, _ := f.store.Account(ctx, "alice")
	assert.Equal(t, models.VipPro, acct.VipPackage)
	assert.Equal(t, models.RoleVip, acct.Role)
	require.NotNil(t, acct.VipExpiresAt)
	assert.Equal(t, f.now.AddDate(0, 0, 30), *acct.VipExpiresAt)

	// Resolution is final.
	_, err = f.svc.ApprovePurchase(ctx, purchase.ID)
	require.ErrorIs(t, err, ErrAlreadyResolved)
	_, err = f.svc.RejectPurchase(ctx, purchase.ID)
	require.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestApproveStacksOnActiveVip(t *testing.T) {
	f := newFixture(t)
	u := f.addUser("alice", 0)
	u.VipPackage = models.VipStarter
	current := f.now.AddDate(0, 0, 10)
	u.VipExpiresAt = &current
	f.addPackage("pro", models.VipPro, 49.90, 30)
	ctx := context.Background()

	purchase, err := f.svc.InitiatePurchase(ctx, "alice", "pro", models.PaymentBankTransfer)
	require.NoError(t, err)
	_, err = f.svc.ApprovePurchase(ctx, purchase.ID)
	require.NoError(t, err)

	acct, _ := f.store.Account(ctx, "alice")
	require.NotNil(t, acct.VipExpiresAt)
	// 10 remaining days + 30 purchased, not 30 from now.
	assert.Equal(t, current.AddDate(0, 0, 30), *acct.VipExpiresAt)
	assert.Equal(t, models.VipPro, acct.VipPackage)
}

func TestApproveAfterExpiryStartsFromNow(t *testing.T) {
	f := newFixture(t)
	u := f.addUser("alice", 0)
	u.VipPackage = models.VipStarter
	expired := f.now.AddDate(0, 0, -5)
	u.VipExpiresAt = &expired
	f.addPackage("pro", models.VipPro, 49.90, 30)
	ctx := context.Background()

	purchase, err := f.svc.InitiatePurchase(ctx, "alice", "pro", models.PaymentBankTransfer)
	require.NoError(t, err)
	_, err = f.svc.ApprovePurchase(ctx, purchase.ID)
	require.NoError(t, err)

	acct, _ := f.store.Account(ctx, "alice")
	assert.Equal(t, f.now.AddDate(0, 0, 30), *acct.VipExpiresAt)
}

func TestRejectLeavesVipUntouched(t *testing.T) {
	f := newFixture(t)
	f.addUser("alice", 0)
	f.addPackage("pro", models.VipPro, 49.90, 30)
	ctx := context.Background()

	purchase, err := f.svc.InitiatePurchase(ctx, "alice", "pro", models.PaymentBankTransfer)
	require.NoError(t, err)

	rejected, err := f.svc.RejectPurchase(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseRejected, rejected.Status)

	acct, _ := f.store.Account(ctx, "alice")
	assert.Equal(t, models.VipTier(""), acct.VipPackage)
	assert.Nil(t, acct.VipExpiresAt)
	assert.Equal(t, models.RoleUser, acct.Role)
}

func TestInitiatePurchaseInactivePackage(t *testing.T) {
	f := newFixture(t)
	f.addUser("alice", 0)
	pkg := f.addPackage("old", models.VipStarter, 9.90, 30)
	pkg.IsActive = false

	_, err := f.svc.InitiatePurchase(context.Background(), "alice", "old", models.PaymentBankTransfer)
	require.ErrorIs(t, err, ErrPackageInactive)
}

// --- admin overrides ---

func TestAdminSetCredits(t *testing.T) {
	f := newFixture(t)
	f.addUser("alice", 5)
	ctx := context.Background()

	require.NoError(t, f.svc.AdminSetCredits(ctx, "alice", 500))
	acct, _ := f.store.Account(ctx, "alice")
	assert.Equal(t, 500, acct.Credits)

	err := f.svc.AdminSetCredits(ctx, "alice", -1)
	require.ErrorIs(t, err, ErrNegativeCredits)
	acct, _ = f.store.Account(ctx, "alice")
	assert.Equal(t, 500, acct.Credits)
}
