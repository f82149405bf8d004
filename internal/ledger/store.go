package ledger

import (
	"context"
	"time"

	"creatorboosta/internal/models"
)

// Queries is the read-only surface shared by the store and its
// transactions. Missing rows come back as the ledger's sentinel errors.
type Queries interface {
	Account(ctx context.Context, id string) (*models.User, error)
	SocialAccount(ctx context.Context, id string) (*models.SocialAccount, error)
	// CountGrants counts grants for one account and reason created at
	// or after since. A zero since counts the whole log.
	CountGrants(ctx context.Context, userID string, reason models.GrantReason, since time.Time) (int, error)
	Package(ctx context.Context, id string) (*models.VipPackage, error)
	Purchase(ctx context.Context, id string) (*models.VipPurchase, error)
}

// Tx is the mutation surface available inside a store transaction.
// Every balance-touching operation must go through here so the
// precondition check and the write commit or fail together.
type Tx interface {
	Queries

	// AccountForUpdate loads the account and serializes concurrent
	// mutations against it until the transaction ends.
	AccountForUpdate(ctx context.Context, id string) (*models.User, error)
	SocialAccountForUpdate(ctx context.Context, id string) (*models.SocialAccount, error)
	PurchaseForUpdate(ctx context.Context, id string) (*models.VipPurchase, error)

	AddCredits(ctx context.Context, userID string, delta int) error
	SetCredits(ctx context.Context, userID string, credits int) error
	InsertGrant(ctx context.Context, grant *models.CreditGrant) error
	SetFollowingCreator(ctx context.Context, userID string) error

	InsertBoost(ctx context.Context, boost *models.Boost) error
	// ApplyBoost bumps boost_count and moves the featured window to
	// expiresAt. The caller is responsible for never shortening it.
	ApplyBoost(ctx context.Context, socialAccountID string, expiresAt time.Time) error

	InsertPurchase(ctx context.Context, purchase *models.VipPurchase) error
	ResolvePurchase(ctx context.Context, id string, status models.PurchaseStatus, at time.Time) error
	// SetVip stores the package tier and expiry and promotes a plain
	// user to the vip role.
	SetVip(ctx context.Context, userID string, tier models.VipTier, expiresAt time.Time) error
}

// Store is the persistence boundary of the ledger.
type Store interface {
	Queries

	// InTx runs fn inside a single transaction; if fn returns an error
	// nothing it did is kept.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// ListDiscoverable returns social accounts for the discovery feed:
	// accounts featured as of asOf strictly before non-featured ones,
	// then by lifetime boost count and recency.
	ListDiscoverable(ctx context.Context, asOf time.Time, skip, limit int) ([]models.SocialAccount, error)
}
