package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"creatorboosta/internal/ledger"
	"creatorboosta/internal/models"
)

// LedgerStore implements ledger.Store on PostgreSQL. Per-account
// serialization comes from SELECT ... FOR UPDATE on the users row
// inside a single transaction.
type LedgerStore struct {
	queries
	db *sqlx.DB
}

// NewLedgerStore wraps an open database handle.
func NewLedgerStore(db *sqlx.DB) *LedgerStore {
	return &LedgerStore{queries: queries{q: db}, db: db}
}

// InTx runs fn inside one transaction and rolls everything back if it
// returns an error.
func (s *LedgerStore) InTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&ledgerTx{queries: queries{q: tx}}); err != nil {
		return err
	}
	return tx.Commit()
}

// ListDiscoverable orders featured accounts (window covering asOf)
// strictly before non-featured ones, then by boost count and recency.
func (s *LedgerStore) ListDiscoverable(ctx context.Context, asOf time.Time, skip, limit int) ([]models.SocialAccount, error) {
	accounts := []models.SocialAccount{}
	query := `
		SELECT *, (boost_expires_at IS NOT NULL AND boost_expires_at > $1) AS is_featured
		FROM social_accounts
		ORDER BY (boost_expires_at IS NOT NULL AND boost_expires_at > $1) DESC,
		         boost_count DESC, created_at DESC
		OFFSET $2 LIMIT $3`
	if err := sqlx.SelectContext(ctx, s.q, &accounts, query, asOf, skip, limit); err != nil {
		return nil, err
	}
	return accounts, nil
}

// queries is the read surface shared by the store and its transactions.
type queries struct {
	q sqlx.ExtContext
}

func (r queries) Account(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, r.q, &user, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r queries) SocialAccount(ctx context.Context, id string) (*models.SocialAccount, error) {
	var account models.SocialAccount
	query := `SELECT *, (boost_expires_at IS NOT NULL AND boost_expires_at > now()) AS is_featured
	          FROM social_accounts WHERE id = $1`
	err := sqlx.GetContext(ctx, r.q, &account, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrSocialNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r queries) CountGrants(ctx context.Context, userID string, reason models.GrantReason, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM credit_grants WHERE user_id = $1 AND reason = $2 AND created_at >= $3`
	if err := sqlx.GetContext(ctx, r.q, &count, query, userID, reason, since); err != nil {
		return 0, err
	}
	return count, nil
}

func (r queries) Package(ctx context.Context, id string) (*models.VipPackage, error) {
	var pkg models.VipPackage
	err := sqlx.GetContext(ctx, r.q, &pkg, `SELECT * FROM vip_packages WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrPackageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r queries) Purchase(ctx context.Context, id string) (*models.VipPurchase, error) {
	var purchase models.VipPurchase
	err := sqlx.GetContext(ctx, r.q, &purchase, `SELECT * FROM vip_purchases WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrPurchaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// ledgerTx adds the mutation surface; it only ever wraps a *sqlx.Tx.
type ledgerTx struct {
	queries
}

func (t *ledgerTx) AccountForUpdate(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, t.q, &user, `SELECT * FROM users WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (t *ledgerTx) SocialAccountForUpdate(ctx context.Context, id string) (*models.SocialAccount, error) {
	var account models.SocialAccount
	query := `SELECT *, (boost_expires_at IS NOT NULL AND boost_expires_at > now()) AS is_featured
	          FROM social_accounts WHERE id = $1 FOR UPDATE`
	err := sqlx.GetContext(ctx, t.q, &account, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrSocialNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (t *ledgerTx) PurchaseForUpdate(ctx context.Context, id string) (*models.VipPurchase, error) {
	var purchase models.VipPurchase
	err := sqlx.GetContext(ctx, t.q, &purchase, `SELECT * FROM vip_purchases WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrPurchaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (t *ledgerTx) AddCredits(ctx context.Context, userID string, delta int) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE users SET credits = credits + $2, updated_at = now() WHERE id = $1`, userID, delta)
	if err != nil {
		return err
	}
	return oneRow(res, ledger.ErrAccountNotFound)
}

func (t *ledgerTx) SetCredits(ctx context.Context, userID string, credits int) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE users SET credits = $2, updated_at = now() WHERE id = $1`, userID, credits)
	if err != nil {
		return err
	}
	return oneRow(res, ledger.ErrAccountNotFound)
}

func (t *ledgerTx) InsertGrant(ctx context.Context, grant *models.CreditGrant) error {
	_, err := t.q.ExecContext(ctx,
		`INSERT INTO credit_grants (id, user_id, reason, amount, created_at) VALUES ($1, $2, $3, $4, $5)`,
		grant.ID, grant.UserID, grant.Reason, grant.Amount, grant.CreatedAt)
	return err
}

func (t *ledgerTx) SetFollowingCreator(ctx context.Context, userID string) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE users SET is_following_creator = TRUE, updated_at = now() WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	return oneRow(res, ledger.ErrAccountNotFound)
}

func (t *ledgerTx) InsertBoost(ctx context.Context, boost *models.Boost) error {
	_, err := t.q.ExecContext(ctx,
		`INSERT INTO boosts (id, user_id, social_account_id, credits_spent, duration_hours, started_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		boost.ID, boost.UserID, boost.SocialAccountID, boost.CreditsSpent,
		boost.DurationHours, boost.StartedAt, boost.ExpiresAt)
	return err
}

func (t *ledgerTx) ApplyBoost(ctx context.Context, socialAccountID string, expiresAt time.Time) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE social_accounts SET boost_count = boost_count + 1, boost_expires_at = $2 WHERE id = $1`,
		socialAccountID, expiresAt)
	if err != nil {
		return err
	}
	return oneRow(res, ledger.ErrSocialNotFound)
}

func (t *ledgerTx) InsertPurchase(ctx context.Context, purchase *models.VipPurchase) error {
	_, err := t.q.ExecContext(ctx,
		`INSERT INTO vip_purchases (id, user_id, package_id, amount, payment_method, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		purchase.ID, purchase.UserID, purchase.PackageID, purchase.Amount,
		purchase.PaymentMethod, purchase.Status, purchase.CreatedAt)
	return err
}

func (t *ledgerTx) ResolvePurchase(ctx context.Context, id string, status models.PurchaseStatus, at time.Time) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE vip_purchases SET status = $2, resolved_at = $3 WHERE id = $1 AND status = 'pending'`,
		id, status, at)
	if err != nil {
		return err
	}
	return oneRow(res, ledger.ErrAlreadyResolved)
}

func (t *ledgerTx) SetVip(ctx context.Context, userID string, tier models.VipTier, expiresAt time.Time) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE users SET vip_package = $2, vip_expires_at = $3,
		        role = CASE WHEN role = 'user' THEN 'vip' ELSE role END,
		        updated_at = now()
		 WHERE id = $1`,
		userID, tier, expiresAt)
	if err != nil {
		return err
	}
	return oneRow(res, ledger.ErrAccountNotFound)
}

func oneRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
