package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors. Handlers translate these into stable error kinds so
// the client can branch on them instead of parsing messages.
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrSocialNotFound   = errors.New("social account not found")
	ErrPackageNotFound  = errors.New("vip package not found")
	ErrPackageInactive  = errors.New("vip package is not active")
	ErrPurchaseNotFound = errors.New("vip purchase not found")

	ErrInvalidDuration   = errors.New("boost duration is not on the price schedule")
	ErrNegativeCredits   = errors.New("credit balance cannot be negative")
	ErrRateLimitExceeded = errors.New("daily limit reached")
	ErrAlreadyClaimed    = errors.New("reward already claimed")
	ErrUnknownReason     = errors.New("unknown grant reason")

	// ErrNotOwner is an authorization failure, logged with higher
	// severity than the policy errors above.
	ErrNotOwner = errors.New("social account does not belong to caller")

	// ErrAlreadyResolved signals a double-processed purchase.
	ErrAlreadyResolved = errors.New("purchase already resolved")
)

// InsufficientCreditsError carries the balance and the required cost so
// the client can render the shortfall and offer an "earn credits" path.
type InsufficientCreditsError struct {
	Balance  int
	Required int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: have %d, need %d", e.Balance, e.Required)
}
