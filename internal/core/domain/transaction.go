package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the kind of balance movement.
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "DEPOSIT"
	TransactionTypeWithdraw TransactionType = "WITHDRAW"
	TransactionTypeAdjust   TransactionType = "ADJUST"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdraw, TransactionTypeAdjust:
		return true
	}
	return false
}

// Transaction is an immutable ledger entry. Amount is the signed delta
// applied to the account balance (positive for credits, negative for
// debits) and BalanceAfter snapshots the balance the mutation produced.
// The (UserID, ReferenceID) pair is unique across the ledger; a
// duplicate insert is how idempotent replays are detected.
type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Type         TransactionType `json:"type"`
	Amount       int64           `json:"amount"` // signed delta, minor units
	BalanceAfter int64           `json:"balance_after"`
	Description  string          `json:"description"`
	ReferenceID  string          `json:"reference_id"`
	CreatedAt    time.Time       `json:"created_at"`
}

// BuildWalletIdempotencyKey constructs the cache key for an operation's
// idempotency fast path.
func BuildWalletIdempotencyKey(userID uuid.UUID, referenceID string) string {
	return userID.String() + ":" + referenceID
}
