package ports

import (
	"context"
	"errors"

	"trading-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrDuplicateReference is returned by TransactionRepository.Create when
// the (user_id, reference_id) uniqueness constraint rejects the insert.
// The wallet service resolves it by replaying the prior result; it never
// reaches a caller.
var ErrDuplicateReference = errors.New("duplicate reference id")

// AccountRepository defines persistence operations for wallet accounts.
// Methods accepting pgx.Tx run inside transaction blocks so the account
// row stays locked for the duration of a balance mutation.
type AccountRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
	// EnsureExists creates the account row with a zero balance if the
	// user has none yet. Safe to call repeatedly (ON CONFLICT DO NOTHING).
	EnsureExists(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, userID uuid.UUID, balance int64) error
}

// TransactionRepository defines persistence operations for the
// append-only transaction ledger.
type TransactionRepository interface {
	// Create inserts a ledger entry within a database transaction.
	// A duplicate (user_id, reference_id) yields ErrDuplicateReference.
	Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	GetByReference(ctx context.Context, userID uuid.UUID, referenceID string) (*domain.Transaction, error)
	// List returns entries for a user ordered by creation time descending.
	List(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Transaction, error)
	// SumAmounts returns the sum of all transaction deltas for a user.
	// Used by the ledger consistency check, never on the hot path.
	SumAmounts(ctx context.Context, userID uuid.UUID) (int64, error)
}

// WithdrawalAccountRepository defines persistence for the per-user
// payout destination. Upsert is a single atomic insert-or-replace.
type WithdrawalAccountRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.WithdrawalAccount, error)
	Upsert(ctx context.Context, account *domain.WithdrawalAccount) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
