package postgres

import (
	"context"
	"errors"
	"fmt"

	"trading-wallet/internal/core/domain"
	"trading-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint
// violation, raised when a (user_id, reference_id) pair is replayed.
const uniqueViolation = "23505"

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a ledger entry within a database transaction. The
// unique index on (user_id, reference_id) is the idempotency mechanism:
// a duplicate insert aborts the surrounding transaction and surfaces as
// ports.ErrDuplicateReference.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO wallet_transactions (id, user_id, type, amount, balance_after, description, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.UserID, t.Type, t.Amount,
		t.BalanceAfter, t.Description, t.ReferenceID, t.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert transaction %s: %w", t.ReferenceID, ports.ErrDuplicateReference)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByReference fetches a ledger entry by user ID and reference ID.
func (r *TransactionRepo) GetByReference(ctx context.Context, userID uuid.UUID, referenceID string) (*domain.Transaction, error) {
	query := `SELECT id, user_id, type, amount, balance_after, description, reference_id, created_at
		FROM wallet_transactions WHERE user_id = $1 AND reference_id = $2`

	t := &domain.Transaction{}
	err := r.pool.QueryRow(ctx, query, userID, referenceID).Scan(
		&t.ID, &t.UserID, &t.Type, &t.Amount,
		&t.BalanceAfter, &t.Description, &t.ReferenceID, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by reference: %w", err)
	}
	return t, nil
}

// List fetches a user's ledger entries, newest first.
func (r *TransactionRepo) List(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Transaction, error) {
	query := `SELECT id, user_id, type, amount, balance_after, description, reference_id, created_at
		FROM wallet_transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.UserID, &t.Type, &t.Amount,
			&t.BalanceAfter, &t.Description, &t.ReferenceID, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

// SumAmounts returns the sum of all transaction deltas for a user.
// The result must always equal the account's balance column.
func (r *TransactionRepo) SumAmounts(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions WHERE user_id = $1`

	var sum int64
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum transaction amounts: %w", err)
	}
	return sum, nil
}
