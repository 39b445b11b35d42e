package postgres

import (
	"context"
	"errors"
	"fmt"

	"trading-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BankAccountRepo implements ports.WithdrawalAccountRepository.
type BankAccountRepo struct {
	pool Pool
}

// NewBankAccountRepo creates a new BankAccountRepo.
func NewBankAccountRepo(pool Pool) *BankAccountRepo {
	return &BankAccountRepo{pool: pool}
}

// Get fetches a user's withdrawal destination.
// Returns nil, nil when the user has not registered one.
func (r *BankAccountRepo) Get(ctx context.Context, userID uuid.UUID) (*domain.WithdrawalAccount, error) {
	query := `SELECT user_id, bank_name, account_number, ifsc_code, iban, bic, updated_at
		FROM withdrawal_accounts WHERE user_id = $1`

	w := &domain.WithdrawalAccount{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&w.UserID, &w.BankName, &w.AccountNumber,
		&w.IFSCCode, &w.IBAN, &w.BIC, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get withdrawal account: %w", err)
	}
	return w, nil
}

// Upsert stores a user's withdrawal destination, replacing any prior
// registration. One destination per user.
func (r *BankAccountRepo) Upsert(ctx context.Context, w *domain.WithdrawalAccount) error {
	query := `INSERT INTO withdrawal_accounts (user_id, bank_name, account_number, ifsc_code, iban, bic, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			bank_name = EXCLUDED.bank_name,
			account_number = EXCLUDED.account_number,
			ifsc_code = EXCLUDED.ifsc_code,
			iban = EXCLUDED.iban,
			bic = EXCLUDED.bic,
			updated_at = NOW()`

	_, err := r.pool.Exec(ctx, query,
		w.UserID, w.BankName, w.AccountNumber, w.IFSCCode, w.IBAN, w.BIC,
	)
	if err != nil {
		return fmt.Errorf("upsert withdrawal account: %w", err)
	}
	return nil
}
