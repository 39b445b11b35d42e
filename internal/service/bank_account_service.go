package service

import (
	"context"
	"fmt"
	"time"

	"trading-wallet/internal/core/domain"
	"trading-wallet/internal/core/ports"
	"trading-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BankAccountServiceImpl implements ports.BankAccountService.
// Each user holds at most one withdrawal destination; saving replaces
// any prior registration.
type BankAccountServiceImpl struct {
	bankRepo ports.WithdrawalAccountRepository
	log      zerolog.Logger
}

// NewBankAccountService creates a new BankAccountServiceImpl.
func NewBankAccountService(bankRepo ports.WithdrawalAccountRepository, log zerolog.Logger) *BankAccountServiceImpl {
	return &BankAccountServiceImpl{
		bankRepo: bankRepo,
		log:      log,
	}
}

// Get returns the user's withdrawal destination.
func (s *BankAccountServiceImpl) Get(ctx context.Context, userID uuid.UUID) (*domain.WithdrawalAccount, error) {
	account, err := s.bankRepo.Get(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get bank account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrBankAccountNotFound()
	}
	return account, nil
}

// Save registers or replaces the user's withdrawal destination.
func (s *BankAccountServiceImpl) Save(ctx context.Context, req ports.SaveBankAccountRequest) error {
	if req.BankName == "" || req.AccountNumber == "" {
		return apperror.Validation("bank_name and account_number are required")
	}

	account := &domain.WithdrawalAccount{
		UserID:        req.UserID,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		IFSCCode:      req.IFSCCode,
		IBAN:          req.IBAN,
		BIC:           req.BIC,
		UpdatedAt:     time.Now().UTC(),
	}

	if err := s.bankRepo.Upsert(ctx, account); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("save bank account: %w", err))
	}

	s.log.Info().
		Str("user_id", req.UserID.String()).
		Str("bank_name", req.BankName).
		Msg("withdrawal bank account saved")

	return nil
}
