package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"trading-wallet/internal/core/domain"
	"trading-wallet/internal/core/ports"
	"trading-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const idempotencyTTL = 24 * time.Hour

// Transaction listing bounds.
const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// WalletServiceImpl implements ports.WalletService.
//
// Every balance mutation runs inside a database transaction holding a
// row lock on the account: BEGIN, SELECT FOR UPDATE, validate, UPDATE,
// INSERT ledger entry, COMMIT. The ledger's (user_id, reference_id)
// uniqueness constraint makes mutations idempotent; a replayed request
// gets the original outcome, not a second mutation.
type WalletServiceImpl struct {
	accountRepo ports.AccountRepository
	txRepo      ports.TransactionRepository
	bankRepo    ports.WithdrawalAccountRepository
	idempCache  ports.IdempotencyCache
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	accountRepo ports.AccountRepository,
	txRepo ports.TransactionRepository,
	bankRepo ports.WithdrawalAccountRepository,
	idempCache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		bankRepo:    bankRepo,
		idempCache:  idempCache,
		transactor:  transactor,
		log:         log,
	}
}

// cachedMutation is the Redis idempotency payload for a completed
// balance mutation.
type cachedMutation struct {
	Type         domain.TransactionType `json:"type"`
	BalanceAfter int64                  `json:"balance_after"`
}

// GetBalance returns the user's current balance in minor units.
func (s *WalletServiceImpl) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return 0, apperror.ErrDatabaseError(fmt.Errorf("get balance: %w", err))
	}
	if account == nil {
		return 0, apperror.ErrWalletNotFound()
	}
	return account.Balance, nil
}

// ListTransactions returns the user's ledger entries, newest first.
// The limit is clamped to [1, 200]; zero or negative means the default.
func (s *WalletServiceImpl) ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	txns, err := s.txRepo.List(ctx, userID, limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// Deposit credits the wallet, creating the account on first use.
// Returns the balance after the credit.
func (s *WalletServiceImpl) Deposit(ctx context.Context, req ports.DepositRequest) (int64, error) {
	if req.Amount <= 0 {
		return 0, apperror.ErrInvalidAmount("Deposit amount must be positive")
	}

	refID := req.ReferenceID
	replayable := refID != ""
	if !replayable {
		refID = uuid.New().String()
	}

	idempKey := domain.BuildWalletIdempotencyKey(req.UserID, refID)
	if replayable {
		if balance, ok := s.cachedResult(ctx, idempKey); ok {
			return balance, nil
		}
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// First deposit creates the account implicitly.
	if err := s.accountRepo.EnsureExists(ctx, dbTx, req.UserID); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("ensure account: %w", err))
	}

	account, err := s.accountRepo.GetByUserIDForUpdate(ctx, dbTx, req.UserID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if account == nil {
		return 0, apperror.ErrWalletNotFound()
	}

	newBalance := account.Balance + req.Amount

	description := req.Source
	if description == "" {
		description = "deposit"
	}

	txn := &domain.Transaction{
		ID:           uuid.New(),
		UserID:       req.UserID,
		Type:         domain.TransactionTypeDeposit,
		Amount:       req.Amount,
		BalanceAfter: newBalance,
		Description:  description,
		ReferenceID:  refID,
		CreatedAt:    time.Now().UTC(),
	}

	balance, err := s.commitMutation(ctx, dbTx, req.UserID, newBalance, txn, idempKey)
	if err != nil {
		return 0, err
	}

	s.log.Info().
		Str("user_id", req.UserID.String()).
		Int64("amount", req.Amount).
		Int64("balance", balance).
		Str("reference_id", refID).
		Msg("deposit processed")

	return balance, nil
}

// Withdraw debits the wallet. The user must have an account, a
// registered withdrawal destination, and sufficient funds.
// Returns the balance after the debit.
func (s *WalletServiceImpl) Withdraw(ctx context.Context, req ports.WithdrawRequest) (int64, error) {
	if req.Amount <= 0 {
		return 0, apperror.ErrInvalidAmount("Withdrawal amount must be positive")
	}

	refID := req.ReferenceID
	replayable := refID != ""
	if !replayable {
		refID = uuid.New().String()
	}

	// Replay check runs before the destination check: a replayed
	// withdrawal must return its original outcome even if the user has
	// since removed their bank details.
	idempKey := domain.BuildWalletIdempotencyKey(req.UserID, refID)
	if replayable {
		if balance, ok := s.cachedResult(ctx, idempKey); ok {
			return balance, nil
		}
	}

	dest, err := s.bankRepo.Get(ctx, req.UserID)
	if err != nil {
		return 0, apperror.ErrDatabaseError(fmt.Errorf("get withdrawal account: %w", err))
	}
	if dest == nil {
		if balance, ok := s.replayIfProcessed(ctx, req.UserID, refID, replayable); ok {
			return balance, nil
		}
		return 0, apperror.ErrNoWithdrawalAccount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Withdrawals never create accounts.
	account, err := s.accountRepo.GetByUserIDForUpdate(ctx, dbTx, req.UserID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if account == nil {
		if balance, ok := s.replayIfProcessed(ctx, req.UserID, refID, replayable); ok {
			return balance, nil
		}
		return 0, apperror.ErrWalletNotFound()
	}

	if account.Balance < req.Amount {
		// The balance check must not mask a completed withdrawal: the
		// original execution of this reference may itself be what
		// drained the funds.
		if balance, ok := s.replayIfProcessed(ctx, req.UserID, refID, replayable); ok {
			return balance, nil
		}
		return 0, apperror.ErrInsufficientBalance()
	}

	newBalance := account.Balance - req.Amount

	txn := &domain.Transaction{
		ID:           uuid.New(),
		UserID:       req.UserID,
		Type:         domain.TransactionTypeWithdraw,
		Amount:       -req.Amount,
		BalanceAfter: newBalance,
		Description:  fmt.Sprintf("withdrawal to %s", dest.BankName),
		ReferenceID:  refID,
		CreatedAt:    time.Now().UTC(),
	}

	balance, err := s.commitMutation(ctx, dbTx, req.UserID, newBalance, txn, idempKey)
	if err != nil {
		return 0, err
	}

	s.log.Info().
		Str("user_id", req.UserID.String()).
		Int64("amount", req.Amount).
		Int64("balance", balance).
		Str("reference_id", refID).
		Msg("withdrawal processed")

	return balance, nil
}

// Adjust applies an administrative balance correction. The reference ID
// is mandatory so every admin action is replayable and traceable.
// Returns the balance after the adjustment.
func (s *WalletServiceImpl) Adjust(ctx context.Context, req ports.AdjustRequest) (int64, error) {
	if req.ReferenceID == "" {
		return 0, apperror.Validation("reference_id is required for adjustments")
	}
	if !req.Type.Valid() {
		return 0, apperror.Validation(fmt.Sprintf("unknown transaction type %q", req.Type))
	}

	var delta int64
	switch req.Type {
	case domain.TransactionTypeAdjust:
		if req.Amount == 0 {
			return 0, apperror.ErrInvalidAmount("Adjustment delta must be non-zero")
		}
		delta = req.Amount
	case domain.TransactionTypeDeposit:
		if req.Amount <= 0 {
			return 0, apperror.ErrInvalidAmount("Deposit amount must be positive")
		}
		delta = req.Amount
	case domain.TransactionTypeWithdraw:
		if req.Amount <= 0 {
			return 0, apperror.ErrInvalidAmount("Withdrawal amount must be positive")
		}
		delta = -req.Amount
	}

	idempKey := domain.BuildWalletIdempotencyKey(req.UserID, req.ReferenceID)
	if balance, ok := s.cachedResult(ctx, idempKey); ok {
		return balance, nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Adjustments may seed accounts that have never deposited.
	if err := s.accountRepo.EnsureExists(ctx, dbTx, req.UserID); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("ensure account: %w", err))
	}

	account, err := s.accountRepo.GetByUserIDForUpdate(ctx, dbTx, req.UserID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if account == nil {
		return 0, apperror.ErrWalletNotFound()
	}

	newBalance := account.Balance + delta
	if newBalance < 0 {
		if balance, ok := s.replayIfProcessed(ctx, req.UserID, req.ReferenceID, true); ok {
			return balance, nil
		}
		return 0, apperror.ErrInsufficientBalance()
	}

	description := req.Description
	if description == "" {
		description = "manual adjustment"
	}

	txn := &domain.Transaction{
		ID:           uuid.New(),
		UserID:       req.UserID,
		Type:         req.Type,
		Amount:       delta,
		BalanceAfter: newBalance,
		Description:  description,
		ReferenceID:  req.ReferenceID,
		CreatedAt:    time.Now().UTC(),
	}

	balance, err := s.commitMutation(ctx, dbTx, req.UserID, newBalance, txn, idempKey)
	if err != nil {
		return 0, err
	}

	s.log.Info().
		Str("user_id", req.UserID.String()).
		Str("type", string(req.Type)).
		Int64("delta", delta).
		Int64("balance", balance).
		Str("reference_id", req.ReferenceID).
		Msg("adjustment processed")

	return balance, nil
}

// commitMutation persists the new balance and ledger entry, commits,
// and caches the outcome. A duplicate reference ID rolls back and
// replays the original outcome instead.
func (s *WalletServiceImpl) commitMutation(
	ctx context.Context,
	dbTx pgx.Tx,
	userID uuid.UUID,
	newBalance int64,
	txn *domain.Transaction,
	idempKey string,
) (int64, error) {
	if err := s.accountRepo.UpdateBalance(ctx, dbTx, userID, newBalance); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		if errors.Is(err, ports.ErrDuplicateReference) {
			// The reference was already consumed: discard this attempt
			// and return the original outcome.
			_ = dbTx.Rollback(ctx)
			return s.replayByReference(ctx, userID, txn.ReferenceID)
		}
		return 0, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.cacheResult(ctx, idempKey, txn.Type, txn.BalanceAfter)
	return txn.BalanceAfter, nil
}

// replayByReference returns the outcome recorded for a previously
// processed reference ID.
func (s *WalletServiceImpl) replayByReference(ctx context.Context, userID uuid.UUID, referenceID string) (int64, error) {
	prior, err := s.txRepo.GetByReference(ctx, userID, referenceID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("replay lookup: %w", err))
	}
	if prior == nil {
		// Constraint fired but the row is gone; cannot happen with an
		// append-only ledger.
		return 0, apperror.InternalError(fmt.Errorf("no prior transaction for reference %s", referenceID))
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("reference_id", referenceID).
		Msg("replayed idempotent mutation")

	return prior.BalanceAfter, nil
}

// replayIfProcessed reports whether a committed mutation already
// consumed the reference ID, returning its balance_after. Business
// rejections (insufficient funds, missing account or destination) call
// this before failing: when the Redis fast path misses, the current
// state may fail a check precisely because the original execution of
// this reference already changed it. Lookup errors fall through to the
// rejection rather than surfacing here.
func (s *WalletServiceImpl) replayIfProcessed(ctx context.Context, userID uuid.UUID, referenceID string, replayable bool) (int64, bool) {
	if !replayable {
		return 0, false
	}

	prior, err := s.txRepo.GetByReference(ctx, userID, referenceID)
	if err != nil {
		s.log.Warn().Err(err).
			Str("user_id", userID.String()).
			Str("reference_id", referenceID).
			Msg("replay lookup failed")
		return 0, false
	}
	if prior == nil {
		return 0, false
	}

	s.cacheResult(ctx, domain.BuildWalletIdempotencyKey(userID, referenceID), prior.Type, prior.BalanceAfter)

	s.log.Info().
		Str("user_id", userID.String()).
		Str("reference_id", referenceID).
		Msg("replayed idempotent mutation")

	return prior.BalanceAfter, true
}

// cachedResult checks the Redis fast path. Cache errors only log; the
// database constraint still guarantees idempotency.
func (s *WalletServiceImpl) cachedResult(ctx context.Context, idempKey string) (int64, bool) {
	cached, err := s.idempCache.Get(ctx, idempKey)
	if err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("redis idempotency check failed, falling through to DB")
		return 0, false
	}
	if cached == nil {
		return 0, false
	}

	var result cachedMutation
	if err := json.Unmarshal(cached, &result); err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("corrupt idempotency cache entry, falling through to DB")
		return 0, false
	}
	return result.BalanceAfter, true
}

func (s *WalletServiceImpl) cacheResult(ctx context.Context, idempKey string, txType domain.TransactionType, balanceAfter int64) {
	payload, err := json.Marshal(cachedMutation{Type: txType, BalanceAfter: balanceAfter})
	if err != nil {
		return
	}
	if err := s.idempCache.Set(ctx, idempKey, payload, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency in redis")
	}
}
