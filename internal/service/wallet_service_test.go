package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"trading-wallet/internal/core/domain"
	"trading-wallet/internal/core/ports"
	"trading-wallet/internal/core/ports/mocks"
	"trading-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type walletTestDeps struct {
	svc         *WalletServiceImpl
	accountRepo *mocks.MockAccountRepository
	txRepo      *mocks.MockTransactionRepository
	bankRepo    *mocks.MockWithdrawalAccountRepository
	idempCache  *mocks.MockIdempotencyCache
	transactor  *mocks.MockDBTransactor
	ctrl        *gomock.Controller
}

func setupWalletService(t *testing.T) *walletTestDeps {
	ctrl := gomock.NewController(t)
	d := &walletTestDeps{
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		txRepo:      mocks.NewMockTransactionRepository(ctrl),
		bankRepo:    mocks.NewMockWithdrawalAccountRepository(ctrl),
		idempCache:  mocks.NewMockIdempotencyCache(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewWalletService(
		d.accountRepo, d.txRepo, d.bankRepo, d.idempCache,
		d.transactor, zerolog.Nop(),
	)
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func assertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, expectedCode, appErr.Code)
}

// ==================== GetBalance Tests ====================

func TestWalletService_GetBalance(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	d.accountRepo.EXPECT().GetByUserID(ctx, userID).Return(&domain.Account{
		UserID:  userID,
		Balance: 75000,
	}, nil)

	balance, err := d.svc.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(75000), balance)
}

func TestWalletService_GetBalance_NotFound(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	d.accountRepo.EXPECT().GetByUserID(ctx, userID).Return(nil, nil)

	_, err := d.svc.GetBalance(ctx, userID)
	require.Error(t, err)
	assertAppError(t, err, "WAL_001")
}

// ==================== ListTransactions Tests ====================

func TestWalletService_ListTransactions_DefaultLimit(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	d.txRepo.EXPECT().List(ctx, userID, 50).Return([]domain.Transaction{}, nil)

	_, err := d.svc.ListTransactions(ctx, userID, 0)
	assert.NoError(t, err)
}

func TestWalletService_ListTransactions_ClampsLimit(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	d.txRepo.EXPECT().List(ctx, userID, 200).Return([]domain.Transaction{}, nil)

	_, err := d.svc.ListTransactions(ctx, userID, 5000)
	assert.NoError(t, err)
}

// ==================== Deposit Tests ====================

func TestWalletService_Deposit_Success(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	req := ports.DepositRequest{
		UserID:      userID,
		Amount:      50000,
		Source:      "card",
		ReferenceID: "dep-001",
	}
	idempKey := domain.BuildWalletIdempotencyKey(userID, "dep-001")

	d.idempCache.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().EnsureExists(ctx, tx, userID).Return(nil)
	d.accountRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, userID).Return(&domain.Account{
		UserID:  userID,
		Balance: 10000,
	}, nil)
	d.accountRepo.EXPECT().UpdateBalance(ctx, tx, userID, int64(60000)).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			assert.Equal(t, domain.TransactionTypeDeposit, txn.Type)
			assert.Equal(t, int64(50000), txn.Amount)
			assert.Equal(t, int64(60000), txn.BalanceAfter)
			assert.Equal(t, "dep-001", txn.ReferenceID)
			assert.Equal(t, "card", txn.Description)
			return nil
		})
	d.idempCache.EXPECT().Set(ctx, idempKey, gomock.Any(), idempotencyTTL).Return(nil)

	balance, err := d.svc.Deposit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), balance)
}

func TestWalletService_Deposit_InvalidAmount(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	for _, amount := range []int64{0, -100} {
		_, err := d.svc.Deposit(context.Background(), ports.DepositRequest{
			UserID: uuid.New(),
			Amount: amount,
		})
		require.Error(t, err)
		assertAppError(t, err, "WAL_004")
	}
}

func TestWalletService_Deposit_CachedReplay(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	idempKey := domain.BuildWalletIdempotencyKey(userID, "dep-002")

	cached, _ := json.Marshal(cachedMutation{
		Type:         domain.TransactionTypeDeposit,
		BalanceAfter: 99000,
	})
	d.idempCache.EXPECT().Get(ctx, idempKey).Return(cached, nil)

	// No transactor, repo, or ledger calls: the cache short-circuits.
	balance, err := d.svc.Deposit(ctx, ports.DepositRequest{
		UserID:      userID,
		Amount:      50000,
		ReferenceID: "dep-002",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(99000), balance)
}

func TestWalletService_Deposit_DuplicateReference_Replays(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}
	idempKey := domain.BuildWalletIdempotencyKey(userID, "dep-003")

	d.idempCache.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().EnsureExists(ctx, tx, userID).Return(nil)
	d.accountRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, userID).Return(&domain.Account{
		UserID:  userID,
		Balance: 70000,
	}, nil)
	d.accountRepo.EXPECT().UpdateBalance(ctx, tx, userID, int64(120000)).Return(nil)
	// Ledger rejects the duplicate; the original outcome is replayed.
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(ports.ErrDuplicateReference)
	d.txRepo.EXPECT().GetByReference(ctx, userID, "dep-003").Return(&domain.Transaction{
		UserID:       userID,
		Type:         domain.TransactionTypeDeposit,
		Amount:       50000,
		BalanceAfter: 120000,
		ReferenceID:  "dep-003",
	}, nil)

	balance, err := d.svc.Deposit(ctx, ports.DepositRequest{
		UserID:      userID,
		Amount:      50000,
		ReferenceID: "dep-003",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(120000), balance)
}

func TestWalletService_Deposit_GeneratesReferenceWhenMissing(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	// No cache Get: a generated reference can never have a prior result.
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().EnsureExists(ctx, tx, userID).Return(nil)
	d.accountRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, userID).Return(&domain.Account{
		UserID:  userID,
		Balance: 0,
	}, nil)
	d.accountRepo.EXPECT().UpdateBalance(ctx, tx, userID, int64(25000)).Return(nil)

	var gotRef string
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			gotRef = txn.ReferenceID
			return nil
		})
	d.idempCache.EXPECT().Set(ctx, gomock.Any(), gomock.Any(), idempotencyTTL).Return(nil)

	balance, err := d.svc.Deposit(ctx, ports.DepositRequest{
		UserID: userID,
		Amount: 25000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25000), balance)

	_, parseErr := uuid.Parse(gotRef)
	assert.NoError(t, parseErr, "generated reference should be a UUID")
}

func TestWalletService_Deposit_CacheFailureFallsThrough(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}
	idempKey := domain.BuildWalletIdempotencyKey(userID, "dep-004")

	// Redis down on both sides; the mutation still succeeds.
	d.idempCache.EXPECT().Get(ctx, idempKey).Return(nil, errors.New("redis down"))
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().EnsureExists(ctx, tx, userID).Return(nil)
	d.accountRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, userID).Return(&domain.Account{
		UserID:  userID,
		Balance: 0,
	}, nil)
	d.accountRepo.EXPECT().UpdateBalance(ctx, tx, userID, int64(10000)).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.idempCache.EXPECT().Set(ctx, idempKey, gomock.Any(), idempotencyTTL).Return(errors.New("redis down"))

	balance, err := d.svc.Deposit(ctx, ports.DepositRequest{
		UserID:      userID,
		Amount:      10000,
		ReferenceID: "dep-004",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), balance)
}

// ==================== Withdraw Tests ====================

func TestWalletService_Withdraw_Success(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}
	idempKey := domain.BuildWalletIdempotencyKey(userID, "wd-001")

	d.idempCache.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.bankRepo.EXPECT().Get(ctx, userID).Return(&domain.WithdrawalAccount{
		UserID:   userID,
		BankName: "HDFC Bank",
	}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, userID).Return(&domain.Account{
		UserID:  userID,
		Balance: 100000,
	}, nil)
	d.accountRepo.EXPECT().UpdateBalance(ctx, tx, userID, int64(70000)).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			assert.Equal(t, domain.TransactionTypeWithdraw, txn.Type)
			assert.Equal(t, int64(-30000), txn.Amount)
			assert.Equal(t, int64(70000), txn.BalanceAfter)
			return nil
		})
	d.idempCache.EXPECT().Set(ctx, idempKey, gomock.Any(), idempotencyTTL).Return(nil)

	balance, err := d.svc.Withdraw(ctx, ports.WithdrawRequest{
		UserID:      userID,
		Amount:      30000,
		ReferenceID: "wd-001",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(70000), balance)
}

func TestWalletService_Withdraw_InsufficientBalance(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	d.idempCache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.bankRepo.EXPECT().Get(ctx, userID).Return(&domain.WithdrawalAccount{UserID: userID}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, userID).Return(&domain.Account{
		UserID:  userID,
		Balance: 20000,
	}, nil)
	// Fresh reference: nothing to replay, the rejection stands.
	d.txRepo.EXPECT().GetByReference(ctx, userID, "wd-002").Return(nil, nil)

	_, err := d.svc.Withdraw(ctx, ports.WithdrawRequest{
		UserID:      userID,
		Amount:      30000,
		ReferenceID: "wd-002",
	})
	require.Error(t, err)
	assertAppError(t, err, "WAL_002")
}

func TestWalletService_Withdraw_ExactBalance(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	d.idempCache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.bankRepo.EXPECT().Get(ctx, userID).Return(&domain.WithdrawalAccount{UserID: userID}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, userID).Return(&domain.Account{
		UserID:  userID,
		Balance: 30000,
	}, nil)
	d.accountRepo.EXPECT().UpdateBalance(ctx, tx, userID, int64(0)).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.idempCache.EXPECT().Set(ctx, gomock.Any(), gomock.Any(), idempotencyTTL).Return(nil)

	// Withdrawing the full balance leaves exactly zero, never an error.
	balance, err := d.svc.Withdraw(ctx, ports.WithdrawRequest{
		UserID:      userID,
		Amount:      30000,
		ReferenceID: "wd-003",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestWalletService_Withdraw_NoWithdrawalAccount(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	d.idempCache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.bankRepo.EXPECT().Get(ctx, userID).Return(nil, nil)
	d.txRepo.EXPECT().GetByReference(ctx, userID, "wd-004").Return(nil, nil)

	_, err := d.svc.Withdraw(ctx, ports.WithdrawRequest{
		UserID:      userID,
		Amount:      10000,
		ReferenceID: "wd-004",
	})
	require.Error(t, err)
	assertAppError(t, err, "WAL_003")
}

func TestWalletService_Withdraw_WalletNotFound(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	d.idempCache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.bankRepo.EXPECT().Get(ctx, userID).Return(&domain.WithdrawalAccount{UserID: userID}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	// Withdrawals never create accounts implicitly.
	d.accountRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, userID).Return(nil, nil)
	d.txRepo.EXPECT().GetByReference(ctx, userID, "wd-005").Return(nil, nil)

	_, err := d.svc.Withdraw(ctx, ports.WithdrawRequest{
		UserID:      userID,
		Amount:      10000,
		ReferenceID: "wd-005",
	})
	require.Error(t, err)
	assertAppError(t, err, "WAL_001")
}

func TestWalletService_Withdraw_ReplayBeforeDestinationCheck(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	idempKey := domain.BuildWalletIdempotencyKey(userID, "wd-006")

	cached, _ := json.Marshal(cachedMutation{
		Type:         domain.TransactionTypeWithdraw,
		BalanceAfter: 5000,
	})
	// Replay succeeds even though the bank account lookup would fail;
	// no bankRepo expectation is registered.
	d.idempCache.EXPECT().Get(ctx, idempKey).Return(cached, nil)

	balance, err := d.svc.Withdraw(ctx, ports.WithdrawRequest{
		UserID:      userID,
		Amount:      10000,
		ReferenceID: "wd-006",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), balance)
}

func TestWalletService_Withdraw_ReplayAfterBalanceDrained(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}
	idempKey := domain.BuildWalletIdempotencyKey(userID, "wd-007")

	// Cache miss: the original execution of wd-007 already drained the
	// balance to zero, so the balance check fails. The ledger row for
	// the reference must win over the rejection.
	d.idempCache.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.bankRepo.EXPECT().Get(ctx, userID).Return(&domain.WithdrawalAccount{UserID: userID}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, userID).Return(&domain.Account{
		UserID:  userID,
		Balance: 0,
	}, nil)
	d.txRepo.EXPECT().GetByReference(ctx, userID, "wd-007").Return(&domain.Transaction{
		UserID:       userID,
		Type:         domain.TransactionTypeWithdraw,
		Amount:       -10000,
		BalanceAfter: 0,
		ReferenceID:  "wd-007",
	}, nil)
	d.idempCache.EXPECT().Set(ctx, idempKey, gomock.Any(), idempotencyTTL).Return(nil)

	balance, err := d.svc.Withdraw(ctx, ports.WithdrawRequest{
		UserID:      userID,
		Amount:      10000,
		ReferenceID: "wd-007",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestWalletService_Adjust_ReplayAfterBalanceDrained(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}
	idempKey := domain.BuildWalletIdempotencyKey(userID, "adj-007")

	d.idempCache.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().EnsureExists(ctx, tx, userID).Return(nil)
	d.accountRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, userID).Return(&domain.Account{
		UserID:  userID,
		Balance: 0,
	}, nil)
	d.txRepo.EXPECT().GetByReference(ctx, userID, "adj-007").Return(&domain.Transaction{
		UserID:       userID,
		Type:         domain.TransactionTypeAdjust,
		Amount:       -6000,
		BalanceAfter: 0,
		ReferenceID:  "adj-007",
	}, nil)
	d.idempCache.EXPECT().Set(ctx, idempKey, gomock.Any(), idempotencyTTL).Return(nil)

	balance, err := d.svc.Adjust(ctx, ports.AdjustRequest{
		UserID:      userID,
		Amount:      -6000,
		Type:        domain.TransactionTypeAdjust,
		ReferenceID: "adj-007",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

// ==================== Adjust Tests ====================

func TestWalletService_Adjust_RequiresReference(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Adjust(context.Background(), ports.AdjustRequest{
		UserID: uuid.New(),
		Amount: 1000,
		Type:   domain.TransactionTypeAdjust,
	})
	require.Error(t, err)
	assertAppError(t, err, "VAL_001")
}

func TestWalletService_Adjust_RejectsUnknownType(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Adjust(context.Background(), ports.AdjustRequest{
		UserID:      uuid.New(),
		Amount:      1000,
		Type:        "TRANSFER",
		ReferenceID: "adj-001",
	})
	require.Error(t, err)
	assertAppError(t, err, "VAL_001")
}

func TestWalletService_Adjust_ZeroDelta(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Adjust(context.Background(), ports.AdjustRequest{
		UserID:      uuid.New(),
		Amount:      0,
		Type:        domain.TransactionTypeAdjust,
		ReferenceID: "adj-002",
	})
	require.Error(t, err)
	assertAppError(t, err, "WAL_004")
}

func TestWalletService_Adjust_SignedDelta(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	d.idempCache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().EnsureExists(ctx, tx, userID).Return(nil)
	d.accountRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, userID).Return(&domain.Account{
		UserID:  userID,
		Balance: 50000,
	}, nil)
	d.accountRepo.EXPECT().UpdateBalance(ctx, tx, userID, int64(42000)).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			assert.Equal(t, domain.TransactionTypeAdjust, txn.Type)
			assert.Equal(t, int64(-8000), txn.Amount)
			return nil
		})
	d.idempCache.EXPECT().Set(ctx, gomock.Any(), gomock.Any(), idempotencyTTL).Return(nil)

	balance, err := d.svc.Adjust(ctx, ports.AdjustRequest{
		UserID:      userID,
		Amount:      -8000,
		Type:        domain.TransactionTypeAdjust,
		Description: "chargeback correction",
		ReferenceID: "adj-003",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42000), balance)
}

func TestWalletService_Adjust_WithdrawTypeDebits(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	d.idempCache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().EnsureExists(ctx, tx, userID).Return(nil)
	d.accountRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, userID).Return(&domain.Account{
		UserID:  userID,
		Balance: 30000,
	}, nil)
	d.accountRepo.EXPECT().UpdateBalance(ctx, tx, userID, int64(20000)).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			assert.Equal(t, domain.TransactionTypeWithdraw, txn.Type)
			assert.Equal(t, int64(-10000), txn.Amount)
			return nil
		})
	d.idempCache.EXPECT().Set(ctx, gomock.Any(), gomock.Any(), idempotencyTTL).Return(nil)

	// A WITHDRAW-typed adjustment takes a positive amount and debits.
	balance, err := d.svc.Adjust(ctx, ports.AdjustRequest{
		UserID:      userID,
		Amount:      10000,
		Type:        domain.TransactionTypeWithdraw,
		ReferenceID: "adj-004",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20000), balance)
}

func TestWalletService_Adjust_NegativeResultRejected(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	d.idempCache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().EnsureExists(ctx, tx, userID).Return(nil)
	d.accountRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, userID).Return(&domain.Account{
		UserID:  userID,
		Balance: 5000,
	}, nil)
	d.txRepo.EXPECT().GetByReference(ctx, userID, "adj-005").Return(nil, nil)

	_, err := d.svc.Adjust(ctx, ports.AdjustRequest{
		UserID:      userID,
		Amount:      -6000,
		Type:        domain.TransactionTypeAdjust,
		ReferenceID: "adj-005",
	})
	require.Error(t, err)
	assertAppError(t, err, "WAL_002")
}

func TestWalletService_Adjust_NegativeWithdrawAmountRejected(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Adjust(context.Background(), ports.AdjustRequest{
		UserID:      uuid.New(),
		Amount:      -10000,
		Type:        domain.TransactionTypeWithdraw,
		ReferenceID: "adj-006",
	})
	require.Error(t, err)
	assertAppError(t, err, "WAL_004")
}
