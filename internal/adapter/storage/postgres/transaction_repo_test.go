package postgres

import (
	"context"
	"testing"
	"time"

	"trading-wallet/internal/core/domain"
	"trading-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction(userID uuid.UUID) *domain.Transaction {
	return &domain.Transaction{
		ID:           uuid.New(),
		UserID:       userID,
		Type:         domain.TransactionTypeDeposit,
		Amount:       50000,
		BalanceAfter: 50000,
		Description:  "card deposit",
		ReferenceID:  "dep-001",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func txnColumns() []string {
	return []string{"id", "user_id", "type", "amount", "balance_after",
		"description", "reference_id", "created_at"}
}

func txnRow(t *domain.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows(txnColumns()).AddRow(
		t.ID, t.UserID, t.Type, t.Amount,
		t.BalanceAfter, t.Description, t.ReferenceID, t.CreatedAt,
	)
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallet_transactions").
		WithArgs(
			txn.ID, txn.UserID, txn.Type, txn.Amount,
			txn.BalanceAfter, txn.Description, txn.ReferenceID, txn.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), dbTx, txn)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Create_DuplicateReference(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallet_transactions").
		WithArgs(
			txn.ID, txn.UserID, txn.Type, txn.Amount,
			txn.BalanceAfter, txn.Description, txn.ReferenceID, txn.CreatedAt,
		).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "wallet_transactions_user_ref_key"})

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), dbTx, txn)
	assert.ErrorIs(t, err, ports.ErrDuplicateReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByReference(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM wallet_transactions WHERE user_id .+ AND reference_id").
		WithArgs(txn.UserID, txn.ReferenceID).
		WillReturnRows(txnRow(txn))

	result, err := repo.GetByReference(context.Background(), txn.UserID, txn.ReferenceID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, txn.ReferenceID, result.ReferenceID)
	assert.Equal(t, txn.BalanceAfter, result.BalanceAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByReference_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM wallet_transactions WHERE user_id .+ AND reference_id").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(txnColumns()))

	result, err := repo.GetByReference(context.Background(), uuid.New(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	userID := uuid.New()

	first := newTestTransaction(userID)
	second := newTestTransaction(userID)
	second.ReferenceID = "dep-002"
	second.Type = domain.TransactionTypeWithdraw
	second.Amount = -20000
	second.BalanceAfter = 30000

	rows := pgxmock.NewRows(txnColumns()).
		AddRow(second.ID, second.UserID, second.Type, second.Amount,
			second.BalanceAfter, second.Description, second.ReferenceID, second.CreatedAt).
		AddRow(first.ID, first.UserID, first.Type, first.Amount,
			first.BalanceAfter, first.Description, first.ReferenceID, first.CreatedAt)

	mock.ExpectQuery("SELECT .+ FROM wallet_transactions WHERE user_id .+ ORDER BY created_at DESC LIMIT").
		WithArgs(userID, 50).
		WillReturnRows(rows)

	result, err := repo.List(context.Background(), userID, 50)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "dep-002", result[0].ReferenceID)
	assert.Equal(t, "dep-001", result[1].ReferenceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM wallet_transactions WHERE user_id .+ ORDER BY created_at DESC LIMIT").
		WithArgs(userID, 10).
		WillReturnRows(pgxmock.NewRows(txnColumns()))

	result, err := repo.List(context.Background(), userID, 10)
	assert.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_SumAmounts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(int64(30000)))

	sum, err := repo.SumAmounts(context.Background(), userID)
	assert.NoError(t, err)
	assert.Equal(t, int64(30000), sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}
