package ports

import (
	"context"
	"time"

	"trading-wallet/internal/core/domain"

	"github.com/google/uuid"
)

// IdempotencyCache is the Redis-layer idempotency fast path. It is
// best-effort: correctness is guaranteed by the ledger's uniqueness
// constraint, not by this cache.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// --- Service Ports (Business Logic) ---

// WalletService defines the wallet ledger core.
type WalletService interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Transaction, error)
	Deposit(ctx context.Context, req DepositRequest) (int64, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (int64, error)
	Adjust(ctx context.Context, req AdjustRequest) (int64, error)
}

// DepositRequest holds validated input for crediting a wallet.
// Amount is in minor units. ReferenceID is optional; when empty a
// fresh one is generated and the operation cannot be replayed.
type DepositRequest struct {
	UserID      uuid.UUID
	Amount      int64
	Source      string
	ReferenceID string
}

// WithdrawRequest holds validated input for debiting a wallet.
type WithdrawRequest struct {
	UserID      uuid.UUID
	Amount      int64
	ReferenceID string
}

// AdjustRequest holds validated input for an administrative balance
// correction. ReferenceID is mandatory: admin actions must always be
// idempotent and traceable.
type AdjustRequest struct {
	UserID      uuid.UUID
	Amount      int64 // positive for DEPOSIT/WITHDRAW types, signed delta for ADJUST
	Type        domain.TransactionType
	Description string
	ReferenceID string
}

// BankAccountService defines the withdrawal-destination registry.
type BankAccountService interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.WithdrawalAccount, error)
	Save(ctx context.Context, req SaveBankAccountRequest) error
}

// SaveBankAccountRequest holds validated input for configuring the
// payout destination. Most recent write wins.
type SaveBankAccountRequest struct {
	UserID        uuid.UUID
	BankName      string
	AccountNumber string
	IFSCCode      string
	IBAN          string
	BIC           string
}

// TradeGateway is the HTTP client port for the external trade executor.
type TradeGateway interface {
	// ExecuteUserTrade forwards an order on behalf of the caller,
	// re-using their bearer token for downstream authorization.
	ExecuteUserTrade(ctx context.Context, bearerToken string, order domain.TradeOrder) ([]byte, error)
	// ExecuteInternalTrade submits an order using the internal executor
	// key (settlement and admin flows).
	ExecuteInternalTrade(ctx context.Context, userID uuid.UUID, order domain.TradeOrder) ([]byte, error)
	GetFillByReference(ctx context.Context, userID uuid.UUID, referenceID string) (*domain.TradeFill, error)
	ListFills(ctx context.Context, userID uuid.UUID, limit int, cursorID *int64) ([]domain.TradeFill, error)
}

// TradeService proxies trade execution for authenticated users.
type TradeService interface {
	Execute(ctx context.Context, bearerToken string, order domain.TradeOrder) ([]byte, error)
	ListFills(ctx context.Context, userID uuid.UUID, limit int, cursorID *int64) ([]domain.TradeFill, error)
	GetFillByReference(ctx context.Context, userID uuid.UUID, referenceID string) (*domain.TradeFill, error)
}
