package dto

import (
	"trading-wallet/internal/core/domain"

	"github.com/shopspring/decimal"
)

// Monetary amounts cross the API as decimals in major units and are
// converted to int64 minor units at this boundary. The core never sees
// a decimal.

// DepositRequest is the request body for crediting a wallet.
type DepositRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Source      string          `json:"source" binding:"omitempty,max=100"`
	ReferenceID string          `json:"reference_id" binding:"omitempty,max=100,safe_id"`
}

// WithdrawRequest is the request body for debiting a wallet.
type WithdrawRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	ReferenceID string          `json:"reference_id" binding:"omitempty,max=100,safe_id"`
}

// AdjustRequest is the request body for an administrative correction.
// The reference ID is mandatory so admin actions stay replayable.
type AdjustRequest struct {
	UserID      string          `json:"user_id" binding:"required,uuid"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Type        string          `json:"type" binding:"required,oneof=DEPOSIT WITHDRAW ADJUST"`
	Description string          `json:"description" binding:"omitempty,max=255"`
	ReferenceID string          `json:"reference_id" binding:"required,max=100,safe_id"`
}

// BankDetailsRequest is the request body for registering the payout
// destination.
type BankDetailsRequest struct {
	BankName      string `json:"bank_name" binding:"required,min=1,max=128"`
	AccountNumber string `json:"account_number" binding:"required,min=4,max=64,safe_id"`
	IFSCCode      string `json:"ifsc_code" binding:"omitempty,max=16,safe_id"`
	IBAN          string `json:"iban" binding:"omitempty,max=34,safe_id"`
	BIC           string `json:"bic" binding:"omitempty,max=11,safe_id"`
}

// TradeRequest is the request body for forwarding an order to the
// trade executor.
type TradeRequest struct {
	Symbol         string `json:"symbol" binding:"required,max=32"`
	Side           string `json:"side" binding:"required,oneof=BUY SELL"`
	Qty            string `json:"qty" binding:"required,max=32"`
	ReferenceID    string `json:"reference_id" binding:"required,max=100,safe_id"`
	ExpectedPrice  string `json:"expected_price" binding:"omitempty,max=32"`
	MaxSlippageBps int    `json:"max_slippage_bps" binding:"omitempty,gte=0,lte=10000"`
	Fee            string `json:"fee" binding:"omitempty,max=32"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// MutationResponse is the response for a successful balance mutation.
type MutationResponse struct {
	Message string          `json:"message"`
	Balance decimal.Decimal `json:"balance"`
}

// TransactionResponse is one ledger entry in a listing.
type TransactionResponse struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Description  string          `json:"description"`
	ReferenceID  string          `json:"reference_id"`
	CreatedAt    string          `json:"created_at"`
}

// BankDetailsResponse is the response for a bank-details query.
type BankDetailsResponse struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	IFSCCode      string `json:"ifsc_code,omitempty"`
	IBAN          string `json:"iban,omitempty"`
	BIC           string `json:"bic,omitempty"`
	UpdatedAt     string `json:"updated_at"`
}

// FillResponse is one trade fill in a listing.
type FillResponse struct {
	FillID      int64  `json:"fill_id"`
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	Qty         string `json:"qty"`
	Price       string `json:"price"`
	ReferenceID string `json:"reference_id"`
	ExecutedAt  string `json:"executed_at"`
}

// NewTransactionResponse maps a ledger entry to its API shape.
func NewTransactionResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:           t.ID.String(),
		Type:         string(t.Type),
		Amount:       MinorToDecimal(t.Amount),
		BalanceAfter: MinorToDecimal(t.BalanceAfter),
		Description:  t.Description,
		ReferenceID:  t.ReferenceID,
		CreatedAt:    t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// NewFillResponse maps an executor fill to its API shape.
func NewFillResponse(f domain.TradeFill) FillResponse {
	return FillResponse{
		FillID:      f.FillID,
		Symbol:      f.Symbol,
		Side:        f.Side,
		Qty:         f.Qty,
		Price:       f.Price,
		ReferenceID: f.ReferenceID,
		ExecutedAt:  f.ExecutedAt,
	}
}
