package handler

import (
	"strconv"

	"trading-wallet/internal/adapter/http/dto"
	"trading-wallet/internal/adapter/http/middleware"
	"trading-wallet/internal/core/ports"
	"trading-wallet/pkg/apperror"
	"trading-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet ledger endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// GetBalance handles GET /api/v1/wallet/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, err := h.walletSvc.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{Balance: dto.MinorToDecimal(balance)})
}

// ListTransactions handles GET /api/v1/wallet/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		response.Error(c, apperror.Validation("limit must be an integer"))
		return
	}

	txns, err := h.walletSvc.ListTransactions(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, dto.NewTransactionResponse(txns[i]))
	}

	response.OK(c, items)
}

// Deposit handles POST /api/v1/wallet/deposit.
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, ok := dto.AmountMinor(req.Amount)
	if !ok {
		response.Error(c, apperror.ErrInvalidAmount("Amount must have at most 2 decimal places"))
		return
	}
	if amount <= 0 {
		response.Error(c, apperror.ErrInvalidAmount("Amount must be positive"))
		return
	}

	balance, err := h.walletSvc.Deposit(c.Request.Context(), ports.DepositRequest{
		UserID:      userID,
		Amount:      amount,
		Source:      req.Source,
		ReferenceID: req.ReferenceID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.MutationResponse{
		Message: "Deposit successful",
		Balance: dto.MinorToDecimal(balance),
	})
}

// Withdraw handles POST /api/v1/wallet/withdraw.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, ok := dto.AmountMinor(req.Amount)
	if !ok {
		response.Error(c, apperror.ErrInvalidAmount("Amount must have at most 2 decimal places"))
		return
	}
	if amount <= 0 {
		response.Error(c, apperror.ErrInvalidAmount("Amount must be positive"))
		return
	}

	balance, err := h.walletSvc.Withdraw(c.Request.Context(), ports.WithdrawRequest{
		UserID:      userID,
		Amount:      amount,
		ReferenceID: req.ReferenceID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.MutationResponse{
		Message: "Withdrawal successful",
		Balance: dto.MinorToDecimal(balance),
	})
}
