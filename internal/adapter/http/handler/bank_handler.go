package handler

import (
	"trading-wallet/internal/adapter/http/dto"
	"trading-wallet/internal/adapter/http/middleware"
	"trading-wallet/internal/core/ports"
	"trading-wallet/pkg/apperror"
	"trading-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// BankAccountHandler handles withdrawal-destination endpoints.
type BankAccountHandler struct {
	bankSvc ports.BankAccountService
}

// NewBankAccountHandler creates a new BankAccountHandler.
func NewBankAccountHandler(bankSvc ports.BankAccountService) *BankAccountHandler {
	return &BankAccountHandler{bankSvc: bankSvc}
}

// GetDetails handles GET /api/v1/wallet/bank-details.
func (h *BankAccountHandler) GetDetails(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	account, err := h.bankSvc.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BankDetailsResponse{
		BankName:      account.BankName,
		AccountNumber: account.AccountNumber,
		IFSCCode:      account.IFSCCode,
		IBAN:          account.IBAN,
		BIC:           account.BIC,
		UpdatedAt:     account.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
}

// SaveDetails handles PUT /api/v1/wallet/bank-details. The write
// replaces any previously registered destination.
func (h *BankAccountHandler) SaveDetails(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.BankDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	err := h.bankSvc.Save(c.Request.Context(), ports.SaveBankAccountRequest{
		UserID:        userID,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		IFSCCode:      req.IFSCCode,
		IBAN:          req.IBAN,
		BIC:           req.BIC,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "Bank details saved"})
}
