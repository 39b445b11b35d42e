package handler

import (
	"trading-wallet/internal/adapter/http/dto"
	"trading-wallet/internal/core/domain"
	"trading-wallet/internal/core/ports"
	"trading-wallet/pkg/apperror"
	"trading-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles internal settlement endpoints. Routes using it
// sit behind InternalAuth, not user JWTs.
type AdminHandler struct {
	walletSvc ports.WalletService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(walletSvc ports.WalletService) *AdminHandler {
	return &AdminHandler{walletSvc: walletSvc}
}

// Adjust handles POST /api/v1/admin/wallet/adjust.
func (h *AdminHandler) Adjust(c *gin.Context) {
	var req dto.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.Error(c, apperror.Validation("user_id must be a valid UUID"))
		return
	}

	amount, ok := dto.AmountMinor(req.Amount)
	if !ok {
		response.Error(c, apperror.ErrInvalidAmount("Amount must have at most 2 decimal places"))
		return
	}

	balance, err := h.walletSvc.Adjust(c.Request.Context(), ports.AdjustRequest{
		UserID:      userID,
		Amount:      amount,
		Type:        domain.TransactionType(req.Type),
		Description: req.Description,
		ReferenceID: req.ReferenceID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.MutationResponse{
		Message: "Adjustment applied",
		Balance: dto.MinorToDecimal(balance),
	})
}
