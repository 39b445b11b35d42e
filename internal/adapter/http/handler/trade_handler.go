package handler

import (
	"net/http"
	"strconv"

	"trading-wallet/internal/adapter/http/dto"
	"trading-wallet/internal/adapter/http/middleware"
	"trading-wallet/internal/core/domain"
	"trading-wallet/internal/core/ports"
	"trading-wallet/pkg/apperror"
	"trading-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// TradeHandler proxies order execution to the external trade executor.
type TradeHandler struct {
	tradeSvc ports.TradeService
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(tradeSvc ports.TradeService) *TradeHandler {
	return &TradeHandler{tradeSvc: tradeSvc}
}

// Execute handles POST /api/v1/trades. The caller's bearer token is
// forwarded downstream so the executor authorizes the same user. The
// executor's response body is returned verbatim.
func (h *TradeHandler) Execute(c *gin.Context) {
	var req dto.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	raw, err := h.tradeSvc.Execute(c.Request.Context(), middleware.BearerToken(c), domain.TradeOrder{
		Symbol:         req.Symbol,
		Side:           domain.TradeSide(req.Side),
		Qty:            req.Qty,
		ReferenceID:    req.ReferenceID,
		ExpectedPrice:  req.ExpectedPrice,
		MaxSlippageBps: req.MaxSlippageBps,
		Fee:            req.Fee,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}

// ListFills handles GET /api/v1/trades/fills.
func (h *TradeHandler) ListFills(c *gin.Context) {
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

	var cursorID *int64
	if s := c.Query("cursor_id"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			response.Error(c, apperror.Validation("cursor_id must be an integer"))
			return
		}
		cursorID = &v
	}

	fills, err := h.tradeSvc.ListFills(c.Request.Context(), userID, limit, cursorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.FillResponse, 0, len(fills))
	for i := range fills {
		items = append(items, dto.NewFillResponse(fills[i]))
	}

	response.OK(c, items)
}

// GetFillByReference handles GET /api/v1/trades/fills/by-reference/:reference.
func (h *TradeHandler) GetFillByReference(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	fill, err := h.tradeSvc.GetFillByReference(c.Request.Context(), userID, c.Param("reference"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if fill == nil {
		response.Error(c, apperror.ErrFillNotFound())
		return
	}

	response.OK(c, dto.NewFillResponse(*fill))
}
