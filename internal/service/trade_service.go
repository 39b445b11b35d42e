package service

import (
	"context"

	"trading-wallet/internal/core/domain"
	"trading-wallet/internal/core/ports"
	"trading-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TradeServiceImpl implements ports.TradeService as a thin proxy in
// front of the external trade executor. Order economics live entirely
// downstream; this service validates shape and forwards.
type TradeServiceImpl struct {
	gateway ports.TradeGateway
	log     zerolog.Logger
}

// NewTradeService creates a new TradeServiceImpl.
func NewTradeService(gateway ports.TradeGateway, log zerolog.Logger) *TradeServiceImpl {
	return &TradeServiceImpl{
		gateway: gateway,
		log:     log,
	}
}

// Execute forwards an order using the caller's bearer token.
func (s *TradeServiceImpl) Execute(ctx context.Context, bearerToken string, order domain.TradeOrder) ([]byte, error) {
	if order.Symbol == "" || order.Qty == "" {
		return nil, apperror.Validation("symbol and qty are required")
	}
	if order.Side != domain.TradeSideBuy && order.Side != domain.TradeSideSell {
		return nil, apperror.Validation("side must be BUY or SELL")
	}
	if order.ReferenceID == "" {
		return nil, apperror.Validation("reference_id is required")
	}

	result, err := s.gateway.ExecuteUserTrade(ctx, bearerToken, order)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("symbol", order.Symbol).
		Str("side", string(order.Side)).
		Str("reference_id", order.ReferenceID).
		Msg("trade forwarded to executor")

	return result, nil
}

// ListFills pages through a user's fills.
func (s *TradeServiceImpl) ListFills(ctx context.Context, userID uuid.UUID, limit int, cursorID *int64) ([]domain.TradeFill, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	return s.gateway.ListFills(ctx, userID, limit, cursorID)
}

// GetFillByReference looks up a single fill by reference ID.
func (s *TradeServiceImpl) GetFillByReference(ctx context.Context, userID uuid.UUID, referenceID string) (*domain.TradeFill, error) {
	if referenceID == "" {
		return nil, apperror.Validation("reference_id is required")
	}
	return s.gateway.GetFillByReference(ctx, userID, referenceID)
}
