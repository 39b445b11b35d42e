package service

import (
	"context"
	"testing"

	"trading-wallet/internal/core/domain"
	"trading-wallet/internal/core/ports/mocks"
	"trading-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupTradeService(t *testing.T) (*TradeServiceImpl, *mocks.MockTradeGateway, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockTradeGateway(ctrl)
	svc := NewTradeService(gateway, zerolog.Nop())
	return svc, gateway, ctrl
}

func validOrder() domain.TradeOrder {
	return domain.TradeOrder{
		Symbol:      "BTC-USD",
		Side:        domain.TradeSideBuy,
		Qty:         "0.25",
		ReferenceID: "trd-001",
	}
}

func TestTradeService_Execute(t *testing.T) {
	svc, gateway, ctrl := setupTradeService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	order := validOrder()

	gateway.EXPECT().ExecuteUserTrade(ctx, "Bearer tok", order).
		Return([]byte(`{"status":"FILLED"}`), nil)

	result, err := svc.Execute(ctx, "Bearer tok", order)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"FILLED"}`, string(result))
}

func TestTradeService_Execute_Validation(t *testing.T) {
	svc, _, ctrl := setupTradeService(t)
	defer ctrl.Finish()

	tests := []struct {
		name   string
		mutate func(*domain.TradeOrder)
	}{
		{"missing symbol", func(o *domain.TradeOrder) { o.Symbol = "" }},
		{"missing qty", func(o *domain.TradeOrder) { o.Qty = "" }},
		{"bad side", func(o *domain.TradeOrder) { o.Side = "HOLD" }},
		{"missing reference", func(o *domain.TradeOrder) { o.ReferenceID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := validOrder()
			tt.mutate(&order)

			_, err := svc.Execute(context.Background(), "tok", order)
			require.Error(t, err)
			assertAppError(t, err, "VAL_001")
		})
	}
}

func TestTradeService_Execute_GatewayErrorPassesThrough(t *testing.T) {
	svc, gateway, ctrl := setupTradeService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	order := validOrder()

	gateway.EXPECT().ExecuteUserTrade(ctx, "tok", order).
		Return(nil, apperror.ErrTradeRejected("insufficient margin"))

	_, err := svc.Execute(ctx, "tok", order)
	require.Error(t, err)
	assertAppError(t, err, "TRD_002")
}

func TestTradeService_ListFills_ClampsLimit(t *testing.T) {
	svc, gateway, ctrl := setupTradeService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	gateway.EXPECT().ListFills(ctx, userID, 200, nil).Return([]domain.TradeFill{}, nil)

	_, err := svc.ListFills(ctx, userID, 0, nil)
	assert.NoError(t, err)
}

func TestTradeService_GetFillByReference_RequiresReference(t *testing.T) {
	svc, _, ctrl := setupTradeService(t)
	defer ctrl.Finish()

	_, err := svc.GetFillByReference(context.Background(), uuid.New(), "")
	require.Error(t, err)
	assertAppError(t, err, "VAL_001")
}

func TestTradeService_GetFillByReference(t *testing.T) {
	svc, gateway, ctrl := setupTradeService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	gateway.EXPECT().GetFillByReference(ctx, userID, "trd-001").Return(&domain.TradeFill{
		FillID:      9,
		ReferenceID: "trd-001",
	}, nil)

	fill, err := svc.GetFillByReference(ctx, userID, "trd-001")
	require.NoError(t, err)
	assert.Equal(t, int64(9), fill.FillID)
}
