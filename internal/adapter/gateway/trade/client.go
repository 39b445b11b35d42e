// Package trade implements the HTTP client for the external trade
// executor. The wallet service never interprets order economics; it
// forwards orders and reads back fills.
package trade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trading-wallet/internal/core/domain"
	"trading-wallet/pkg/apperror"
	"trading-wallet/pkg/logger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const internalKeyHeader = "x-internal-key"

// Config holds the trade executor connection settings.
type Config struct {
	BaseURL     string
	InternalKey string
	Timeout     time.Duration
}

// Client implements ports.TradeGateway.
type Client struct {
	baseURL     string
	internalKey string
	http        *http.Client
	log         zerolog.Logger
}

// NewClient creates a trade executor client.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		internalKey: cfg.InternalKey,
		http:        &http.Client{Timeout: timeout},
		log:         logger.Component(log, "trade_gateway"),
	}
}

// orderPayload is the executor's wire format for order submission.
type orderPayload struct {
	UserID         string `json:"userId,omitempty"`
	Symbol         string `json:"symbol"`
	Side           string `json:"side"`
	Qty            string `json:"qty"`
	ReferenceID    string `json:"referenceId"`
	ExpectedPrice  string `json:"expectedPrice,omitempty"`
	MaxSlippageBps int    `json:"maxSlippageBps,omitempty"`
	Fee            string `json:"fee,omitempty"`
}

// fillPayload is the executor's wire format for a fill record.
type fillPayload struct {
	FillID      int64  `json:"fillId"`
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	Qty         string `json:"qty"`
	Price       string `json:"price"`
	ReferenceID string `json:"referenceId"`
	ExecutedAt  string `json:"executedAt"`
}

func (p fillPayload) toDomain() domain.TradeFill {
	return domain.TradeFill{
		FillID:      p.FillID,
		Symbol:      p.Symbol,
		Side:        p.Side,
		Qty:         p.Qty,
		Price:       p.Price,
		ReferenceID: p.ReferenceID,
		ExecutedAt:  p.ExecutedAt,
	}
}

func newOrderPayload(order domain.TradeOrder) orderPayload {
	return orderPayload{
		Symbol:         order.Symbol,
		Side:           string(order.Side),
		Qty:            order.Qty,
		ReferenceID:    order.ReferenceID,
		ExpectedPrice:  order.ExpectedPrice,
		MaxSlippageBps: order.MaxSlippageBps,
		Fee:            order.Fee,
	}
}

// ExecuteUserTrade forwards an order using the caller's bearer token so
// the executor applies the user's own authorization.
func (c *Client) ExecuteUserTrade(ctx context.Context, bearerToken string, order domain.TradeOrder) ([]byte, error) {
	auth := strings.TrimSpace(bearerToken)
	if !strings.HasPrefix(auth, "Bearer ") {
		auth = "Bearer " + auth
	}

	body, err := json.Marshal(newOrderPayload(order))
	if err != nil {
		return nil, fmt.Errorf("marshal trade order: %w", err)
	}

	return c.post(ctx, "/api/trade/execute", body, map[string]string{"Authorization": auth})
}

// ExecuteInternalTrade submits an order with the internal executor key
// on behalf of a user (settlement and admin flows).
func (c *Client) ExecuteInternalTrade(ctx context.Context, userID uuid.UUID, order domain.TradeOrder) ([]byte, error) {
	payload := newOrderPayload(order)
	payload.UserID = userID.String()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal trade order: %w", err)
	}

	return c.post(ctx, "/api/internal/trade/execute", body, map[string]string{internalKeyHeader: c.internalKey})
}

// GetFillByReference looks up a fill by its reference ID.
// Returns nil, nil if the executor has no fill for that reference.
func (c *Client) GetFillByReference(ctx context.Context, userID uuid.UUID, referenceID string) (*domain.TradeFill, error) {
	q := url.Values{}
	q.Set("userId", userID.String())

	path := "/api/internal/trade/fills/by-reference/" + url.PathEscape(referenceID)
	raw, status, err := c.get(ctx, path, q)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}

	var p fillPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, apperror.ErrTradeGateway(fmt.Errorf("decode fill response: %w", err))
	}
	fill := p.toDomain()
	return &fill, nil
}

// ListFills pages through a user's fills, newest first.
func (c *Client) ListFills(ctx context.Context, userID uuid.UUID, limit int, cursorID *int64) ([]domain.TradeFill, error) {
	q := url.Values{}
	q.Set("userId", userID.String())
	q.Set("limit", strconv.Itoa(limit))
	if cursorID != nil {
		q.Set("cursorId", strconv.FormatInt(*cursorID, 10))
	}

	raw, status, err := c.get(ctx, "/api/internal/trade/fills", q)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}

	var resp struct {
		Fills []fillPayload `json:"fills"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, apperror.ErrTradeGateway(fmt.Errorf("decode fills response: %w", err))
	}

	fills := make([]domain.TradeFill, 0, len(resp.Fills))
	for _, p := range resp.Fills {
		fills = append(fills, p.toDomain())
	}
	return fills, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build trade request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("path", path).Msg("Trade executor unreachable")
		return nil, apperror.ErrTradeGateway(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.ErrTradeGateway(fmt.Errorf("read trade response: %w", err))
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Executor rejected the order; surface its message verbatim.
		return nil, apperror.ErrTradeRejected(rejectionMessage(raw))
	default:
		c.log.Error().Int("status", resp.StatusCode).Str("path", path).Msg("Trade executor error")
		return nil, apperror.ErrTradeGateway(fmt.Errorf("executor returned status %d", resp.StatusCode))
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build trade request: %w", err)
	}
	req.Header.Set(internalKeyHeader, c.internalKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("path", path).Msg("Trade executor unreachable")
		return nil, 0, apperror.ErrTradeGateway(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, apperror.ErrTradeGateway(fmt.Errorf("read trade response: %w", err))
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		c.log.Error().Int("status", resp.StatusCode).Str("path", path).Msg("Trade executor error")
		return nil, resp.StatusCode, apperror.ErrTradeGateway(fmt.Errorf("executor returned status %d", resp.StatusCode))
	}
	return raw, resp.StatusCode, nil
}

// rejectionMessage extracts a human-readable error from an executor 4xx
// body, falling back to the raw body.
func rejectionMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	if len(raw) > 0 {
		return string(raw)
	}
	return "trade rejected"
}
