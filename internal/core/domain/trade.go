package domain

// TradeSide is the direction of an order sent to the trade executor.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// TradeOrder is the payload forwarded to the external trade executor.
// Quantities and prices are passed through as decimal strings; this
// service does not interpret them beyond basic validation.
type TradeOrder struct {
	Symbol         string    `json:"symbol"`
	Side           TradeSide `json:"side"`
	Qty            string    `json:"qty"`
	ReferenceID    string    `json:"reference_id"`
	ExpectedPrice  string    `json:"expected_price,omitempty"`
	MaxSlippageBps int       `json:"max_slippage_bps,omitempty"`
	Fee            string    `json:"fee,omitempty"`
}

// TradeFill is an execution record returned by the trade executor.
type TradeFill struct {
	FillID      int64  `json:"fill_id"`
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	Qty         string `json:"qty"`
	Price       string `json:"price"`
	ReferenceID string `json:"reference_id"`
	ExecutedAt  string `json:"executed_at"`
}
