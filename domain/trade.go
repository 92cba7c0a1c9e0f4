package domain

import "github.com/shopspring/decimal"

// Trade is an execution record assembled by the order service when two
// orders match. The buy/sell order ids are plain references, a trade stays
// valid after either order record is gone.
type Trade struct {
	TradeID     string          `json:"tradeId"`
	BuyOrderID  string          `json:"buyOrderId"`
	SellOrderID string          `json:"sellOrderId"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Timestamp   int64           `json:"timestamp"`
}
