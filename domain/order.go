package domain

import "github.com/shopspring/decimal"

type Side string

const (
	SideBuy  = Side("BUY")
	SideSell = Side("SELL")
)

// ParseSide returns the side matching value, false when value is neither
// BUY nor SELL.
func ParseSide(value string) (Side, bool) {
	side := Side(value)
	if side == SideBuy || side == SideSell {
		return side, true
	}

	return "", false
}

type Order struct {
	OrderID   string          `json:"orderId"`
	Type      Side            `json:"type"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// MoneyLabel formats a price the way the dashboard displays it: a dollar
// sign and exactly two decimals.
func MoneyLabel(price decimal.Decimal) string {
	return "$" + price.StringFixed(2)
}
