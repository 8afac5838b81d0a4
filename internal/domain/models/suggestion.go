package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Suggestion is a dip-buy limit order proposal handed to the notification and execution sinks.
type Suggestion struct {
	AssetID      string          `json:"asset_id"`
	Symbol       string          `json:"symbol"`
	Quote        Quote           `json:"quote"`
	LimitPrice   decimal.Decimal `json:"limit_price"`
	TimeToTarget TimeEstimate    `json:"time_to_target"`
}

// Order is what the trade-execution sink receives for a suggestion.
// Notional is spent at market rate; LimitPrice is informational.
type Order struct {
	AssetID    string          `json:"asset_id"`
	Symbol     string          `json:"symbol"`
	LimitPrice decimal.Decimal `json:"limit_price"`
	Notional   decimal.Decimal `json:"notional"`
}

// Execution is the sink's report for an accepted order.
type Execution struct {
	OrderID  string          `json:"order_id"`
	Symbol   string          `json:"symbol"`
	Status   string          `json:"status"`
	Notional decimal.Decimal `json:"notional"`
	Quantity decimal.Decimal `json:"quantity"`
	At       time.Time       `json:"at"`
}
