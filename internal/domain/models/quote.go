package models

import "github.com/shopspring/decimal"

// Quote is one asset's market data as returned by the quote provider for a single tick.
// Optional fields that the provider omitted, nulled or malformed are absent.
type Quote struct {
	ID        string              `json:"id"`
	Symbol    string              `json:"symbol"`
	Name      string              `json:"name,omitempty"`
	Price     decimal.NullDecimal `json:"price"`
	Change24h *float64            `json:"change_24h"`
	Change7d  *float64            `json:"change_7d"`
	MarketCap decimal.NullDecimal `json:"market_cap"`
}

// HasPrice reports whether the quote carries a current price.
func (q Quote) HasPrice() bool { return q.Price.Valid }

// Float returns a pointer to v. Handy for building optional percentages.
func Float(v float64) *float64 { return &v }

// Price builds a present decimal price from a float.
func Price(v float64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(v), Valid: true}
}
