package usecase

import (
	"github.com/shopspring/decimal"
)

// PriceHistory remembers the last observed price per asset. It is owned by
// the Poller and is not safe for concurrent use.
type PriceHistory struct {
	prices map[string]decimal.Decimal
}

func NewPriceHistory() *PriceHistory {
	return &PriceHistory{prices: make(map[string]decimal.Decimal)}
}

// Delta returns the percentage change of current against the recorded price.
// It is nil on the first observation or when current is absent; a recorded
// price of exactly zero yields 0.
func (h *PriceHistory) Delta(id string, current decimal.NullDecimal) *float64 {
	prev, ok := h.prices[id]
	if !ok || !current.Valid {
		return nil
	}
	if prev.IsZero() {
		zero := 0.0
		return &zero
	}
	pct, _ := current.Decimal.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Float64()
	return &pct
}

// Update overwrites the recorded price for id.
func (h *PriceHistory) Update(id string, price decimal.Decimal) {
	h.prices[id] = price
}

// Last returns the recorded price for id.
func (h *PriceHistory) Last(id string) (decimal.Decimal, bool) {
	p, ok := h.prices[id]
	return p, ok
}

func (h *PriceHistory) Len() int { return len(h.prices) }
