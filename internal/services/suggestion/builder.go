package suggestion

import (
	"CryptoPulse/internal/domain/models"
	"CryptoPulse/internal/domain/service"
	"CryptoPulse/internal/services/projection"

	"github.com/shopspring/decimal"
)

// LimitFactor is the fixed 2% discount applied to the current price.
var LimitFactor = decimal.RequireFromString("0.98")

// Builder implements service.SuggestionBuilder.
type Builder struct{}

var _ service.SuggestionBuilder = Builder{}

// NewBuilder returns a dip-buy suggestion builder.
func NewBuilder() Builder { return Builder{} }

// Build returns a suggestion only for the dip-buy signal on a quote with a price.
func (Builder) Build(q models.Quote, sig *models.Signal) *models.Suggestion {
	if sig == nil || !sig.IsDipBuy() || !q.HasPrice() {
		return nil
	}
	limit := LimitPrice(q.Price.Decimal)
	return &models.Suggestion{
		AssetID:      q.ID,
		Symbol:       q.Symbol,
		Quote:        q,
		LimitPrice:   limit,
		TimeToTarget: projection.TimeToTarget(q.Price, q.Change24h, limit),
	}
}

// LimitPrice returns price * 0.98.
func LimitPrice(price decimal.Decimal) decimal.Decimal {
	return price.Mul(LimitFactor)
}

// Order packages a suggestion for the trade-execution sink.
func Order(s models.Suggestion, notional decimal.Decimal) models.Order {
	return models.Order{
		AssetID:    s.AssetID,
		Symbol:     s.Symbol,
		LimitPrice: s.LimitPrice,
		Notional:   notional,
	}
}
