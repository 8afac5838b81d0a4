package service

import (
	"CryptoPulse/internal/domain/models"

	"github.com/shopspring/decimal"
)

// SignalClassifier maps change percentages to at most one signal.
type SignalClassifier interface {
	Classify(change24h, change7d *float64) *models.Signal
}

// SentimentClassifier maps change percentages to an informational sentiment.
type SentimentClassifier interface {
	Classify(change24h, change7d *float64) *models.Sentiment
}

// Projector computes the 48h momentum projection for a price.
type Projector interface {
	Project(price decimal.NullDecimal, change24h *float64) *models.Projection
}

// SuggestionBuilder turns a dip-buy signal into a limit order suggestion.
type SuggestionBuilder interface {
	Build(q models.Quote, sig *models.Signal) *models.Suggestion
}
