package signals

import (
	"CryptoPulse/internal/domain/models"
	"CryptoPulse/internal/domain/service"
)

type sentimentRule struct {
	kind  models.SentimentKind
	label string
	match func(c24, c7 float64) bool
}

// The last row is unreachable behind strong buy; kept to preserve the table as published.
var sentimentRules = []sentimentRule{
	{models.SentimentStrongBuy, "Strong buy", func(c24, c7 float64) bool { return c24 > 5.0 && c7 > 10.0 }},
	{models.SentimentBuy, "Buy", func(c24, c7 float64) bool { return c24 > 2.0 && c7 > 0 }},
	{models.SentimentStrongSell, "Strong sell", func(c24, c7 float64) bool { return c24 < -5.0 && c7 < -10.0 }},
	{models.SentimentSell, "Sell", func(c24, c7 float64) bool { return c24 < -2.0 && c7 < 0 }},
	{models.SentimentNeutral, "Neutral", func(c24, c7 float64) bool {
		return c24 >= -2.0 && c24 <= 2.0 && c7 >= -5.0 && c7 <= 5.0
	}},
	{models.SentimentNeutralOverbought, "Neutral (overbought)", func(c24, c7 float64) bool { return c24 > 7.0 && c7 > 20.0 }},
}

// Sentiment is the technical-sentiment table. It runs beside the signal
// classifier and never gates suggestions.
type Sentiment struct{}

var _ service.SentimentClassifier = Sentiment{}

// NewSentiment returns the sentiment classifier.
func NewSentiment() Sentiment { return Sentiment{} }

// Classify returns nil when either input is absent and neutral when nothing matches.
func (Sentiment) Classify(change24h, change7d *float64) *models.Sentiment {
	if change24h == nil || change7d == nil {
		return nil
	}
	for _, r := range sentimentRules {
		if r.match(*change24h, *change7d) {
			return &models.Sentiment{Kind: r.kind, Label: r.label}
		}
	}
	return &models.Sentiment{Kind: models.SentimentNeutral, Label: "Neutral"}
}
