package usecase

import (
	"CryptoPulse/internal/domain/models"
	drepo "CryptoPulse/internal/domain/repository"
	"CryptoPulse/internal/domain/service"
)

// TickAnalyzer derives every per-asset value of a tick from its quotes.
type TickAnalyzer struct {
	signals   service.SignalClassifier
	sentiment service.SentimentClassifier
	projector service.Projector
	builder   service.SuggestionBuilder
	metrics   drepo.Metrics
}

// NewTickAnalyzer creates a new TickAnalyzer instance.
func NewTickAnalyzer(
	signals service.SignalClassifier,
	sentiment service.SentimentClassifier,
	projector service.Projector,
	builder service.SuggestionBuilder,
	metrics drepo.Metrics,
) *TickAnalyzer {
	return &TickAnalyzer{
		signals:   signals,
		sentiment: sentiment,
		projector: projector,
		builder:   builder,
		metrics:   metrics,
	}
}

// Analyze fills report.Rows and report.Suggestions. History is read, never written.
func (a *TickAnalyzer) Analyze(quotes []models.Quote, history *PriceHistory, report *models.TickReport) {
	report.Rows = make([]models.AssetReport, 0, len(quotes))
	report.Suggestions = make([]models.Suggestion, 0)

	for _, q := range quotes {
		row := models.AssetReport{
			Quote:      q,
			Signal:     a.signals.Classify(q.Change24h, q.Change7d),
			Sentiment:  a.sentiment.Classify(q.Change24h, q.Change7d),
			Projection: a.projector.Project(q.Price, q.Change24h),
			Delta:      history.Delta(q.ID, q.Price),
		}
		if row.Signal != nil {
			a.metrics.RecordSignal(string(row.Signal.Kind))
		}
		if s := a.builder.Build(q, row.Signal); s != nil {
			row.Suggestion = s
			report.Suggestions = append(report.Suggestions, *s)
			a.metrics.RecordSuggestion()
		}
		if q.HasPrice() {
			f, _ := q.Price.Decimal.Float64()
			a.metrics.RecordLastPrice(q.ID, f)
		}
		report.Rows = append(report.Rows, row)
	}
}
