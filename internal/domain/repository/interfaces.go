package repository

import (
	"context"

	"CryptoPulse/internal/domain/models"
)

// QuoteSource fetches one batch of quotes per call.
// Failures are returned as *models.FetchError.
type QuoteSource interface {
	Fetch(ctx context.Context, assetIDs []string, vsCurrency string) ([]models.Quote, error)
}

// Notifier delivers the suggestions of one tick as a single message.
// An unconfigured notifier is a no-op and returns nil.
type Notifier interface {
	Notify(ctx context.Context, report *models.TickReport) error
}

// TradeExecutor places a fixed-notional market buy for a suggestion.
// Failures are returned as *models.ExecutionError.
type TradeExecutor interface {
	Execute(ctx context.Context, order models.Order) (models.Execution, error)
}

// ReportSink receives every tick report. Errors are logged by the caller and never retried.
type ReportSink interface {
	Name() string
	Consume(ctx context.Context, report *models.TickReport) error
}

// ReportCache keeps the latest tick report for readers outside the polling loop.
type ReportCache interface {
	ReportSink
	Latest(ctx context.Context) (*models.TickReport, error)
	Asset(ctx context.Context, id string) (*models.AssetReport, error)
}

type Metrics interface {
	RecordTick(result string)
	RecordFetchError(kind string)
	RecordSignal(kind string)
	RecordSuggestion()
	RecordNotification(result string)
	RecordExecution(result string)
	RecordLastPrice(asset string, price float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
