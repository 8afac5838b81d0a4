package usecase

import (
	"context"
	"errors"

	"CryptoPulse/internal/domain/models"
	drepo "CryptoPulse/internal/domain/repository"
	"CryptoPulse/internal/services/suggestion"
	applogger "CryptoPulse/pkg/logger"

	"github.com/shopspring/decimal"
)

// SuggestionDispatcher hands a tick's suggestions to the notifier as one batch
// and then, when configured, to the trade executor one order at a time.
// Failures are logged and counted, never returned.
type SuggestionDispatcher struct {
	notifier drepo.Notifier
	executor drepo.TradeExecutor
	notional decimal.Decimal
	metrics  drepo.Metrics
	log      *applogger.Logger
}

// NewSuggestionDispatcher creates a dispatcher. notifier and executor may be nil.
func NewSuggestionDispatcher(
	notifier drepo.Notifier,
	executor drepo.TradeExecutor,
	notional decimal.Decimal,
	metrics drepo.Metrics,
	log *applogger.Logger,
) *SuggestionDispatcher {
	return &SuggestionDispatcher{
		notifier: notifier,
		executor: executor,
		notional: notional,
		metrics:  metrics,
		log:      log.With(applogger.String("component", "dispatcher")),
	}
}

// Dispatch returns the executions that succeeded.
func (d *SuggestionDispatcher) Dispatch(ctx context.Context, report *models.TickReport) []models.Execution {
	if report == nil || len(report.Suggestions) == 0 {
		return nil
	}

	if d.notifier != nil {
		if err := d.notifier.Notify(ctx, report); err != nil {
			d.metrics.RecordNotification("failed")
			d.log.Warn("notification failed", applogger.Error(err), applogger.Uint64("tick", report.Tick))
		} else {
			d.metrics.RecordNotification("sent")
		}
	}

	if d.executor == nil {
		return nil
	}

	var execs []models.Execution
	for _, s := range report.Suggestions {
		if ctx.Err() != nil {
			break
		}
		exec, err := d.executor.Execute(ctx, suggestion.Order(s, d.notional))
		if err != nil {
			d.metrics.RecordExecution(executionResult(err))
			d.log.Warn("order execution failed",
				applogger.String("symbol", s.Symbol),
				applogger.Decimal("limit_price", s.LimitPrice),
				applogger.Error(err),
			)
			continue
		}
		d.metrics.RecordExecution(exec.Status)
		execs = append(execs, exec)
	}
	return execs
}

func executionResult(err error) string {
	switch {
	case errors.Is(err, models.ErrSinkRejected):
		return "rejected"
	case errors.Is(err, models.ErrSinkUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
