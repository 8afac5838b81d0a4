package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"CryptoPulse/internal/domain/models"
	"CryptoPulse/internal/service/coingecko"
	"CryptoPulse/internal/services/projection"
	"CryptoPulse/internal/services/signals"
	"CryptoPulse/internal/services/suggestion"
	applogger "CryptoPulse/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickDipBuyScenario(t *testing.T) {
	h := newHarness(fetchResult{quotes: []models.Quote{dipQuote()}})

	report := h.poller.Tick(context.Background())
	require.NotNil(t, report)
	require.Len(t, report.Rows, 1)

	row := report.Rows[0]
	require.NotNil(t, row.Signal)
	assert.Equal(t, models.SignalDipBuy, row.Signal.Kind)
	require.NotNil(t, row.Projection)
	assert.True(t, row.Projection.Price.Equal(decimal.NewFromInt(95)))
	assert.Nil(t, row.Delta)

	require.Len(t, report.Suggestions, 1)
	s := report.Suggestions[0]
	assert.True(t, s.LimitPrice.Equal(decimal.NewFromInt(98)))
	require.True(t, s.TimeToTarget.Known())
	assert.InDelta(t, 9.6, s.TimeToTarget.Hours, 0.01)

	assert.Equal(t, 1, h.notifier.count())
	require.Len(t, h.executor.orders, 1)
	assert.True(t, h.executor.orders[0].Notional.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, 1, h.metrics.get("notification:sent"))
	assert.Equal(t, 1, h.metrics.get("execution:filled"))
	require.Len(t, report.Executions, 1)
	assert.Equal(t, "o-1", report.Executions[0].OrderID)
	assert.Equal(t, h.executor.orders[0].Symbol, report.Executions[0].Symbol)
	require.Len(t, h.view.reports, 1)
	assert.Len(t, h.view.reports[0].Executions, 1)

	last, ok := h.poller.History().Last("bitcoin")
	require.True(t, ok)
	assert.True(t, last.Equal(decimal.NewFromInt(100)))
	assert.Same(t, report, h.poller.LastReport())
	assert.Len(t, h.view.reports, 1)
}

func TestTickAbsentChangeProducesNothing(t *testing.T) {
	q := dipQuote()
	q.Change24h = nil
	h := newHarness(fetchResult{quotes: []models.Quote{q}})

	report := h.poller.Tick(context.Background())
	require.NotNil(t, report)
	row := report.Rows[0]
	assert.Nil(t, row.Signal)
	assert.Nil(t, row.Sentiment)
	assert.Nil(t, row.Projection)
	assert.Empty(t, report.Suggestions)
	assert.Zero(t, h.notifier.count())
	assert.Empty(t, h.executor.orders)
}

func TestTickNotifiesOncePerBatch(t *testing.T) {
	other := dipQuote()
	other.ID, other.Symbol = "solana", "SOL"
	h := newHarness(fetchResult{quotes: []models.Quote{dipQuote(), other}})

	report := h.poller.Tick(context.Background())
	require.Len(t, report.Suggestions, 2)
	assert.Equal(t, 1, h.notifier.count())
	assert.Len(t, h.executor.orders, 2)
}

func TestTickDeltaAcrossTicks(t *testing.T) {
	next := dipQuote()
	next.Price = models.Price(110)
	h := newHarness(
		fetchResult{quotes: []models.Quote{dipQuote()}},
		fetchResult{quotes: []models.Quote{next}},
	)

	first := h.poller.Tick(context.Background())
	assert.Nil(t, first.Rows[0].Delta)

	second := h.poller.Tick(context.Background())
	require.NotNil(t, second.Rows[0].Delta)
	assert.InDelta(t, 10.0, *second.Rows[0].Delta, 1e-9)
	assert.Equal(t, uint64(2), second.Tick)
}

func TestTickFetchFailureSkipsProcessing(t *testing.T) {
	h := newHarness(fetchResult{err: models.NewHTTPError(404)})

	report := h.poller.Tick(context.Background())
	require.NotNil(t, report)
	assert.True(t, report.Failed())
	assert.Empty(t, report.Rows)
	assert.Zero(t, h.notifier.count())
	assert.Zero(t, h.poller.History().Len())
	assert.Equal(t, 1, h.metrics.get("fetch_error:http"))
	assert.Equal(t, 1, h.metrics.get("tick:fetch_failed"))
	assert.Len(t, h.view.reports, 1, "the view still shows the failed tick")
}

func TestTickNotifyFailureStillUpdatesHistory(t *testing.T) {
	h := newHarness(fetchResult{quotes: []models.Quote{dipQuote()}})
	h.notifier.err = &models.NotifyError{Err: errors.New("telegram down")}
	h.executor.err = &models.ExecutionError{Kind: models.SinkRejected, Symbol: "BTC"}

	report := h.poller.Tick(context.Background())
	require.NotNil(t, report)
	assert.Equal(t, 1, h.poller.History().Len())
	assert.Equal(t, 1, h.metrics.get("notification:failed"))
	assert.Equal(t, 1, h.metrics.get("execution:rejected"))
	assert.Empty(t, report.Executions)
	assert.Equal(t, 1, h.metrics.get("tick:ok"))
}

func TestTickRecoversPanic(t *testing.T) {
	h := newHarness(fetchResult{panic: true})

	assert.NotPanics(t, func() {
		assert.Nil(t, h.poller.Tick(context.Background()))
	})
	assert.Equal(t, 1, h.metrics.get("error:tick_panic"))
	assert.Zero(t, h.poller.History().Len())
}

func TestRunContinuesAfterFailuresAndStopsOnCancel(t *testing.T) {
	h := newHarness(
		fetchResult{panic: true},
		fetchResult{err: models.NewRateLimitedError()},
		fetchResult{quotes: []models.Quote{dipQuote()}},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var slept []time.Duration
	h.poller.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		if len(slept) == 3 {
			cancel()
			return ctx.Err()
		}
		return nil
	}

	require.NoError(t, h.poller.Run(ctx))
	assert.Equal(t, StateStopped, h.poller.State())
	assert.Equal(t, 3, h.source.calls)
	assert.Equal(t, []time.Duration{10 * time.Second, 10 * time.Second, 10 * time.Second}, slept)
	assert.Equal(t, 1, h.metrics.get("tick:ok"))
	assert.Equal(t, 1, h.metrics.get("fetch_error:rate_limited"))
	assert.Equal(t, 1, h.notifier.count())
}

func TestRunOnce(t *testing.T) {
	h := newHarness(fetchResult{quotes: []models.Quote{dipQuote()}})
	h.poller.cfg.Once = true
	h.poller.sleep = func(context.Context, time.Duration) error {
		t.Fatal("once mode must not sleep")
		return nil
	}
	require.NoError(t, h.poller.Run(context.Background()))
	assert.Equal(t, 1, h.source.calls)
	assert.Equal(t, StateStopped, h.poller.State())
}

func TestRunCancelledBeforeStart(t *testing.T) {
	h := newHarness(fetchResult{quotes: []models.Quote{dipQuote()}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, h.poller.Run(ctx))
	assert.Zero(t, h.source.calls)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "sleeping", StateSleeping.String())
	assert.Equal(t, "stopped", StateStopped.String())
}

// A provider answering 429 makes the scheduler wait the cooldown before the
// next request, and the loop keeps running.
func TestRunWaitsCooldownAfterRateLimit(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","current_price":100,
			"price_change_percentage_24h_in_currency":-5,"price_change_percentage_7d_in_currency":3}]`))
	}))
	defer srv.Close()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var clientSleeps []time.Duration
	source := coingecko.New(coingecko.Config{
		BaseURL:           srv.URL,
		Timeout:           time.Second,
		Retries:           0,
		BackoffFactor:     1,
		RateLimitCooldown: 60 * time.Second,
	},
		coingecko.WithClock(func() time.Time { return now }),
		coingecko.WithSleeper(func(ctx context.Context, d time.Duration) error {
			clientSleeps = append(clientSleeps, d)
			return ctx.Err()
		}),
	)

	m := newFakeMetrics()
	notifier := &fakeNotifier{}
	analyzer := NewTickAnalyzer(signals.NewClassifier(), signals.NewSentiment(), projection.NewEstimator(), suggestion.NewBuilder(), m)
	dispatcher := NewSuggestionDispatcher(notifier, nil, decimal.Zero, m, applogger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ticks := 0
	p := NewPoller(PollerConfig{AssetIDs: []string{"bitcoin"}, Currency: "usd", Interval: 10 * time.Second},
		source, analyzer, dispatcher, m, applogger.NewNop(),
		WithPollerClock(nil, func(ctx context.Context, d time.Duration) error {
			ticks++
			if ticks == 2 {
				cancel()
				return ctx.Err()
			}
			return nil
		}),
	)

	require.NoError(t, p.Run(ctx))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.Equal(t, []time.Duration{60 * time.Second}, clientSleeps)
	assert.Equal(t, 1, m.get("fetch_error:rate_limited"))
	assert.Equal(t, 1, m.get("tick:ok"))
	assert.Equal(t, 1, notifier.count())
}
