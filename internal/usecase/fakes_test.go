package usecase

import (
	"context"
	"sync"
	"time"

	"CryptoPulse/internal/domain/models"
	"CryptoPulse/internal/services/projection"
	"CryptoPulse/internal/services/signals"
	"CryptoPulse/internal/services/suggestion"
	applogger "CryptoPulse/pkg/logger"

	"github.com/shopspring/decimal"
)

type fetchResult struct {
	quotes []models.Quote
	err    error
	panic  bool
}

type fakeSource struct {
	mu      sync.Mutex
	results []fetchResult
	calls   int
}

func (f *fakeSource) Fetch(_ context.Context, _ []string, _ string) ([]models.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	r := f.results[i]
	if r.panic {
		panic("boom")
	}
	return r.quotes, r.err
}

type fakeNotifier struct {
	mu      sync.Mutex
	reports []*models.TickReport
	err     error
}

func (f *fakeNotifier) Notify(_ context.Context, r *models.TickReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, r)
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reports)
}

type fakeExecutor struct {
	orders []models.Order
	err    error
}

func (f *fakeExecutor) Execute(_ context.Context, o models.Order) (models.Execution, error) {
	f.orders = append(f.orders, o)
	if f.err != nil {
		return models.Execution{}, f.err
	}
	return models.Execution{OrderID: "o-1", Symbol: o.Symbol, Status: "filled", Notional: o.Notional}, nil
}

type fakeView struct {
	reports []*models.TickReport
}

func (v *fakeView) Name() string { return "fake" }

func (v *fakeView) Consume(_ context.Context, r *models.TickReport) error {
	v.reports = append(v.reports, r)
	return nil
}

type fakeMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{counts: map[string]int{}} }

func (m *fakeMetrics) inc(k string) {
	m.mu.Lock()
	m.counts[k]++
	m.mu.Unlock()
}

func (m *fakeMetrics) get(k string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[k]
}

func (m *fakeMetrics) RecordTick(r string) { m.inc("tick:" + r) }
func (m *fakeMetrics) RecordFetchError(k string) { m.inc("fetch_error:" + k) }
func (m *fakeMetrics) RecordSignal(k string) { m.inc("signal:" + k) }
func (m *fakeMetrics) RecordSuggestion() { m.inc("suggestion") }
func (m *fakeMetrics) RecordNotification(r string) { m.inc("notification:" + r) }
func (m *fakeMetrics) RecordExecution(r string) { m.inc("execution:" + r) }
func (m *fakeMetrics) RecordLastPrice(string, float64) {}
func (m *fakeMetrics) RecordError(k string) { m.inc("error:" + k) }
func (m *fakeMetrics) RecordLatency(string, float64) {}

func dipQuote() models.Quote {
	return models.Quote{
		ID:        "bitcoin",
		Symbol:    "BTC",
		Price:     models.Price(100),
		Change24h: models.Float(-5),
		Change7d:  models.Float(3),
	}
}

type harness struct {
	source   *fakeSource
	notifier *fakeNotifier
	executor *fakeExecutor
	view     *fakeView
	metrics  *fakeMetrics
	poller   *Poller
}

func newHarness(results ...fetchResult) *harness {
	h := &harness{
		source:   &fakeSource{results: results},
		notifier: &fakeNotifier{},
		executor: &fakeExecutor{},
		view:     &fakeView{},
		metrics:  newFakeMetrics(),
	}
	analyzer := NewTickAnalyzer(signals.NewClassifier(), signals.NewSentiment(), projection.NewEstimator(), suggestion.NewBuilder(), h.metrics)
	dispatcher := NewSuggestionDispatcher(h.notifier, h.executor, decimal.NewFromInt(25), h.metrics, applogger.NewNop())
	h.poller = NewPoller(
		PollerConfig{AssetIDs: []string{"bitcoin", "pepe"}, Currency: "usd", Interval: 10 * time.Second},
		h.source, analyzer, dispatcher, h.metrics, applogger.NewNop(),
		WithViews(h.view),
	)
	return h
}
