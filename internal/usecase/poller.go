package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"CryptoPulse/internal/domain/models"
	drepo "CryptoPulse/internal/domain/repository"
	applogger "CryptoPulse/pkg/logger"
)

// State is the poller's position in the tick cycle.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateProcessing
	StateNotifying
	StateSleeping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateProcessing:
		return "processing"
	case StateNotifying:
		return "notifying"
	case StateSleeping:
		return "sleeping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ReportPublisher accepts a finished report without blocking the tick.
type ReportPublisher interface {
	Publish(report *models.TickReport) bool
}

// PollerConfig is the validated configuration the poller runs with.
type PollerConfig struct {
	AssetIDs []string
	Currency string
	Interval time.Duration
	Once     bool
}

// PollerOption configures Poller.
type PollerOption func(*Poller)

// Poller drives fetch, process, notify and sleep at a fixed interval. Ticks run
// one at a time; the inter-tick sleep is the only suspension point besides the
// fetch itself.
type Poller struct {
	cfg        PollerConfig
	source     drepo.QuoteSource
	analyzer   *TickAnalyzer
	dispatcher *SuggestionDispatcher
	history    *PriceHistory
	views      []drepo.ReportSink
	publisher  ReportPublisher
	metrics    drepo.Metrics
	log        *applogger.Logger
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error

	tick  uint64
	state atomic.Int32
	last  atomic.Pointer[models.TickReport]
}

// NewPoller creates a new Poller instance.
func NewPoller(
	cfg PollerConfig,
	source drepo.QuoteSource,
	analyzer *TickAnalyzer,
	dispatcher *SuggestionDispatcher,
	metrics drepo.Metrics,
	log *applogger.Logger,
	opts ...PollerOption,
) *Poller {
	p := &Poller{
		cfg:        cfg,
		source:     source,
		analyzer:   analyzer,
		dispatcher: dispatcher,
		history:    NewPriceHistory(),
		metrics:    metrics,
		log:        log.With(applogger.String("component", "poller")),
		now:        time.Now,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithViews adds sinks that run on the tick path, such as the terminal renderer.
func WithViews(views ...drepo.ReportSink) PollerOption {
	return func(p *Poller) {
		p.views = append(p.views, views...)
	}
}

// WithPublisher sets where finished reports are handed off for slow sinks.
func WithPublisher(pub ReportPublisher) PollerOption {
	return func(p *Poller) {
		p.publisher = pub
	}
}

// WithPollerClock replaces the clock and the inter-tick sleep, mostly for tests.
func WithPollerClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) PollerOption {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// State returns the current state. Safe to call from any goroutine.
func (p *Poller) State() State { return State(p.state.Load()) }

// LastReport returns the most recent report, or nil before the first tick.
// Safe to call from any goroutine.
func (p *Poller) LastReport() *models.TickReport { return p.last.Load() }

// History exposes the price history. Only the poller goroutine may use it while running.
func (p *Poller) History() *PriceHistory { return p.history }

func (p *Poller) setState(s State) { p.state.Store(int32(s)) }

// Run ticks until ctx is cancelled (or after one tick in Once mode). Cancellation
// is a clean stop and returns nil.
func (p *Poller) Run(ctx context.Context) error {
	defer p.setState(StateStopped)
	p.log.Info("poller started",
		applogger.Strings("assets", p.cfg.AssetIDs),
		applogger.String("currency", p.cfg.Currency),
		applogger.Duration("interval", p.cfg.Interval),
	)

	for {
		if ctx.Err() != nil {
			return nil
		}
		p.Tick(ctx)
		if p.cfg.Once || ctx.Err() != nil {
			return nil
		}

		p.setState(StateSleeping)
		if err := p.sleep(ctx, p.cfg.Interval); err != nil {
			return nil
		}
	}
}

// Tick runs one full cycle. A failed fetch yields a report with Err set; a
// panic is recovered and the tick is skipped. It returns nil when the tick was
// cancelled or panicked.
func (p *Poller) Tick(ctx context.Context) (report *models.TickReport) {
	p.tick++
	n := p.tick
	start := p.now()

	defer func() {
		if r := recover(); r != nil {
			p.metrics.RecordError("tick_panic")
			p.metrics.RecordTick("panic")
			p.log.Error("tick panicked, skipping",
				applogger.Uint64("tick", n),
				applogger.Error(fmt.Errorf("%v", r)),
				applogger.String("stack", string(debug.Stack())),
			)
			report = nil
		}
	}()

	report = &models.TickReport{
		Tick:      n,
		At:        start.UTC(),
		Currency:  p.cfg.Currency,
		Watchlist: p.cfg.AssetIDs,
	}

	p.setState(StateFetching)
	quotes, err := p.source.Fetch(ctx, p.cfg.AssetIDs, p.cfg.Currency)
	p.metrics.RecordLatency("fetch", p.now().Sub(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		p.metrics.RecordFetchError(fetchKind(err))
		p.metrics.RecordTick("fetch_failed")
		p.log.Warn("no data from quote source, retrying next tick",
			applogger.Uint64("tick", n),
			applogger.Error(err),
		)
		report.Err = err.Error()
		p.finish(ctx, report)
		return report
	}

	p.setState(StateProcessing)
	p.analyzer.Analyze(quotes, p.history, report)

	p.setState(StateNotifying)
	report.Executions = p.dispatcher.Dispatch(ctx, report)

	if ctx.Err() != nil {
		return nil
	}
	for _, q := range quotes {
		if q.HasPrice() {
			p.history.Update(q.ID, q.Price.Decimal)
		}
	}

	p.metrics.RecordTick("ok")
	p.metrics.RecordLatency("tick", p.now().Sub(start).Seconds())
	p.log.Debug("tick complete",
		applogger.Uint64("tick", n),
		applogger.Int("rows", len(report.Rows)),
		applogger.Int("suggestions", len(report.Suggestions)),
	)
	p.finish(ctx, report)
	return report
}

// finish shows the report and hands it to the publisher. View failures are logged only.
func (p *Poller) finish(ctx context.Context, report *models.TickReport) {
	p.last.Store(report)
	for _, v := range p.views {
		if err := v.Consume(ctx, report); err != nil {
			p.metrics.RecordError("view_" + v.Name())
			p.log.Warn("view failed", applogger.String("view", v.Name()), applogger.Error(err))
		}
	}
	if p.publisher != nil {
		p.publisher.Publish(report)
	}
}

func fetchKind(err error) string {
	var fe *models.FetchError
	if errors.As(err, &fe) {
		return fe.Kind.String()
	}
	return "unknown"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
