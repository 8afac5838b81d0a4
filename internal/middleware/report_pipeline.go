package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CryptoPulse/internal/domain/models"
	domrepo "CryptoPulse/internal/domain/repository"
	applogger "CryptoPulse/pkg/logger"
)

// ReportPipeline sits between the poller and the slow report sinks (Kafka,
// ClickHouse, cache, websocket). Publish never blocks the tick: reports are
// buffered and a background worker delivers them to every sink in order.
// When the buffer is full the report is dropped and counted.
type ReportPipeline struct {
	sinks       []domrepo.ReportSink
	metrics     domrepo.Metrics
	log         *applogger.Logger
	bufSize     int
	sinkTimeout time.Duration
	bufCh       chan *models.TickReport
	done        chan struct{}
	started     bool
	stopped     bool
	mu          sync.Mutex
}

type PipelineOption func(*ReportPipeline)

// WithBufferSize sets how many reports may wait for delivery.
func WithBufferSize(n int) PipelineOption {
	return func(p *ReportPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithSinkTimeout bounds each sink's Consume call.
func WithSinkTimeout(d time.Duration) PipelineOption {
	return func(p *ReportPipeline) {
		if d > 0 {
			p.sinkTimeout = d
		}
	}
}

// NewReportPipeline creates a new pipeline over sinks.
func NewReportPipeline(sinks []domrepo.ReportSink, metrics domrepo.Metrics, log *applogger.Logger, opts ...PipelineOption) *ReportPipeline {
	p := &ReportPipeline{
		sinks:       sinks,
		metrics:     metrics,
		log:         log.With(applogger.String("component", "pipeline")),
		bufSize:     64,
		sinkTimeout: 10 * time.Second,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.TickReport, p.bufSize)
	return p
}

// Sinks returns the names of the registered sinks.
func (p *ReportPipeline) Sinks() []string {
	names := make([]string, 0, len(p.sinks))
	for _, s := range p.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Start launches the delivery worker. ctx is the parent of every sink call.
func (p *ReportPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		defer close(p.done)
		for r := range p.bufCh {
			p.deliver(ctx, r)
		}
	}()
}

// Stop closes the buffer and waits for queued reports to be delivered, or
// for ctx to end.
func (p *ReportPipeline) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	started := p.started
	close(p.bufCh)
	p.mu.Unlock()

	if !started {
		return nil
	}
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pipeline drain: %w", ctx.Err())
	}
}

// Publish queues report for delivery and reports whether it was accepted.
func (p *ReportPipeline) Publish(report *models.TickReport) bool {
	if err := validateReport(report); err != nil {
		p.metrics.RecordError("pipeline_validate")
		p.log.Warn("report rejected", applogger.Error(err))
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	select {
	case p.bufCh <- report:
		return true
	default:
		p.metrics.RecordError("pipeline_buffer_full")
		p.log.Warn("pipeline buffer full, dropping report", applogger.Uint64("tick", report.Tick))
		return false
	}
}

// Depth returns the number of queued reports.
func (p *ReportPipeline) Depth() int { return len(p.bufCh) }

func (p *ReportPipeline) deliver(ctx context.Context, r *models.TickReport) {
	for _, s := range p.sinks {
		start := time.Now()
		sctx, cancel := context.WithTimeout(ctx, p.sinkTimeout)
		err := s.Consume(sctx, r)
		cancel()
		p.metrics.RecordLatency("sink_"+s.Name(), time.Since(start).Seconds())
		if err != nil {
			p.metrics.RecordError("sink_" + s.Name())
			p.log.Warn("sink failed",
				applogger.String("sink", s.Name()),
				applogger.Uint64("tick", r.Tick),
				applogger.Error(err),
			)
		}
	}
}

func validateReport(r *models.TickReport) error {
	if r == nil {
		return fmt.Errorf("report nil")
	}
	if r.Tick == 0 {
		return fmt.Errorf("tick number missing")
	}
	if r.At.IsZero() {
		return fmt.Errorf("timestamp missing")
	}
	return nil
}
