package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CryptoPulse/internal/handler/api"
	mid "CryptoPulse/internal/middleware"
	xhttp "CryptoPulse/pkg/http"
	applogger "CryptoPulse/pkg/logger"
)

const drainTimeout = 10 * time.Second

// Runner is the polling loop. It returns nil when ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// Closer releases an infrastructure client at shutdown.
type Closer struct {
	Name  string
	Close func() error
}

// App owns the lifecycle: report pipeline, optional HTTP server, the poller
// and, on the way out, every infrastructure client.
type App struct {
	log      *applogger.Logger
	poller   Runner
	pipeline *mid.ReportPipeline
	http     *xhttp.Server
	hub      *api.StreamHub
	closers  []Closer
	out      io.Writer
	signals  []os.Signal
}

// New creates the App. httpServer and hub may be nil.
func New(
	log *applogger.Logger,
	poller Runner,
	pipeline *mid.ReportPipeline,
	httpServer *xhttp.Server,
	hub *api.StreamHub,
	closers []Closer,
) *App {
	return &App{
		log:      log.With(applogger.String("component", "app")),
		poller:   poller,
		pipeline: pipeline,
		http:     httpServer,
		hub:      hub,
		closers:  closers,
		out:      os.Stdout,
		signals:  []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
}

// SetOutput redirects the goodbye line; tests use it.
func (a *App) SetOutput(w io.Writer) { a.out = w }

// Run blocks until the poller returns: after one tick in once mode, or when
// SIGINT/SIGTERM cancels the context.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, a.signals...)
	defer stop()

	// Sinks keep their own timeouts; the drain must outlive the signal.
	a.pipeline.Start(context.WithoutCancel(ctx))
	a.log.Info("report pipeline started", applogger.Strings("sinks", a.pipeline.Sinks()))

	if a.http != nil {
		if err := a.http.Start(); err != nil {
			a.shutdown()
			return err
		}
	}

	runErr := a.poller.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		a.log.Error("poller stopped with error", applogger.Error(runErr))
	} else {
		runErr = nil
	}

	a.shutdown()
	fmt.Fprintln(a.out, "Analyzer stopped.")
	return runErr
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	if a.http != nil {
		if err := a.http.Stop(ctx); err != nil {
			a.log.Warn("http shutdown error", applogger.Error(err))
		}
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if err := a.pipeline.Stop(ctx); err != nil {
		a.log.Warn("report pipeline drain incomplete", applogger.Error(err))
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.Close(); err != nil {
			a.log.Warn("close failed", applogger.String("resource", c.Name), applogger.Error(err))
		}
	}
}
