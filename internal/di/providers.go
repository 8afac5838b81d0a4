package di

import (
	"context"
	"fmt"
	"os"
	"time"

	"CryptoPulse/internal/domain/repository"
	"CryptoPulse/internal/handler/api"
	mid "CryptoPulse/internal/middleware"
	"CryptoPulse/internal/render"
	internalrepo "CryptoPulse/internal/repository"
	"CryptoPulse/internal/service/coingecko"
	"CryptoPulse/internal/service/ratelimit"
	"CryptoPulse/internal/service/telegram"
	"CryptoPulse/internal/service/trade"
	"CryptoPulse/internal/services/projection"
	"CryptoPulse/internal/services/signals"
	"CryptoPulse/internal/services/suggestion"
	"CryptoPulse/internal/usecase"
	"CryptoPulse/pkg/cache"
	pkgch "CryptoPulse/pkg/clickhouse"
	"CryptoPulse/pkg/config"
	xhttp "CryptoPulse/pkg/http"
	pkgkafka "CryptoPulse/pkg/kafka"
	applogger "CryptoPulse/pkg/logger"
	"CryptoPulse/pkg/metrics"
	"CryptoPulse/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
)

// ProvideRegistry creates the process-wide Prometheus registry.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func ProvideMetrics(reg *prometheus.Registry) *metrics.Recorder {
	return metrics.NewWithRegistry(reg, reg)
}

// ProvideKafkaProducer returns nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger builds the root logger. When an ops topic is configured the
// error collector ships aggregated errors through the Kafka producer.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if producer != nil && cfg.Kafka.OpsTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.OpsTopic,
			Source:         "cryptopulse",
			Publisher:      producer,
		})
	}
	return l, nil
}

// ProvideClickHouseClient returns nil when the snapshot archive is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	if err := client.InitSchema(ctx, internalrepo.SnapshotSchema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideSnapshotStore returns nil when ClickHouse is disabled.
func ProvideSnapshotStore(ch *pkgch.Client, l *applogger.Logger) repository.SnapshotStore {
	if ch == nil {
		return nil
	}
	return internalrepo.NewCHSnapshotStore(ch, l)
}

// ProvideCache builds the cache.Service selected by cache.type.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Cache.Type == "memory" {
		return cache.NewMemoryCache(), nil
	}

	redisCache, err := cache.NewRedisCache(context.Background(),
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	if cfg.Cache.Type == "layered" {
		return cache.NewLayeredCache(redisCache, cfg.Poller.Interval), nil
	}
	return redisCache, nil
}

func ProvideReportStore(c cache.Service, cfg *config.Config) *internalrepo.CachedReportStore {
	return internalrepo.NewCachedReportStore(c, cfg.Cache.TTL)
}

func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

func ProvideQuoteSource(cfg *config.Config, l *applogger.Logger, m repository.Metrics, lim *ratelimit.Limiter) repository.QuoteSource {
	return coingecko.New(coingecko.Config{
		BaseURL:           cfg.CoinGecko.BaseURL,
		APIKey:            cfg.CoinGecko.APIKey,
		Timeout:           cfg.CoinGecko.Timeout,
		Retries:           cfg.CoinGecko.Retries,
		BackoffFactor:     cfg.CoinGecko.BackoffFactor,
		MaxBackoff:        cfg.CoinGecko.MaxBackoff,
		RateLimitCooldown: cfg.CoinGecko.RateLimitCooldown,
		PerPage:           cfg.Watchlist.PerPage,
		MaxRPS:            cfg.CoinGecko.MaxRPS,
	},
		coingecko.WithLogger(l),
		coingecko.WithMetrics(m),
		coingecko.WithLimiter(lim),
	)
}

func ProvideNotifier(cfg *config.Config, l *applogger.Logger) repository.Notifier {
	return telegram.New(telegram.Config{
		BaseURL:  cfg.Telegram.BaseURL,
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		Timeout:  cfg.Telegram.Timeout,
	}, l)
}

// ProvideTradeExecutor returns nil when trade.mode is empty.
func ProvideTradeExecutor(cfg *config.Config, l *applogger.Logger) repository.TradeExecutor {
	switch cfg.Trade.Mode {
	case "paper":
		return trade.NewPaperExecutor(decimal.NewFromFloat(cfg.Trade.MaxNotional), l)
	case "webhook":
		return trade.NewWebhookExecutor(cfg.Trade.WebhookURL, cfg.Trade.Timeout, l)
	default:
		return nil
	}
}

func ProvideTickAnalyzer(m repository.Metrics) *usecase.TickAnalyzer {
	return usecase.NewTickAnalyzer(
		signals.NewClassifier(),
		signals.NewSentiment(),
		projection.NewEstimator(),
		suggestion.NewBuilder(),
		m,
	)
}

func ProvideDispatcher(
	cfg *config.Config,
	notifier repository.Notifier,
	executor repository.TradeExecutor,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.SuggestionDispatcher {
	return usecase.NewSuggestionDispatcher(notifier, executor, decimal.NewFromFloat(cfg.Trade.Notional), m, l)
}

// ProvideStreamHub returns nil when the HTTP server is disabled.
func ProvideStreamHub(cfg *config.Config, l *applogger.Logger) *api.StreamHub {
	if !cfg.Server.Enabled {
		return nil
	}
	return api.NewStreamHub(l)
}

// ProvidePipeline registers every enabled slow sink. The cache sink always runs.
func ProvidePipeline(
	cfg *config.Config,
	m repository.Metrics,
	l *applogger.Logger,
	store *internalrepo.CachedReportStore,
	producer *pkgkafka.Producer,
	snapshots repository.SnapshotStore,
	hub *api.StreamHub,
) *mid.ReportPipeline {
	sinks := []repository.ReportSink{store}
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaReportPublisher(producer, cfg.Kafka.Topic))
	}
	if snapshots != nil {
		sinks = append(sinks, snapshots)
	}
	if hub != nil {
		sinks = append(sinks, hub)
	}
	return mid.NewReportPipeline(sinks, m, l, mid.WithBufferSize(cfg.Pipeline.BufferSize))
}

// ProvideDisplay returns nil when the terminal view is disabled.
func ProvideDisplay(cfg *config.Config, l *applogger.Logger) (*render.Display, error) {
	if !cfg.Display.Enabled {
		return nil, nil
	}
	r, err := render.New(cfg.Display.Style, cfg.Poller.Interval)
	if err != nil {
		return nil, err
	}
	return render.NewDisplay(r, os.Stdout, cfg.Display.Clear, l), nil
}

func ProvidePoller(
	cfg *config.Config,
	source repository.QuoteSource,
	analyzer *usecase.TickAnalyzer,
	dispatcher *usecase.SuggestionDispatcher,
	m repository.Metrics,
	l *applogger.Logger,
	pipeline *mid.ReportPipeline,
	display *render.Display,
) *usecase.Poller {
	opts := []usecase.PollerOption{usecase.WithPublisher(pipeline)}
	if display != nil {
		opts = append(opts, usecase.WithViews(display))
	}
	return usecase.NewPoller(usecase.PollerConfig{
		AssetIDs: cfg.Watchlist.Assets,
		Currency: cfg.Watchlist.Currency,
		Interval: cfg.Poller.Interval,
		Once:     cfg.Poller.Once,
	}, source, analyzer, dispatcher, m, l, opts...)
}

// ProvideHTTPServer returns nil when server.enabled is false.
func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	reg *prometheus.Registry,
	rec *metrics.Recorder,
	poller *usecase.Poller,
	store *internalrepo.CachedReportStore,
	snapshots repository.SnapshotStore,
	hub *api.StreamHub,
) *xhttp.Server {
	if !cfg.Server.Enabled {
		return nil
	}
	h := api.NewReportEchoHandler(l, poller, store, snapshots, hub)
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORSOrigins...),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(reg, cfg.Metrics.Path, rec.Handler()))
	}
	return xhttp.NewServer(h, opts...)
}

// ProvideClosers lists the clients App closes on shutdown, in creation order.
func ProvideClosers(l *applogger.Logger, producer *pkgkafka.Producer, ch *pkgch.Client, c cache.Service) []server.Closer {
	closers := []server.Closer{{Name: "cache", Close: c.Close}}
	if ch != nil {
		closers = append(closers, server.Closer{Name: "clickhouse", Close: ch.Close})
	}
	if producer != nil {
		closers = append(closers, server.Closer{Name: "kafka", Close: producer.Close})
	}
	// Runs first so the collector's last flush still has a producer.
	closers = append(closers, server.Closer{Name: "log-collector", Close: func() error {
		l.RemoveCollector()
		return nil
	}})
	return closers
}

func ProvideApp(
	l *applogger.Logger,
	poller *usecase.Poller,
	pipeline *mid.ReportPipeline,
	srv *xhttp.Server,
	hub *api.StreamHub,
	closers []server.Closer,
) *server.App {
	return server.New(l, poller, pipeline, srv, hub, closers)
}
