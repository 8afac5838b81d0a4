package coingecko

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"CryptoPulse/internal/domain/models"
	drepo "CryptoPulse/internal/domain/repository"
	"CryptoPulse/internal/service/ratelimit"
	xhttp "CryptoPulse/pkg/http"
	applogger "CryptoPulse/pkg/logger"
	"CryptoPulse/pkg/metrics"
)

const (
	marketsPath  = "/coins/markets"
	apiKeyHeader = "x-cg-demo-api-key"
	limiterKey   = "coingecko"
)

// Config holds the quote provider settings.
type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	Retries           int
	BackoffFactor     float64
	MaxBackoff        time.Duration
	RateLimitCooldown time.Duration
	PerPage           int
	MaxRPS            float64
}

// Sleeper waits for d or until ctx ends.
type Sleeper func(ctx context.Context, d time.Duration) error

// Option configures Client.
type Option func(*Client)

var _ drepo.QuoteSource = (*Client)(nil)

// Client fetches market quotes from the CoinGecko /coins/markets endpoint.
// One Fetch is one logical request: transient failures (transport errors,
// 5xx, 429) are retried with exponential backoff inside the call.
type Client struct {
	cfg     Config
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	log     *applogger.Logger
	metrics drepo.Metrics
	sleep   Sleeper
	now     func() time.Time

	mu            sync.Mutex
	cooldownUntil time.Time
}

// New creates a CoinGecko quote source.
func New(cfg Config, opts ...Option) *Client {
	if cfg.PerPage <= 0 {
		cfg.PerPage = 100
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 120 * time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	c := &Client{
		cfg:     cfg,
		limiter: ratelimit.New(),
		log:     applogger.NewNop(),
		metrics: metrics.Nop{},
		sleep:   sleepContext,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = xhttp.NewClient(
		xhttp.WithBaseURL(cfg.BaseURL),
		xhttp.WithTimeout(cfg.Timeout),
		xhttp.WithHeader(apiKeyHeader, cfg.APIKey),
	)
	return c
}

// Fetch returns the current quotes for assetIDs priced in vsCurrency.
func (c *Client) Fetch(ctx context.Context, assetIDs []string, vsCurrency string) ([]models.Quote, error) {
	if len(assetIDs) == 0 {
		return nil, nil
	}
	if d := c.pendingCooldown(); d > 0 {
		c.log.Warn("rate limit cooldown in effect", applogger.Duration("wait", d))
		if err := c.sleep(ctx, d); err != nil {
			return nil, err
		}
		c.clearCooldown()
	}

	req := &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    marketsPath,
		QueryParams: map[string][]string{
			"vs_currency":             {vsCurrency},
			"ids":                     {strings.Join(assetIDs, ",")},
			"order":                   {"market_cap_desc"},
			"per_page":                {strconv.Itoa(c.cfg.PerPage)},
			"page":                    {"1"},
			"sparkline":               {"false"},
			"price_change_percentage": {"24h,7d"},
		},
	}

	var (
		lastErr     *models.FetchError
		retryAfter  time.Duration
		rateLimited bool
	)
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			if retryAfter > 0 {
				delay = retryAfter
			}
			if rateLimited {
				delay += c.cfg.RateLimitCooldown
			}
			c.log.Warn("retrying quote fetch",
				applogger.Int("attempt", attempt+1),
				applogger.Duration("delay", delay),
				applogger.Error(lastErr),
			)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			if rateLimited {
				c.clearCooldown()
			}
		}
		retryAfter, rateLimited = 0, false

		if err := c.limiter.Wait(ctx, limiterKey, 1, c.cfg.MaxRPS); err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := c.http.SendRequest(ctx, req)
		c.metrics.RecordLatency("coingecko_request", time.Since(start).Seconds())
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = models.NewNetworkError(err)
			continue
		}

		status := resp.StatusCode()
		switch {
		case status >= 200 && status < 300:
			quotes, err := decodeMarkets(resp.Body(), c.log)
			if err != nil {
				return nil, models.NewNetworkError(err)
			}
			return quotes, nil
		case status == http.StatusTooManyRequests:
			lastErr = models.NewRateLimitedError()
			rateLimited = true
			retryAfter = c.parseRetryAfter(resp.Header().Get("Retry-After"))
			c.setCooldown(c.now().Add(c.cfg.RateLimitCooldown))
		case status >= 500:
			lastErr = models.NewHTTPError(status)
			retryAfter = c.parseRetryAfter(resp.Header().Get("Retry-After"))
		default:
			return nil, models.NewHTTPError(status)
		}
	}
	return nil, lastErr
}

// backoff returns factor * 2^(n-1) seconds for retry n, capped at MaxBackoff.
func (c *Client) backoff(n int) time.Duration {
	secs := c.cfg.BackoffFactor * math.Pow(2, float64(n-1))
	d := time.Duration(secs * float64(time.Second))
	if d > c.cfg.MaxBackoff || d < 0 {
		return c.cfg.MaxBackoff
	}
	return d
}

// parseRetryAfter accepts delta-seconds or an HTTP date. Values are capped at MaxBackoff.
func (c *Client) parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	var d time.Duration
	if secs, err := strconv.Atoi(v); err == nil {
		d = time.Duration(secs) * time.Second
	} else if t, err := http.ParseTime(v); err == nil {
		d = t.Sub(c.now())
	}
	if d <= 0 {
		return 0
	}
	if d > c.cfg.MaxBackoff {
		return c.cfg.MaxBackoff
	}
	return d
}

func (c *Client) pendingCooldown() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cooldownUntil.IsZero() {
		return 0
	}
	return c.cooldownUntil.Sub(c.now())
}

func (c *Client) setCooldown(until time.Time) {
	c.mu.Lock()
	c.cooldownUntil = until
	c.mu.Unlock()
}

func (c *Client) clearCooldown() {
	c.setCooldown(time.Time{})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WithLogger sets the client logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) {
		c.log = l.With(applogger.String("component", "coingecko"))
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m drepo.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLimiter shares a rate limiter between clients.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithSleeper replaces the backoff sleep, mostly for tests.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		c.sleep = s
	}
}

// WithClock replaces the wall clock used for cooldown bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}
