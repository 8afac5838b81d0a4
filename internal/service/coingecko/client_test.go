package coingecko

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"CryptoPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMarkets = `[
  {"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":64000.12,
   "price_change_percentage_24h_in_currency":-5.0,"price_change_percentage_7d_in_currency":3.0,
   "market_cap":1260000000000},
  {"id":"pepe","symbol":"pepe","name":"Pepe","current_price":0.00001234,
   "price_change_percentage_24h_in_currency":null,"price_change_percentage_7d_in_currency":"oops",
   "market_cap":null}
]`

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *recordingSleeper) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, url string, retries int) (*Client, *recordingSleeper) {
	t.Helper()
	s := &recordingSleeper{}
	c := New(Config{
		BaseURL:           url,
		APIKey:            "demo-key",
		Timeout:           2 * time.Second,
		Retries:           retries,
		BackoffFactor:     1.0,
		MaxBackoff:        120 * time.Second,
		RateLimitCooldown: 60 * time.Second,
		PerPage:           100,
	}, WithSleeper(s.sleep), WithClock(func() time.Time { return fixedNow }))
	return c, s
}

// sequence serves the given statuses in order, then 200 with sampleMarkets.
func sequence(t *testing.T, hits *int32, steps ...func(w http.ResponseWriter)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(hits, 1)) - 1
		if n < len(steps) {
			steps[n](w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleMarkets))
	}))
}

func status(code int, headers ...string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		for i := 0; i+1 < len(headers); i += 2 {
			w.Header().Set(headers[i], headers[i+1])
		}
		w.WriteHeader(code)
	}
}

func TestFetchSendsMarketQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/coins/markets", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "eur", q.Get("vs_currency"))
		assert.Equal(t, "bitcoin,pepe", q.Get("ids"))
		assert.Equal(t, "market_cap_desc", q.Get("order"))
		assert.Equal(t, "100", q.Get("per_page"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "false", q.Get("sparkline"))
		assert.Equal(t, "24h,7d", q.Get("price_change_percentage"))
		assert.Equal(t, "demo-key", r.Header.Get(apiKeyHeader))
		_, _ = w.Write([]byte(sampleMarkets))
	}))
	defer srv.Close()

	c, s := newTestClient(t, srv.URL+"/api/v3", 3)
	quotes, err := c.Fetch(context.Background(), []string{"bitcoin", "pepe"}, "eur")
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Empty(t, s.recorded())

	btc := quotes[0]
	assert.Equal(t, "bitcoin", btc.ID)
	assert.Equal(t, "BTC", btc.Symbol)
	require.True(t, btc.HasPrice())
	assert.Equal(t, "64000.12", btc.Price.Decimal.String())
	require.NotNil(t, btc.Change24h)
	assert.Equal(t, -5.0, *btc.Change24h)
	assert.Equal(t, 3.0, *btc.Change7d)
	assert.True(t, btc.MarketCap.Valid)
}

func TestFetchDegradesBadFieldsToAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleMarkets))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL, 0)
	quotes, err := c.Fetch(context.Background(), []string{"pepe"}, "usd")
	require.NoError(t, err)

	pepe := quotes[1]
	assert.Equal(t, "PEPE", pepe.Symbol)
	assert.Equal(t, "0.00001234", pepe.Price.Decimal.String())
	assert.Nil(t, pepe.Change24h)
	assert.Nil(t, pepe.Change7d)
	assert.False(t, pepe.MarketCap.Valid)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := sequence(t, &hits, status(502), status(503))
	defer srv.Close()

	c, s := newTestClient(t, srv.URL, 3)
	quotes, err := c.Fetch(context.Background(), []string{"bitcoin"}, "usd")
	require.NoError(t, err)
	assert.Len(t, quotes, 2)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, s.recorded())
}

func TestFetchHonoursRetryAfterAndCooldownOn429(t *testing.T) {
	var hits int32
	srv := sequence(t, &hits, status(429, "Retry-After", "5"))
	defer srv.Close()

	c, s := newTestClient(t, srv.URL, 3)
	_, err := c.Fetch(context.Background(), []string{"bitcoin"}, "usd")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{65 * time.Second}, s.recorded())
	assert.Zero(t, c.pendingCooldown())
}

func TestFetchRateLimitedExhaustsAndCarriesCooldown(t *testing.T) {
	var hits int32
	srv := sequence(t, &hits, status(429), status(429), status(429), status(429))
	defer srv.Close()

	c, s := newTestClient(t, srv.URL, 3)
	_, err := c.Fetch(context.Background(), []string{"bitcoin"}, "usd")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRateLimited))
	var fe *models.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, models.FetchRateLimited, fe.Kind)
	assert.Equal(t, int32(4), atomic.LoadInt32(&hits))
	assert.Equal(t, []time.Duration{61 * time.Second, 62 * time.Second, 64 * time.Second}, s.recorded())

	// The next fetch waits out the cooldown before its first request.
	quotes, err := c.Fetch(context.Background(), []string{"bitcoin"}, "usd")
	require.NoError(t, err)
	assert.Len(t, quotes, 2)
	assert.Equal(t, 60*time.Second, s.recorded()[3])
}

func TestFetchClientErrorIsNotRetried(t *testing.T) {
	var hits int32
	srv := sequence(t, &hits, status(404))
	defer srv.Close()

	c, s := newTestClient(t, srv.URL, 3)
	_, err := c.Fetch(context.Background(), []string{"bitcoin"}, "usd")
	var fe *models.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, models.FetchHTTP, fe.Kind)
	assert.Equal(t, 404, fe.Status)
	assert.True(t, errors.Is(err, models.ErrHTTPStatus))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Empty(t, s.recorded())
}

func TestFetchNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, s := newTestClient(t, url, 2)
	_, err := c.Fetch(context.Background(), []string{"bitcoin"}, "usd")
	assert.True(t, errors.Is(err, models.ErrNetwork))
	assert.Len(t, s.recorded(), 2)
}

func TestFetchStopsOnCancelledContext(t *testing.T) {
	var hits int32
	srv := sequence(t, &hits, status(500), status(500))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL, 3)
	ctx, cancel := context.WithCancel(context.Background())
	c.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}
	_, err := c.Fetch(ctx, []string{"bitcoin"}, "usd")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFetchRejectsNonArrayBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":{"error_code":0}}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL, 3)
	_, err := c.Fetch(context.Background(), []string{"bitcoin"}, "usd")
	assert.Error(t, err)
}

func TestFetchEmptyWatchlist(t *testing.T) {
	c, _ := newTestClient(t, "http://127.0.0.1:1", 3)
	quotes, err := c.Fetch(context.Background(), nil, "usd")
	assert.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestBackoffIsCapped(t *testing.T) {
	c, _ := newTestClient(t, "http://127.0.0.1:1", 3)
	assert.Equal(t, time.Second, c.backoff(1))
	assert.Equal(t, 4*time.Second, c.backoff(3))
	assert.Equal(t, 120*time.Second, c.backoff(10))
}

func TestParseRetryAfter(t *testing.T) {
	c, _ := newTestClient(t, "http://127.0.0.1:1", 3)
	assert.Equal(t, 7*time.Second, c.parseRetryAfter("7"))
	assert.Equal(t, 30*time.Second, c.parseRetryAfter(fixedNow.Add(30*time.Second).Format(http.TimeFormat)))
	assert.Equal(t, 120*time.Second, c.parseRetryAfter("3600"))
	assert.Zero(t, c.parseRetryAfter("soon"))
	assert.Zero(t, c.parseRetryAfter(""))
}
