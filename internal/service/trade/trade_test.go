package trade

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CryptoPulse/internal/domain/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func order(notional string) models.Order {
	return models.Order{
		AssetID:    "bitcoin",
		Symbol:     "BTC",
		LimitPrice: decimal.RequireFromString("50000"),
		Notional:   decimal.RequireFromString(notional),
	}
}

func TestPaperExecutorFills(t *testing.T) {
	p := NewPaperExecutor(decimal.NewFromInt(100), nil)
	exec, err := p.Execute(context.Background(), order("25"))
	require.NoError(t, err)
	assert.Equal(t, StatusFilled, exec.Status)
	assert.NotEmpty(t, exec.OrderID)
	assert.Equal(t, "0.0005", exec.Quantity.String())
	assert.True(t, exec.Notional.Equal(decimal.NewFromInt(25)))
}

func TestPaperExecutorRiskLimit(t *testing.T) {
	p := NewPaperExecutor(decimal.NewFromInt(100), nil)
	_, err := p.Execute(context.Background(), order("150"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSinkRejected))

	var ee *models.ExecutionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "BTC", ee.Symbol)

	unlimited := NewPaperExecutor(decimal.Zero, nil)
	_, err = unlimited.Execute(context.Background(), order("150"))
	assert.NoError(t, err)

	_, err = unlimited.Execute(context.Background(), order("0"))
	assert.True(t, errors.Is(err, models.ErrSinkRejected))
}

func TestWebhookExecutorForwardsOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))

		var body webhookOrder
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "buy", body.Side)
		assert.Equal(t, "market", body.Type)
		assert.Equal(t, "BTC", body.Order.Symbol)
		assert.Equal(t, r.Header.Get("Idempotency-Key"), body.ClientOrderID)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"order_id":"ex-1","status":"filled","quantity":"0.0005"}`))
	}))
	defer srv.Close()

	e := NewWebhookExecutor(srv.URL, time.Second, nil)
	exec, err := e.Execute(context.Background(), order("25"))
	require.NoError(t, err)
	assert.Equal(t, "ex-1", exec.OrderID)
	assert.Equal(t, "filled", exec.Status)
	assert.Equal(t, "0.0005", exec.Quantity.String())
}

func TestWebhookExecutorEmptyBodyIsAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	exec, err := NewWebhookExecutor(srv.URL, time.Second, nil).Execute(context.Background(), order("25"))
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, exec.Status)
	assert.NotEmpty(t, exec.OrderID)
}

func TestWebhookExecutorIgnoresUnparseableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("queued"))
	}))
	defer srv.Close()

	exec, err := NewWebhookExecutor(srv.URL, time.Second, nil).Execute(context.Background(), order("25"))
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, exec.Status)
	assert.Equal(t, "BTC", exec.Symbol)
}

func TestWebhookExecutorFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient funds", http.StatusUnprocessableEntity)
	}))
	_, err := NewWebhookExecutor(srv.URL, time.Second, nil).Execute(context.Background(), order("25"))
	assert.True(t, errors.Is(err, models.ErrSinkRejected))
	assert.Contains(t, err.Error(), "insufficient funds")

	srv.Close()
	_, err = NewWebhookExecutor(srv.URL, time.Second, nil).Execute(context.Background(), order("25"))
	assert.True(t, errors.Is(err, models.ErrSinkUnavailable))
}
